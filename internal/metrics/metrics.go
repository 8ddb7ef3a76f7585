/**
 * @description
 * Prometheus collectors for the brand-service. Counters are registered with
 * the default registry and exposed on /metrics by the router.
 */

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeOK            = "ok"
	OutcomeDenied        = "denied"
	OutcomeUpstreamError = "upstream_error"
	OutcomeError         = "error"
	OutcomeMalformed     = "malformed"
)

var (
	// GenerationsTotal counts gated generation attempts by capability and outcome.
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "brandforge",
		Name:      "generations_total",
		Help:      "Gated AI generation attempts by capability and outcome.",
	}, []string{"capability", "outcome"})

	// PaymentNotificationsTotal counts webhook notifications by processing outcome.
	PaymentNotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "brandforge",
		Name:      "payment_notifications_total",
		Help:      "Payment gateway webhook notifications by outcome.",
	}, []string{"outcome"})

	// SubscriptionsExpiredTotal counts subscriptions flipped to expired by the cron job.
	SubscriptionsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "brandforge",
		Name:      "subscriptions_expired_total",
		Help:      "Subscriptions marked expired by the scheduled expiry job.",
	})
)
