/**
 * @description
 * This file contains the HTTP handler for incoming payment gateway webhooks.
 * The gateway retries deliveries on non-2xx responses, so the handler's
 * status codes are the retry contract: malformed payloads are acknowledged
 * with a 400 (a retry cannot fix them), while internal failures return a
 * 500 so the gateway redelivers the notification.
 *
 * @dependencies
 * - encoding/json, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/metrics: Reconciliation logic, models, counters.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/brandforge/brand-service/internal/app"
	"github.com/brandforge/brand-service/internal/domain"
	"github.com/brandforge/brand-service/internal/metrics"
)

// PaymentWebhookHandler receives payment notifications from the gateway and
// hands them to the reconciliation service.
func (h *Handlers) PaymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	var notification domain.PaymentNotification
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		metrics.PaymentNotificationsTotal.WithLabelValues(metrics.OutcomeMalformed).Inc()
		log.Printf("level=warn component=api endpoint=payment_webhook outcome=malformed err=%v", err)
		h.writeError(w, http.StatusBadRequest, "Invalid notification payload")
		return
	}

	if err := h.service.ReconcileNotification(r.Context(), notification); err != nil {
		if errors.Is(err, app.ErrMalformedNotification) {
			metrics.PaymentNotificationsTotal.WithLabelValues(metrics.OutcomeMalformed).Inc()
			log.Printf("level=warn component=api endpoint=payment_webhook outcome=malformed payment_id=%s err=%v", notification.Data.ID, err)
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		metrics.PaymentNotificationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		log.Printf("level=error component=api endpoint=payment_webhook outcome=failed payment_id=%s err=%v", notification.Data.ID, err)
		h.writeError(w, http.StatusInternalServerError, "Failed to process notification")
		return
	}

	metrics.PaymentNotificationsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	h.writeJSON(w, http.StatusOK, domain.WebhookAck{Received: true})
}
