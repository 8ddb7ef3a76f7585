/**
 * @description
 * Cron scheduler and scheduled job implementations. The only recurring job is
 * subscription expiry: active subscriptions whose billing period has ended are
 * flipped to expired so the entitlement gate stops treating the account as pro.
 */

package app

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/brandforge/brand-service/internal/metrics"
)

// Scheduler manages the service's cron jobs.
type Scheduler struct {
	cron    *cron.Cron
	service *Service

	expirySchedule string
}

// NewScheduler creates a scheduler wired to the service.
func NewScheduler(service *Service, expirySchedule string) *Scheduler {
	cronLogger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		cron:           cron.New(cron.WithChain(cron.Recover(cronLogger))),
		service:        service,
		expirySchedule: expirySchedule,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.expirySchedule, s.runSubscriptionExpiry); err != nil {
		log.Printf("level=error component=scheduler msg=\"failed to schedule subscription expiry job\" schedule=%q err=%v", s.expirySchedule, err)
	} else {
		log.Printf("level=info component=scheduler msg=\"scheduled subscription expiry job\" schedule=%q", s.expirySchedule)
	}
	s.cron.Start()
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runSubscriptionExpiry() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	expired, err := s.service.ExpireLapsedSubscriptions(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("level=error component=scheduler job=subscription_expiry outcome=failed err=%v", err)
		return
	}
	if expired > 0 {
		metrics.SubscriptionsExpiredTotal.Add(float64(expired))
		log.Printf("level=info component=scheduler job=subscription_expiry outcome=ok expired=%d", expired)
	}
}
