/**
 * @description
 * Payment reconciliation: translates asynchronous payment-gateway webhook
 * notifications into internal order and subscription state transitions.
 *
 * The handler is idempotent per notification content. Order payment status is
 * monotonic: a paid order is never downgraded by a later non-approved replay
 * for the same payment identifier. The order path and the subscription path
 * run sequentially and are not transactional with each other.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brandforge/brand-service/internal/domain"
	"github.com/brandforge/brand-service/internal/store"
	"github.com/brandforge/brand-service/pkg/rabbitmq"
)

// ErrMalformedNotification is returned for notifications missing a payment id.
var ErrMalformedNotification = errors.New("malformed payment notification")

// ReconcileNotification applies one gateway notification. Any returned error
// means the webhook must answer with a failure status so the gateway's retry
// mechanism redelivers the notification.
func (s *Service) ReconcileNotification(ctx context.Context, notification domain.PaymentNotification) error {
	paymentID := strings.TrimSpace(notification.Data.ID)
	if paymentID == "" {
		return ErrMalformedNotification
	}

	if err := s.reconcileOrder(ctx, paymentID, notification.Data); err != nil {
		return fmt.Errorf("order reconciliation for payment %s: %w", paymentID, err)
	}

	if err := s.reconcileSubscription(ctx, paymentID, notification.Data); err != nil {
		return fmt.Errorf("subscription reconciliation for payment %s: %w", paymentID, err)
	}

	return nil
}

// reconcileOrder handles the order path. An unknown payment id is not an
// error: the notification may refer to a subscription payment instead.
func (s *Service) reconcileOrder(ctx context.Context, paymentID string, data domain.PaymentNotificationData) error {
	order, err := s.repo.FindOrderByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			return nil
		}
		return err
	}

	if !data.IsApproved() {
		// Non-approved statuses map to pending. A paid order stays paid; a
		// pending order is already pending, so there is nothing to write.
		if order.PaymentStatus == domain.PaymentStatusPaid {
			log.Printf("level=info component=service flow=reconcile msg=\"ignoring non-approved replay for paid order\" order_id=%s payment_id=%s gateway_status=%q", order.ID, paymentID, data.Status)
		}
		return nil
	}

	transitioned, err := s.repo.MarkOrderPaid(ctx, paymentID)
	if err != nil {
		return err
	}
	if !transitioned {
		// Replay of an approved notification; the first delivery already won.
		log.Printf("level=info component=service flow=reconcile msg=\"order already paid; replay ignored\" order_id=%s payment_id=%s", order.ID, paymentID)
		return nil
	}

	log.Printf("level=info component=service flow=reconcile msg=\"order marked paid\" order_id=%s payment_id=%s", order.ID, paymentID)

	if err := s.events.Publish(ctx, rabbitmq.EventsExchange, rabbitmq.RoutingKeyOrderPaid, domain.OrderPaidEvent{
		OrderID:     order.ID,
		AccountID:   order.AccountID,
		PaymentID:   paymentID,
		AmountCents: order.AmountCents,
		Timestamp:   time.Now().UTC(),
	}); err != nil {
		// Event delivery is best-effort; the state transition already happened.
		log.Printf("level=warn component=service flow=reconcile msg=\"order paid event publish failed\" order_id=%s err=%v", order.ID, err)
	}
	return nil
}

// reconcileSubscription handles the subscription path: an approved payment
// carrying (userId, plan) metadata activates every matching subscription row
// for one billing period, inserting the row when none exists yet.
func (s *Service) reconcileSubscription(ctx context.Context, paymentID string, data domain.PaymentNotificationData) error {
	rawUserID, rawPlan, ok := data.SubscriptionMetadata()
	if !ok || !data.IsApproved() {
		return nil
	}

	accountID, err := uuid.Parse(rawUserID)
	if err != nil {
		return fmt.Errorf("%w: invalid userId %q", ErrMalformedNotification, rawUserID)
	}
	plan, ok := domain.ParsePlan(rawPlan)
	if !ok {
		return fmt.Errorf("%w: unknown plan %q", ErrMalformedNotification, rawPlan)
	}

	now := time.Now().UTC()
	endDate := now.AddDate(0, 0, domain.SubscriptionPeriodDays)

	activated, err := s.repo.ActivateSubscriptions(ctx, accountID, plan, now, endDate)
	if err != nil {
		return err
	}
	if activated == 0 {
		// Notification arrived before checkout pre-created the row; upsert so
		// the paid account still becomes entitled.
		if err := s.repo.InsertActiveSubscription(ctx, accountID, plan, now, endDate); err != nil {
			return err
		}
		activated = 1
		log.Printf("level=warn component=service flow=reconcile msg=\"no subscription row existed; inserted active row\" account_id=%s plan=%s payment_id=%s", accountID, plan, paymentID)
	}

	log.Printf("level=info component=service flow=reconcile msg=\"subscriptions activated\" account_id=%s plan=%s rows=%d payment_id=%s", accountID, plan, activated, paymentID)

	if err := s.events.Publish(ctx, rabbitmq.EventsExchange, rabbitmq.RoutingKeySubscriptionActivated, domain.SubscriptionActivatedEvent{
		AccountID: accountID,
		Plan:      plan,
		PaymentID: paymentID,
		EndDate:   endDate,
		Timestamp: now,
	}); err != nil {
		log.Printf("level=warn component=service flow=reconcile msg=\"subscription activated event publish failed\" account_id=%s err=%v", accountID, err)
	}
	return nil
}
