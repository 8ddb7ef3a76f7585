/**
 * @description
 * Event payloads published to RabbitMQ after payment reconciliation so that
 * downstream consumers (mailers, analytics) can react without being in the
 * webhook's critical path.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderPaidEvent is published when an order transitions to paid.
type OrderPaidEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	AccountID   uuid.UUID `json:"account_id"`
	PaymentID   string    `json:"payment_id"`
	AmountCents int64     `json:"amount_cents"`
	Timestamp   time.Time `json:"timestamp"`
}

// SubscriptionActivatedEvent is published when a subscription becomes active.
type SubscriptionActivatedEvent struct {
	AccountID uuid.UUID `json:"account_id"`
	Plan      Plan      `json:"plan"`
	PaymentID string    `json:"payment_id"`
	EndDate   time.Time `json:"end_date"`
	Timestamp time.Time `json:"timestamp"`
}
