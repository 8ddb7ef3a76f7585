/**
 * @description
 * Domain model for merchandise orders. An order tracks two independent status
 * fields: the payment status, driven exclusively by gateway notifications, and
 * the fulfillment status, advanced manually through a fixed production
 * sequence by admin users.
 *
 * @notes
 * - Amounts are stored as `int64` cents to avoid floating-point inaccuracies.
 * - Payment status is monotonic: once paid, an order never reverts to pending
 *   regardless of later gateway replays.
 */

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Payment statuses.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// Fulfillment statuses, in production order.
const (
	OrderStatusPending      = "pending"
	OrderStatusInProduction = "in_production"
	OrderStatusStamping     = "stamping"
	OrderStatusQualityCheck = "quality_check"
	OrderStatusShipped      = "shipped"
	OrderStatusDelivered    = "delivered"
	OrderStatusCancelled    = "cancelled"
)

// fulfillmentSequence is the only permitted forward path for order status.
var fulfillmentSequence = []string{
	OrderStatusPending,
	OrderStatusInProduction,
	OrderStatusStamping,
	OrderStatusQualityCheck,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// CanAdvanceOrderStatus reports whether an order may move from `from` to `to`.
// Only single forward steps along the fulfillment sequence are allowed, plus a
// jump to cancelled from any non-terminal state.
func CanAdvanceOrderStatus(from, to string) bool {
	from = normalizeLower(from)
	to = normalizeLower(to)

	if from == OrderStatusDelivered || from == OrderStatusCancelled {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	for i, status := range fulfillmentSequence {
		if status == from {
			return i+1 < len(fulfillmentSequence) && fulfillmentSequence[i+1] == to
		}
	}
	return false
}

// Order maps directly to the `orders` table.
type Order struct {
	ID            uuid.UUID `json:"id"`
	AccountID     uuid.UUID `json:"account_id"`
	ProductName   string    `json:"product_name"`
	Quantity      int       `json:"quantity"`
	AmountCents   int64     `json:"amount_cents"`
	PaymentID     *string   `json:"payment_id,omitempty"`
	PaymentStatus string    `json:"payment_status"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateOrderRequest is the DTO for incoming order creation requests.
type CreateOrderRequest struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	AmountCents int64  `json:"amount_cents"`
}

// CreateOrderResponse carries the stored order plus the gateway checkout URL.
type CreateOrderResponse struct {
	Order       *Order `json:"order"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}

// UpdateOrderStatusRequest is the DTO for admin fulfillment updates.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

func normalizeLower(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
