/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for all
 * data access operations required by the brand-service. By defining an interface,
 * we decouple the application's business logic from the specific database
 * implementation (PostgreSQL), making the code more modular and easier to test.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/brandforge/brand-service/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Account methods
	// Resolve the internal UUID from the identity provider subject claim.
	FindAccountIDByAuthSubject(ctx context.Context, authSubject string) (uuid.UUID, error)
	FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
	// TryConsumeCapability atomically increments the capability counter and the
	// aggregate counter iff the capability counter is still under quota.
	// Returns true when the credit was claimed, false when the quota was
	// already exhausted, and ErrAccountNotFound when the account is absent.
	TryConsumeCapability(ctx context.Context, accountID uuid.UUID, capability domain.Capability, quota int) (bool, error)
	// PromoteAccountAdminByEmail is only reachable from the bootstrap path at
	// process start; no request-handling route calls it.
	PromoteAccountAdminByEmail(ctx context.Context, email string) (bool, error)

	// Subscription methods
	FindSubscriptionByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, error)
	EnsurePendingSubscription(ctx context.Context, accountID uuid.UUID, plan domain.Plan) (*domain.Subscription, error)
	// ActivateSubscriptions is a bulk conditional update over all rows matching
	// (account, plan); it returns the number of rows activated.
	ActivateSubscriptions(ctx context.Context, accountID uuid.UUID, plan domain.Plan, startDate, endDate time.Time) (int64, error)
	InsertActiveSubscription(ctx context.Context, accountID uuid.UUID, plan domain.Plan, startDate, endDate time.Time) error
	ExpireLapsedSubscriptions(ctx context.Context, now time.Time) (int64, error)

	// Order methods
	CreateOrder(ctx context.Context, order *domain.Order) error
	FindOrdersByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.Order, error)
	FindOrderByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	FindOrderByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error)
	AttachOrderPaymentID(ctx context.Context, orderID uuid.UUID, paymentID string) error
	// MarkOrderPaid transitions payment_status to paid and the fulfillment
	// status to in_production in one guarded update. Returns false when the
	// order was already paid (idempotent replay).
	MarkOrderPaid(ctx context.Context, paymentID string) (bool, error)
	// UpdateOrderStatus sets the fulfillment status iff the row still carries
	// fromStatus. Returns false when a concurrent update already moved the
	// order, so callers can surface the conflict instead of skipping a step.
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, fromStatus, toStatus string) (bool, error)
}
