/**
 * @description
 * Domain model for plan subscriptions. A subscription belongs to exactly one
 * account and carries the plan tier plus its billing period. Activation only
 * ever happens as a side effect of a confirmed payment notification; expiry is
 * handled by a scheduled job once the period end has passed.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Plan is a subscription tier.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// ParsePlan normalizes a plan string coming from an external payload.
func ParsePlan(raw string) (Plan, bool) {
	switch Plan(normalizeLower(raw)) {
	case PlanFree:
		return PlanFree, true
	case PlanPro:
		return PlanPro, true
	default:
		return "", false
	}
}

// Subscription statuses.
const (
	SubscriptionStatusPending   = "pending"
	SubscriptionStatusActive    = "active"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusCancelled = "cancelled"
)

// SubscriptionPeriodDays is the length of one paid billing period.
const SubscriptionPeriodDays = 30

// Subscription maps directly to the `subscriptions` table.
type Subscription struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	Plan      Plan      `json:"plan"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsEntitling reports whether the subscription currently grants pro access.
// Plan and status are the only inputs; the period end is enforced separately
// by the expiry job flipping status to expired.
func (s *Subscription) IsEntitling() bool {
	return s != nil && s.Plan == PlanPro && s.Status == SubscriptionStatusActive
}

// SubscriptionStatusResponse is the DTO for the subscription status endpoint.
type SubscriptionStatusResponse struct {
	Plan      Plan       `json:"plan"`
	Status    string     `json:"status"`
	IsActive  bool       `json:"is_active"`
	PeriodEnd *time.Time `json:"period_end,omitempty"`
}
