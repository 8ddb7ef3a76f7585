/**
 * @description
 * Subscription management: starting a pro checkout and reporting subscription
 * status. Activation itself only happens through payment reconciliation; this
 * file never flips a subscription to active.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/brandforge/brand-service/internal/domain"
	"github.com/brandforge/brand-service/internal/store"
	"github.com/brandforge/brand-service/pkg/paygate"
)

// SubscriptionCheckoutResponse carries the gateway checkout URL for the upgrade.
type SubscriptionCheckoutResponse struct {
	Plan        domain.Plan `json:"plan"`
	PaymentID   string      `json:"payment_id"`
	CheckoutURL string      `json:"checkout_url"`
}

// StartSubscriptionCheckout pre-creates a pending (account, pro) subscription
// row and asks the gateway for a checkout preference carrying the account id
// and plan as metadata. The webhook's activation update matches on exactly
// that (account, plan) pair.
func (s *Service) StartSubscriptionCheckout(ctx context.Context, accountID uuid.UUID) (*SubscriptionCheckoutResponse, error) {
	sub, err := s.repo.EnsurePendingSubscription(ctx, accountID, domain.PlanPro)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure subscription row: %w", err)
	}
	if sub.IsEntitling() {
		return nil, errors.New("subscription is already active")
	}

	pref, err := s.checkout.CreatePreference(ctx, paygate.PreferenceRequest{
		Title:             "Pro plan (30 days)",
		Quantity:          1,
		UnitPriceCents:    s.subscriptionPriceCents,
		ExternalReference: sub.ID.String(),
		Metadata: &paygate.PreferenceMetadata{
			UserID: accountID.String(),
			Plan:   string(domain.PlanPro),
		},
	})
	if err != nil {
		log.Printf("level=error component=service flow=subscription_checkout msg=\"checkout preference creation failed\" account_id=%s err=%v", accountID, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}

	return &SubscriptionCheckoutResponse{
		Plan:        domain.PlanPro,
		PaymentID:   pref.ID,
		CheckoutURL: pref.CheckoutURL,
	}, nil
}

// GetSubscriptionStatus reports the account's current subscription state.
// Accounts without any subscription row are on the free plan.
func (s *Service) GetSubscriptionStatus(ctx context.Context, accountID uuid.UUID) (*domain.SubscriptionStatusResponse, error) {
	sub, err := s.repo.FindSubscriptionByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			return &domain.SubscriptionStatusResponse{
				Plan:   domain.PlanFree,
				Status: "inactive",
			}, nil
		}
		return nil, err
	}

	resp := &domain.SubscriptionStatusResponse{
		Plan:     sub.Plan,
		Status:   sub.Status,
		IsActive: sub.IsEntitling(),
	}
	if resp.IsActive {
		end := sub.EndDate
		resp.PeriodEnd = &end
	}
	return resp, nil
}

// ExpireLapsedSubscriptions flips active subscriptions whose period has ended
// to expired. Invoked by the cron job.
func (s *Service) ExpireLapsedSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.ExpireLapsedSubscriptions(ctx, now)
}
