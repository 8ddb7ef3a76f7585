/**
 * @description
 * This file contains the core business logic for the brand-service. The `Service`
 * struct orchestrates the entitlement gate, payment reconciliation, order and
 * subscription management, coordinating between the database repository, the AI
 * generation API client, the payment gateway client, and the message broker.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/paygate, pkg/rabbitmq: For external service communication.
 */

package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/brandforge/brand-service/internal/store"
	"github.com/brandforge/brand-service/pkg/paygate"
	"github.com/brandforge/brand-service/pkg/rabbitmq"
)

var (
	// ErrQuotaExceeded is returned when the entitlement gate denies a generation.
	ErrQuotaExceeded = errors.New("generation quota exceeded")
	// ErrUpstreamFailure wraps failures of the external generation or payment APIs.
	ErrUpstreamFailure = errors.New("upstream service failure")
	// ErrInvalidStatusTransition is returned for fulfillment moves outside the sequence.
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

// GenerationClient is the surface of the AI generation API the service depends on.
type GenerationClient interface {
	SuggestLogoNames(ctx context.Context, businessName, industry string, count int) ([]string, error)
	GenerateDesignImage(ctx context.Context, prompt, style string) (string, error)
}

// CheckoutClient is the surface of the payment gateway the service depends on.
type CheckoutClient interface {
	CreatePreference(ctx context.Context, req paygate.PreferenceRequest) (*paygate.Preference, error)
}

// RateLimiter limits request rates per scope and subject. A nil limiter means
// rate limiting is disabled.
type RateLimiter interface {
	ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

// Service provides the core business logic for the brand builder backend.
type Service struct {
	repo        store.Repository
	generator   GenerationClient
	checkout    CheckoutClient
	events      rabbitmq.Publisher
	rateLimiter RateLimiter

	subscriptionPriceCents   int64
	generationLimitPerMinute int
}

// NewService creates a new brand service instance.
func NewService(repo store.Repository, generator GenerationClient, checkout CheckoutClient, events rabbitmq.Publisher, subscriptionPriceCents int64) *Service {
	if events == nil {
		events = &rabbitmq.EventProducerFallback{}
	}
	return &Service{
		repo:                   repo,
		generator:              generator,
		checkout:               checkout,
		events:                 events,
		subscriptionPriceCents: subscriptionPriceCents,
	}
}

// SetGenerationRateLimiter installs a per-account limiter for the generation endpoints.
func (s *Service) SetGenerationRateLimiter(limiter RateLimiter, limitPerMinute int) {
	s.rateLimiter = limiter
	s.generationLimitPerMinute = limitPerMinute
}

// ResolveAccountID converts an identity provider subject (the validated JWT's
// `sub` claim) into the internal account UUID used by the repositories.
func (s *Service) ResolveAccountID(ctx context.Context, authSubject string) (uuid.UUID, error) {
	return s.repo.FindAccountIDByAuthSubject(ctx, authSubject)
}

// IsAccountAdmin reports whether the account carries the admin flag.
func (s *Service) IsAccountAdmin(ctx context.Context, accountID uuid.UUID) (bool, error) {
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return false, err
	}
	return account.IsAdmin, nil
}

// BootstrapAdmin promotes the configured bootstrap email to admin. Called once
// at process start; no HTTP route reaches this.
func (s *Service) BootstrapAdmin(ctx context.Context, email string) (bool, error) {
	return s.repo.PromoteAccountAdminByEmail(ctx, email)
}
