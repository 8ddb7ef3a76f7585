/**
 * @description
 * Entitlement gate: decides per-capability eligibility for the metered AI
 * generation features and records consumption. The gate re-derives pro status
 * from the subscription row on every call and claims free-tier credits with a
 * single conditional increment, so two concurrent requests can never both take
 * the last credit.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/brandforge/brand-service/internal/domain"
	"github.com/brandforge/brand-service/internal/store"
)

// EvaluateLimits computes the entitlement snapshot for an account. Read-only.
func (s *Service) EvaluateLimits(ctx context.Context, accountID uuid.UUID) (*domain.UsageLimits, error) {
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	sub, err := s.repo.FindSubscriptionByAccountID(ctx, accountID)
	if err != nil && !errors.Is(err, store.ErrSubscriptionNotFound) {
		return nil, err
	}

	limits := &domain.UsageLimits{
		Plan:                  domain.PlanFree,
		LogoGenerationsUsed:   account.LogoGenerationsUsed,
		DesignGenerationsUsed: account.DesignGenerationsUsed,
	}
	if sub.IsEntitling() {
		limits.Plan = domain.PlanPro
		limits.IsPro = true
	}
	limits.CanGenerateLogo = limits.IsPro || account.LogoGenerationsUsed < domain.FreeQuotaPerCapability
	limits.CanGenerateDesign = limits.IsPro || account.DesignGenerationsUsed < domain.FreeQuotaPerCapability

	return limits, nil
}

// ConsumeCapability claims one use of a capability. Pro accounts are unmetered
// and never written to; free accounts get a conditional increment that only
// succeeds while the counter is under quota. The returned limits reflect the
// state after the claim.
func (s *Service) ConsumeCapability(ctx context.Context, accountID uuid.UUID, capability domain.Capability) (*domain.UsageLimits, bool, error) {
	limits, err := s.EvaluateLimits(ctx, accountID)
	if err != nil {
		return nil, false, err
	}

	if limits.IsPro {
		return limits, true, nil
	}

	claimed, err := s.repo.TryConsumeCapability(ctx, accountID, capability, domain.FreeQuotaPerCapability)
	if err != nil {
		return nil, false, err
	}
	if !claimed {
		return limits, false, nil
	}

	switch capability {
	case domain.CapabilityLogo:
		limits.LogoGenerationsUsed++
		limits.CanGenerateLogo = limits.LogoGenerationsUsed < domain.FreeQuotaPerCapability
	case domain.CapabilityDesign:
		limits.DesignGenerationsUsed++
		limits.CanGenerateDesign = limits.DesignGenerationsUsed < domain.FreeQuotaPerCapability
	}
	return limits, true, nil
}

// GenerateLogoNames runs the gated logo naming flow: claim a credit, then call
// the generation API. A failed upstream call after a claimed credit is not
// compensated; the credit is spent and the failure is surfaced.
func (s *Service) GenerateLogoNames(ctx context.Context, accountID uuid.UUID, req domain.GenerateLogoNamesRequest) (*domain.GenerateLogoNamesResponse, error) {
	businessName := strings.TrimSpace(req.BusinessName)
	if businessName == "" {
		return nil, errors.New("business_name is required")
	}

	limits, claimed, err := s.ConsumeCapability(ctx, accountID, domain.CapabilityLogo)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return &domain.GenerateLogoNamesResponse{Limits: *limits}, ErrQuotaExceeded
	}

	names, err := s.generator.SuggestLogoNames(ctx, businessName, strings.TrimSpace(req.Industry), req.Count)
	if err != nil {
		log.Printf("level=error component=service flow=generate_logo_names msg=\"generation api call failed\" account_id=%s err=%v", accountID, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}

	return &domain.GenerateLogoNamesResponse{Names: names, Limits: *limits}, nil
}

// GenerateDesign runs the gated design image flow.
func (s *Service) GenerateDesign(ctx context.Context, accountID uuid.UUID, req domain.GenerateDesignRequest) (*domain.GenerateDesignResponse, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("prompt is required")
	}

	limits, claimed, err := s.ConsumeCapability(ctx, accountID, domain.CapabilityDesign)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return &domain.GenerateDesignResponse{Limits: *limits}, ErrQuotaExceeded
	}

	imageURL, err := s.generator.GenerateDesignImage(ctx, prompt, strings.TrimSpace(req.Style))
	if err != nil {
		log.Printf("level=error component=service flow=generate_design msg=\"generation api call failed\" account_id=%s err=%v", accountID, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}

	return &domain.GenerateDesignResponse{ImageURL: imageURL, Limits: *limits}, nil
}
