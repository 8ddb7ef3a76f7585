/**
 * @description
 * This file contains the HTTP handlers for the brand-service's API endpoints.
 * Handlers are responsible for parsing incoming requests, calling the
 * appropriate methods on the application service, and writing the HTTP
 * response. They act as the bridge between the web layer and the business
 * logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brandforge/brand-service/internal/app"
	"github.com/brandforge/brand-service/internal/domain"
	"github.com/brandforge/brand-service/internal/metrics"
	"github.com/brandforge/brand-service/internal/store"
)

// Handlers holds the application service that handlers will use.
type Handlers struct {
	service *app.Service
}

// NewHandlers creates the handler set for the router.
func NewHandlers(service *app.Service) *Handlers {
	return &Handlers{service: service}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("level=error component=api msg=\"failed to encode response\" err=%v", err)
		}
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, statusCode int, message string) {
	h.writeJSON(w, statusCode, map[string]string{"error": message})
}

// resolveAuthenticatedAccountID extracts the auth subject injected by the
// middleware and resolves it to the internal account UUID. A non-zero status
// code signals the caller must stop and write that error.
func (h *Handlers) resolveAuthenticatedAccountID(r *http.Request) (uuid.UUID, int, string) {
	subject, ok := GetAuthSubject(r.Context())
	if !ok {
		return uuid.Nil, http.StatusUnauthorized, "Unauthorized"
	}
	accountID, err := h.service.ResolveAccountID(r.Context(), subject)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return uuid.Nil, http.StatusNotFound, "Account not found."
		}
		log.Printf("level=error component=api msg=\"account resolution failed\" subject=%s err=%v", subject, err)
		return uuid.Nil, http.StatusInternalServerError, "Could not resolve account."
	}
	return accountID, 0, ""
}

// GetLimitsHandler returns the entitlement snapshot for the authenticated account.
func (h *Handlers) GetLimitsHandler(w http.ResponseWriter, r *http.Request) {
	accountID, statusCode, message := h.resolveAuthenticatedAccountID(r)
	if statusCode != 0 {
		h.writeError(w, statusCode, message)
		return
	}

	limits, err := h.service.EvaluateLimits(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			h.writeError(w, http.StatusNotFound, "Account not found.")
			return
		}
		log.Printf("level=error component=api endpoint=get_limits outcome=failed account_id=%s err=%v", accountID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not retrieve limits.")
		return
	}

	h.writeJSON(w, http.StatusOK, limits)
}

// generationGuard runs the shared auth + rate limit checks for the two
// generation endpoints. A non-nil error response has already been written.
func (h *Handlers) generationGuard(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	accountID, statusCode, message := h.resolveAuthenticatedAccountID(r)
	if statusCode != 0 {
		h.writeError(w, statusCode, message)
		return uuid.Nil, false
	}

	allowed, retryAfter, err := h.service.CheckGenerationRateLimit(r.Context(), accountID.String())
	if err != nil {
		log.Printf("level=warn component=api msg=\"rate limit check failed; allowing request\" account_id=%s err=%v", accountID, err)
	}
	if !allowed {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		h.writeError(w, http.StatusTooManyRequests, "Too many generation requests. Try again shortly.")
		return uuid.Nil, false
	}
	return accountID, true
}

// GenerateLogoNamesHandler handles the metered logo name suggestion endpoint.
func (h *Handlers) GenerateLogoNamesHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.generationGuard(w, r)
	if !ok {
		return
	}

	var req domain.GenerateLogoNamesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := h.service.GenerateLogoNames(r.Context(), accountID, req)
	h.writeGenerationResult(w, domain.CapabilityLogo, accountID, resp, err, func() interface{} { return resp })
}

// GenerateDesignHandler handles the metered design image endpoint.
func (h *Handlers) GenerateDesignHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.generationGuard(w, r)
	if !ok {
		return
	}

	var req domain.GenerateDesignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := h.service.GenerateDesign(r.Context(), accountID, req)
	h.writeGenerationResult(w, domain.CapabilityDesign, accountID, resp, err, func() interface{} { return resp })
}

// generationLimits extracts the limits payload out of either generation response.
func generationLimits(resp interface{}) (domain.UsageLimits, bool) {
	switch v := resp.(type) {
	case *domain.GenerateLogoNamesResponse:
		if v != nil {
			return v.Limits, true
		}
	case *domain.GenerateDesignResponse:
		if v != nil {
			return v.Limits, true
		}
	}
	return domain.UsageLimits{}, false
}

// writeGenerationResult maps generation outcomes to HTTP responses and metrics.
func (h *Handlers) writeGenerationResult(w http.ResponseWriter, capability domain.Capability, accountID uuid.UUID, resp interface{}, err error, payload func() interface{}) {
	capabilityLabel := string(capability)

	switch {
	case err == nil:
		metrics.GenerationsTotal.WithLabelValues(capabilityLabel, metrics.OutcomeOK).Inc()
		h.writeJSON(w, http.StatusOK, payload())
	case errors.Is(err, app.ErrQuotaExceeded):
		metrics.GenerationsTotal.WithLabelValues(capabilityLabel, metrics.OutcomeDenied).Inc()
		limits, _ := generationLimits(resp)
		h.writeJSON(w, http.StatusForbidden, domain.QuotaExceededResponse{
			Error:           "Free generation limit reached. Upgrade to Pro for unlimited generations.",
			UpgradeRequired: true,
			Limits:          limits,
		})
	case errors.Is(err, store.ErrAccountNotFound):
		metrics.GenerationsTotal.WithLabelValues(capabilityLabel, metrics.OutcomeError).Inc()
		h.writeError(w, http.StatusNotFound, "Account not found.")
	case errors.Is(err, app.ErrUpstreamFailure):
		metrics.GenerationsTotal.WithLabelValues(capabilityLabel, metrics.OutcomeUpstreamError).Inc()
		log.Printf("level=error component=api endpoint=generate capability=%s outcome=upstream_failed account_id=%s err=%v", capabilityLabel, accountID, err)
		h.writeError(w, http.StatusBadGateway, "Generation service is unavailable. Please try again later.")
	default:
		metrics.GenerationsTotal.WithLabelValues(capabilityLabel, metrics.OutcomeError).Inc()
		h.writeError(w, http.StatusBadRequest, err.Error())
	}
}

// CreateOrderHandler creates an order and returns the checkout URL.
func (h *Handlers) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	accountID, statusCode, message := h.resolveAuthenticatedAccountID(r)
	if statusCode != 0 {
		h.writeError(w, statusCode, message)
		return
	}

	var req domain.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := h.service.CreateOrder(r.Context(), accountID, req)
	if err != nil {
		if errors.Is(err, app.ErrUpstreamFailure) {
			log.Printf("level=error component=api endpoint=create_order outcome=upstream_failed account_id=%s err=%v", accountID, err)
			h.writeError(w, http.StatusBadGateway, "Payment gateway is unavailable.")
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, resp)
}

// ListOrdersHandler lists the authenticated account's orders.
func (h *Handlers) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	accountID, statusCode, message := h.resolveAuthenticatedAccountID(r)
	if statusCode != 0 {
		h.writeError(w, statusCode, message)
		return
	}

	orders, err := h.service.ListOrders(r.Context(), accountID)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_orders outcome=failed account_id=%s err=%v", accountID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not retrieve orders.")
		return
	}

	h.writeJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatusHandler advances an order's fulfillment status. Admin only.
func (h *Handlers) UpdateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req domain.UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	order, err := h.service.AdvanceOrderStatus(r.Context(), orderID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrOrderNotFound):
			h.writeError(w, http.StatusNotFound, "Order not found.")
		case errors.Is(err, app.ErrInvalidStatusTransition):
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			log.Printf("level=error component=api endpoint=update_order_status outcome=failed order_id=%s err=%v", orderID, err)
			h.writeError(w, http.StatusInternalServerError, "Could not update order status.")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

// SubscriptionCheckoutHandler starts a pro upgrade checkout.
func (h *Handlers) SubscriptionCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	accountID, statusCode, message := h.resolveAuthenticatedAccountID(r)
	if statusCode != 0 {
		h.writeError(w, statusCode, message)
		return
	}

	resp, err := h.service.StartSubscriptionCheckout(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, app.ErrUpstreamFailure) {
			log.Printf("level=error component=api endpoint=subscription_checkout outcome=upstream_failed account_id=%s err=%v", accountID, err)
			h.writeError(w, http.StatusBadGateway, "Payment gateway is unavailable.")
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// SubscriptionStatusHandler reports the account's subscription state.
func (h *Handlers) SubscriptionStatusHandler(w http.ResponseWriter, r *http.Request) {
	accountID, statusCode, message := h.resolveAuthenticatedAccountID(r)
	if statusCode != 0 {
		h.writeError(w, statusCode, message)
		return
	}

	status, err := h.service.GetSubscriptionStatus(r.Context(), accountID)
	if err != nil {
		log.Printf("level=error component=api endpoint=subscription_status outcome=failed account_id=%s err=%v", accountID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not retrieve subscription status.")
		return
	}

	h.writeJSON(w, http.StatusOK, status)
}
