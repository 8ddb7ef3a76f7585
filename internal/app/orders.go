/**
 * @description
 * Order management: creating orders with a gateway checkout preference,
 * listing an account's orders, and advancing fulfillment status through the
 * fixed production sequence.
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
	"github.com/brandforge/brand-service/pkg/paygate"
)

// CreateOrder stores a new pending order and asks the payment gateway for a
// checkout preference. The returned preference id is persisted as the order's
// payment id so the webhook can correlate the eventual notification.
func (s *Service) CreateOrder(ctx context.Context, accountID uuid.UUID, req domain.CreateOrderRequest) (*domain.CreateOrderResponse, error) {
	productName := strings.TrimSpace(req.ProductName)
	if productName == "" {
		return nil, errors.New("product_name is required")
	}
	if req.Quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}
	if req.AmountCents <= 0 {
		return nil, errors.New("amount_cents must be positive")
	}

	order := &domain.Order{
		ID:            uuid.New(),
		AccountID:     accountID,
		ProductName:   productName,
		Quantity:      req.Quantity,
		AmountCents:   req.AmountCents,
		PaymentStatus: domain.PaymentStatusPending,
		Status:        domain.OrderStatusPending,
	}
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// A single line item carrying the full amount keeps the preference total
	// equal to the stored order amount even when the total does not divide
	// evenly by the quantity.
	pref, err := s.checkout.CreatePreference(ctx, paygate.PreferenceRequest{
		Title:             fmt.Sprintf("%s x%d", productName, req.Quantity),
		Quantity:          1,
		UnitPriceCents:    req.AmountCents,
		ExternalReference: order.ID.String(),
	})
	if err != nil {
		log.Printf("level=error component=service flow=create_order msg=\"checkout preference creation failed\" order_id=%s err=%v", order.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}

	if err := s.repo.AttachOrderPaymentID(ctx, order.ID, pref.ID); err != nil {
		return nil, fmt.Errorf("failed to attach payment id to order %s: %w", order.ID, err)
	}
	order.PaymentID = &pref.ID

	return &domain.CreateOrderResponse{Order: order, CheckoutURL: pref.CheckoutURL}, nil
}

// ListOrders returns the account's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, accountID uuid.UUID) ([]domain.Order, error) {
	return s.repo.FindOrdersByAccountID(ctx, accountID)
}

// AdvanceOrderStatus moves an order's fulfillment status one step along the
// production sequence (or to cancelled). Backward moves, skipped steps, and
// transitions out of terminal states are rejected.
func (s *Service) AdvanceOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus string) (*domain.Order, error) {
	order, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	target := strings.ToLower(strings.TrimSpace(newStatus))
	if !domain.CanAdvanceOrderStatus(order.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, target)
	}

	updated, err := s.repo.UpdateOrderStatus(ctx, orderID, order.Status, target)
	if err != nil {
		return nil, err
	}
	if !updated {
		// A concurrent update moved the order after our read; the validated
		// transition no longer applies.
		return nil, fmt.Errorf("%w: order %s is no longer %s", ErrInvalidStatusTransition, orderID, order.Status)
	}

	log.Printf("level=info component=service flow=order_status msg=\"fulfillment status advanced\" order_id=%s from=%s to=%s", orderID, order.Status, target)
	order.Status = target
	return order, nil
}
