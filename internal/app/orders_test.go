package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/brandforge/brand-service/internal/domain"
	"github.com/brandforge/brand-service/internal/store"
	"github.com/brandforge/brand-service/pkg/paygate"
)

type orderRepoStub struct {
	store.Repository

	order           *domain.Order
	createErr       error
	updateResult    bool
	updateErr       error
	attachErr       error
	pendingSub      *domain.Subscription
	ensurePendingFn func() (*domain.Subscription, error)

	createdOrder    *domain.Order
	attachedOrderID uuid.UUID
	attachedPayID   string
	updatedFrom     string
	updatedStatus   string
}

func (s *orderRepoStub) CreateOrder(ctx context.Context, order *domain.Order) error {
	s.createdOrder = order
	return s.createErr
}

func (s *orderRepoStub) FindOrderByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	if s.order == nil {
		return nil, store.ErrOrderNotFound
	}
	return s.order, nil
}

func (s *orderRepoStub) AttachOrderPaymentID(ctx context.Context, orderID uuid.UUID, paymentID string) error {
	s.attachedOrderID = orderID
	s.attachedPayID = paymentID
	return s.attachErr
}

func (s *orderRepoStub) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, fromStatus, toStatus string) (bool, error) {
	s.updatedFrom = fromStatus
	s.updatedStatus = toStatus
	return s.updateResult, s.updateErr
}

func (s *orderRepoStub) EnsurePendingSubscription(ctx context.Context, accountID uuid.UUID, plan domain.Plan) (*domain.Subscription, error) {
	if s.ensurePendingFn != nil {
		return s.ensurePendingFn()
	}
	return s.pendingSub, nil
}

type checkoutStub struct {
	preference *paygate.Preference
	err        error

	lastRequest paygate.PreferenceRequest
}

func (c *checkoutStub) CreatePreference(ctx context.Context, req paygate.PreferenceRequest) (*paygate.Preference, error) {
	c.lastRequest = req
	if c.err != nil {
		return nil, c.err
	}
	return c.preference, nil
}

func TestCreateOrder_PersistsPendingOrderAndAttachesPaymentID(t *testing.T) {
	accountID := uuid.New()
	repo := &orderRepoStub{}
	checkout := &checkoutStub{
		preference: &paygate.Preference{ID: "pref_42", CheckoutURL: "https://pay.example.com/pref_42"},
	}
	service := NewService(repo, nil, checkout, nil, 999)

	resp, err := service.CreateOrder(context.Background(), accountID, domain.CreateOrderRequest{
		ProductName: "Embroidered cap",
		Quantity:    2,
		AmountCents: 5000,
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	if repo.createdOrder == nil {
		t.Fatal("expected order to be persisted")
	}
	if repo.createdOrder.PaymentStatus != domain.PaymentStatusPending || repo.createdOrder.Status != domain.OrderStatusPending {
		t.Fatalf("expected fresh order to be pending/pending, got %s/%s", repo.createdOrder.PaymentStatus, repo.createdOrder.Status)
	}
	if repo.attachedPayID != "pref_42" {
		t.Fatalf("expected preference id attached as payment id, got %q", repo.attachedPayID)
	}
	if checkout.lastRequest.ExternalReference != repo.createdOrder.ID.String() {
		t.Fatalf("expected external reference %s, got %s", repo.createdOrder.ID, checkout.lastRequest.ExternalReference)
	}
	if resp.CheckoutURL != "https://pay.example.com/pref_42" {
		t.Fatalf("unexpected checkout url %q", resp.CheckoutURL)
	}
}

func TestCreateOrder_PreferenceTotalMatchesOrderAmountForIndivisibleTotals(t *testing.T) {
	repo := &orderRepoStub{}
	checkout := &checkoutStub{
		preference: &paygate.Preference{ID: "pref_43", CheckoutURL: "https://pay.example.com/pref_43"},
	}
	service := NewService(repo, nil, checkout, nil, 999)

	_, err := service.CreateOrder(context.Background(), uuid.New(), domain.CreateOrderRequest{
		ProductName: "Embroidered cap",
		Quantity:    3,
		AmountCents: 5000,
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	total := checkout.lastRequest.UnitPriceCents * int64(checkout.lastRequest.Quantity)
	if total != 5000 {
		t.Fatalf("expected preference total 5000 cents to match the stored order, got %d", total)
	}
}

func TestCreateOrder_GatewayFailureSurfacesUpstreamError(t *testing.T) {
	repo := &orderRepoStub{}
	checkout := &checkoutStub{err: errors.New("gateway timeout")}
	service := NewService(repo, nil, checkout, nil, 999)

	_, err := service.CreateOrder(context.Background(), uuid.New(), domain.CreateOrderRequest{
		ProductName: "Tote bag",
		Quantity:    1,
		AmountCents: 1500,
	})
	if !errors.Is(err, ErrUpstreamFailure) {
		t.Fatalf("expected ErrUpstreamFailure, got %v", err)
	}
}

func TestCreateOrder_ValidatesInput(t *testing.T) {
	service := NewService(&orderRepoStub{}, nil, &checkoutStub{}, nil, 999)

	tests := []struct {
		name string
		req  domain.CreateOrderRequest
	}{
		{name: "blank product name", req: domain.CreateOrderRequest{ProductName: " ", Quantity: 1, AmountCents: 100}},
		{name: "zero quantity", req: domain.CreateOrderRequest{ProductName: "Cap", Quantity: 0, AmountCents: 100}},
		{name: "zero amount", req: domain.CreateOrderRequest{ProductName: "Cap", Quantity: 1, AmountCents: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.CreateOrder(context.Background(), uuid.New(), tt.req); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestAdvanceOrderStatus_SingleForwardStepSucceeds(t *testing.T) {
	orderID := uuid.New()
	repo := &orderRepoStub{
		order:        &domain.Order{ID: orderID, Status: domain.OrderStatusInProduction},
		updateResult: true,
	}
	service := NewService(repo, nil, nil, nil, 999)

	order, err := service.AdvanceOrderStatus(context.Background(), orderID, "stamping")
	if err != nil {
		t.Fatalf("AdvanceOrderStatus returned error: %v", err)
	}
	if order.Status != domain.OrderStatusStamping {
		t.Fatalf("expected status stamping, got %s", order.Status)
	}
	if repo.updatedStatus != domain.OrderStatusStamping {
		t.Fatalf("expected persisted status stamping, got %s", repo.updatedStatus)
	}
	if repo.updatedFrom != domain.OrderStatusInProduction {
		t.Fatalf("expected update guarded on current status in_production, got %q", repo.updatedFrom)
	}
}

func TestAdvanceOrderStatus_ConcurrentUpdateIsReportedAsConflict(t *testing.T) {
	orderID := uuid.New()
	repo := &orderRepoStub{
		order:        &domain.Order{ID: orderID, Status: domain.OrderStatusStamping},
		updateResult: false,
	}
	service := NewService(repo, nil, nil, nil, 999)

	_, err := service.AdvanceOrderStatus(context.Background(), orderID, "quality_check")
	if !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("expected conflict to surface as ErrInvalidStatusTransition, got %v", err)
	}
}

func TestAdvanceOrderStatus_InvalidTransitionsAreRejected(t *testing.T) {
	orderID := uuid.New()
	repo := &orderRepoStub{
		order: &domain.Order{ID: orderID, Status: domain.OrderStatusDelivered},
	}
	service := NewService(repo, nil, nil, nil, 999)

	_, err := service.AdvanceOrderStatus(context.Background(), orderID, "cancelled")
	if !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}
	if repo.updatedStatus != "" {
		t.Fatal("expected no status write for a rejected transition")
	}
}

func TestStartSubscriptionCheckout_CarriesAccountMetadata(t *testing.T) {
	accountID := uuid.New()
	repo := &orderRepoStub{
		pendingSub: &domain.Subscription{
			ID:        uuid.New(),
			AccountID: accountID,
			Plan:      domain.PlanPro,
			Status:    domain.SubscriptionStatusPending,
		},
	}
	checkout := &checkoutStub{
		preference: &paygate.Preference{ID: "pref_sub", CheckoutURL: "https://pay.example.com/pref_sub"},
	}
	service := NewService(repo, nil, checkout, nil, 1999)

	resp, err := service.StartSubscriptionCheckout(context.Background(), accountID)
	if err != nil {
		t.Fatalf("StartSubscriptionCheckout returned error: %v", err)
	}
	if checkout.lastRequest.Metadata == nil {
		t.Fatal("expected preference metadata to be set")
	}
	if checkout.lastRequest.Metadata.UserID != accountID.String() {
		t.Fatalf("expected metadata userId %s, got %s", accountID, checkout.lastRequest.Metadata.UserID)
	}
	if checkout.lastRequest.Metadata.Plan != "pro" {
		t.Fatalf("expected metadata plan pro, got %s", checkout.lastRequest.Metadata.Plan)
	}
	if checkout.lastRequest.UnitPriceCents != 1999 {
		t.Fatalf("expected configured price 1999, got %d", checkout.lastRequest.UnitPriceCents)
	}
	if resp.CheckoutURL != "https://pay.example.com/pref_sub" {
		t.Fatalf("unexpected checkout url %q", resp.CheckoutURL)
	}
}

func TestStartSubscriptionCheckout_RejectsAlreadyActiveSubscription(t *testing.T) {
	accountID := uuid.New()
	repo := &orderRepoStub{
		pendingSub: &domain.Subscription{
			ID:        uuid.New(),
			AccountID: accountID,
			Plan:      domain.PlanPro,
			Status:    domain.SubscriptionStatusActive,
		},
	}
	service := NewService(repo, nil, &checkoutStub{}, nil, 1999)

	if _, err := service.StartSubscriptionCheckout(context.Background(), accountID); err == nil {
		t.Fatal("expected error for an already active subscription")
	}
}
