package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brandforge/brand-service/internal/domain"
	"github.com/brandforge/brand-service/internal/store"
)

type reconcileRepoStub struct {
	store.Repository

	order          *domain.Order
	markPaidResult bool
	markPaidErr    error
	activatedRows  int64
	activateErr    error
	insertErr      error

	markPaidCalled     bool
	markPaidPaymentID  string
	activateCalled     bool
	activatedAccountID uuid.UUID
	activatedPlan      domain.Plan
	activatedStart     time.Time
	activatedEnd       time.Time
	insertCalled       bool
}

func (s *reconcileRepoStub) FindOrderByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error) {
	if s.order == nil {
		return nil, store.ErrOrderNotFound
	}
	return s.order, nil
}

func (s *reconcileRepoStub) MarkOrderPaid(ctx context.Context, paymentID string) (bool, error) {
	s.markPaidCalled = true
	s.markPaidPaymentID = paymentID
	return s.markPaidResult, s.markPaidErr
}

func (s *reconcileRepoStub) ActivateSubscriptions(ctx context.Context, accountID uuid.UUID, plan domain.Plan, startDate, endDate time.Time) (int64, error) {
	s.activateCalled = true
	s.activatedAccountID = accountID
	s.activatedPlan = plan
	s.activatedStart = startDate
	s.activatedEnd = endDate
	return s.activatedRows, s.activateErr
}

func (s *reconcileRepoStub) InsertActiveSubscription(ctx context.Context, accountID uuid.UUID, plan domain.Plan, startDate, endDate time.Time) error {
	s.insertCalled = true
	return s.insertErr
}

type publisherStub struct {
	publishErr error

	published   []string
	lastPayload interface{}
}

func (p *publisherStub) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	p.published = append(p.published, routingKey)
	p.lastPayload = body
	return p.publishErr
}

func (p *publisherStub) Close() {}

func approvedNotification(paymentID string) domain.PaymentNotification {
	return domain.PaymentNotification{
		Type: "payment",
		Data: domain.PaymentNotificationData{ID: paymentID, Status: "approved"},
	}
}

func TestReconcileNotification_ApprovedPaymentMarksOrderPaid(t *testing.T) {
	paymentID := "pay_123"
	repo := &reconcileRepoStub{
		order: &domain.Order{
			ID:            uuid.New(),
			AccountID:     uuid.New(),
			PaymentID:     &paymentID,
			PaymentStatus: domain.PaymentStatusPending,
			Status:        domain.OrderStatusPending,
			AmountCents:   4500,
		},
		markPaidResult: true,
	}
	events := &publisherStub{}
	service := NewService(repo, nil, nil, events, 999)

	if err := service.ReconcileNotification(context.Background(), approvedNotification(paymentID)); err != nil {
		t.Fatalf("ReconcileNotification returned error: %v", err)
	}
	if !repo.markPaidCalled {
		t.Fatal("expected MarkOrderPaid to be called for an approved notification")
	}
	if repo.markPaidPaymentID != paymentID {
		t.Fatalf("expected payment id %q, got %q", paymentID, repo.markPaidPaymentID)
	}
	if len(events.published) != 1 || events.published[0] != "order.paid" {
		t.Fatalf("expected one order.paid event, got %v", events.published)
	}
}

func TestReconcileNotification_ApprovedReplayIsIdempotent(t *testing.T) {
	paymentID := "pay_123"
	repo := &reconcileRepoStub{
		order: &domain.Order{
			ID:            uuid.New(),
			PaymentID:     &paymentID,
			PaymentStatus: domain.PaymentStatusPaid,
			Status:        domain.OrderStatusInProduction,
		},
		markPaidResult: false,
	}
	events := &publisherStub{}
	service := NewService(repo, nil, nil, events, 999)

	if err := service.ReconcileNotification(context.Background(), approvedNotification(paymentID)); err != nil {
		t.Fatalf("expected replay to succeed silently, got %v", err)
	}
	if len(events.published) != 0 {
		t.Fatalf("expected no events on replay, got %v", events.published)
	}
}

func TestReconcileNotification_NonApprovedNeverDowngradesPaidOrder(t *testing.T) {
	paymentID := "pay_123"
	repo := &reconcileRepoStub{
		order: &domain.Order{
			ID:            uuid.New(),
			PaymentID:     &paymentID,
			PaymentStatus: domain.PaymentStatusPaid,
			Status:        domain.OrderStatusInProduction,
		},
	}
	service := NewService(repo, nil, nil, &publisherStub{}, 999)

	notification := domain.PaymentNotification{
		Data: domain.PaymentNotificationData{ID: paymentID, Status: "rejected"},
	}
	if err := service.ReconcileNotification(context.Background(), notification); err != nil {
		t.Fatalf("ReconcileNotification returned error: %v", err)
	}
	if repo.markPaidCalled {
		t.Fatal("expected no write for a non-approved notification")
	}
}

func TestReconcileNotification_UnknownPaymentWithMetadataActivatesSubscription(t *testing.T) {
	accountID := uuid.New()
	repo := &reconcileRepoStub{activatedRows: 2}
	events := &publisherStub{}
	service := NewService(repo, nil, nil, events, 999)

	notification := domain.PaymentNotification{
		Data: domain.PaymentNotificationData{
			ID:     "pay_sub_1",
			Status: "approved",
			Metadata: &domain.PaymentNotificationMetadata{
				UserID: accountID.String(),
				Plan:   "pro",
			},
		},
	}
	if err := service.ReconcileNotification(context.Background(), notification); err != nil {
		t.Fatalf("ReconcileNotification returned error: %v", err)
	}
	if !repo.activateCalled {
		t.Fatal("expected subscription activation")
	}
	if repo.activatedAccountID != accountID {
		t.Fatalf("expected activation for account %s, got %s", accountID, repo.activatedAccountID)
	}
	if repo.activatedPlan != domain.PlanPro {
		t.Fatalf("expected pro plan, got %s", repo.activatedPlan)
	}
	if repo.insertCalled {
		t.Fatal("expected no upsert when rows were activated")
	}
	wantEnd := repo.activatedStart.AddDate(0, 0, domain.SubscriptionPeriodDays)
	if !repo.activatedEnd.Equal(wantEnd) {
		t.Fatalf("expected end date %v, got %v", wantEnd, repo.activatedEnd)
	}
	if len(events.published) != 1 || events.published[0] != "subscription.activated" {
		t.Fatalf("expected one subscription.activated event, got %v", events.published)
	}
}

func TestReconcileNotification_InsertsRowWhenNoneActivated(t *testing.T) {
	accountID := uuid.New()
	repo := &reconcileRepoStub{activatedRows: 0}
	service := NewService(repo, nil, nil, &publisherStub{}, 999)

	notification := domain.PaymentNotification{
		Data: domain.PaymentNotificationData{
			ID:     "pay_sub_2",
			Status: "approved",
			Metadata: &domain.PaymentNotificationMetadata{
				UserID: accountID.String(),
				Plan:   "pro",
			},
		},
	}
	if err := service.ReconcileNotification(context.Background(), notification); err != nil {
		t.Fatalf("ReconcileNotification returned error: %v", err)
	}
	if !repo.insertCalled {
		t.Fatal("expected active row upsert when no pending row matched")
	}
}

func TestReconcileNotification_NonApprovedMetadataDoesNotActivate(t *testing.T) {
	repo := &reconcileRepoStub{}
	service := NewService(repo, nil, nil, &publisherStub{}, 999)

	notification := domain.PaymentNotification{
		Data: domain.PaymentNotificationData{
			ID:     "pay_sub_3",
			Status: "pending",
			Metadata: &domain.PaymentNotificationMetadata{
				UserID: uuid.NewString(),
				Plan:   "pro",
			},
		},
	}
	if err := service.ReconcileNotification(context.Background(), notification); err != nil {
		t.Fatalf("ReconcileNotification returned error: %v", err)
	}
	if repo.activateCalled || repo.insertCalled {
		t.Fatal("expected no activation for a non-approved notification")
	}
}

func TestReconcileNotification_UnknownPaymentWithoutMetadataIsANoOp(t *testing.T) {
	repo := &reconcileRepoStub{}
	events := &publisherStub{}
	service := NewService(repo, nil, nil, events, 999)

	notification := domain.PaymentNotification{
		Data: domain.PaymentNotificationData{ID: "pay_unknown", Status: "approved"},
	}
	if err := service.ReconcileNotification(context.Background(), notification); err != nil {
		t.Fatalf("expected unmatched notification to be acknowledged, got %v", err)
	}
	if repo.markPaidCalled {
		t.Fatal("expected no order write for an unknown payment id")
	}
	if repo.activateCalled || repo.insertCalled {
		t.Fatal("expected no subscription write without metadata")
	}
	if len(events.published) != 0 {
		t.Fatalf("expected no events, got %v", events.published)
	}
}

func TestReconcileNotification_MissingPaymentIDIsMalformed(t *testing.T) {
	service := NewService(&reconcileRepoStub{}, nil, nil, &publisherStub{}, 999)

	err := service.ReconcileNotification(context.Background(), domain.PaymentNotification{})
	if !errors.Is(err, ErrMalformedNotification) {
		t.Fatalf("expected ErrMalformedNotification, got %v", err)
	}
}

func TestReconcileNotification_InvalidMetadataUserIDIsMalformed(t *testing.T) {
	service := NewService(&reconcileRepoStub{}, nil, nil, &publisherStub{}, 999)

	notification := domain.PaymentNotification{
		Data: domain.PaymentNotificationData{
			ID:     "pay_sub_4",
			Status: "approved",
			Metadata: &domain.PaymentNotificationMetadata{
				UserID: "not-a-uuid",
				Plan:   "pro",
			},
		},
	}
	err := service.ReconcileNotification(context.Background(), notification)
	if !errors.Is(err, ErrMalformedNotification) {
		t.Fatalf("expected ErrMalformedNotification, got %v", err)
	}
}

func TestReconcileNotification_PublishFailureDoesNotFailReconciliation(t *testing.T) {
	paymentID := "pay_123"
	repo := &reconcileRepoStub{
		order: &domain.Order{
			ID:            uuid.New(),
			PaymentID:     &paymentID,
			PaymentStatus: domain.PaymentStatusPending,
		},
		markPaidResult: true,
	}
	events := &publisherStub{publishErr: errors.New("broker down")}
	service := NewService(repo, nil, nil, events, 999)

	if err := service.ReconcileNotification(context.Background(), approvedNotification(paymentID)); err != nil {
		t.Fatalf("expected publish failure to be swallowed, got %v", err)
	}
}
