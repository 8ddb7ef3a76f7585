/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains all the necessary SQL queries to interact with the database tables
 * related to accounts, subscriptions, and orders.
 *
 * @dependencies
 * - context, errors, fmt, time: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brandforge/brand-service/internal/domain"
)

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrOrderNotFound        = errors.New("order not found")
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindAccountIDByAuthSubject resolves the internal UUID from the identity
// provider subject carried in a validated JWT.
func (r *PostgresRepository) FindAccountIDByAuthSubject(ctx context.Context, authSubject string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, "SELECT id FROM accounts WHERE auth_subject = $1", authSubject).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return uuid.Nil, ErrAccountNotFound
		}
		return uuid.Nil, err
	}
	return id, nil
}

// FindAccountByID retrieves an account from the database by its ID.
func (r *PostgresRepository) FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	query := `
		SELECT id, email, auth_subject, is_admin,
		       logo_generations_used, design_generations_used, generations_used,
		       created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, accountID).Scan(
		&account.ID,
		&account.Email,
		&account.AuthSubject,
		&account.IsAdmin,
		&account.LogoGenerationsUsed,
		&account.DesignGenerationsUsed,
		&account.GenerationsUsed,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// capabilityColumn maps a capability to its accounts counter column. The column
// name is interpolated into SQL, so it must come from this closed set.
func capabilityColumn(capability domain.Capability) (string, error) {
	switch capability {
	case domain.CapabilityLogo:
		return "logo_generations_used", nil
	case domain.CapabilityDesign:
		return "design_generations_used", nil
	default:
		return "", fmt.Errorf("unknown capability: %s", capability)
	}
}

// TryConsumeCapability claims one free-tier generation credit. The increment is
// conditional on the counter still being under quota, so two concurrent
// requests for the last credit cannot both succeed.
func (r *PostgresRepository) TryConsumeCapability(ctx context.Context, accountID uuid.UUID, capability domain.Capability, quota int) (bool, error) {
	column, err := capabilityColumn(capability)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`
		UPDATE accounts
		SET %[1]s = %[1]s + 1,
		    generations_used = generations_used + 1,
		    updated_at = NOW()
		WHERE id = $1 AND %[1]s < $2
	`, column)

	tag, err := r.db.Exec(ctx, query, accountID, quota)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// Zero rows means either the quota is exhausted or the account is gone;
	// distinguish the two so callers can surface NotFound.
	var exists bool
	if err := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)", accountID).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrAccountNotFound
	}
	return false, nil
}

// PromoteAccountAdminByEmail flags the account with the given email as admin.
func (r *PostgresRepository) PromoteAccountAdminByEmail(ctx context.Context, email string) (bool, error) {
	query := `
		UPDATE accounts
		SET is_admin = TRUE, updated_at = NOW()
		WHERE lower(btrim(email)) = lower(btrim($1)) AND is_admin = FALSE
	`
	tag, err := r.db.Exec(ctx, query, email)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// FindSubscriptionByAccountID returns the most recent subscription for an account.
func (r *PostgresRepository) FindSubscriptionByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, error) {
	var sub domain.Subscription
	query := `
		SELECT id, account_id, plan, status, start_date, end_date, created_at, updated_at
		FROM subscriptions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	err := r.db.QueryRow(ctx, query, accountID).Scan(
		&sub.ID,
		&sub.AccountID,
		&sub.Plan,
		&sub.Status,
		&sub.StartDate,
		&sub.EndDate,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// EnsurePendingSubscription returns the existing subscription for (account, plan)
// or inserts a pending one. Checkout calls this so the activation update always
// has a row to match.
func (r *PostgresRepository) EnsurePendingSubscription(ctx context.Context, accountID uuid.UUID, plan domain.Plan) (*domain.Subscription, error) {
	var sub domain.Subscription
	selectQuery := `
		SELECT id, account_id, plan, status, start_date, end_date, created_at, updated_at
		FROM subscriptions
		WHERE account_id = $1 AND plan = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	err := r.db.QueryRow(ctx, selectQuery, accountID, plan).Scan(
		&sub.ID,
		&sub.AccountID,
		&sub.Plan,
		&sub.Status,
		&sub.StartDate,
		&sub.EndDate,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err == nil {
		return &sub, nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}

	insertQuery := `
		INSERT INTO subscriptions (id, account_id, plan, status, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW(), NOW(), NOW())
		RETURNING id, account_id, plan, status, start_date, end_date, created_at, updated_at
	`
	err = r.db.QueryRow(ctx, insertQuery, uuid.New(), accountID, plan, domain.SubscriptionStatusPending).Scan(
		&sub.ID,
		&sub.AccountID,
		&sub.Plan,
		&sub.Status,
		&sub.StartDate,
		&sub.EndDate,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ActivateSubscriptions activates every subscription matching (account, plan).
func (r *PostgresRepository) ActivateSubscriptions(ctx context.Context, accountID uuid.UUID, plan domain.Plan, startDate, endDate time.Time) (int64, error) {
	query := `
		UPDATE subscriptions
		SET status = $3, start_date = $4, end_date = $5, updated_at = NOW()
		WHERE account_id = $1 AND plan = $2
	`
	tag, err := r.db.Exec(ctx, query, accountID, plan, domain.SubscriptionStatusActive, startDate, endDate)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// InsertActiveSubscription inserts an already-active subscription row. Used as
// the upsert fallback when an approved notification arrives before checkout
// pre-created the row.
func (r *PostgresRepository) InsertActiveSubscription(ctx context.Context, accountID uuid.UUID, plan domain.Plan, startDate, endDate time.Time) error {
	query := `
		INSERT INTO subscriptions (id, account_id, plan, status, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, uuid.New(), accountID, plan, domain.SubscriptionStatusActive, startDate, endDate)
	return err
}

// ExpireLapsedSubscriptions marks active subscriptions whose period has ended.
func (r *PostgresRepository) ExpireLapsedSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE subscriptions
		SET status = $2, updated_at = NOW()
		WHERE status = $1 AND end_date < $3
	`
	tag, err := r.db.Exec(ctx, query, domain.SubscriptionStatusActive, domain.SubscriptionStatusExpired, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CreateOrder inserts a new order row.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (id, account_id, product_name, quantity, amount_cents, payment_id, payment_status, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		order.ID,
		order.AccountID,
		order.ProductName,
		order.Quantity,
		order.AmountCents,
		order.PaymentID,
		order.PaymentStatus,
		order.Status,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
}

const orderColumns = `id, account_id, product_name, quantity, amount_cents, payment_id, payment_status, status, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID,
		&order.AccountID,
		&order.ProductName,
		&order.Quantity,
		&order.AmountCents,
		&order.PaymentID,
		&order.PaymentStatus,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindOrdersByAccountID lists an account's orders, newest first.
func (r *PostgresRepository) FindOrdersByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE account_id = $1 ORDER BY created_at DESC`, orderColumns)
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// FindOrderByID retrieves an order by its ID.
func (r *PostgresRepository) FindOrderByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)
	return scanOrder(r.db.QueryRow(ctx, query, orderID))
}

// FindOrderByPaymentID retrieves the order correlated with a gateway payment id.
func (r *PostgresRepository) FindOrderByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE payment_id = $1`, orderColumns)
	return scanOrder(r.db.QueryRow(ctx, query, paymentID))
}

// AttachOrderPaymentID stores the gateway payment id created for an order.
func (r *PostgresRepository) AttachOrderPaymentID(ctx context.Context, orderID uuid.UUID, paymentID string) error {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET payment_id = $2, updated_at = NOW() WHERE id = $1`, orderID, paymentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// MarkOrderPaid flips payment_status to paid and moves fulfillment into
// production. The payment_status guard makes replays of an approved
// notification no-ops and prevents any downgrade of a paid order.
func (r *PostgresRepository) MarkOrderPaid(ctx context.Context, paymentID string) (bool, error) {
	query := `
		UPDATE orders
		SET payment_status = $2, status = $3, updated_at = NOW()
		WHERE payment_id = $1 AND payment_status <> $2
	`
	tag, err := r.db.Exec(ctx, query, paymentID, domain.PaymentStatusPaid, domain.OrderStatusInProduction)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateOrderStatus sets the fulfillment status conditionally on the status
// the caller validated against. Transition validity is the service layer's
// responsibility; the guard makes the read-validate-write safe under
// concurrent admin requests.
func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, fromStatus, toStatus string) (bool, error) {
	query := `
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	tag, err := r.db.Exec(ctx, query, orderID, fromStatus, toStatus)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
