package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/vpnshop/internal/domain"
)

// LedgerStore keeps balances and subscription history in PostgreSQL.
// Balance mutations rely on row locks, so concurrent callers for one
// account are serialized while different accounts never contend.
type LedgerStore struct {
	db *pgxpool.Pool
}

func NewLedgerStore(db *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{db: db}
}

// GetOrCreate returns the account row, inserting a zero balance row on first
// contact and refreshing the stored handle otherwise.
func (s *LedgerStore) GetOrCreate(ctx context.Context, userID int64, username string) (*domain.User, error) {
	var (
		u      domain.User
		handle *string
	)
	err := s.db.QueryRow(ctx, `
INSERT INTO users (user_id, username, balance)
VALUES ($1, $2, 0)
ON CONFLICT (user_id) DO UPDATE SET username = EXCLUDED.username
RETURNING user_id, username, balance, created_at
`, userID, nullString(username)).Scan(&u.ID, &handle, &u.Balance, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create user %d: %w", userID, err)
	}
	u.Username = derefString(handle)
	return &u, nil
}

// GetUser returns domain.ErrUserNotFound for unknown accounts.
func (s *LedgerStore) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	var (
		u      domain.User
		handle *string
	)
	err := s.db.QueryRow(ctx, `
SELECT user_id, username, balance, created_at
FROM users
WHERE user_id = $1
`, userID).Scan(&u.ID, &handle, &u.Balance, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	u.Username = derefString(handle)
	return &u, nil
}

// GetBalance returns 0 for unknown accounts without creating a row.
func (s *LedgerStore) GetBalance(ctx context.Context, userID int64) (int64, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return u.Balance, nil
}

// AdjustBalance applies balance += delta, creating the row when needed.
// The handle is only written when the row is created.
func (s *LedgerStore) AdjustBalance(ctx context.Context, userID int64, delta int64, username string) (int64, error) {
	var balance int64
	err := s.db.QueryRow(ctx, `
INSERT INTO users (user_id, username, balance)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE SET balance = users.balance + EXCLUDED.balance
RETURNING balance
`, userID, nullString(username), delta).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("adjust balance of user %d: %w", userID, err)
	}
	return balance, nil
}

func (s *LedgerStore) RecordSubscription(ctx context.Context, userID int64, planDays int, remnawaveID string) (*domain.Subscription, error) {
	return insertSubscription(ctx, s.db, userID, planDays, remnawaveID)
}

func (s *LedgerStore) ListSubscriptions(ctx context.Context, userID int64) ([]domain.Subscription, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, user_id, plan_days, remnawave_id, status, created_at
FROM subscriptions
WHERE user_id = $1
ORDER BY id DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions of user %d: %w", userID, err)
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return subs, nil
}

// CommitPurchase debits cost and appends the subscription in one transaction.
// The debit is applied even if the balance went below cost after the caller's
// affordability check: by now the panel has already provisioned the plan.
func (s *LedgerStore) CommitPurchase(ctx context.Context, userID int64, username string, cost int64, planDays int, remnawaveID string) (*domain.PurchaseReceipt, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO users (user_id, username, balance)
VALUES ($1, $2, 0)
ON CONFLICT (user_id) DO NOTHING
`, userID, nullString(username)); err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	// Lock user row
	var balance int64
	if err := tx.QueryRow(ctx, `
SELECT balance FROM users WHERE user_id = $1 FOR UPDATE
`, userID).Scan(&balance); err != nil {
		return nil, fmt.Errorf("lock user: %w", err)
	}

	if err := tx.QueryRow(ctx, `
UPDATE users SET balance = balance - $2 WHERE user_id = $1 RETURNING balance
`, userID, cost).Scan(&balance); err != nil {
		return nil, fmt.Errorf("debit balance: %w", err)
	}

	sub, err := insertSubscription(ctx, tx, userID, planDays, remnawaveID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &domain.PurchaseReceipt{
		Subscription: *sub,
		Charged:      cost,
		NewBalance:   balance,
	}, nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertSubscription(ctx context.Context, q queryRower, userID int64, planDays int, remnawaveID string) (*domain.Subscription, error) {
	row := q.QueryRow(ctx, `
INSERT INTO subscriptions (user_id, plan_days, remnawave_id, status)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, plan_days, remnawave_id, status, created_at
`, userID, planDays, nullString(remnawaveID), string(domain.SubscriptionStatusActive))
	sub, err := scanSubscription(row)
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return sub, nil
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var (
		sub         domain.Subscription
		remnawaveID *string
		status      string
	)
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.PlanDays, &remnawaveID, &status, &sub.CreatedAt); err != nil {
		return nil, err
	}
	sub.RemnawaveID = derefString(remnawaveID)
	sub.Status = domain.SubscriptionStatus(status)
	return &sub, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
