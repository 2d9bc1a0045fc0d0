package service

import (
	"context"

	"github.com/set-night/vpnshop/internal/domain"
)

// Ledger is the durable balance and subscription history store.
type Ledger interface {
	GetOrCreate(ctx context.Context, userID int64, username string) (*domain.User, error)
	GetBalance(ctx context.Context, userID int64) (int64, error)
	AdjustBalance(ctx context.Context, userID int64, delta int64, username string) (int64, error)
	RecordSubscription(ctx context.Context, userID int64, planDays int, remnawaveID string) (*domain.Subscription, error)
	ListSubscriptions(ctx context.Context, userID int64) ([]domain.Subscription, error)
	CommitPurchase(ctx context.Context, userID int64, username string, cost int64, planDays int, remnawaveID string) (*domain.PurchaseReceipt, error)
}
