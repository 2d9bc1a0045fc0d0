package domain

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusActive SubscriptionStatus = "active"
)

// Subscription is an append-only record of a provisioned VPN plan.
type Subscription struct {
	ID          int64
	UserID      int64
	PlanDays    int
	RemnawaveID string // empty when the panel returned no identifier
	Status      SubscriptionStatus
	CreatedAt   time.Time
}

// PurchaseReceipt is the result of a committed purchase.
type PurchaseReceipt struct {
	Subscription Subscription
	Charged      int64
	NewBalance   int64
}

// Plan is the single product on sale.
type Plan struct {
	Days int
	Cost int64 // minor units
}
