package service

import (
	"context"

	"github.com/set-night/vpnshop/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockLedger is a mock implementation of Ledger.
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) GetOrCreate(ctx context.Context, userID int64, username string) (*domain.User, error) {
	args := m.Called(ctx, userID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockLedger) GetBalance(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedger) AdjustBalance(ctx context.Context, userID int64, delta int64, username string) (int64, error) {
	args := m.Called(ctx, userID, delta, username)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedger) RecordSubscription(ctx context.Context, userID int64, planDays int, remnawaveID string) (*domain.Subscription, error) {
	args := m.Called(ctx, userID, planDays, remnawaveID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *MockLedger) ListSubscriptions(ctx context.Context, userID int64) ([]domain.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Subscription), args.Error(1)
}

func (m *MockLedger) CommitPurchase(ctx context.Context, userID int64, username string, cost int64, planDays int, remnawaveID string) (*domain.PurchaseReceipt, error) {
	args := m.Called(ctx, userID, username, cost, planDays, remnawaveID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchaseReceipt), args.Error(1)
}

// MockProvisioner is a mock implementation of Provisioner.
type MockProvisioner struct {
	mock.Mock
}

func (m *MockProvisioner) CreateSubscription(ctx context.Context, userID int64, days int) (string, error) {
	args := m.Called(ctx, userID, days)
	return args.String(0), args.Error(1)
}

// MockMembership is a mock implementation of MembershipChecker.
type MockMembership struct {
	mock.Mock
}

func (m *MockMembership) Check(ctx context.Context, userID int64) domain.Membership {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Membership)
}

// staticAdmins is an AdminChecker backed by a mutable set.
type staticAdmins struct {
	ids map[int64]bool
}

func newStaticAdmins(ids ...int64) *staticAdmins {
	s := &staticAdmins{ids: make(map[int64]bool)}
	for _, id := range ids {
		s.ids[id] = true
	}
	return s
}

func (s *staticAdmins) IsAdmin(id int64) bool {
	return s.ids[id]
}

var asMember = domain.Membership{Status: domain.MembershipMember}
