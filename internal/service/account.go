package service

import (
	"context"
	"fmt"

	"github.com/set-night/vpnshop/internal/config"
	"github.com/set-night/vpnshop/internal/domain"
)

type StartResult struct {
	User       *domain.User
	Membership domain.Membership
}

type Cabinet struct {
	User              *domain.User
	SubscriptionCount int
}

// AccountService serves the read paths: welcome, cabinet and history.
type AccountService struct {
	ledger Ledger
	gate   MembershipChecker
}

func NewAccountService(ledger Ledger, gate MembershipChecker) *AccountService {
	return &AccountService{ledger: ledger, gate: gate}
}

// Start registers the account on first contact and checks the channel gate.
func (s *AccountService) Start(ctx context.Context, userID int64, username string) (*StartResult, error) {
	user, err := s.ledger.GetOrCreate(ctx, userID, username)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	return &StartResult{User: user, Membership: s.gate.Check(ctx, userID)}, nil
}

func (s *AccountService) Cabinet(ctx context.Context, userID int64, username string) (*Cabinet, error) {
	user, err := s.ledger.GetOrCreate(ctx, userID, username)
	if err != nil {
		return nil, fmt.Errorf("cabinet: %w", err)
	}
	subs, err := s.ledger.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cabinet: %w", err)
	}
	return &Cabinet{User: user, SubscriptionCount: len(subs)}, nil
}

// Subscriptions returns the most recent subscriptions, newest first.
func (s *AccountService) Subscriptions(ctx context.Context, userID int64) ([]domain.Subscription, error) {
	subs, err := s.ledger.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	if len(subs) > config.SubscriptionsHistoryLimit {
		subs = subs[:config.SubscriptionsHistoryLimit]
	}
	return subs, nil
}

func (s *AccountService) CheckChannel(ctx context.Context, userID int64) domain.Membership {
	return s.gate.Check(ctx, userID)
}
