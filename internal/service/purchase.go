package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/set-night/vpnshop/internal/domain"
)

type MembershipChecker interface {
	Check(ctx context.Context, userID int64) domain.Membership
}

type Provisioner interface {
	CreateSubscription(ctx context.Context, userID int64, days int) (string, error)
}

type PurchaseOutcome int

const (
	OutcomeCompleted PurchaseOutcome = iota
	OutcomeNotMember
	OutcomeMembershipUndetermined
	OutcomeInsufficientFunds
	OutcomeProvisionFailed
	OutcomeInProgress
)

func (o PurchaseOutcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeNotMember:
		return "not_member"
	case OutcomeMembershipUndetermined:
		return "membership_undetermined"
	case OutcomeInsufficientFunds:
		return "insufficient_funds"
	case OutcomeProvisionFailed:
		return "provision_failed"
	case OutcomeInProgress:
		return "in_progress"
	default:
		return "unknown"
	}
}

// PurchaseResult describes how a purchase attempt ended.
// Balance is the balance seen by the affordability check, or the new balance once completed.
// Err is set for every outcome except Completed and NotMember.
type PurchaseResult struct {
	Outcome    PurchaseOutcome
	Plan       domain.Plan
	Balance    int64
	Membership domain.Membership
	Receipt    *domain.PurchaseReceipt
	Err        error
}

type PurchaseService struct {
	ledger      Ledger
	gate        MembershipChecker
	provisioner Provisioner
	plan        domain.Plan

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

func NewPurchaseService(ledger Ledger, gate MembershipChecker, provisioner Provisioner, plan domain.Plan) *PurchaseService {
	return &PurchaseService{
		ledger:      ledger,
		gate:        gate,
		provisioner: provisioner,
		plan:        plan,
		inFlight:    make(map[int64]struct{}),
	}
}

func (s *PurchaseService) Plan() domain.Plan {
	return s.plan
}

// Purchase buys the configured plan for userID. External failures are
// reported through the result; the returned error means storage failed.
func (s *PurchaseService) Purchase(ctx context.Context, userID int64, username string) (*PurchaseResult, error) {
	result := &PurchaseResult{Plan: s.plan}

	if !s.tryAcquire(userID) {
		result.Outcome = OutcomeInProgress
		result.Err = domain.ErrPurchaseInProgress
		return result, nil
	}
	defer s.release(userID)

	result.Membership = s.gate.Check(ctx, userID)
	switch result.Membership.Status {
	case domain.MembershipNotMember:
		result.Outcome = OutcomeNotMember
		return result, nil
	case domain.MembershipUndetermined:
		result.Outcome = OutcomeMembershipUndetermined
		result.Err = result.Membership.Err
		return result, nil
	}

	user, err := s.ledger.GetOrCreate(ctx, userID, username)
	if err != nil {
		return nil, fmt.Errorf("ensure account: %w", err)
	}
	result.Balance = user.Balance

	if user.Balance < s.plan.Cost {
		result.Outcome = OutcomeInsufficientFunds
		result.Err = domain.ErrInsufficientBalance
		return result, nil
	}

	remnawaveID, err := s.provisioner.CreateSubscription(ctx, userID, s.plan.Days)
	if err != nil {
		slog.Warn("provisioning failed", "error", err, "user_id", userID)
		result.Outcome = OutcomeProvisionFailed
		result.Err = err
		return result, nil
	}

	receipt, err := s.ledger.CommitPurchase(ctx, userID, username, s.plan.Cost, s.plan.Days, remnawaveID)
	if err != nil {
		slog.Error("purchase commit failed after provisioning",
			"error", err,
			"user_id", userID,
			"remnawave_id", remnawaveID,
		)
		return nil, fmt.Errorf("commit purchase: %w", err)
	}
	if receipt.NewBalance < 0 {
		slog.Warn("balance went negative after purchase",
			"user_id", userID,
			"balance", receipt.NewBalance,
			"subscription_id", receipt.Subscription.ID,
		)
	}

	slog.Info("purchase completed",
		"user_id", userID,
		"subscription_id", receipt.Subscription.ID,
		"remnawave_id", remnawaveID,
		"charged", receipt.Charged,
		"balance", receipt.NewBalance,
	)

	result.Outcome = OutcomeCompleted
	result.Receipt = receipt
	result.Balance = receipt.NewBalance
	return result, nil
}

func (s *PurchaseService) tryAcquire(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[userID]; busy {
		return false
	}
	s.inFlight[userID] = struct{}{}
	return true
}

func (s *PurchaseService) release(userID int64) {
	s.mu.Lock()
	delete(s.inFlight, userID)
	s.mu.Unlock()
}
