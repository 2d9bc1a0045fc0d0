package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/set-night/vpnshop/internal/domain"
)

type AdminChecker interface {
	IsAdmin(telegramID int64) bool
}

type AdminStep int

const (
	StepNotAdmin AdminStep = iota
	StepPromptTarget
	StepInvalidTarget
	StepPromptDelta
	StepInvalidDelta
	StepApplied
	StepAborted
	StepCancelled
)

// AdminReply tells the transport what to say after a dialogue step.
type AdminReply struct {
	Step     AdminStep
	TargetID int64
	Delta    int64
	Balance  int64
}

// AdminBalanceService runs the two-step balance adjustment dialogue:
// target id first, then a signed delta.
type AdminBalanceService struct {
	ledger Ledger
	admins AdminChecker
	store  DialogStore
}

func NewAdminBalanceService(ledger Ledger, admins AdminChecker, store DialogStore) *AdminBalanceService {
	return &AdminBalanceService{ledger: ledger, admins: admins, store: store}
}

func (s *AdminBalanceService) Begin(ctx context.Context, adminID int64) (*AdminReply, error) {
	if !s.admins.IsAdmin(adminID) {
		return &AdminReply{Step: StepNotAdmin}, nil
	}
	if err := s.store.Set(ctx, adminID, domain.AdminDialog{Step: domain.DialogAwaitingTargetID}); err != nil {
		return nil, fmt.Errorf("start dialog: %w", err)
	}
	return &AdminReply{Step: StepPromptTarget}, nil
}

// Handle feeds one message into the admin's dialogue. handled is false when
// the admin has no dialogue in progress.
func (s *AdminBalanceService) Handle(ctx context.Context, adminID int64, text string) (reply *AdminReply, handled bool, err error) {
	dialog, err := s.store.Get(ctx, adminID)
	if err != nil {
		if errors.Is(err, domain.ErrDialogNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load dialog: %w", err)
	}

	if !s.admins.IsAdmin(adminID) {
		if err := s.store.Delete(ctx, adminID); err != nil {
			return nil, true, fmt.Errorf("discard dialog: %w", err)
		}
		slog.Warn("admin dialog aborted, admin rights revoked", "admin_id", adminID, "step", dialog.Step)
		return &AdminReply{Step: StepAborted}, true, nil
	}

	switch dialog.Step {
	case domain.DialogAwaitingTargetID:
		reply, err := s.acceptTarget(ctx, adminID, text)
		return reply, true, err
	case domain.DialogAwaitingDelta:
		reply, err := s.acceptDelta(ctx, adminID, dialog.TargetID, text)
		return reply, true, err
	default:
		if err := s.store.Delete(ctx, adminID); err != nil {
			return nil, false, fmt.Errorf("discard dialog: %w", err)
		}
		return nil, false, nil
	}
}

// Cancel drops any pending dialogue. It reports whether one existed.
func (s *AdminBalanceService) Cancel(ctx context.Context, adminID int64) (bool, error) {
	if _, err := s.store.Get(ctx, adminID); err != nil {
		if errors.Is(err, domain.ErrDialogNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load dialog: %w", err)
	}
	if err := s.store.Delete(ctx, adminID); err != nil {
		return false, fmt.Errorf("discard dialog: %w", err)
	}
	return true, nil
}

func (s *AdminBalanceService) acceptTarget(ctx context.Context, adminID int64, text string) (*AdminReply, error) {
	targetID, ok := parseTargetID(text)
	if !ok {
		return &AdminReply{Step: StepInvalidTarget}, nil
	}

	balance, err := s.ledger.GetBalance(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("get target balance: %w", err)
	}

	next := domain.AdminDialog{Step: domain.DialogAwaitingDelta, TargetID: targetID}
	if err := s.store.Set(ctx, adminID, next); err != nil {
		return nil, fmt.Errorf("save dialog: %w", err)
	}
	return &AdminReply{Step: StepPromptDelta, TargetID: targetID, Balance: balance}, nil
}

func (s *AdminBalanceService) acceptDelta(ctx context.Context, adminID, targetID int64, text string) (*AdminReply, error) {
	delta, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return &AdminReply{Step: StepInvalidDelta, TargetID: targetID}, nil
	}

	// The dialogue stays in place on failure so the admin can resend the amount.
	balance, err := s.ledger.AdjustBalance(ctx, targetID, delta, "")
	if err != nil {
		return nil, fmt.Errorf("adjust balance: %w", err)
	}
	if err := s.store.Delete(ctx, adminID); err != nil {
		slog.Error("failed to clear admin dialog", "error", err, "admin_id", adminID)
	}

	slog.Info("balance adjusted by admin",
		"admin_id", adminID,
		"user_id", targetID,
		"delta", delta,
		"balance", balance,
	)
	return &AdminReply{Step: StepApplied, TargetID: targetID, Delta: delta, Balance: balance}, nil
}

// parseTargetID accepts only ASCII decimal digits, no sign or spaces.
func parseTargetID(text string) (int64, bool) {
	if text == "" {
		return 0, false
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
