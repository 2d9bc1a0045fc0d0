package service

import (
	"context"
	"sync"

	"github.com/set-night/vpnshop/internal/domain"
)

// DialogStore keeps one pending admin dialogue per admin id.
type DialogStore interface {
	Get(ctx context.Context, adminID int64) (*domain.AdminDialog, error)
	Set(ctx context.Context, adminID int64, d domain.AdminDialog) error
	Delete(ctx context.Context, adminID int64) error
}

// MemoryDialogStore is the default DialogStore. State is lost on restart.
type MemoryDialogStore struct {
	mu      sync.Mutex
	dialogs map[int64]domain.AdminDialog
}

func NewMemoryDialogStore() *MemoryDialogStore {
	return &MemoryDialogStore{dialogs: make(map[int64]domain.AdminDialog)}
}

func (s *MemoryDialogStore) Get(_ context.Context, adminID int64) (*domain.AdminDialog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.dialogs[adminID]
	if !ok {
		return nil, domain.ErrDialogNotFound
	}
	return &d, nil
}

func (s *MemoryDialogStore) Set(_ context.Context, adminID int64, d domain.AdminDialog) error {
	s.mu.Lock()
	s.dialogs[adminID] = d
	s.mu.Unlock()
	return nil
}

func (s *MemoryDialogStore) Delete(_ context.Context, adminID int64) error {
	s.mu.Lock()
	delete(s.dialogs, adminID)
	s.mu.Unlock()
	return nil
}
