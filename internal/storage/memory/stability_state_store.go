package memory

import (
	"context"
	"sync"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

// StabilityStateStore is an in-memory implementation of storage.StabilityStateStore.
type StabilityStateStore struct {
	mu    sync.RWMutex
	state *domain.AntiDumpState
}

// NewStabilityStateStore creates a new in-memory stability state store.
func NewStabilityStateStore() *StabilityStateStore {
	return &StabilityStateStore{}
}

// Get retrieves the current state. Returns ErrNotFound before the first Put.
func (s *StabilityStateStore) Get(_ context.Context) (*domain.AntiDumpState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return nil, storage.ErrNotFound
	}
	return s.state.Clone(), nil
}

// Put replaces the state.
func (s *StabilityStateStore) Put(_ context.Context, state *domain.AntiDumpState) error {
	if state == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state.Clone()
	return nil
}

var _ storage.StabilityStateStore = (*StabilityStateStore)(nil)
