package memory

import (
	"context"
	"sort"
	"sync"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

// LedgerEventStore is an in-memory implementation of storage.LedgerEventStore.
type LedgerEventStore struct {
	mu     sync.RWMutex
	nextID int64
	data   []*domain.LedgerEvent
}

// NewLedgerEventStore creates a new in-memory ledger event store.
func NewLedgerEventStore() *LedgerEventStore {
	return &LedgerEventStore{nextID: 1}
}

// Append adds an event and assigns its ID.
func (s *LedgerEventStore) Append(_ context.Context, event *domain.LedgerEvent) error {
	if event == nil || event.Address == "" || event.Kind == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := event.Clone()
	copy.ID = s.nextID
	s.nextID++
	event.ID = copy.ID
	s.data = append(s.data, copy)
	return nil
}

// GetByAddress retrieves all events for an account, ordered by Timestamp ASC
// then ID ASC.
func (s *LedgerEventStore) GetByAddress(_ context.Context, address string) ([]*domain.LedgerEvent, error) {
	if address == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.LedgerEvent
	for _, e := range s.data {
		if e.Address == address {
			result = append(result, e.Clone())
		}
	}
	sortEvents(result)
	return result, nil
}

// GetByTimeRange retrieves events within [start, end] (inclusive).
func (s *LedgerEventStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.LedgerEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.LedgerEvent
	for _, e := range s.data {
		if e.Timestamp >= start && e.Timestamp <= end {
			result = append(result, e.Clone())
		}
	}
	sortEvents(result)
	return result, nil
}

func sortEvents(events []*domain.LedgerEvent) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].Timestamp != events[j].Timestamp {
			return events[i].Timestamp < events[j].Timestamp
		}
		return events[i].ID < events[j].ID
	})
}

var _ storage.LedgerEventStore = (*LedgerEventStore)(nil)
