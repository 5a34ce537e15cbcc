package memory

import (
	"context"
	"sort"
	"sync"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

// PriceHistoryStore is an in-memory implementation of storage.PriceHistoryStore.
type PriceHistoryStore struct {
	mu   sync.RWMutex
	data []*domain.PricePoint
}

// NewPriceHistoryStore creates a new in-memory price history store.
func NewPriceHistoryStore() *PriceHistoryStore {
	return &PriceHistoryStore{}
}

// InsertBulk adds multiple points.
func (s *PriceHistoryStore) InsertBulk(_ context.Context, points []*domain.PricePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		if p == nil {
			return storage.ErrInvalidInput
		}
		copy := *p
		s.data = append(s.data, &copy)
	}
	return nil
}

// GetByTimeRange retrieves points within [start, end] (inclusive), ordered
// by Timestamp ASC.
func (s *PriceHistoryStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PricePoint
	for _, p := range s.data {
		if p.Timestamp >= start && p.Timestamp <= end {
			copy := *p
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})
	return result, nil
}

var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// PayoutHistoryStore is an in-memory implementation of storage.PayoutHistoryStore.
type PayoutHistoryStore struct {
	mu   sync.RWMutex
	data []*domain.PayoutPoint
}

// NewPayoutHistoryStore creates a new in-memory payout history store.
func NewPayoutHistoryStore() *PayoutHistoryStore {
	return &PayoutHistoryStore{}
}

// InsertBulk adds multiple points.
func (s *PayoutHistoryStore) InsertBulk(_ context.Context, points []*domain.PayoutPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		if p == nil || p.Address == "" {
			return storage.ErrInvalidInput
		}
		copy := *p
		s.data = append(s.data, &copy)
	}
	return nil
}

// GetByAddress retrieves all points for an account, ordered by Timestamp ASC.
func (s *PayoutHistoryStore) GetByAddress(_ context.Context, address string) ([]*domain.PayoutPoint, error) {
	if address == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PayoutPoint
	for _, p := range s.data {
		if p.Address == address {
			copy := *p
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})
	return result, nil
}

var _ storage.PayoutHistoryStore = (*PayoutHistoryStore)(nil)
