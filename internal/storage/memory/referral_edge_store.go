package memory

import (
	"context"
	"sort"
	"sync"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

// ReferralEdgeStore is an in-memory implementation of storage.ReferralEdgeStore.
type ReferralEdgeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ReferralEdge // keyed by child address
}

// NewReferralEdgeStore creates a new in-memory referral edge store.
func NewReferralEdgeStore() *ReferralEdgeStore {
	return &ReferralEdgeStore{
		data: make(map[string]*domain.ReferralEdge),
	}
}

// Insert adds a child → parent edge. Returns ErrDuplicateKey if the child
// already has an edge.
func (s *ReferralEdgeStore) Insert(_ context.Context, edge *domain.ReferralEdge) error {
	if edge == nil || edge.Child == "" || edge.Parent == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[edge.Child]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *edge
	s.data[edge.Child] = &copy
	return nil
}

// Parent returns the parent address of a child. Returns ErrNotFound when
// the child has no edge.
func (s *ReferralEdgeStore) Parent(_ context.Context, child string) (string, error) {
	if child == "" {
		return "", storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	edge, ok := s.data[child]
	if !ok {
		return "", storage.ErrNotFound
	}
	return edge.Parent, nil
}

// Children retrieves all direct children of a parent, ordered by CreatedAt ASC.
func (s *ReferralEdgeStore) Children(_ context.Context, parent string) ([]*domain.ReferralEdge, error) {
	if parent == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ReferralEdge
	for _, edge := range s.data {
		if edge.Parent == parent {
			copy := *edge
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].Child < result[j].Child
	})

	return result, nil
}

var _ storage.ReferralEdgeStore = (*ReferralEdgeStore)(nil)
