package memory

import (
	"context"
	"sort"
	"sync"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

// AuditLogStore is an in-memory implementation of storage.AuditLogStore.
type AuditLogStore struct {
	mu     sync.RWMutex
	nextID int64
	data   []*domain.AuditRecord
}

// NewAuditLogStore creates a new in-memory audit log store.
func NewAuditLogStore() *AuditLogStore {
	return &AuditLogStore{nextID: 1}
}

// Append adds an audit record and assigns its ID.
func (s *AuditLogStore) Append(_ context.Context, record *domain.AuditRecord) error {
	if record == nil || record.Operator == "" || record.Action == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *record
	copy.ID = s.nextID
	s.nextID++
	record.ID = copy.ID
	s.data = append(s.data, &copy)
	return nil
}

// List retrieves all records, ordered by Timestamp ASC then ID ASC.
func (s *AuditLogStore) List(_ context.Context) ([]*domain.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.AuditRecord, 0, len(s.data))
	for _, r := range s.data {
		copy := *r
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

var _ storage.AuditLogStore = (*AuditLogStore)(nil)
