package memory

import (
	"context"
	"sync"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

// RankSnapshotStore is an in-memory implementation of storage.RankSnapshotStore.
type RankSnapshotStore struct {
	mu     sync.RWMutex
	nextID int64
	data   map[string][]*domain.RankSnapshot // keyed by kind, ordered by insertion
}

// NewRankSnapshotStore creates a new in-memory rank snapshot store.
func NewRankSnapshotStore() *RankSnapshotStore {
	return &RankSnapshotStore{
		nextID: 1,
		data:   make(map[string][]*domain.RankSnapshot),
	}
}

// Insert adds a snapshot and assigns its ID.
func (s *RankSnapshotStore) Insert(_ context.Context, snapshot *domain.RankSnapshot) error {
	if snapshot == nil || snapshot.Kind == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := snapshot.Clone()
	copy.ID = s.nextID
	s.nextID++
	snapshot.ID = copy.ID
	s.data[snapshot.Kind] = append(s.data[snapshot.Kind], copy)
	return nil
}

// Latest retrieves the most recent snapshot of a kind. Returns ErrNotFound
// when none exists.
func (s *RankSnapshotStore) Latest(_ context.Context, kind string) (*domain.RankSnapshot, error) {
	if kind == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps := s.data[kind]
	if len(snaps) == 0 {
		return nil, storage.ErrNotFound
	}

	latest := snaps[0]
	for _, snap := range snaps[1:] {
		if snap.TakenAt > latest.TakenAt || (snap.TakenAt == latest.TakenAt && snap.ID > latest.ID) {
			latest = snap
		}
	}
	return latest.Clone(), nil
}

var _ storage.RankSnapshotStore = (*RankSnapshotStore)(nil)
