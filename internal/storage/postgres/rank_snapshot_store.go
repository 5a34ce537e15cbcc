package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

// RankSnapshotStore implements storage.RankSnapshotStore using PostgreSQL.
// A snapshot header row owns its entry rows.
type RankSnapshotStore struct {
	pool *Pool
}

// NewRankSnapshotStore creates a new RankSnapshotStore.
func NewRankSnapshotStore(pool *Pool) *RankSnapshotStore {
	return &RankSnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RankSnapshotStore = (*RankSnapshotStore)(nil)

// Insert adds a snapshot and assigns its ID. Header and entries are written
// in one transaction.
func (s *RankSnapshotStore) Insert(ctx context.Context, snapshot *domain.RankSnapshot) error {
	if snapshot == nil || snapshot.Kind == "" {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO rank_snapshots (kind, taken_at) VALUES ($1, $2) RETURNING id`,
		snapshot.Kind, snapshot.TakenAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert snapshot header: %w", err)
	}

	for _, e := range snapshot.Entries {
		_, err := tx.Exec(ctx,
			`INSERT INTO rank_snapshot_entries (snapshot_id, position, address, score)
			 VALUES ($1, $2, $3, $4::numeric)`,
			id, e.Position, e.Address, numeric(e.Score),
		)
		if err != nil {
			return fmt.Errorf("insert snapshot entry: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	snapshot.ID = id
	return nil
}

// Latest retrieves the most recent snapshot of a kind. Returns ErrNotFound
// when none exists.
func (s *RankSnapshotStore) Latest(ctx context.Context, kind string) (*domain.RankSnapshot, error) {
	if kind == "" {
		return nil, storage.ErrInvalidInput
	}

	snapshot := &domain.RankSnapshot{Kind: kind}
	err := s.pool.QueryRow(ctx,
		`SELECT id, taken_at FROM rank_snapshots
		 WHERE kind = $1 ORDER BY taken_at DESC, id DESC LIMIT 1`,
		kind,
	).Scan(&snapshot.ID, &snapshot.TakenAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT position, address, score::text FROM rank_snapshot_entries
		 WHERE snapshot_id = $1 ORDER BY position ASC`,
		snapshot.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("get snapshot entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entry domain.RankEntry
			score string
		)
		if err := rows.Scan(&entry.Position, &entry.Address, &score); err != nil {
			return nil, fmt.Errorf("scan snapshot entry: %w", err)
		}
		if entry.Score, err = parseNumeric(score); err != nil {
			return nil, err
		}
		snapshot.Entries = append(snapshot.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot entries: %w", err)
	}
	return snapshot, nil
}
