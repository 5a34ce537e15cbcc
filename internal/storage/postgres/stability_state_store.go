package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

// StabilityStateStore implements storage.StabilityStateStore using
// PostgreSQL. The state is a single row with a fixed key.
type StabilityStateStore struct {
	pool *Pool
}

// NewStabilityStateStore creates a new StabilityStateStore.
func NewStabilityStateStore(pool *Pool) *StabilityStateStore {
	return &StabilityStateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.StabilityStateStore = (*StabilityStateStore)(nil)

// Get retrieves the current state. Returns ErrNotFound before the first Put.
func (s *StabilityStateStore) Get(ctx context.Context) (*domain.AntiDumpState, error) {
	var (
		state          domain.AntiDumpState
		open, current string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT daily_open_price::text, current_price::text, drop_bps,
		        active_tier, window_start, updated_at
		 FROM stability_state WHERE id = 1`,
	).Scan(&open, &current, &state.DropBps, &state.ActiveTier,
		&state.WindowStart, &state.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get stability state: %w", err)
	}
	if state.DailyOpenPrice, err = parseNumeric(open); err != nil {
		return nil, err
	}
	if state.CurrentPrice, err = parseNumeric(current); err != nil {
		return nil, err
	}
	return &state, nil
}

// Put replaces the state.
func (s *StabilityStateStore) Put(ctx context.Context, state *domain.AntiDumpState) error {
	if state == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO stability_state (
			id, daily_open_price, current_price, drop_bps,
			active_tier, window_start, updated_at
		) VALUES (1, $1::numeric, $2::numeric, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			daily_open_price = EXCLUDED.daily_open_price,
			current_price = EXCLUDED.current_price,
			drop_bps = EXCLUDED.drop_bps,
			active_tier = EXCLUDED.active_tier,
			window_start = EXCLUDED.window_start,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.pool.Exec(ctx, query,
		numeric(state.DailyOpenPrice),
		numeric(state.CurrentPrice),
		state.DropBps,
		state.ActiveTier,
		state.WindowStart,
		state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("put stability state: %w", err)
	}
	return nil
}
