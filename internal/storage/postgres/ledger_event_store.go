package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

// LedgerEventStore implements storage.LedgerEventStore using PostgreSQL.
type LedgerEventStore struct {
	pool *Pool
}

// NewLedgerEventStore creates a new LedgerEventStore.
func NewLedgerEventStore(pool *Pool) *LedgerEventStore {
	return &LedgerEventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LedgerEventStore = (*LedgerEventStore)(nil)

// Append adds an event and assigns its ID.
func (s *LedgerEventStore) Append(ctx context.Context, event *domain.LedgerEvent) error {
	if event == nil || event.Address == "" || event.Kind == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO ledger_events (address, kind, amount, counter, timestamp)
		VALUES ($1, $2, $3::numeric, $4, $5)
		RETURNING id
	`
	err := s.pool.QueryRow(ctx, query,
		event.Address, event.Kind, numeric(event.Amount), event.Counter, event.Timestamp,
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("append ledger event: %w", err)
	}
	return nil
}

// GetByAddress retrieves all events for an account, ordered by Timestamp ASC
// then ID ASC.
func (s *LedgerEventStore) GetByAddress(ctx context.Context, address string) ([]*domain.LedgerEvent, error) {
	if address == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT id, address, kind, amount::text, counter, timestamp
		FROM ledger_events
		WHERE address = $1
		ORDER BY timestamp ASC, id ASC
	`
	rows, err := s.pool.Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("get events by address: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// GetByTimeRange retrieves events within [start, end] (inclusive).
func (s *LedgerEventStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.LedgerEvent, error) {
	query := `
		SELECT id, address, kind, amount::text, counter, timestamp
		FROM ledger_events
		WHERE timestamp >= $1 AND timestamp <= $2
		ORDER BY timestamp ASC, id ASC
	`
	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get events by time range: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]*domain.LedgerEvent, error) {
	var result []*domain.LedgerEvent
	for rows.Next() {
		var (
			event  domain.LedgerEvent
			amount string
		)
		err := rows.Scan(&event.ID, &event.Address, &event.Kind, &amount,
			&event.Counter, &event.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("scan ledger event: %w", err)
		}
		if event.Amount, err = parseNumeric(amount); err != nil {
			return nil, err
		}
		result = append(result, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger events: %w", err)
	}
	return result, nil
}
