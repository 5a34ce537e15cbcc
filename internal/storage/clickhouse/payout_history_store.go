package clickhouse

import (
	"context"
	"fmt"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

// PayoutHistoryStore implements storage.PayoutHistoryStore using ClickHouse.
type PayoutHistoryStore struct {
	conn *Conn
}

// NewPayoutHistoryStore creates a new PayoutHistoryStore.
func NewPayoutHistoryStore(conn *Conn) *PayoutHistoryStore {
	return &PayoutHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PayoutHistoryStore = (*PayoutHistoryStore)(nil)

// InsertBulk adds multiple points.
func (s *PayoutHistoryStore) InsertBulk(ctx context.Context, points []*domain.PayoutPoint) error {
	if len(points) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO payout_history (address, kind, amount, timestamp)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(p.Address, p.Kind, p.Amount, uint64(p.Timestamp))
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByAddress retrieves all points for an account, ordered by timestamp ASC.
func (s *PayoutHistoryStore) GetByAddress(ctx context.Context, address string) ([]*domain.PayoutPoint, error) {
	if address == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT address, kind, amount, timestamp
		FROM payout_history
		WHERE address = ?
		ORDER BY timestamp ASC
	`
	rows, err := s.conn.Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("query payout history: %w", err)
	}
	defer rows.Close()

	var result []*domain.PayoutPoint
	for rows.Next() {
		var (
			p         domain.PayoutPoint
			timestamp uint64
		)
		if err := rows.Scan(&p.Address, &p.Kind, &p.Amount, &timestamp); err != nil {
			return nil, fmt.Errorf("scan payout point: %w", err)
		}
		p.Timestamp = int64(timestamp)
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payout history: %w", err)
	}
	return result, nil
}
