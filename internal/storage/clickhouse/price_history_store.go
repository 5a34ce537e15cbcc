package clickhouse

import (
	"context"
	"fmt"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

// PriceHistoryStore implements storage.PriceHistoryStore using ClickHouse.
type PriceHistoryStore struct {
	conn *Conn
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(conn *Conn) *PriceHistoryStore {
	return &PriceHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// InsertBulk adds multiple points.
func (s *PriceHistoryStore) InsertBulk(ctx context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_history (timestamp, price, drop_bps, active_tier)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(uint64(p.Timestamp), p.Price, p.DropBps, uint8(p.ActiveTier))
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByTimeRange retrieves points within [start, end] (inclusive), ordered
// by timestamp ASC.
func (s *PriceHistoryStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.PricePoint, error) {
	query := `
		SELECT timestamp, price, drop_bps, active_tier
		FROM price_history
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`
	rows, err := s.conn.Query(ctx, query, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}
	defer rows.Close()

	var result []*domain.PricePoint
	for rows.Next() {
		var (
			p         domain.PricePoint
			timestamp uint64
			tier      uint8
		)
		if err := rows.Scan(&timestamp, &p.Price, &p.DropBps, &tier); err != nil {
			return nil, fmt.Errorf("scan price point: %w", err)
		}
		p.Timestamp = int64(timestamp)
		p.ActiveTier = int(tier)
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price history: %w", err)
	}
	return result, nil
}
