package postgres

import (
	"context"
	"fmt"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

// AuditLogStore implements storage.AuditLogStore using PostgreSQL.
type AuditLogStore struct {
	pool *Pool
}

// NewAuditLogStore creates a new AuditLogStore.
func NewAuditLogStore(pool *Pool) *AuditLogStore {
	return &AuditLogStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AuditLogStore = (*AuditLogStore)(nil)

// Append adds an audit record and assigns its ID.
func (s *AuditLogStore) Append(ctx context.Context, record *domain.AuditRecord) error {
	if record == nil || record.Operator == "" || record.Action == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO audit_log (operator, action, detail, version, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.pool.QueryRow(ctx, query,
		record.Operator, record.Action, record.Detail, record.Version, record.Timestamp,
	).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

// List retrieves all records, ordered by Timestamp ASC then ID ASC.
func (s *AuditLogStore) List(ctx context.Context) ([]*domain.AuditRecord, error) {
	query := `
		SELECT id, operator, action, detail, version, timestamp
		FROM audit_log
		ORDER BY timestamp ASC, id ASC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var result []*domain.AuditRecord
	for rows.Next() {
		var record domain.AuditRecord
		err := rows.Scan(&record.ID, &record.Operator, &record.Action,
			&record.Detail, &record.Version, &record.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		result = append(result, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return result, nil
}
