package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

// ReferralEdgeStore implements storage.ReferralEdgeStore using PostgreSQL.
type ReferralEdgeStore struct {
	pool *Pool
}

// NewReferralEdgeStore creates a new ReferralEdgeStore.
func NewReferralEdgeStore(pool *Pool) *ReferralEdgeStore {
	return &ReferralEdgeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ReferralEdgeStore = (*ReferralEdgeStore)(nil)

// Insert adds a child → parent edge. Returns ErrDuplicateKey if the child
// already has an edge.
func (s *ReferralEdgeStore) Insert(ctx context.Context, edge *domain.ReferralEdge) error {
	if edge == nil || edge.Child == "" || edge.Parent == "" {
		return storage.ErrInvalidInput
	}

	query := `INSERT INTO referral_edges (child, parent, created_at) VALUES ($1, $2, $3)`
	_, err := s.pool.Exec(ctx, query, edge.Child, edge.Parent, edge.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert referral edge: %w", err)
	}
	return nil
}

// Parent returns the parent address of a child. Returns ErrNotFound when
// the child has no edge.
func (s *ReferralEdgeStore) Parent(ctx context.Context, child string) (string, error) {
	if child == "" {
		return "", storage.ErrInvalidInput
	}

	var parent string
	query := `SELECT parent FROM referral_edges WHERE child = $1`
	err := s.pool.QueryRow(ctx, query, child).Scan(&parent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("get parent: %w", err)
	}
	return parent, nil
}

// Children retrieves all direct children of a parent, ordered by CreatedAt ASC.
func (s *ReferralEdgeStore) Children(ctx context.Context, parent string) ([]*domain.ReferralEdge, error) {
	if parent == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT child, parent, created_at
		FROM referral_edges
		WHERE parent = $1
		ORDER BY created_at ASC, child ASC
	`
	rows, err := s.pool.Query(ctx, query, parent)
	if err != nil {
		return nil, fmt.Errorf("get children: %w", err)
	}
	defer rows.Close()

	var result []*domain.ReferralEdge
	for rows.Next() {
		var edge domain.ReferralEdge
		if err := rows.Scan(&edge.Child, &edge.Parent, &edge.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan referral edge: %w", err)
		}
		result = append(result, &edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate referral edges: %w", err)
	}
	return result, nil
}
