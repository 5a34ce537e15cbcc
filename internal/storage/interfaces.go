package storage

import (
	"context"

	"hcf-engine/internal/domain"
)

// AccountStore provides access to accounts storage.
type AccountStore interface {
	// Get retrieves an account by address. Returns ErrNotFound if not exists.
	Get(ctx context.Context, address string) (*domain.Account, error)

	// Put inserts or replaces an account record.
	Put(ctx context.Context, account *domain.Account) error

	// List retrieves all accounts, ordered by address ASC.
	List(ctx context.Context) ([]*domain.Account, error)

	// TopByStake retrieves up to limit accounts with a positive stake,
	// ordered by StakedAmount DESC then address ASC.
	TopByStake(ctx context.Context, limit int) ([]*domain.Account, error)
}

// ReferralEdgeStore provides access to referral_edges storage.
// Edges are append-only; re-parenting is not allowed.
type ReferralEdgeStore interface {
	// Insert adds a child → parent edge. Returns ErrDuplicateKey if the
	// child already has an edge.
	Insert(ctx context.Context, edge *domain.ReferralEdge) error

	// Parent returns the parent address of a child. Returns ErrNotFound
	// when the child has no edge.
	Parent(ctx context.Context, child string) (string, error)

	// Children retrieves all direct children of a parent, ordered by
	// CreatedAt ASC.
	Children(ctx context.Context, parent string) ([]*domain.ReferralEdge, error)
}

// RankSnapshotStore provides access to rank_snapshots storage.
type RankSnapshotStore interface {
	// Insert adds a snapshot and assigns its ID.
	Insert(ctx context.Context, snapshot *domain.RankSnapshot) error

	// Latest retrieves the most recent snapshot of a kind. Returns
	// ErrNotFound when none exists.
	Latest(ctx context.Context, kind string) (*domain.RankSnapshot, error)
}

// StabilityStateStore holds the single anti-dump controller state row.
type StabilityStateStore interface {
	// Get retrieves the current state. Returns ErrNotFound before the
	// first Put.
	Get(ctx context.Context) (*domain.AntiDumpState, error)

	// Put replaces the state.
	Put(ctx context.Context, state *domain.AntiDumpState) error
}

// LedgerEventStore provides access to ledger_events storage. Append-only.
type LedgerEventStore interface {
	// Append adds an event and assigns its ID.
	Append(ctx context.Context, event *domain.LedgerEvent) error

	// GetByAddress retrieves all events for an account, ordered by
	// Timestamp ASC then ID ASC.
	GetByAddress(ctx context.Context, address string) ([]*domain.LedgerEvent, error)

	// GetByTimeRange retrieves events within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.LedgerEvent, error)
}

// PriceHistoryStore provides access to price_history storage. Append-only
// analytics timeseries.
type PriceHistoryStore interface {
	// InsertBulk adds multiple points.
	InsertBulk(ctx context.Context, points []*domain.PricePoint) error

	// GetByTimeRange retrieves points within [start, end] (inclusive),
	// ordered by Timestamp ASC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.PricePoint, error)
}

// PayoutHistoryStore provides access to payout_history storage. Append-only
// analytics timeseries.
type PayoutHistoryStore interface {
	// InsertBulk adds multiple points.
	InsertBulk(ctx context.Context, points []*domain.PayoutPoint) error

	// GetByAddress retrieves all points for an account, ordered by
	// Timestamp ASC.
	GetByAddress(ctx context.Context, address string) ([]*domain.PayoutPoint, error)
}

// AuditLogStore provides access to audit_log storage. Append-only.
type AuditLogStore interface {
	// Append adds an audit record and assigns its ID.
	Append(ctx context.Context, record *domain.AuditRecord) error

	// List retrieves all records, ordered by Timestamp ASC then ID ASC.
	List(ctx context.Context) ([]*domain.AuditRecord, error)
}
