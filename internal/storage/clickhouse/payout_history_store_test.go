package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

func TestPayoutHistoryStore_InsertBulk(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPayoutHistoryStore(conn)
	ctx := context.Background()

	// Empty insert is a no-op
	err := store.InsertBulk(ctx, nil)
	assert.NoError(t, err)

	points := []*domain.PayoutPoint{
		{Address: "0xaaa", Kind: domain.EventAccrue, Amount: 800, Timestamp: 1000},
	}
	err = store.InsertBulk(ctx, points)
	require.NoError(t, err)

	got, err := store.GetByAddress(ctx, "0xaaa")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "0xaaa", got[0].Address)
	assert.Equal(t, domain.EventAccrue, got[0].Kind)
	assert.Equal(t, 800.0, got[0].Amount)
	assert.Equal(t, int64(1000), got[0].Timestamp)
}

func TestPayoutHistoryStore_GetByAddress(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPayoutHistoryStore(conn)
	ctx := context.Background()

	points := []*domain.PayoutPoint{
		{Address: "0xaaa", Kind: domain.EventAccrue, Amount: 800, Timestamp: 3000},
		{Address: "0xaaa", Kind: domain.EventReferral, Amount: 160, Timestamp: 1000},
		{Address: "0xbbb", Kind: domain.EventAccrue, Amount: 50, Timestamp: 2000},
	}
	err := store.InsertBulk(ctx, points)
	require.NoError(t, err)

	// Only 0xaaa rows, ordered by timestamp ASC
	got, err := store.GetByAddress(ctx, "0xaaa")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.EventReferral, got[0].Kind)
	assert.Equal(t, int64(1000), got[0].Timestamp)
	assert.Equal(t, domain.EventAccrue, got[1].Kind)
	assert.Equal(t, int64(3000), got[1].Timestamp)

	// Unknown address returns empty, not an error
	got, err = store.GetByAddress(ctx, "0xccc")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPayoutHistoryStore_GetByAddressRejectsEmpty(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPayoutHistoryStore(conn)

	_, err := store.GetByAddress(context.Background(), "")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
