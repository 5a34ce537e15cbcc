package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

func TestAuditLogStore_AppendAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAuditLogStore(pool)
	ctx := context.Background()

	records := []*domain.AuditRecord{
		{Operator: "0xop", Action: "SetDailyCap", Detail: "400 bps", Version: 2, Timestamp: 200},
		{Operator: "0xop", Action: "SetClaimTax", Detail: "150 bps", Version: 3, Timestamp: 100},
	}
	for _, r := range records {
		require.NoError(t, store.Append(ctx, r))
		assert.NotZero(t, r.ID)
	}

	listed, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	// Ordered by timestamp, not insertion.
	assert.Equal(t, "SetClaimTax", listed[0].Action)
	assert.Equal(t, "SetDailyCap", listed[1].Action)
	assert.Equal(t, 3, listed[0].Version)
}

func TestAuditLogStore_AppendRejectsInvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAuditLogStore(pool)
	ctx := context.Background()

	err := store.Append(ctx, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.Append(ctx, &domain.AuditRecord{Operator: "0xop"})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
