package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

func TestAccountStore_PutAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAccountStore(pool)
	ctx := context.Background()

	acct := domain.NewAccount("0xaaa", 1_750_000_000)
	acct.Tier = domain.TierL3
	acct.StakedAmount.Set(domain.Tokens(100_000))
	acct.LPLocked = true
	acct.LPUnlockTime = 1_758_640_000
	acct.TimeLockDays = domain.TimeLock100
	acct.LastAccrueTime = 1_750_000_000
	acct.DayStart = 1_749_945_600
	acct.DailyClaimed.Set(domain.Tokens(500))
	acct.Upline = "0xparent"
	acct.TotalReferralReward.Set(domain.Tokens(1234))
	acct.UnclaimedReward.Set(domain.Tokens(800))

	err := store.Put(ctx, acct)
	require.NoError(t, err)

	retrieved, err := store.Get(ctx, "0xaaa")
	require.NoError(t, err)

	assert.Equal(t, acct.Address, retrieved.Address)
	assert.Equal(t, acct.Tier, retrieved.Tier)
	assert.Zero(t, acct.StakedAmount.Cmp(retrieved.StakedAmount))
	assert.Equal(t, acct.LPLocked, retrieved.LPLocked)
	assert.Equal(t, acct.LPUnlockTime, retrieved.LPUnlockTime)
	assert.Equal(t, acct.TimeLockDays, retrieved.TimeLockDays)
	assert.Equal(t, acct.LastAccrueTime, retrieved.LastAccrueTime)
	assert.Equal(t, acct.DayStart, retrieved.DayStart)
	assert.Zero(t, acct.DailyClaimed.Cmp(retrieved.DailyClaimed))
	assert.Equal(t, acct.Upline, retrieved.Upline)
	assert.Zero(t, acct.TotalReferralReward.Cmp(retrieved.TotalReferralReward))
	assert.Zero(t, acct.UnclaimedReward.Cmp(retrieved.UnclaimedReward))
	assert.Equal(t, acct.CreatedAt, retrieved.CreatedAt)
}

func TestAccountStore_PutUpserts(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAccountStore(pool)
	ctx := context.Background()

	acct := domain.NewAccount("0xaaa", 1_750_000_000)
	acct.StakedAmount.Set(domain.Tokens(1000))
	require.NoError(t, store.Put(ctx, acct))

	acct.StakedAmount.Set(domain.Tokens(2000))
	acct.Tier = domain.TierL2
	require.NoError(t, store.Put(ctx, acct))

	retrieved, err := store.Get(ctx, "0xaaa")
	require.NoError(t, err)
	assert.Zero(t, retrieved.StakedAmount.Cmp(domain.Tokens(2000)))
	assert.Equal(t, domain.TierL2, retrieved.Tier)
}

func TestAccountStore_GetNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAccountStore(pool)

	_, err := store.Get(context.Background(), "0xmissing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAccountStore_List(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAccountStore(pool)
	ctx := context.Background()

	for _, addr := range []string{"0xccc", "0xaaa", "0xbbb"} {
		require.NoError(t, store.Put(ctx, domain.NewAccount(addr, 0)))
	}

	accounts, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "0xaaa", accounts[0].Address)
	assert.Equal(t, "0xbbb", accounts[1].Address)
	assert.Equal(t, "0xccc", accounts[2].Address)
}

func TestAccountStore_TopByStake(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAccountStore(pool)
	ctx := context.Background()

	stakes := map[string]int64{"0xaaa": 500, "0xbbb": 2000, "0xccc": 2000, "0xddd": 0}
	for addr, tokens := range stakes {
		acct := domain.NewAccount(addr, 0)
		acct.StakedAmount.Set(domain.Tokens(tokens))
		require.NoError(t, store.Put(ctx, acct))
	}

	top, err := store.TopByStake(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "0xbbb", top[0].Address)
	assert.Equal(t, "0xccc", top[1].Address)

	_, err = store.TopByStake(ctx, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
