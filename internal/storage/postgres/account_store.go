package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

// AccountStore implements storage.AccountStore using PostgreSQL.
type AccountStore struct {
	pool *Pool
}

// NewAccountStore creates a new AccountStore.
func NewAccountStore(pool *Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AccountStore = (*AccountStore)(nil)

const accountColumns = `
	address, tier, staked_amount::text, lp_locked, lp_unlock_time,
	time_lock_days, last_accrue_time, day_start, daily_claimed::text,
	upline, total_referral_reward::text, unclaimed_reward::text, created_at
`

// Get retrieves an account by address. Returns ErrNotFound if not exists.
func (s *AccountStore) Get(ctx context.Context, address string) (*domain.Account, error) {
	if address == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE address = $1`
	row := s.pool.QueryRow(ctx, query, address)
	acct, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return acct, nil
}

// Put inserts or replaces an account record.
func (s *AccountStore) Put(ctx context.Context, a *domain.Account) error {
	if a == nil || a.Address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO accounts (
			address, tier, staked_amount, lp_locked, lp_unlock_time,
			time_lock_days, last_accrue_time, day_start, daily_claimed,
			upline, total_referral_reward, unclaimed_reward, created_at
		) VALUES (
			$1, $2, $3::numeric, $4, $5, $6, $7, $8, $9::numeric,
			$10, $11::numeric, $12::numeric, $13
		)
		ON CONFLICT (address) DO UPDATE SET
			tier = EXCLUDED.tier,
			staked_amount = EXCLUDED.staked_amount,
			lp_locked = EXCLUDED.lp_locked,
			lp_unlock_time = EXCLUDED.lp_unlock_time,
			time_lock_days = EXCLUDED.time_lock_days,
			last_accrue_time = EXCLUDED.last_accrue_time,
			day_start = EXCLUDED.day_start,
			daily_claimed = EXCLUDED.daily_claimed,
			upline = EXCLUDED.upline,
			total_referral_reward = EXCLUDED.total_referral_reward,
			unclaimed_reward = EXCLUDED.unclaimed_reward
	`
	_, err := s.pool.Exec(ctx, query,
		a.Address,
		int(a.Tier),
		numeric(a.StakedAmount),
		a.LPLocked,
		a.LPUnlockTime,
		a.TimeLockDays,
		a.LastAccrueTime,
		a.DayStart,
		numeric(a.DailyClaimed),
		a.Upline,
		numeric(a.TotalReferralReward),
		numeric(a.UnclaimedReward),
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("put account: %w", err)
	}
	return nil
}

// List retrieves all accounts, ordered by address ASC.
func (s *AccountStore) List(ctx context.Context) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY address ASC`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()
	return scanAccounts(rows)
}

// TopByStake retrieves up to limit accounts with a positive stake, ordered
// by StakedAmount DESC then address ASC.
func (s *AccountStore) TopByStake(ctx context.Context, limit int) ([]*domain.Account, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE staked_amount > 0
		ORDER BY staked_amount DESC, address ASC
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top accounts by stake: %w", err)
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func scanAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	var result []*domain.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		result = append(result, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return result, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		acct                              domain.Account
		tier                              int
		staked, claimed, referral, unclaimed string
	)
	err := row.Scan(
		&acct.Address, &tier, &staked, &acct.LPLocked, &acct.LPUnlockTime,
		&acct.TimeLockDays, &acct.LastAccrueTime, &acct.DayStart, &claimed,
		&acct.Upline, &referral, &unclaimed, &acct.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	acct.Tier = domain.StakeTier(tier)
	if acct.StakedAmount, err = parseNumeric(staked); err != nil {
		return nil, err
	}
	if acct.DailyClaimed, err = parseNumeric(claimed); err != nil {
		return nil, err
	}
	if acct.TotalReferralReward, err = parseNumeric(referral); err != nil {
		return nil, err
	}
	if acct.UnclaimedReward, err = parseNumeric(unclaimed); err != nil {
		return nil, err
	}
	return &acct, nil
}
