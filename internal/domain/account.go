package domain

import "math/big"

// Account represents the per-address staking state.
// Corresponds to accounts table in PostgreSQL.
type Account struct {
	Address             string    // hex account address, lowercase
	Tier                StakeTier // active stake tier (L1..L5)
	StakedAmount        *big.Int  // token base units (1e18 per whole token)
	LPLocked            bool      // true when the paired-asset LP portion is locked
	LPUnlockTime        int64     // unix seconds; zero when not LP-locked
	TimeLockDays        int       // 0, 100 or 300
	LastAccrueTime      int64     // unix seconds of last accrual
	DayStart            int64     // start of the current daily-cap window (unix seconds)
	DailyClaimed        *big.Int  // output credited within the current window
	Upline              string    // parent address; empty when unset
	TotalReferralReward *big.Int  // lifetime referral credits
	UnclaimedReward     *big.Int  // pending reward, moved out by Claim
	CreatedAt           int64     // unix seconds of first deposit
}

// Time lock day constants.
const (
	TimeLockNone = 0
	TimeLock100  = 100
	TimeLock300  = 300
)

// NewAccount creates a zeroed account record for an address.
func NewAccount(address string, now int64) *Account {
	return &Account{
		Address:             address,
		StakedAmount:        new(big.Int),
		DailyClaimed:        new(big.Int),
		TotalReferralReward: new(big.Int),
		UnclaimedReward:     new(big.Int),
		CreatedAt:           now,
	}
}

// Clone returns a deep copy of the account. Stores hand out copies so
// callers cannot mutate shared state through aliased big.Ints.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.StakedAmount = new(big.Int).Set(a.StakedAmount)
	c.DailyClaimed = new(big.Int).Set(a.DailyClaimed)
	c.TotalReferralReward = new(big.Int).Set(a.TotalReferralReward)
	c.UnclaimedReward = new(big.Int).Set(a.UnclaimedReward)
	return &c
}

// ValidTimeLock reports whether days is one of the supported lock periods.
func ValidTimeLock(days int) bool {
	return days == TimeLockNone || days == TimeLock100 || days == TimeLock300
}
