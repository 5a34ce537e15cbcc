package domain

import "math/big"

// StakeTier identifies a staking level.
type StakeTier int

// Stake tier constants, ordered by minimum stake ascending.
const (
	TierNone StakeTier = iota
	TierL1
	TierL2
	TierL3
	TierL4
	TierL5
)

// String returns the tier name.
func (t StakeTier) String() string {
	switch t {
	case TierL1:
		return "L1"
	case TierL2:
		return "L2"
	case TierL3:
		return "L3"
	case TierL4:
		return "L4"
	case TierL5:
		return "L5"
	default:
		return "none"
	}
}

// Tier holds the static configuration of one staking level.
type Tier struct {
	Level        StakeTier // L1..L5
	MinStake     *big.Int  // inclusive lower bound, token base units
	DailyRateBps int64     // daily output rate in basis points
	LPBonusBps   int64     // bonus applied when the position is LP-locked
	Time100Bps   int64     // bonus for a 100-day time lock
	Time300Bps   int64     // bonus for a 300-day time lock
}

// TierTable is the ordered set of staking levels, ascending by MinStake.
type TierTable []Tier

// DefaultTierTable returns the standard five-level table. Amounts are in
// whole tokens scaled to base units.
func DefaultTierTable() TierTable {
	return TierTable{
		{Level: TierL1, MinStake: Tokens(100), DailyRateBps: 40, LPBonusBps: 3000, Time100Bps: 2000, Time300Bps: 4000},
		{Level: TierL2, MinStake: Tokens(10_000), DailyRateBps: 60, LPBonusBps: 3000, Time100Bps: 2000, Time300Bps: 4000},
		{Level: TierL3, MinStake: Tokens(100_000), DailyRateBps: 80, LPBonusBps: 3000, Time100Bps: 2000, Time300Bps: 4000},
		{Level: TierL4, MinStake: Tokens(500_000), DailyRateBps: 100, LPBonusBps: 3000, Time100Bps: 2000, Time300Bps: 4000},
		{Level: TierL5, MinStake: Tokens(1_000_000), DailyRateBps: 120, LPBonusBps: 3000, Time100Bps: 2000, Time300Bps: 4000},
	}
}

// Get returns the configuration row for a tier level.
func (tt TierTable) Get(level StakeTier) (Tier, bool) {
	for _, t := range tt {
		if t.Level == level {
			return t, true
		}
	}
	return Tier{}, false
}

// TierFor returns the highest tier whose MinStake is satisfied by amount.
// Boundaries are inclusive on the lower bound: a deposit exactly at a tier's
// MinStake qualifies for that tier.
func (tt TierTable) TierFor(amount *big.Int) (Tier, bool) {
	var best Tier
	found := false
	for _, t := range tt {
		if amount.Cmp(t.MinStake) >= 0 {
			best = t
			found = true
		}
	}
	return best, found
}

// Validate checks that the table is non-empty and ordered by MinStake with
// no duplicate levels.
func (tt TierTable) Validate() error {
	if len(tt) == 0 {
		return ErrInvalidConfig
	}
	seen := make(map[StakeTier]bool, len(tt))
	for i, t := range tt {
		if t.MinStake == nil || t.MinStake.Sign() <= 0 || t.DailyRateBps <= 0 {
			return ErrInvalidConfig
		}
		if seen[t.Level] {
			return ErrInvalidConfig
		}
		seen[t.Level] = true
		if i > 0 && tt[i-1].MinStake.Cmp(t.MinStake) >= 0 {
			return ErrInvalidConfig
		}
	}
	return nil
}

// Clone returns a deep copy of the table.
func (tt TierTable) Clone() TierTable {
	out := make(TierTable, len(tt))
	for i, t := range tt {
		out[i] = t
		out[i].MinStake = new(big.Int).Set(t.MinStake)
	}
	return out
}
