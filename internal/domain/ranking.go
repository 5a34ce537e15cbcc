package domain

import "math/big"

// Rank snapshot kinds.
const (
	RankKindStaking   = "staking"
	RankKindCommunity = "community"
)

// RankEntry is one position in a rank snapshot.
type RankEntry struct {
	Address  string   // account address
	Position int      // 1-indexed rank
	Score    *big.Int // staked amount or community performance
}

// RankSnapshot is a periodic ordered list of accounts used to assign rank
// bonuses. Consumed read-only by the referral cascade.
// Corresponds to rank_snapshots table in PostgreSQL.
type RankSnapshot struct {
	ID      int64       // assigned by the store
	Kind    string      // "staking" | "community"
	TakenAt int64       // unix seconds
	Entries []RankEntry // ordered by Position ascending
}

// Position returns the 1-indexed rank of an address, zero when absent.
func (s *RankSnapshot) PositionOf(address string) int {
	if s == nil {
		return 0
	}
	for _, e := range s.Entries {
		if e.Address == address {
			return e.Position
		}
	}
	return 0
}

// Clone returns a deep copy of the snapshot.
func (s *RankSnapshot) Clone() *RankSnapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Entries = make([]RankEntry, len(s.Entries))
	for i, e := range s.Entries {
		c.Entries[i] = e
		if e.Score != nil {
			c.Entries[i].Score = new(big.Int).Set(e.Score)
		}
	}
	return &c
}

// RankBand maps a rank range to its bonus. A band covers positions
// (previous band UpTo, UpTo].
type RankBand struct {
	UpTo     int   // inclusive upper position bound
	BonusBps int64 // bonus applied on top of the hop reward
}

// RankBandTable is an ordered list of bands, ascending by UpTo.
type RankBandTable []RankBand

// DefaultStakingRankBands returns the staking-rank bonus bands:
// top-100 +20%, 101-500 +15%, 501-2000 +10%.
func DefaultStakingRankBands() RankBandTable {
	return RankBandTable{
		{UpTo: 100, BonusBps: 2000},
		{UpTo: 500, BonusBps: 1500},
		{UpTo: 2000, BonusBps: 1000},
	}
}

// DefaultCommunityRankBands returns the community-rank bonus bands:
// top-100 +20%, 101-299 +10%.
func DefaultCommunityRankBands() RankBandTable {
	return RankBandTable{
		{UpTo: 100, BonusBps: 2000},
		{UpTo: 299, BonusBps: 1000},
	}
}

// BonusFor returns the bonus bps for a 1-indexed position, zero when the
// position is outside every band.
func (rb RankBandTable) BonusFor(position int) int64 {
	if position <= 0 {
		return 0
	}
	for _, b := range rb {
		if position <= b.UpTo {
			return b.BonusBps
		}
	}
	return 0
}

// Validate checks ordering and bonus monotonicity.
func (rb RankBandTable) Validate() error {
	for i, b := range rb {
		if b.UpTo <= 0 || b.BonusBps < 0 || b.BonusBps > BpsDenominator {
			return ErrInvalidConfig
		}
		if i > 0 && (b.UpTo <= rb[i-1].UpTo || b.BonusBps > rb[i-1].BonusBps) {
			return ErrInvalidConfig
		}
	}
	return nil
}

// Clone returns a copy of the table.
func (rb RankBandTable) Clone() RankBandTable {
	out := make(RankBandTable, len(rb))
	copy(out, rb)
	return out
}
