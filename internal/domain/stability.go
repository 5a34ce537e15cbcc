package domain

import "math/big"

// StabilityTier holds the market controls applied at one price-drop level.
type StabilityTier struct {
	DropThresholdBps int64 // activates when the 24h drop reaches this level
	SlippageBps      int64 // extra sell slippage
	BurnBps          int64 // extra burn on the transfer tax split
	NodeRewardBps    int64 // extra node-reward share on the tax split
	ProductionCutBps int64 // reduction applied to staking output
}

// StabilityTierTable is the ordered set of drop tiers, ascending by threshold.
// Index 0 is the stable tier and must have a zero threshold.
type StabilityTierTable []StabilityTier

// DefaultStabilityTiers returns the standard four-tier table:
// stable, -10%, -30%, -50%.
func DefaultStabilityTiers() StabilityTierTable {
	return StabilityTierTable{
		{DropThresholdBps: 0},
		{DropThresholdBps: 1000, SlippageBps: 500, BurnBps: 300, NodeRewardBps: 200, ProductionCutBps: 500},
		{DropThresholdBps: 3000, SlippageBps: 1000, BurnBps: 500, NodeRewardBps: 300, ProductionCutBps: 1500},
		{DropThresholdBps: 5000, SlippageBps: 2000, BurnBps: 1000, NodeRewardBps: 500, ProductionCutBps: 3000},
	}
}

// TierFor returns the index of the highest tier whose threshold is at or
// below dropBps. Index 0 (stable) applies below the first real threshold.
func (st StabilityTierTable) TierFor(dropBps int64) int {
	active := 0
	for i, t := range st {
		if dropBps >= t.DropThresholdBps {
			active = i
		}
	}
	return active
}

// Validate checks ordering and the zero threshold on the stable tier.
func (st StabilityTierTable) Validate() error {
	if len(st) == 0 || st[0].DropThresholdBps != 0 {
		return ErrInvalidConfig
	}
	for i := 1; i < len(st); i++ {
		if st[i].DropThresholdBps <= st[i-1].DropThresholdBps {
			return ErrInvalidConfig
		}
	}
	return nil
}

// Clone returns a copy of the table.
func (st StabilityTierTable) Clone() StabilityTierTable {
	out := make(StabilityTierTable, len(st))
	copy(out, st)
	return out
}

// AntiDumpState is the published output of the anti-dump controller.
// Corresponds to stability_state table in PostgreSQL (single row).
type AntiDumpState struct {
	DailyOpenPrice *big.Int // 1e18-scaled price at the start of the 24h window
	CurrentPrice   *big.Int // 1e18-scaled price from the last successful update
	DropBps        int64    // derived drop since window open, clamped at zero
	ActiveTier     int      // index into the stability tier table
	WindowStart    int64    // unix seconds of the current 24h window start
	UpdatedAt      int64    // unix seconds of the last successful update
}

// Clone returns a deep copy of the state.
func (s *AntiDumpState) Clone() *AntiDumpState {
	if s == nil {
		return nil
	}
	c := *s
	if s.DailyOpenPrice != nil {
		c.DailyOpenPrice = new(big.Int).Set(s.DailyOpenPrice)
	}
	if s.CurrentPrice != nil {
		c.CurrentPrice = new(big.Int).Set(s.CurrentPrice)
	}
	return &c
}
