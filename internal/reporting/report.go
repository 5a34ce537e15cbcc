package reporting

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report is the operator-facing snapshot of ledger, referral and market
// stability state. Amounts are rendered in whole tokens, not base units.
type Report struct {
	// Metadata
	GeneratedAt time.Time

	// Ledger Summary
	Ledger LedgerSummary

	// Tier Distribution (sorted by tier level)
	TierDistribution []TierDistributionRow

	// Top Stakers (sorted by staked amount DESC)
	TopStakers []StakerRow

	// Referral Leaders (sorted by lifetime referral reward DESC)
	ReferralLeaders []ReferralLeaderRow

	// Market Stability
	Stability StabilitySection

	// Payout Summary (per event kind)
	Payouts []PayoutSummaryRow
}

// LedgerSummary contains aggregate account totals.
type LedgerSummary struct {
	Accounts             int
	ActiveStakers        int // accounts with a positive stake
	LPLockedPositions    int
	TimeLockedPositions  int
	TotalStaked          decimal.Decimal
	TotalUnclaimed       decimal.Decimal
	TotalReferralRewards decimal.Decimal
}

// TierDistributionRow represents one stake tier bucket.
type TierDistributionRow struct {
	Tier        string
	Accounts    int
	TotalStaked decimal.Decimal
}

// StakerRow represents one row of the top-stakers table.
type StakerRow struct {
	Position int
	Address  string
	Tier     string
	Staked   decimal.Decimal
}

// ReferralLeaderRow represents one row of the referral leaderboard.
type ReferralLeaderRow struct {
	Position       int
	Address        string
	ReferralReward decimal.Decimal
}

// StabilitySection contains the anti-dump controller state and price
// history statistics.
type StabilitySection struct {
	HasState       bool // false before the first controller update
	DailyOpenPrice decimal.Decimal
	CurrentPrice   decimal.Decimal
	DropBps        int64
	ActiveTier     int
	WindowStart    int64 // unix seconds
	UpdatedAt      int64 // unix seconds

	PricePoints int
	MinPrice    float64
	MaxPrice    float64
	TierChanges int // number of active-tier transitions in the history
}

// PayoutSummaryRow aggregates ledger events of one kind.
type PayoutSummaryRow struct {
	Kind   string
	Events int
	Total  decimal.Decimal
}
