package reporting

import (
	"context"
	"errors"
	"math/big"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

// topStakerLimit bounds the top-stakers and referral leader tables.
const topStakerLimit = 20

// Generator produces reports from stored data.
type Generator struct {
	accounts  storage.AccountStore
	events    storage.LedgerEventStore
	stability storage.StabilityStateStore
	prices    storage.PriceHistoryStore
	now       func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. The price history store may
// be nil when no analytics backend is configured.
func NewGenerator(
	accounts storage.AccountStore,
	events storage.LedgerEventStore,
	stability storage.StabilityStateStore,
	prices storage.PriceHistoryStore,
) *Generator {
	return &Generator{
		accounts:  accounts,
		events:    events,
		stability: stability,
		prices:    prices,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete report from current store contents.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	now := g.now()

	accounts, err := g.accounts.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt:      now,
		Ledger:           generateLedgerSummary(accounts),
		TierDistribution: generateTierDistribution(accounts),
		TopStakers:       generateTopStakers(accounts),
		ReferralLeaders:  generateReferralLeaders(accounts),
	}

	report.Stability, err = g.generateStability(ctx, now)
	if err != nil {
		return nil, err
	}

	report.Payouts, err = g.generatePayouts(ctx, now)
	if err != nil {
		return nil, err
	}

	return report, nil
}

// generateLedgerSummary computes aggregate totals over all accounts.
func generateLedgerSummary(accounts []*domain.Account) LedgerSummary {
	summary := LedgerSummary{Accounts: len(accounts)}

	staked := new(big.Int)
	unclaimed := new(big.Int)
	referral := new(big.Int)
	for _, a := range accounts {
		if a.StakedAmount.Sign() > 0 {
			summary.ActiveStakers++
		}
		if a.LPLocked {
			summary.LPLockedPositions++
		}
		if a.TimeLockDays > 0 {
			summary.TimeLockedPositions++
		}
		staked.Add(staked, a.StakedAmount)
		unclaimed.Add(unclaimed, a.UnclaimedReward)
		referral.Add(referral, a.TotalReferralReward)
	}

	summary.TotalStaked = tokens(staked)
	summary.TotalUnclaimed = tokens(unclaimed)
	summary.TotalReferralRewards = tokens(referral)
	return summary
}

// generateTierDistribution buckets active stakers by tier.
func generateTierDistribution(accounts []*domain.Account) []TierDistributionRow {
	type bucket struct {
		accounts int
		staked   *big.Int
	}
	buckets := make(map[domain.StakeTier]*bucket)

	for _, a := range accounts {
		if a.StakedAmount.Sign() == 0 {
			continue
		}
		b := buckets[a.Tier]
		if b == nil {
			b = &bucket{staked: new(big.Int)}
			buckets[a.Tier] = b
		}
		b.accounts++
		b.staked.Add(b.staked, a.StakedAmount)
	}

	tiers := make([]domain.StakeTier, 0, len(buckets))
	for t := range buckets {
		tiers = append(tiers, t)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i] < tiers[j] })

	rows := make([]TierDistributionRow, 0, len(tiers))
	for _, t := range tiers {
		b := buckets[t]
		rows = append(rows, TierDistributionRow{
			Tier:        t.String(),
			Accounts:    b.accounts,
			TotalStaked: tokens(b.staked),
		})
	}
	return rows
}

// generateTopStakers builds the top-stakers table.
func generateTopStakers(accounts []*domain.Account) []StakerRow {
	staked := make([]*domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.StakedAmount.Sign() > 0 {
			staked = append(staked, a)
		}
	}
	sort.Slice(staked, func(i, j int) bool {
		cmp := staked[i].StakedAmount.Cmp(staked[j].StakedAmount)
		if cmp != 0 {
			return cmp > 0
		}
		return staked[i].Address < staked[j].Address
	})
	if len(staked) > topStakerLimit {
		staked = staked[:topStakerLimit]
	}

	rows := make([]StakerRow, len(staked))
	for i, a := range staked {
		rows[i] = StakerRow{
			Position: i + 1,
			Address:  a.Address,
			Tier:     a.Tier.String(),
			Staked:   tokens(a.StakedAmount),
		}
	}
	return rows
}

// generateReferralLeaders builds the referral leaderboard.
func generateReferralLeaders(accounts []*domain.Account) []ReferralLeaderRow {
	earners := make([]*domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.TotalReferralReward.Sign() > 0 {
			earners = append(earners, a)
		}
	}
	sort.Slice(earners, func(i, j int) bool {
		cmp := earners[i].TotalReferralReward.Cmp(earners[j].TotalReferralReward)
		if cmp != 0 {
			return cmp > 0
		}
		return earners[i].Address < earners[j].Address
	})
	if len(earners) > topStakerLimit {
		earners = earners[:topStakerLimit]
	}

	rows := make([]ReferralLeaderRow, len(earners))
	for i, a := range earners {
		rows[i] = ReferralLeaderRow{
			Position:       i + 1,
			Address:        a.Address,
			ReferralReward: tokens(a.TotalReferralReward),
		}
	}
	return rows
}

// generateStability loads the controller state and price history stats.
func (g *Generator) generateStability(ctx context.Context, now time.Time) (StabilitySection, error) {
	var section StabilitySection

	state, err := g.stability.Get(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return section, err
	}
	if state != nil {
		section.HasState = true
		section.DailyOpenPrice = price(state.DailyOpenPrice)
		section.CurrentPrice = price(state.CurrentPrice)
		section.DropBps = state.DropBps
		section.ActiveTier = state.ActiveTier
		section.WindowStart = state.WindowStart
		section.UpdatedAt = state.UpdatedAt
	}

	if g.prices == nil {
		return section, nil
	}
	points, err := g.prices.GetByTimeRange(ctx, 0, now.Unix())
	if err != nil {
		return section, err
	}
	section.PricePoints = len(points)
	for i, p := range points {
		if i == 0 {
			section.MinPrice = p.Price
			section.MaxPrice = p.Price
			continue
		}
		if p.Price < section.MinPrice {
			section.MinPrice = p.Price
		}
		if p.Price > section.MaxPrice {
			section.MaxPrice = p.Price
		}
		if p.ActiveTier != points[i-1].ActiveTier {
			section.TierChanges++
		}
	}
	return section, nil
}

// generatePayouts aggregates ledger events by kind.
func (g *Generator) generatePayouts(ctx context.Context, now time.Time) ([]PayoutSummaryRow, error) {
	events, err := g.events.GetByTimeRange(ctx, 0, now.Unix())
	if err != nil {
		return nil, err
	}

	type bucket struct {
		count int
		total *big.Int
	}
	buckets := make(map[string]*bucket)
	for _, e := range events {
		b := buckets[e.Kind]
		if b == nil {
			b = &bucket{total: new(big.Int)}
			buckets[e.Kind] = b
		}
		b.count++
		if e.Amount != nil {
			b.total.Add(b.total, e.Amount)
		}
	}

	kinds := make([]string, 0, len(buckets))
	for k := range buckets {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	rows := make([]PayoutSummaryRow, 0, len(kinds))
	for _, k := range kinds {
		b := buckets[k]
		rows = append(rows, PayoutSummaryRow{Kind: k, Events: b.count, Total: tokens(b.total)})
	}
	return rows, nil
}

// tokens converts base units (1e18 per whole token) to a display decimal.
func tokens(v *big.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -18)
}

// price converts a 1e18-scaled price to a display decimal.
func price(v *big.Int) decimal.Decimal {
	return tokens(v)
}
