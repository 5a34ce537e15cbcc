// Package main provides a deterministic in-memory scenario run:
// seeds a referral chain, replays a price path and prints ledger results.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"hcf-engine/internal/antidump"
	"hcf-engine/internal/domain"
	"hcf-engine/internal/engine"
	"hcf-engine/internal/operator"
	"hcf-engine/internal/oracle"
	"hcf-engine/internal/referral"
	"hcf-engine/internal/reporting"
	"hcf-engine/internal/rewards"
	"hcf-engine/internal/staking"
	"hcf-engine/internal/storage/memory"
)

// operatorAddr is the privileged address used for the scenario.
const operatorAddr = "0x00000000000000000000000000000000000000aa"

// simClock is an advanceable clock shared by all components.
type simClock struct {
	now time.Time
}

func (c *simClock) Now() time.Time { return c.now }

func (c *simClock) AdvanceDays(days int) {
	c.now = c.now.Add(time.Duration(days) * 24 * time.Hour)
}

// scriptedPair is a pair source with a settable spot price.
type scriptedPair struct {
	base  string
	quote string
	price *big.Int // 1e18-scaled quote per base
}

func (p *scriptedPair) GetReserves(ctx context.Context) (*big.Int, *big.Int, error) {
	// One base token against price quote tokens reproduces the spot price.
	return new(big.Int).Set(domain.PriceScale), new(big.Int).Set(p.price), nil
}

func (p *scriptedPair) Token0(ctx context.Context) (string, error) { return p.base, nil }
func (p *scriptedPair) Token1(ctx context.Context) (string, error) { return p.quote, nil }

func (p *scriptedPair) SetPrice(whole, hundredths int64) {
	price := new(big.Int).Mul(big.NewInt(whole*100+hundredths), big.NewInt(1e16))
	p.price = price
}

func main() {
	verbose := flag.Bool("verbose", false, "Print every cascade credit")
	flag.Parse()

	ctx := context.Background()
	logger := log.New(os.Stdout, "[simulate] ", log.LstdFlags)

	// Fixed start at a day boundary for stable 24h windows.
	clock := &simClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}

	// Stores
	accountStore := memory.NewAccountStore()
	edgeStore := memory.NewReferralEdgeStore()
	rankStore := memory.NewRankSnapshotStore()
	stabilityStore := memory.NewStabilityStateStore()
	eventStore := memory.NewLedgerEventStore()
	auditStore := memory.NewAuditLogStore()

	// Scripted market at 1.00
	pair := &scriptedPair{base: "0xbase", quote: "0xquote"}
	pair.SetPrice(1, 0)
	priceOracle := oracle.New(pair, "0xbase", "0xquote")

	// Engine components on the shared clock
	registry, err := operator.NewRegistry(domain.DefaultEngineConfig(), []string{operatorAddr}, auditStore, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating registry: %v\n", err)
		os.Exit(1)
	}
	registry.WithClock(clock.Now)

	controller := antidump.New(priceOracle, stabilityStore, registry, logger)
	controller.WithClock(clock.Now)

	ledger := staking.New(accountStore, eventStore, registry)
	ledger.WithClock(clock.Now)

	graph := referral.New(edgeStore, accountStore, rankStore, registry)
	graph.WithClock(clock.Now)

	distributor := rewards.New(accountStore, eventStore)
	distributor.WithClock(clock.Now)

	eng := engine.New(engine.Options{
		Oracle:      priceOracle,
		Ledger:      ledger,
		Controller:  controller,
		Graph:       graph,
		Distributor: distributor,
		Logger:      logger,
	})

	// Phase 1: seed a 21-member referral chain. addr(0) is the root; each
	// following member is referred by the previous one. Stakes shrink down
	// the chain so burn protection stays inactive for the final depositor.
	fmt.Println("=== Seeding referral chain ===")
	stakes := []int64{
		1_000_000, 500_000, 250_000, 200_000, 150_000,
		120_000, 110_000, 105_000, 104_000, 103_000,
		102_000, 60_000, 50_000, 40_000, 30_000,
		20_000, 10_000, 5_000, 1_000, 500, 100,
	}
	tiers := domain.DefaultTierTable()
	for i, stake := range stakes {
		amount := domain.Tokens(stake)
		tier, ok := tiers.TierFor(amount)
		if !ok {
			fmt.Fprintf(os.Stderr, "No tier for stake %d\n", stake)
			os.Exit(1)
		}
		req := engine.DepositRequest{
			Address: addr(i),
			Amount:  amount,
			Tier:    tier.Level,
		}
		if i > 0 {
			req.Upline = addr(i - 1)
		}
		res, err := eng.Deposit(ctx, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Deposit %s error: %v\n", addr(i), err)
			os.Exit(1)
		}
		if *verbose {
			for _, c := range res.Credits {
				fmt.Printf("  cascade: %s <- %s tokens (from %s)\n",
					c.Address, tokens(c.Amount), addr(i))
			}
		}
	}
	fmt.Printf("Seeded %d accounts\n", len(stakes))

	// Rank snapshots so cascade rank bonuses apply from here on
	if err := eng.RebuildRankSnapshots(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Snapshot rebuild error: %v\n", err)
		os.Exit(1)
	}

	// Phase 2: one quiet day at 1.00, then accrue everyone.
	fmt.Println("\n=== Day 1: stable market ===")
	clock.AdvanceDays(1)
	accrueAll(ctx, eng, len(stakes), *verbose)

	// Phase 3: price collapses to 0.65 within the next day's window.
	fmt.Println("\n=== Day 2: price drops 1.00 -> 0.65 ===")
	clock.AdvanceDays(1)
	pair.SetPrice(1, 0)
	if _, err := eng.UpdateAndCheck(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Update error: %v\n", err)
		os.Exit(1)
	}
	pair.SetPrice(0, 65)
	state, err := eng.UpdateAndCheck(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Update error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Drop: %d bps, active tier: %d\n", state.DropBps, state.ActiveTier)

	clock.AdvanceDays(1)
	accrueAll(ctx, eng, len(stakes), *verbose)

	// Phase 4: claim and partial redemption for the chain root.
	fmt.Println("\n=== Claims and redemption ===")
	claim, err := eng.Claim(ctx, addr(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Claim error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Claim %s: amount=%s tax=%s payout=%s\n",
		addr(0), tokens(claim.Amount), tokens(claim.Tax), tokens(claim.Payout))

	redeem, err := eng.Redeem(ctx, addr(0), domain.Tokens(100_000))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Redeem error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Redeem %s: amount=%s fee=%s burned=%s released=%s\n",
		addr(0), tokens(redeem.Amount), tokens(redeem.Fee),
		tokens(redeem.Burned), tokens(redeem.Released))

	// Phase 5: final report.
	fmt.Println("\n=== Report ===")
	gen := reporting.NewGenerator(accountStore, eventStore, stabilityStore, memory.NewPriceHistoryStore()).
		WithClock(clock.Now)
	report, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Report error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(reporting.RenderMarkdown(report))
}

// accrueAll settles every seeded account and prints the totals.
func accrueAll(ctx context.Context, eng *engine.Engine, n int, verbose bool) {
	total := new(big.Int)
	capped := 0
	for i := 0; i < n; i++ {
		res, err := eng.Accrue(ctx, addr(i))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Accrue %s error: %v\n", addr(i), err)
			os.Exit(1)
		}
		total.Add(total, res.Credited)
		if res.Capped {
			capped++
		}
		if verbose {
			fmt.Printf("  accrue %s: gross=%s credited=%s capped=%v\n",
				addr(i), tokens(res.Gross), tokens(res.Credited), res.Capped)
		}
	}
	fmt.Printf("Accrued %d accounts: total credited %s tokens, %d capped\n",
		n, tokens(total), capped)
}

// addr derives a deterministic hex address for chain member i.
func addr(i int) string {
	return fmt.Sprintf("0x%040x", i+1)
}

// tokens renders base units as whole tokens.
func tokens(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -18).String()
}
