package antidump

import (
	"context"
	"errors"
	"log"
	"math/big"
	"os"
	"testing"
	"time"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage/memory"
)

// fakePriceSource returns a settable price or error.
type fakePriceSource struct {
	price *big.Int
	err   error
}

func (f *fakePriceSource) Price(ctx context.Context) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return new(big.Int).Set(f.price), nil
}

// staticConfig serves a fixed configuration.
type staticConfig struct {
	cfg *domain.EngineConfig
}

func (s *staticConfig) Config() *domain.EngineConfig { return s.cfg }

// priceAt returns a 1e18-scaled price from hundredths, e.g. priceAt(65) = 0.65.
func priceAt(hundredths int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(hundredths), big.NewInt(1e16))
}

func newTestController(price *fakePriceSource) (*Controller, *memory.StabilityStateStore, *time.Time) {
	store := memory.NewStabilityStateStore()
	logger := log.New(os.Stdout, "[test] ", 0)
	c := New(price, store, &staticConfig{cfg: domain.DefaultEngineConfig()}, logger)

	// Clock starts at a day boundary.
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := &now
	c.WithClock(func() time.Time { return *clock })
	return c, store, clock
}

func TestController_FirstUpdateOpensWindow(t *testing.T) {
	price := &fakePriceSource{price: priceAt(100)}
	c, _, _ := newTestController(price)
	ctx := context.Background()

	state, err := c.UpdateAndCheck(ctx)
	if err != nil {
		t.Fatalf("UpdateAndCheck failed: %v", err)
	}

	if state.DailyOpenPrice.Cmp(priceAt(100)) != 0 {
		t.Errorf("open price: got %s, want %s", state.DailyOpenPrice, priceAt(100))
	}
	if state.DropBps != 0 {
		t.Errorf("drop: got %d, want 0", state.DropBps)
	}
	if state.ActiveTier != 0 {
		t.Errorf("tier: got %d, want 0", state.ActiveTier)
	}
}

func TestController_DropActivatesTier(t *testing.T) {
	price := &fakePriceSource{price: priceAt(100)}
	c, _, _ := newTestController(price)
	ctx := context.Background()

	if _, err := c.UpdateAndCheck(ctx); err != nil {
		t.Fatalf("open update failed: %v", err)
	}

	// 1.00 -> 0.65 within the same window: 3500 bps, tier 2
	price.price = priceAt(65)
	state, err := c.UpdateAndCheck(ctx)
	if err != nil {
		t.Fatalf("drop update failed: %v", err)
	}

	if state.DropBps != 3500 {
		t.Errorf("drop: got %d, want 3500", state.DropBps)
	}
	if state.ActiveTier != 2 {
		t.Errorf("tier: got %d, want 2", state.ActiveTier)
	}
}

func TestController_Idempotent(t *testing.T) {
	price := &fakePriceSource{price: priceAt(100)}
	c, _, _ := newTestController(price)
	ctx := context.Background()

	if _, err := c.UpdateAndCheck(ctx); err != nil {
		t.Fatalf("open update failed: %v", err)
	}
	price.price = priceAt(80)

	first, err := c.UpdateAndCheck(ctx)
	if err != nil {
		t.Fatalf("first update failed: %v", err)
	}
	second, err := c.UpdateAndCheck(ctx)
	if err != nil {
		t.Fatalf("second update failed: %v", err)
	}

	if first.DropBps != second.DropBps || first.ActiveTier != second.ActiveTier {
		t.Errorf("repeated update changed state: %+v vs %+v", first, second)
	}
	if first.DailyOpenPrice.Cmp(second.DailyOpenPrice) != 0 {
		t.Error("repeated update moved the daily open")
	}
}

func TestController_RecoveryDeactivates(t *testing.T) {
	price := &fakePriceSource{price: priceAt(100)}
	c, _, _ := newTestController(price)
	ctx := context.Background()

	if _, err := c.UpdateAndCheck(ctx); err != nil {
		t.Fatalf("open update failed: %v", err)
	}

	price.price = priceAt(65)
	if _, err := c.UpdateAndCheck(ctx); err != nil {
		t.Fatalf("drop update failed: %v", err)
	}

	// Price recovers above the -10% threshold within the window.
	price.price = priceAt(95)
	state, err := c.UpdateAndCheck(ctx)
	if err != nil {
		t.Fatalf("recovery update failed: %v", err)
	}
	if state.DropBps != 500 {
		t.Errorf("drop: got %d, want 500", state.DropBps)
	}
	if state.ActiveTier != 0 {
		t.Errorf("tier: got %d, want 0", state.ActiveTier)
	}
}

func TestController_WindowReset(t *testing.T) {
	price := &fakePriceSource{price: priceAt(100)}
	c, _, clock := newTestController(price)
	ctx := context.Background()

	if _, err := c.UpdateAndCheck(ctx); err != nil {
		t.Fatalf("open update failed: %v", err)
	}
	price.price = priceAt(65)
	if _, err := c.UpdateAndCheck(ctx); err != nil {
		t.Fatalf("drop update failed: %v", err)
	}

	// Next 24h window: the depressed price becomes the new daily open.
	*clock = clock.Add(24 * time.Hour)
	state, err := c.UpdateAndCheck(ctx)
	if err != nil {
		t.Fatalf("next-window update failed: %v", err)
	}

	if state.DailyOpenPrice.Cmp(priceAt(65)) != 0 {
		t.Errorf("new open: got %s, want %s", state.DailyOpenPrice, priceAt(65))
	}
	if state.DropBps != 0 {
		t.Errorf("drop after reset: got %d, want 0", state.DropBps)
	}
	if state.ActiveTier != 0 {
		t.Errorf("tier after reset: got %d, want 0", state.ActiveTier)
	}
}

func TestController_RiseNeverActivates(t *testing.T) {
	price := &fakePriceSource{price: priceAt(100)}
	c, _, _ := newTestController(price)
	ctx := context.Background()

	if _, err := c.UpdateAndCheck(ctx); err != nil {
		t.Fatalf("open update failed: %v", err)
	}

	price.price = priceAt(250)
	state, err := c.UpdateAndCheck(ctx)
	if err != nil {
		t.Fatalf("rise update failed: %v", err)
	}
	if state.DropBps != 0 || state.ActiveTier != 0 {
		t.Errorf("rising price activated controls: drop=%d tier=%d", state.DropBps, state.ActiveTier)
	}
}

func TestController_OracleFailureHoldsState(t *testing.T) {
	price := &fakePriceSource{price: priceAt(100)}
	c, _, _ := newTestController(price)
	ctx := context.Background()

	if _, err := c.UpdateAndCheck(ctx); err != nil {
		t.Fatalf("open update failed: %v", err)
	}
	price.price = priceAt(65)
	before, err := c.UpdateAndCheck(ctx)
	if err != nil {
		t.Fatalf("drop update failed: %v", err)
	}

	price.err = errors.New("rpc down")
	held, err := c.UpdateAndCheck(ctx)
	if err != nil {
		t.Fatalf("expected held state, got error: %v", err)
	}
	if held.ActiveTier != before.ActiveTier || held.DropBps != before.DropBps {
		t.Errorf("state changed on oracle failure: %+v vs %+v", held, before)
	}
}

func TestController_OracleFailureNoPriorState(t *testing.T) {
	price := &fakePriceSource{err: errors.New("rpc down")}
	c, _, _ := newTestController(price)

	if _, err := c.UpdateAndCheck(context.Background()); err == nil {
		t.Fatal("expected error with no prior state")
	}
}

func TestController_ActiveBeforeFirstUpdate(t *testing.T) {
	price := &fakePriceSource{price: priceAt(100)}
	c, _, _ := newTestController(price)

	tier, state, err := c.Active(context.Background())
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	if state != nil {
		t.Error("expected nil state before first update")
	}
	if tier.ProductionCutBps != 0 {
		t.Errorf("stable tier production cut: got %d, want 0", tier.ProductionCutBps)
	}
}

func TestController_ActiveAfterTableShrank(t *testing.T) {
	price := &fakePriceSource{price: priceAt(100)}
	store := memory.NewStabilityStateStore()
	cfg := &staticConfig{cfg: domain.DefaultEngineConfig()}
	c := New(price, store, cfg, log.New(os.Stdout, "[test] ", 0))
	ctx := context.Background()

	// Persisted state points past the end of a shrunken table.
	err := store.Put(ctx, &domain.AntiDumpState{
		DailyOpenPrice: priceAt(100),
		CurrentPrice:   priceAt(65),
		DropBps:        3500,
		ActiveTier:     3,
	})
	if err != nil {
		t.Fatalf("seed state failed: %v", err)
	}
	cfg.cfg.Stability = domain.StabilityTierTable{
		{DropThresholdBps: 0},
		{DropThresholdBps: 3000, ProductionCutBps: 1500},
	}

	tier, _, err := c.Active(ctx)
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	if tier.ProductionCutBps != 1500 {
		t.Errorf("re-derived tier cut: got %d, want 1500", tier.ProductionCutBps)
	}
}

func TestController_ApplyRejectsInvalidPrice(t *testing.T) {
	price := &fakePriceSource{price: priceAt(100)}
	c, _, _ := newTestController(price)

	if _, err := c.Apply(context.Background(), big.NewInt(0)); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("zero price: got %v, want ErrInvalidAmount", err)
	}
	if _, err := c.Apply(context.Background(), nil); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("nil price: got %v, want ErrInvalidAmount", err)
	}
}
