// Package antidump implements the price-drop-triggered market stability
// controller.
package antidump

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/oracle"
	"hcf-engine/internal/storage"
)

// windowSeconds is the daily-open reset window.
const windowSeconds = 24 * 60 * 60

// PriceSource supplies the current spot price.
type PriceSource interface {
	Price(ctx context.Context) (*big.Int, error)
}

// ConfigSource supplies the live engine configuration.
type ConfigSource interface {
	Config() *domain.EngineConfig
}

// Controller re-evaluates the active stability tier from the 24h price drop.
// State is held in a StabilityStateStore so it survives restarts; when the
// oracle reports a stale or empty pool the controller keeps its last known
// state instead of escalating.
type Controller struct {
	price  PriceSource
	store  storage.StabilityStateStore
	cfg    ConfigSource
	logger *log.Logger
	clock  func() time.Time
}

// New creates a controller.
func New(price PriceSource, store storage.StabilityStateStore, cfg ConfigSource, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		price:  price,
		store:  store,
		cfg:    cfg,
		logger: logger,
		clock:  time.Now,
	}
}

// WithClock overrides the controller clock for deterministic tests.
func (c *Controller) WithClock(clock func() time.Time) {
	if clock != nil {
		c.clock = clock
	}
}

// UpdateAndCheck samples the oracle and applies the transition function.
// On an oracle failure the last known state is returned unchanged; an error
// is only returned when there is no prior state to hold.
func (c *Controller) UpdateAndCheck(ctx context.Context) (*domain.AntiDumpState, error) {
	price, err := c.price.Price(ctx)
	if err != nil {
		last, getErr := c.store.Get(ctx)
		if getErr == nil {
			if errors.Is(err, oracle.ErrStaleOrEmptyPool) {
				c.logger.Printf("anti-dump: oracle stale, holding tier %d", last.ActiveTier)
			} else {
				c.logger.Printf("anti-dump: oracle error (%v), holding tier %d", err, last.ActiveTier)
			}
			return last, nil
		}
		if errors.Is(getErr, storage.ErrNotFound) {
			return nil, fmt.Errorf("oracle unavailable with no prior state: %w", err)
		}
		return nil, fmt.Errorf("load stability state: %w", getErr)
	}
	return c.Apply(ctx, price)
}

// Apply runs the transition function with an already-sampled price. Callers
// performing a larger logical operation use this so tier selection and any
// LP sizing in the same operation share one price sample.
func (c *Controller) Apply(ctx context.Context, price *big.Int) (*domain.AntiDumpState, error) {
	if price == nil || price.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	now := c.clock().Unix()
	windowStart := now - now%windowSeconds

	state, err := c.store.Get(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("load stability state: %w", err)
		}
		state = &domain.AntiDumpState{}
	}

	if state.DailyOpenPrice == nil || state.WindowStart != windowStart {
		state.WindowStart = windowStart
		state.DailyOpenPrice = new(big.Int).Set(price)
	}
	state.CurrentPrice = new(big.Int).Set(price)
	state.DropBps = dropBps(state.DailyOpenPrice, price)

	tiers := c.cfg.Config().Stability
	prev := state.ActiveTier
	state.ActiveTier = tiers.TierFor(state.DropBps)
	state.UpdatedAt = now

	if err := c.store.Put(ctx, state); err != nil {
		return nil, fmt.Errorf("save stability state: %w", err)
	}

	if state.ActiveTier != prev {
		c.logger.Printf("anti-dump: tier %d -> %d (drop %d bps)", prev, state.ActiveTier, state.DropBps)
	}
	return state, nil
}

// Active returns the controls of the currently active tier together with the
// published state. Before the first successful update the stable tier applies.
func (c *Controller) Active(ctx context.Context) (domain.StabilityTier, *domain.AntiDumpState, error) {
	tiers := c.cfg.Config().Stability
	state, err := c.store.Get(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return tiers[0], nil, nil
		}
		return domain.StabilityTier{}, nil, fmt.Errorf("load stability state: %w", err)
	}
	if state.ActiveTier < 0 || state.ActiveTier >= len(tiers) {
		// Tier table shrank since the state was written.
		state.ActiveTier = tiers.TierFor(state.DropBps)
	}
	return tiers[state.ActiveTier], state, nil
}

// dropBps computes max(0, (open - current) * 10000 / open).
func dropBps(open, current *big.Int) int64 {
	if open == nil || open.Sign() <= 0 {
		return 0
	}
	diff := new(big.Int).Sub(open, current)
	if diff.Sign() <= 0 {
		return 0
	}
	diff.Mul(diff, big.NewInt(domain.BpsDenominator))
	diff.Quo(diff, open)
	return diff.Int64()
}
