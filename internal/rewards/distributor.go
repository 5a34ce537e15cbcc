// Package rewards aggregates staking output and referral cascade credits
// into per-account unclaimed reward.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"time"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

// Credit is one pending reward for an account.
type Credit struct {
	Address string   // receiving account
	Amount  *big.Int // token base units
	Kind    string   // domain.EventAccrue | domain.EventReferral
	Counter string   // originating account for referral credits, else empty
}

// Distributor applies credits to account unclaimed balances. It keeps no
// state of its own: applying the same set of credits in any order yields
// identical balances (per-account amounts are summed first).
type Distributor struct {
	accounts storage.AccountStore
	events   storage.LedgerEventStore
	clock    func() time.Time
}

// New creates a distributor.
func New(accounts storage.AccountStore, events storage.LedgerEventStore) *Distributor {
	return &Distributor{
		accounts: accounts,
		events:   events,
		clock:    time.Now,
	}
}

// WithClock overrides the distributor clock for deterministic tests.
func (d *Distributor) WithClock(clock func() time.Time) {
	if clock != nil {
		d.clock = clock
	}
}

// Apply credits every amount to its account's UnclaimedReward and records a
// ledger event per credit. Zero and nil amounts are skipped. Accounts are
// updated in address order so the write sequence is deterministic.
func (d *Distributor) Apply(ctx context.Context, credits []Credit) error {
	if len(credits) == 0 {
		return nil
	}

	// Commutative pre-aggregation per account.
	totals := make(map[string]*big.Int)
	referral := make(map[string]*big.Int)
	for _, c := range credits {
		if c.Address == "" {
			return storage.ErrInvalidInput
		}
		if c.Amount == nil || c.Amount.Sign() <= 0 {
			continue
		}
		if _, ok := totals[c.Address]; !ok {
			totals[c.Address] = new(big.Int)
			referral[c.Address] = new(big.Int)
		}
		totals[c.Address].Add(totals[c.Address], c.Amount)
		if c.Kind == domain.EventReferral {
			referral[c.Address].Add(referral[c.Address], c.Amount)
		}
	}

	addresses := make([]string, 0, len(totals))
	for addr := range totals {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)

	now := d.clock().Unix()
	for _, addr := range addresses {
		acct, err := d.accounts.Get(ctx, addr)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Ancestor without a ledger record cannot hold rewards.
				continue
			}
			return fmt.Errorf("load account %s: %w", addr, err)
		}
		acct.UnclaimedReward.Add(acct.UnclaimedReward, totals[addr])
		acct.TotalReferralReward.Add(acct.TotalReferralReward, referral[addr])
		if err := d.accounts.Put(ctx, acct); err != nil {
			return fmt.Errorf("save account %s: %w", addr, err)
		}
	}

	for _, c := range credits {
		if c.Amount == nil || c.Amount.Sign() <= 0 {
			continue
		}
		event := &domain.LedgerEvent{
			Address:   c.Address,
			Kind:      c.Kind,
			Amount:    new(big.Int).Set(c.Amount),
			Counter:   c.Counter,
			Timestamp: now,
		}
		if err := d.events.Append(ctx, event); err != nil {
			return fmt.Errorf("append ledger event: %w", err)
		}
	}
	return nil
}
