// Package staking implements the tiered staking ledger: deposits with LP and
// time-lock bonuses, capped daily accrual, redemption and claims.
package staking

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/oracle"
	"hcf-engine/internal/rewards"
	"hcf-engine/internal/storage"
)

const daySeconds = 24 * 60 * 60

// ConfigSource supplies the live engine configuration.
type ConfigSource interface {
	Config() *domain.EngineConfig
}

// Ledger holds and mutates per-account stake records. All validation happens
// before any store write, so a failed call leaves the ledger untouched.
type Ledger struct {
	accounts storage.AccountStore
	events   storage.LedgerEventStore
	cfg      ConfigSource
	clock    func() time.Time
}

// New creates a ledger.
func New(accounts storage.AccountStore, events storage.LedgerEventStore, cfg ConfigSource) *Ledger {
	return &Ledger{
		accounts: accounts,
		events:   events,
		cfg:      cfg,
		clock:    time.Now,
	}
}

// WithClock overrides the ledger clock for deterministic tests.
func (l *Ledger) WithClock(clock func() time.Time) {
	if clock != nil {
		l.clock = clock
	}
}

// DepositParams describes one deposit.
type DepositParams struct {
	Address      string
	Amount       *big.Int        // token base units
	Tier         domain.StakeTier // requested tier; Amount must satisfy its minimum
	LPLocked     bool
	TimeLockDays int
	PairedAmount *big.Int // paired-token amount supplied by the caller
	Price        *big.Int // 1e18-scaled price sampled for this operation
}

// CheckDeposit runs every deposit validation without touching state. For
// LP-locked positions the required paired-token amount is
// Amount * Price / 1e18, computed from the price sampled for this operation.
func (l *Ledger) CheckDeposit(p DepositParams) error {
	if p.Address == "" {
		return storage.ErrInvalidInput
	}
	if p.Amount == nil || p.Amount.Sign() <= 0 {
		return domain.ErrInvalidAmount
	}
	if !domain.ValidTimeLock(p.TimeLockDays) {
		return domain.ErrInvalidTimeLock
	}

	cfg := l.cfg.Config()
	tier, ok := cfg.Tiers.Get(p.Tier)
	if !ok {
		return domain.ErrUnknownTier
	}
	if p.Amount.Cmp(tier.MinStake) < 0 {
		return domain.ErrBelowMinimumStake
	}

	if p.LPLocked {
		if p.Price == nil || p.Price.Sign() <= 0 {
			return domain.ErrInvalidAmount
		}
		required := oracle.PairedAmount(p.Amount, p.Price)
		if p.PairedAmount == nil || p.PairedAmount.Cmp(required) < 0 {
			return domain.ErrInsufficientPairedAsset
		}
	}
	return nil
}

// Deposit validates and applies a deposit.
func (l *Ledger) Deposit(ctx context.Context, p DepositParams) (*domain.Account, error) {
	if err := l.CheckDeposit(p); err != nil {
		return nil, err
	}

	now := l.clock().Unix()
	acct, err := l.accounts.Get(ctx, p.Address)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("load account: %w", err)
		}
		acct = domain.NewAccount(p.Address, now)
		acct.DayStart = now - now%daySeconds
		acct.LastAccrueTime = now
	}

	acct.StakedAmount.Add(acct.StakedAmount, p.Amount)
	if p.Tier > acct.Tier {
		acct.Tier = p.Tier
	}
	if p.LPLocked {
		acct.LPLocked = true
		if p.TimeLockDays > 0 {
			unlock := now + int64(p.TimeLockDays)*daySeconds
			if unlock > acct.LPUnlockTime {
				acct.LPUnlockTime = unlock
			}
		}
	}
	if p.TimeLockDays > acct.TimeLockDays {
		acct.TimeLockDays = p.TimeLockDays
	}

	if err := l.accounts.Put(ctx, acct); err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}
	event := &domain.LedgerEvent{
		Address:   p.Address,
		Kind:      domain.EventDeposit,
		Amount:    new(big.Int).Set(p.Amount),
		Timestamp: now,
	}
	if err := l.events.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("append deposit event: %w", err)
	}
	return acct, nil
}

// AccrueResult reports the outcome of one accrual.
type AccrueResult struct {
	Address  string
	Days     int64    // whole elapsed days settled
	Gross    *big.Int // output before production cut and cap
	Credited *big.Int // amount actually credited
	Capped   bool     // true when the daily cap truncated the credit
	Credit   rewards.Credit
}

// Accrue settles the elapsed whole days of output for an account, reduced by
// the anti-dump production cut, then truncated by the daily cap. The excess
// over the cap is discarded, never carried over. The credit itself is
// returned for the reward distributor; only cap bookkeeping is written here.
func (l *Ledger) Accrue(ctx context.Context, address string, productionCutBps int64) (*AccrueResult, error) {
	if address == "" {
		return nil, storage.ErrInvalidInput
	}
	acct, err := l.accounts.Get(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}

	res := &AccrueResult{
		Address:  address,
		Gross:    new(big.Int),
		Credited: new(big.Int),
	}
	if acct.StakedAmount.Sign() == 0 {
		return res, nil
	}

	now := l.clock().Unix()
	days := (now - acct.LastAccrueTime) / daySeconds
	if days <= 0 {
		return res, nil
	}
	res.Days = days

	cfg := l.cfg.Config()
	tier, ok := cfg.Tiers.Get(acct.Tier)
	if !ok {
		return nil, domain.ErrUnknownTier
	}

	rate := effectiveRateBps(tier, acct)
	gross := domain.ApplyBps(acct.StakedAmount, rate)
	gross.Mul(gross, big.NewInt(days))
	res.Gross.Set(gross)

	credit := domain.SubBps(gross, productionCutBps)

	// Reset the cap window on day rollover before applying the cap.
	dayStart := now - now%daySeconds
	if dayStart != acct.DayStart {
		acct.DayStart = dayStart
		acct.DailyClaimed.SetInt64(0)
	}
	cap := domain.ApplyBps(acct.StakedAmount, cfg.DailyCapBps)
	room := new(big.Int).Sub(cap, acct.DailyClaimed)
	if room.Sign() < 0 {
		room.SetInt64(0)
	}
	if credit.Cmp(room) > 0 {
		credit.Set(room)
		res.Capped = true
	}
	res.Credited.Set(credit)

	acct.DailyClaimed.Add(acct.DailyClaimed, credit)
	acct.LastAccrueTime += days * daySeconds
	if err := l.accounts.Put(ctx, acct); err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}

	res.Credit = rewards.Credit{
		Address: address,
		Amount:  new(big.Int).Set(credit),
		Kind:    domain.EventAccrue,
	}
	return res, nil
}

// RedeemResult reports the penalty split of a redemption.
type RedeemResult struct {
	Address  string
	Amount   *big.Int // principal removed from the stake
	Fee      *big.Int // penalty paid as fee
	Burned   *big.Int // penalty burned
	Released *big.Int // amount released to the caller
}

// Redeem releases principal. LP-locked positions cannot be redeemed before
// their unlock time. The configured penalty split is applied before release.
func (l *Ledger) Redeem(ctx context.Context, address string, amount *big.Int) (*RedeemResult, error) {
	if address == "" {
		return nil, storage.ErrInvalidInput
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	acct, err := l.accounts.Get(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}

	now := l.clock().Unix()
	if acct.LPLocked && now < acct.LPUnlockTime {
		return nil, domain.ErrLockedPosition
	}
	if amount.Cmp(acct.StakedAmount) > 0 {
		return nil, domain.ErrInsufficientBalance
	}

	cfg := l.cfg.Config()
	fee := domain.ApplyBps(amount, cfg.RedeemFeeBps)
	burned := domain.ApplyBps(amount, cfg.RedeemBurnBps)
	released := new(big.Int).Sub(amount, fee)
	released.Sub(released, burned)

	acct.StakedAmount.Sub(acct.StakedAmount, amount)
	if acct.StakedAmount.Sign() == 0 {
		// Full exit: zero the position but keep the record.
		acct.Tier = domain.TierNone
		acct.LPLocked = false
		acct.LPUnlockTime = 0
		acct.TimeLockDays = 0
	} else if t, ok := cfg.Tiers.TierFor(acct.StakedAmount); ok {
		if t.Level < acct.Tier {
			acct.Tier = t.Level
		}
	} else {
		acct.Tier = domain.TierNone
	}

	if err := l.accounts.Put(ctx, acct); err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}
	event := &domain.LedgerEvent{
		Address:   address,
		Kind:      domain.EventRedeem,
		Amount:    new(big.Int).Set(amount),
		Timestamp: now,
	}
	if err := l.events.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("append redeem event: %w", err)
	}

	return &RedeemResult{
		Address:  address,
		Amount:   new(big.Int).Set(amount),
		Fee:      fee,
		Burned:   burned,
		Released: released,
	}, nil
}

// ClaimResult reports a claim payout.
type ClaimResult struct {
	Address string
	Amount  *big.Int // unclaimed reward moved out
	Tax     *big.Int // claim tax withheld
	Payout  *big.Int // transferable amount after tax
}

// Claim moves the unclaimed reward to the transferable balance, applying
// the claim tax, and resets the unclaimed reward to zero. A claim with
// nothing pending succeeds with zero amounts.
func (l *Ledger) Claim(ctx context.Context, address string) (*ClaimResult, error) {
	if address == "" {
		return nil, storage.ErrInvalidInput
	}
	acct, err := l.accounts.Get(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}

	amount := new(big.Int).Set(acct.UnclaimedReward)
	res := &ClaimResult{
		Address: address,
		Amount:  amount,
		Tax:     new(big.Int),
		Payout:  new(big.Int),
	}
	if amount.Sign() == 0 {
		return res, nil
	}

	cfg := l.cfg.Config()
	res.Tax = domain.ApplyBps(amount, cfg.ClaimTaxBps)
	res.Payout = new(big.Int).Sub(amount, res.Tax)

	acct.UnclaimedReward.SetInt64(0)
	if err := l.accounts.Put(ctx, acct); err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}
	event := &domain.LedgerEvent{
		Address:   address,
		Kind:      domain.EventClaim,
		Amount:    amount,
		Timestamp: l.clock().Unix(),
	}
	if err := l.events.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("append claim event: %w", err)
	}
	return res, nil
}

// effectiveRateBps applies the LP and time-lock bonuses to the tier's base
// daily rate. Bonuses are fractions of the base rate, not additive bps.
func effectiveRateBps(tier domain.Tier, acct *domain.Account) int64 {
	bonus := int64(0)
	if acct.LPLocked {
		bonus += tier.LPBonusBps
	}
	switch acct.TimeLockDays {
	case domain.TimeLock100:
		bonus += tier.Time100Bps
	case domain.TimeLock300:
		bonus += tier.Time300Bps
	}
	return tier.DailyRateBps * (domain.BpsDenominator + bonus) / domain.BpsDenominator
}
