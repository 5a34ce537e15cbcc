// Package engine is the serialized facade over the staking ledger, anti-dump
// controller, referral graph and reward distributor. Operations execute one
// at a time and sample the oracle price at most once per operation.
package engine

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"sync"

	"hcf-engine/internal/antidump"
	"hcf-engine/internal/domain"
	"hcf-engine/internal/oracle"
	"hcf-engine/internal/referral"
	"hcf-engine/internal/rewards"
	"hcf-engine/internal/staking"
)

// Engine serializes all ledger-mutating operations.
type Engine struct {
	mu sync.Mutex

	oracle      *oracle.PriceOracle
	ledger      *staking.Ledger
	controller  *antidump.Controller
	graph       *referral.Graph
	distributor *rewards.Distributor
	logger      *log.Logger
}

// Options wires an engine together.
type Options struct {
	Oracle      *oracle.PriceOracle
	Ledger      *staking.Ledger
	Controller  *antidump.Controller
	Graph       *referral.Graph
	Distributor *rewards.Distributor
	Logger      *log.Logger
}

// New creates an engine.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		oracle:      opts.Oracle,
		ledger:      opts.Ledger,
		controller:  opts.Controller,
		graph:       opts.Graph,
		distributor: opts.Distributor,
		logger:      logger,
	}
}

// DepositRequest describes one external deposit call.
type DepositRequest struct {
	Address      string
	Amount       *big.Int
	Tier         domain.StakeTier
	LPLocked     bool
	TimeLockDays int
	PairedAmount *big.Int
	// Upline optionally binds the depositor to a parent. Only honored on
	// the first deposit; a repeated identical upline is ignored, a
	// conflicting one is rejected.
	Upline string
}

// DepositResult reports an applied deposit.
type DepositResult struct {
	Account *domain.Account
	Credits []rewards.Credit // cascade credits paid to the upline chain
}

// Deposit validates and applies a deposit, refreshes the stability tier with
// the same sampled price, binds the upline when requested, and runs the
// referral cascade on the deposit amount.
func (e *Engine) Deposit(ctx context.Context, req DepositRequest) (*DepositResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// One price sample per logical operation. LP-locked deposits require
	// it; otherwise a failed sample only skips the stability refresh.
	price, priceErr := e.oracle.Price(ctx)
	if req.LPLocked && priceErr != nil {
		return nil, fmt.Errorf("price for LP sizing: %w", priceErr)
	}
	if priceErr == nil {
		if _, err := e.controller.Apply(ctx, price); err != nil {
			return nil, fmt.Errorf("stability refresh: %w", err)
		}
	}

	params := staking.DepositParams{
		Address:      req.Address,
		Amount:       req.Amount,
		Tier:         req.Tier,
		LPLocked:     req.LPLocked,
		TimeLockDays: req.TimeLockDays,
		PairedAmount: req.PairedAmount,
		Price:        price,
	}
	// Validate before the upline edge is written so a rejected deposit
	// leaves no trace.
	if err := e.ledger.CheckDeposit(params); err != nil {
		return nil, err
	}

	if req.Upline != "" {
		existing, err := e.graph.Upline(ctx, req.Address)
		if err != nil {
			return nil, fmt.Errorf("check upline: %w", err)
		}
		switch existing {
		case "":
			if err := e.graph.SetUpline(ctx, req.Address, req.Upline); err != nil {
				return nil, err
			}
		case req.Upline:
			// Already bound to the same parent.
		default:
			return nil, domain.ErrUplineAlreadySet
		}
	}

	acct, err := e.ledger.Deposit(ctx, params)
	if err != nil {
		return nil, err
	}

	credits, err := e.graph.Cascade(ctx, req.Address, req.Amount)
	if err != nil {
		return nil, fmt.Errorf("deposit cascade: %w", err)
	}
	if err := e.distributor.Apply(ctx, credits); err != nil {
		return nil, fmt.Errorf("apply cascade credits: %w", err)
	}

	return &DepositResult{Account: acct, Credits: credits}, nil
}

// Accrue settles the pending output for an account: one price sample
// refreshes the stability tier, the active production cut reduces the
// output, the daily cap truncates it, and the referral cascade runs on the
// credited amount. Cap truncation is reported in the result, not as an error.
func (e *Engine) Accrue(ctx context.Context, address string) (*staking.AccrueResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if price, err := e.oracle.Price(ctx); err == nil {
		if _, err := e.controller.Apply(ctx, price); err != nil {
			return nil, fmt.Errorf("stability refresh: %w", err)
		}
	}
	// A failed sample leaves the last known stability tier in force.

	active, _, err := e.controller.Active(ctx)
	if err != nil {
		return nil, err
	}

	res, err := e.ledger.Accrue(ctx, address, active.ProductionCutBps)
	if err != nil {
		return nil, err
	}
	if res.Credited.Sign() == 0 {
		return res, nil
	}

	credits := []rewards.Credit{res.Credit}
	cascade, err := e.graph.Cascade(ctx, address, res.Credited)
	if err != nil {
		return nil, fmt.Errorf("accrue cascade: %w", err)
	}
	credits = append(credits, cascade...)
	if err := e.distributor.Apply(ctx, credits); err != nil {
		return nil, fmt.Errorf("apply credits: %w", err)
	}
	return res, nil
}

// Redeem releases principal through the staking ledger.
func (e *Engine) Redeem(ctx context.Context, address string, amount *big.Int) (*staking.RedeemResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Redeem(ctx, address, amount)
}

// Claim pays out the unclaimed reward through the staking ledger.
func (e *Engine) Claim(ctx context.Context, address string) (*staking.ClaimResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Claim(ctx, address)
}

// UpdateAndCheck re-evaluates the stability tier from a fresh price sample.
func (e *Engine) UpdateAndCheck(ctx context.Context) (*domain.AntiDumpState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.controller.UpdateAndCheck(ctx)
}

// RebuildRankSnapshots refreshes the staking and community rank snapshots.
func (e *Engine) RebuildRankSnapshots(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.graph.BuildStakingSnapshot(ctx); err != nil {
		return err
	}
	if _, err := e.graph.BuildCommunitySnapshot(ctx); err != nil {
		return err
	}
	return nil
}

// SetUpline binds a child to a parent outside of a deposit.
func (e *Engine) SetUpline(ctx context.Context, child, parent string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.SetUpline(ctx, child, parent)
}
