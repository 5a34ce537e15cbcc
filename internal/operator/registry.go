// Package operator is the privileged configuration surface. Every accepted
// change is validated against the full configuration, bumps the version and
// is appended to the audit log.
package operator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/storage"
)

// Registry holds the live engine configuration.
type Registry struct {
	mu        sync.RWMutex
	cfg       *domain.EngineConfig
	operators map[string]bool
	audit     storage.AuditLogStore
	logger    *log.Logger
	clock     func() time.Time
}

// NewRegistry creates a registry with the given initial configuration and
// authorized operator addresses.
func NewRegistry(cfg *domain.EngineConfig, operators []string, audit storage.AuditLogStore, logger *log.Logger) (*Registry, error) {
	if cfg == nil {
		cfg = domain.DefaultEngineConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("initial config: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	ops := make(map[string]bool, len(operators))
	for _, op := range operators {
		ops[strings.ToLower(op)] = true
	}
	return &Registry{
		cfg:       cfg.Clone(),
		operators: ops,
		audit:     audit,
		logger:    logger,
		clock:     time.Now,
	}, nil
}

// WithClock overrides the registry clock for deterministic tests.
func (r *Registry) WithClock(clock func() time.Time) {
	if clock != nil {
		r.clock = clock
	}
}

// Config returns a copy of the live configuration.
func (r *Registry) Config() *domain.EngineConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.Clone()
}

// Version returns the current configuration version.
func (r *Registry) Version() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.Version
}

// SetTierTable replaces the staking tier table.
func (r *Registry) SetTierTable(ctx context.Context, operator string, tiers domain.TierTable) error {
	return r.update(ctx, operator, "SetTierTable",
		fmt.Sprintf("%d tiers", len(tiers)),
		func(cfg *domain.EngineConfig) { cfg.Tiers = tiers.Clone() })
}

// SetStabilityTiers replaces the anti-dump tier table.
func (r *Registry) SetStabilityTiers(ctx context.Context, operator string, tiers domain.StabilityTierTable) error {
	return r.update(ctx, operator, "SetStabilityTiers",
		fmt.Sprintf("%d tiers", len(tiers)),
		func(cfg *domain.EngineConfig) { cfg.Stability = tiers.Clone() })
}

// SetGenerationRates replaces the referral generation rate table.
func (r *Registry) SetGenerationRates(ctx context.Context, operator string, rates domain.GenerationRateTable) error {
	return r.update(ctx, operator, "SetGenerationRates",
		fmt.Sprintf("%d generations", len(rates)),
		func(cfg *domain.EngineConfig) { cfg.GenerationRates = rates.Clone() })
}

// SetBurnProtectionGenerations sets how many leading generations the
// burn-protection rule covers.
func (r *Registry) SetBurnProtectionGenerations(ctx context.Context, operator string, generations int) error {
	return r.update(ctx, operator, "SetBurnProtectionGenerations",
		fmt.Sprintf("%d", generations),
		func(cfg *domain.EngineConfig) { cfg.BurnProtectionGenerations = generations })
}

// SetRankBands replaces the staking and community rank bonus bands.
func (r *Registry) SetRankBands(ctx context.Context, operator string, staking, community domain.RankBandTable) error {
	return r.update(ctx, operator, "SetRankBands",
		fmt.Sprintf("staking=%d community=%d", len(staking), len(community)),
		func(cfg *domain.EngineConfig) {
			cfg.StakingRankBands = staking.Clone()
			cfg.CommunityRankBands = community.Clone()
		})
}

// SetDailyCap sets the daily output cap rate.
func (r *Registry) SetDailyCap(ctx context.Context, operator string, bps int64) error {
	return r.update(ctx, operator, "SetDailyCap",
		fmt.Sprintf("%d bps", bps),
		func(cfg *domain.EngineConfig) { cfg.DailyCapBps = bps })
}

// SetClaimTax sets the claim tax rate.
func (r *Registry) SetClaimTax(ctx context.Context, operator string, bps int64) error {
	return r.update(ctx, operator, "SetClaimTax",
		fmt.Sprintf("%d bps", bps),
		func(cfg *domain.EngineConfig) { cfg.ClaimTaxBps = bps })
}

// SetRedeemPenalty sets the redemption fee and burn split.
func (r *Registry) SetRedeemPenalty(ctx context.Context, operator string, feeBps, burnBps int64) error {
	return r.update(ctx, operator, "SetRedeemPenalty",
		fmt.Sprintf("fee=%d burn=%d bps", feeBps, burnBps),
		func(cfg *domain.EngineConfig) {
			cfg.RedeemFeeBps = feeBps
			cfg.RedeemBurnBps = burnBps
		})
}

// update runs one authorized, validated, audited configuration mutation.
func (r *Registry) update(ctx context.Context, operator, action, detail string, mutate func(*domain.EngineConfig)) error {
	if !r.authorized(operator) {
		return domain.ErrUnauthorizedOperator
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	candidate := r.cfg.Clone()
	mutate(candidate)
	if err := candidate.Validate(); err != nil {
		return err
	}
	candidate.Version = r.cfg.Version + 1

	record := &domain.AuditRecord{
		Operator:  strings.ToLower(operator),
		Action:    action,
		Detail:    detail,
		Version:   candidate.Version,
		Timestamp: r.clock().Unix(),
	}
	if r.audit != nil {
		if err := r.audit.Append(ctx, record); err != nil {
			return fmt.Errorf("append audit record: %w", err)
		}
	}

	r.cfg = candidate
	r.logger.Printf("config v%d: %s %s by %s", candidate.Version, action, detail, record.Operator)
	return nil
}

func (r *Registry) authorized(operator string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.operators[strings.ToLower(operator)]
}
