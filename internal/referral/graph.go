// Package referral maintains the upline graph and computes the
// generation-weighted reward cascade.
package referral

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"hcf-engine/internal/domain"
	"hcf-engine/internal/rewards"
	"hcf-engine/internal/storage"
)

// ErrMaxDepthExceeded is returned when attaching a child would push the
// ancestor chain past the maximum depth.
var ErrMaxDepthExceeded = errors.New("referral chain at maximum depth")

// ConfigSource supplies the live engine configuration.
type ConfigSource interface {
	Config() *domain.EngineConfig
}

// Graph walks the child → parent edges. Edges are weak address references
// kept in a store; the graph never owns account objects.
type Graph struct {
	edges    storage.ReferralEdgeStore
	accounts storage.AccountStore
	ranks    storage.RankSnapshotStore
	cfg      ConfigSource
	clock    func() time.Time
}

// New creates a graph.
func New(edges storage.ReferralEdgeStore, accounts storage.AccountStore, ranks storage.RankSnapshotStore, cfg ConfigSource) *Graph {
	return &Graph{
		edges:    edges,
		accounts: accounts,
		ranks:    ranks,
		cfg:      cfg,
		clock:    time.Now,
	}
}

// WithClock overrides the graph clock for deterministic tests.
func (g *Graph) WithClock(clock func() time.Time) {
	if clock != nil {
		g.clock = clock
	}
}

// SetUpline records a child → parent edge. Allowed once per child; the edge
// is immutable afterwards. The parent chain is walked before insertion to
// reject cycles and chains already at maximum depth.
func (g *Graph) SetUpline(ctx context.Context, child, parent string) error {
	if child == "" || parent == "" {
		return storage.ErrInvalidInput
	}
	if child == parent {
		return domain.ErrSelfUpline
	}

	if _, err := g.edges.Parent(ctx, child); err == nil {
		return domain.ErrUplineAlreadySet
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("check existing upline: %w", err)
	}

	// Walk the parent's ancestor chain. Seeing the child anywhere in it
	// means the new edge would close a cycle.
	depth := 0
	for current := parent; ; {
		ancestor, err := g.edges.Parent(ctx, current)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				break
			}
			return fmt.Errorf("walk ancestors of %s: %w", current, err)
		}
		if ancestor == child {
			return domain.ErrCycleDetected
		}
		depth++
		if depth >= domain.MaxGenerations {
			return ErrMaxDepthExceeded
		}
		current = ancestor
	}

	edge := &domain.ReferralEdge{
		Child:     child,
		Parent:    parent,
		CreatedAt: g.clock().Unix(),
	}
	if err := g.edges.Insert(ctx, edge); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return domain.ErrUplineAlreadySet
		}
		return fmt.Errorf("insert edge: %w", err)
	}
	return nil
}

// Upline returns the parent of a child, or empty when none is set.
func (g *Graph) Upline(ctx context.Context, child string) (string, error) {
	parent, err := g.edges.Parent(ctx, child)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return parent, nil
}

// Cascade computes the reward cascade for a qualifying event originating at
// origin with the given base amount. It walks up to MaxGenerations ancestor
// generations; a missing edge or ancestor account simply ends the walk.
//
// For generation g the base hop reward is baseAmount * rate[g] / 10000.
// Burn protection applies on the leading generations: when the ancestor's
// stake is below the origin's stake the hop reward is forfeited, not passed
// on. A rank bonus from the latest snapshots is added multiplicatively to
// the hop reward alone.
func (g *Graph) Cascade(ctx context.Context, origin string, baseAmount *big.Int) ([]rewards.Credit, error) {
	if origin == "" {
		return nil, storage.ErrInvalidInput
	}
	if baseAmount == nil || baseAmount.Sign() <= 0 {
		return nil, nil
	}

	cfg := g.cfg.Config()

	originAcct, err := g.accounts.Get(ctx, origin)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, storage.ErrInvalidInput
		}
		return nil, fmt.Errorf("load origin account: %w", err)
	}

	stakingRanks, communityRanks, err := g.latestSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	var credits []rewards.Credit
	current := origin
	for generation := 1; generation <= domain.MaxGenerations; generation++ {
		parent, err := g.edges.Parent(ctx, current)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				break
			}
			return nil, fmt.Errorf("walk upline of %s: %w", current, err)
		}
		current = parent

		ancestor, err := g.accounts.Get(ctx, parent)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				break
			}
			return nil, fmt.Errorf("load ancestor %s: %w", parent, err)
		}

		rate := cfg.GenerationRates.Rate(generation)
		if rate == 0 {
			continue
		}

		// Burn protection: a smaller upline cannot extract yield from a
		// larger downline on the protected generations. The hop reward is
		// forfeited, the walk continues.
		if generation <= cfg.BurnProtectionGenerations &&
			ancestor.StakedAmount.Cmp(originAcct.StakedAmount) < 0 {
			continue
		}

		reward := domain.ApplyBps(baseAmount, rate)

		bonus := cfg.StakingRankBands.BonusFor(stakingRanks.PositionOf(parent))
		if b := cfg.CommunityRankBands.BonusFor(communityRanks.PositionOf(parent)); b > bonus {
			bonus = b
		}
		if bonus > 0 {
			reward.Add(reward, domain.ApplyBps(reward, bonus))
		}

		if reward.Sign() > 0 {
			credits = append(credits, rewards.Credit{
				Address: parent,
				Amount:  reward,
				Kind:    domain.EventReferral,
				Counter: origin,
			})
		}
	}
	return credits, nil
}

// latestSnapshots loads the newest staking and community snapshots. Absent
// snapshots are treated as empty: no bonus applies.
func (g *Graph) latestSnapshots(ctx context.Context) (*domain.RankSnapshot, *domain.RankSnapshot, error) {
	staking, err := g.ranks.Latest(ctx, domain.RankKindStaking)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("load staking snapshot: %w", err)
	}
	community, err := g.ranks.Latest(ctx, domain.RankKindCommunity)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("load community snapshot: %w", err)
	}
	return staking, community, nil
}
