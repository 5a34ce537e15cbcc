package referral

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"hcf-engine/internal/domain"
)

// BuildStakingSnapshot ranks accounts by staked amount and stores the
// result. The snapshot covers the widest configured staking rank band.
func (g *Graph) BuildStakingSnapshot(ctx context.Context) (*domain.RankSnapshot, error) {
	limit := bandLimit(g.cfg.Config().StakingRankBands)
	accounts, err := g.accounts.TopByStake(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("rank accounts by stake: %w", err)
	}

	snapshot := &domain.RankSnapshot{
		Kind:    domain.RankKindStaking,
		TakenAt: g.clock().Unix(),
	}
	for i, acct := range accounts {
		snapshot.Entries = append(snapshot.Entries, domain.RankEntry{
			Address:  acct.Address,
			Position: i + 1,
			Score:    new(big.Int).Set(acct.StakedAmount),
		})
	}
	if err := g.ranks.Insert(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("store staking snapshot: %w", err)
	}
	return snapshot, nil
}

// BuildCommunitySnapshot ranks accounts by community performance: own stake
// plus the stake of all direct children. The snapshot covers the widest
// configured community rank band.
func (g *Graph) BuildCommunitySnapshot(ctx context.Context) (*domain.RankSnapshot, error) {
	accounts, err := g.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	stakes := make(map[string]*big.Int, len(accounts))
	for _, acct := range accounts {
		stakes[acct.Address] = acct.StakedAmount
	}

	type scored struct {
		address string
		score   *big.Int
	}
	var ranked []scored
	for _, acct := range accounts {
		score := new(big.Int).Set(acct.StakedAmount)
		children, err := g.edges.Children(ctx, acct.Address)
		if err != nil {
			return nil, fmt.Errorf("children of %s: %w", acct.Address, err)
		}
		for _, edge := range children {
			if s, ok := stakes[edge.Child]; ok {
				score.Add(score, s)
			}
		}
		if score.Sign() > 0 {
			ranked = append(ranked, scored{address: acct.Address, score: score})
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if c := ranked[i].score.Cmp(ranked[j].score); c != 0 {
			return c > 0
		}
		return ranked[i].address < ranked[j].address
	})

	limit := bandLimit(g.cfg.Config().CommunityRankBands)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	snapshot := &domain.RankSnapshot{
		Kind:    domain.RankKindCommunity,
		TakenAt: g.clock().Unix(),
	}
	for i, r := range ranked {
		snapshot.Entries = append(snapshot.Entries, domain.RankEntry{
			Address:  r.address,
			Position: i + 1,
			Score:    r.score,
		})
	}
	if err := g.ranks.Insert(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("store community snapshot: %w", err)
	}
	return snapshot, nil
}

// bandLimit returns the widest UpTo bound of a band table.
func bandLimit(bands domain.RankBandTable) int {
	limit := 0
	for _, b := range bands {
		if b.UpTo > limit {
			limit = b.UpTo
		}
	}
	if limit == 0 {
		limit = 1
	}
	return limit
}
