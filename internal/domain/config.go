package domain

// EngineConfig is the versioned set of all tunable tables and rates.
// Loaded at initialization and mutated only through the operator surface;
// every accepted change bumps Version.
type EngineConfig struct {
	Version int

	Tiers           TierTable
	Stability       StabilityTierTable
	GenerationRates GenerationRateTable

	// BurnProtectionGenerations is the number of leading generations the
	// burn-protection rule applies to.
	BurnProtectionGenerations int

	StakingRankBands   RankBandTable
	CommunityRankBands RankBandTable

	DailyCapBps   int64 // caps cumulative daily output per account
	ClaimTaxBps   int64 // tax withheld on claim
	RedeemFeeBps  int64 // redemption penalty paid as fee
	RedeemBurnBps int64 // redemption penalty burned
}

// DefaultEngineConfig returns the initial configuration.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Version:                   1,
		Tiers:                     DefaultTierTable(),
		Stability:                 DefaultStabilityTiers(),
		GenerationRates:           DefaultGenerationRateTable(),
		BurnProtectionGenerations: 10,
		StakingRankBands:          DefaultStakingRankBands(),
		CommunityRankBands:        DefaultCommunityRankBands(),
		DailyCapBps:               500,
		ClaimTaxBps:               200,
		RedeemFeeBps:              300,
		RedeemBurnBps:             200,
	}
}

// Validate checks every table and rate.
func (c *EngineConfig) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}
	if err := c.Tiers.Validate(); err != nil {
		return err
	}
	if err := c.Stability.Validate(); err != nil {
		return err
	}
	if err := c.GenerationRates.Validate(); err != nil {
		return err
	}
	if err := c.StakingRankBands.Validate(); err != nil {
		return err
	}
	if err := c.CommunityRankBands.Validate(); err != nil {
		return err
	}
	if c.BurnProtectionGenerations < 0 || c.BurnProtectionGenerations > MaxGenerations {
		return ErrInvalidConfig
	}
	for _, bps := range []int64{c.DailyCapBps, c.ClaimTaxBps, c.RedeemFeeBps, c.RedeemBurnBps} {
		if bps < 0 || bps > BpsDenominator {
			return ErrInvalidConfig
		}
	}
	if c.RedeemFeeBps+c.RedeemBurnBps > BpsDenominator {
		return ErrInvalidConfig
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *EngineConfig) Clone() *EngineConfig {
	if c == nil {
		return nil
	}
	out := *c
	out.Tiers = c.Tiers.Clone()
	out.Stability = c.Stability.Clone()
	out.GenerationRates = c.GenerationRates.Clone()
	out.StakingRankBands = c.StakingRankBands.Clone()
	out.CommunityRankBands = c.CommunityRankBands.Clone()
	return &out
}
