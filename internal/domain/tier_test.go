package domain

import (
	"errors"
	"math/big"
	"testing"
)

func TestTierTable_TierFor_InclusiveBoundaries(t *testing.T) {
	table := DefaultTierTable()

	cases := []struct {
		amount *big.Int
		want   StakeTier
		found  bool
	}{
		{Tokens(99), TierNone, false},
		{Tokens(100), TierL1, true},
		{Tokens(9_999), TierL1, true},
		{Tokens(10_000), TierL2, true},
		{Tokens(100_000), TierL3, true},
		{Tokens(499_999), TierL3, true},
		{Tokens(500_000), TierL4, true},
		{Tokens(1_000_000), TierL5, true},
		{Tokens(50_000_000), TierL5, true},
	}

	for _, c := range cases {
		tier, ok := table.TierFor(c.amount)
		if ok != c.found {
			t.Errorf("TierFor(%s): found=%v, want %v", c.amount, ok, c.found)
			continue
		}
		if ok && tier.Level != c.want {
			t.Errorf("TierFor(%s): got %s, want %s", c.amount, tier.Level, c.want)
		}
	}
}

func TestTierTable_Get(t *testing.T) {
	table := DefaultTierTable()

	tier, ok := table.Get(TierL3)
	if !ok {
		t.Fatal("L3 not found")
	}
	if tier.DailyRateBps != 80 {
		t.Errorf("L3 rate: got %d, want 80", tier.DailyRateBps)
	}

	if _, ok := table.Get(TierNone); ok {
		t.Error("expected TierNone to be absent")
	}
}

func TestTierTable_Validate(t *testing.T) {
	if err := DefaultTierTable().Validate(); err != nil {
		t.Fatalf("default table invalid: %v", err)
	}

	if err := (TierTable{}).Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("empty table: got %v, want ErrInvalidConfig", err)
	}

	// Thresholds out of order
	bad := TierTable{
		{Level: TierL1, MinStake: Tokens(1000), DailyRateBps: 40},
		{Level: TierL2, MinStake: Tokens(100), DailyRateBps: 60},
	}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("unordered table: got %v, want ErrInvalidConfig", err)
	}

	// Duplicate level
	bad = TierTable{
		{Level: TierL1, MinStake: Tokens(100), DailyRateBps: 40},
		{Level: TierL1, MinStake: Tokens(1000), DailyRateBps: 60},
	}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("duplicate level: got %v, want ErrInvalidConfig", err)
	}
}

func TestTierTable_CloneIndependence(t *testing.T) {
	table := DefaultTierTable()
	clone := table.Clone()

	clone[0].MinStake.SetInt64(1)
	if table[0].MinStake.Cmp(Tokens(100)) != 0 {
		t.Error("clone shares MinStake with original")
	}
}

func TestStabilityTierTable_TierFor(t *testing.T) {
	table := DefaultStabilityTiers()

	cases := []struct {
		dropBps int64
		want    int
	}{
		{0, 0},
		{999, 0},
		{1000, 1},
		{2999, 1},
		{3000, 2},
		{3500, 2},
		{5000, 3},
		{9999, 3},
	}
	for _, c := range cases {
		if got := table.TierFor(c.dropBps); got != c.want {
			t.Errorf("TierFor(%d): got %d, want %d", c.dropBps, got, c.want)
		}
	}
}

func TestStabilityTierTable_TierFor_Monotonic(t *testing.T) {
	table := DefaultStabilityTiers()

	prev := 0
	for drop := int64(0); drop <= BpsDenominator; drop += 50 {
		tier := table.TierFor(drop)
		if tier < prev {
			t.Fatalf("tier decreased from %d to %d at drop %d", prev, tier, drop)
		}
		prev = tier
	}
}

func TestStabilityTierTable_Validate(t *testing.T) {
	if err := DefaultStabilityTiers().Validate(); err != nil {
		t.Fatalf("default table invalid: %v", err)
	}

	// Missing stable tier
	bad := StabilityTierTable{{DropThresholdBps: 1000}}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nonzero first threshold: got %v, want ErrInvalidConfig", err)
	}

	// Unordered thresholds
	bad = StabilityTierTable{{DropThresholdBps: 0}, {DropThresholdBps: 3000}, {DropThresholdBps: 1000}}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("unordered thresholds: got %v, want ErrInvalidConfig", err)
	}
}

func TestGenerationRateTable_Rate(t *testing.T) {
	table := DefaultGenerationRateTable()

	if len(table) != MaxGenerations {
		t.Fatalf("table length: got %d, want %d", len(table), MaxGenerations)
	}

	cases := []struct {
		generation int
		want       int64
	}{
		{1, 2000},
		{2, 1000},
		{3, 500},
		{8, 500},
		{9, 300},
		{15, 300},
		{16, 200},
		{20, 200},
		{0, 0},
		{21, 0},
	}
	for _, c := range cases {
		if got := table.Rate(c.generation); got != c.want {
			t.Errorf("Rate(%d): got %d, want %d", c.generation, got, c.want)
		}
	}
}

func TestGenerationRateTable_Validate(t *testing.T) {
	if err := DefaultGenerationRateTable().Validate(); err != nil {
		t.Fatalf("default table invalid: %v", err)
	}

	// Increasing rate
	bad := GenerationRateTable{1000, 2000}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("increasing rates: got %v, want ErrInvalidConfig", err)
	}

	// Too long
	long := make(GenerationRateTable, MaxGenerations+1)
	if err := long.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("oversized table: got %v, want ErrInvalidConfig", err)
	}
}

func TestRankBandTable_BonusFor(t *testing.T) {
	bands := DefaultStakingRankBands()

	cases := []struct {
		position int
		want     int64
	}{
		{0, 0},
		{1, 2000},
		{100, 2000},
		{101, 1500},
		{500, 1500},
		{501, 1000},
		{2000, 1000},
		{2001, 0},
	}
	for _, c := range cases {
		if got := bands.BonusFor(c.position); got != c.want {
			t.Errorf("BonusFor(%d): got %d, want %d", c.position, got, c.want)
		}
	}
}

func TestRankSnapshot_PositionOf(t *testing.T) {
	var nilSnapshot *RankSnapshot
	if got := nilSnapshot.PositionOf("0xabc"); got != 0 {
		t.Errorf("nil snapshot: got %d, want 0", got)
	}

	s := &RankSnapshot{
		Kind: RankKindStaking,
		Entries: []RankEntry{
			{Address: "0xaaa", Position: 1, Score: Tokens(500)},
			{Address: "0xbbb", Position: 2, Score: Tokens(100)},
		},
	}
	if got := s.PositionOf("0xbbb"); got != 2 {
		t.Errorf("PositionOf(0xbbb): got %d, want 2", got)
	}
	if got := s.PositionOf("0xccc"); got != 0 {
		t.Errorf("absent address: got %d, want 0", got)
	}
}
