package domain

// MaxGenerations is the maximum referral cascade depth.
const MaxGenerations = 20

// ReferralEdge is a directed child → parent edge, set once at first deposit.
// Corresponds to referral_edges table in PostgreSQL.
type ReferralEdge struct {
	Child     string // child address
	Parent    string // parent address
	CreatedAt int64  // unix seconds
}

// GenerationRateTable maps generation (1-indexed) to its reward rate in
// basis points of the cascade base amount. Entry i covers generation i+1.
type GenerationRateTable []int64

// DefaultGenerationRateTable returns the standard 20-generation table:
// 20% / 10% / 5%x6 / 3%x7 / 2%x5. The authoritative table is operator
// configuration; this is only the initial value.
func DefaultGenerationRateTable() GenerationRateTable {
	t := make(GenerationRateTable, 0, MaxGenerations)
	t = append(t, 2000, 1000)
	for i := 0; i < 6; i++ {
		t = append(t, 500)
	}
	for i := 0; i < 7; i++ {
		t = append(t, 300)
	}
	for i := 0; i < 5; i++ {
		t = append(t, 200)
	}
	return t
}

// Rate returns the bps rate for a 1-indexed generation, zero when the
// generation is beyond the table.
func (g GenerationRateTable) Rate(generation int) int64 {
	if generation < 1 || generation > len(g) {
		return 0
	}
	return g[generation-1]
}

// Validate checks length and that rates are non-increasing across
// generations.
func (g GenerationRateTable) Validate() error {
	if len(g) == 0 || len(g) > MaxGenerations {
		return ErrInvalidConfig
	}
	for i, r := range g {
		if r < 0 || r > BpsDenominator {
			return ErrInvalidConfig
		}
		if i > 0 && r > g[i-1] {
			return ErrInvalidConfig
		}
	}
	return nil
}

// Clone returns a copy of the table.
func (g GenerationRateTable) Clone() GenerationRateTable {
	out := make(GenerationRateTable, len(g))
	copy(out, g)
	return out
}
