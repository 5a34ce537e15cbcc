package domain

// PricePoint is one sampled pair price with the stability reading derived
// from it. Analytics only; the ledger never reads these back.
// Corresponds to price_history table in ClickHouse.
type PricePoint struct {
	Timestamp  int64   // unix seconds
	Price      float64 // quote per base, whole-token scale
	DropBps    int64   // 24h drop at sample time
	ActiveTier int     // stability tier index at sample time
}

// PayoutPoint records one credited reward for analytics.
// Corresponds to payout_history table in ClickHouse.
type PayoutPoint struct {
	Address   string  // receiving account
	Kind      string  // accrue | referral | claim
	Amount    float64 // whole-token scale
	Timestamp int64   // unix seconds
}
