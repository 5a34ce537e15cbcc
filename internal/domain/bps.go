package domain

import "math/big"

// BpsDenominator is the basis-point scale: 10000 bps = 100%.
const BpsDenominator = 10_000

// PriceScale is the fixed-point scale for prices (18 decimals).
var PriceScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// tokenUnit is the base-unit scale for whole token amounts.
var tokenUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Tokens converts a whole-token count to base units.
func Tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), tokenUnit)
}

// ApplyBps returns amount * bps / 10000, rounded down. A nil amount or a
// non-positive bps yields zero.
func ApplyBps(amount *big.Int, bps int64) *big.Int {
	if amount == nil || bps <= 0 {
		return new(big.Int)
	}
	out := new(big.Int).Mul(amount, big.NewInt(bps))
	return out.Quo(out, big.NewInt(BpsDenominator))
}

// SubBps returns amount reduced by bps: amount * (10000 - bps) / 10000,
// rounded down. Values of bps at or above 10000 yield zero.
func SubBps(amount *big.Int, bps int64) *big.Int {
	if bps >= BpsDenominator {
		return new(big.Int)
	}
	return ApplyBps(amount, BpsDenominator-bps)
}
