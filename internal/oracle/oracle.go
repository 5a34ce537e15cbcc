// Package oracle derives a spot price from AMM pair reserves.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"hcf-engine/internal/domain"
)

// ErrStaleOrEmptyPool is returned when either pool reserve is zero.
var ErrStaleOrEmptyPool = errors.New("stale or empty pool")

// PairSource exposes the AMM pair contract surface the oracle reads.
type PairSource interface {
	// GetReserves returns the current pool reserves.
	GetReserves(ctx context.Context) (reserve0, reserve1 *big.Int, err error)

	// Token0 returns the address of the pair's first token.
	Token0(ctx context.Context) (string, error)

	// Token1 returns the address of the pair's second token.
	Token1(ctx context.Context) (string, error)
}

// PriceOracle computes quote/base spot prices from a pair source.
// It holds no mutable state; every Price call re-reads the reserves.
type PriceOracle struct {
	pair  PairSource
	base  string // base token address, lowercase
	quote string // quote token address, lowercase
}

// New creates an oracle for the base/quote tokens of a pair.
func New(pair PairSource, baseToken, quoteToken string) *PriceOracle {
	return &PriceOracle{
		pair:  pair,
		base:  strings.ToLower(baseToken),
		quote: strings.ToLower(quoteToken),
	}
}

// Price returns quoteReserve * 1e18 / baseReserve, rounded down.
// Returns ErrStaleOrEmptyPool when either reserve is zero.
func (o *PriceOracle) Price(ctx context.Context) (*big.Int, error) {
	r0, r1, err := o.pair.GetReserves(ctx)
	if err != nil {
		return nil, fmt.Errorf("get reserves: %w", err)
	}
	if r0 == nil || r1 == nil || r0.Sign() == 0 || r1.Sign() == 0 {
		return nil, ErrStaleOrEmptyPool
	}

	t0, err := o.pair.Token0(ctx)
	if err != nil {
		return nil, fmt.Errorf("token0: %w", err)
	}

	baseReserve, quoteReserve := r0, r1
	if strings.ToLower(t0) != o.base {
		baseReserve, quoteReserve = r1, r0
	}

	price := new(big.Int).Mul(quoteReserve, domain.PriceScale)
	return price.Quo(price, baseReserve), nil
}

// PairedAmount returns the quote-token amount matching a base-token amount
// at the given 1e18-scaled price, rounded down.
func PairedAmount(baseAmount, price *big.Int) *big.Int {
	out := new(big.Int).Mul(baseAmount, price)
	return out.Quo(out, domain.PriceScale)
}
