package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
)

// Pair reads the AMM pair contract. Implements oracle.PairSource.
type Pair struct {
	client  *RPCClient
	address string

	// token0/token1 are immutable on chain, cached after first read.
	mu     sync.Mutex
	token0 string
	token1 string
}

// NewPair creates a reader for a pair contract address.
func NewPair(client *RPCClient, address string) *Pair {
	return &Pair{client: client, address: strings.ToLower(address)}
}

// GetReserves returns the current pool reserves.
func (p *Pair) GetReserves(ctx context.Context) (*big.Int, *big.Int, error) {
	result, err := p.client.call(ctx, p.address, selGetReserves)
	if err != nil {
		return nil, nil, fmt.Errorf("getReserves: %w", err)
	}
	r0, err := decodeWord(result, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("getReserves reserve0: %w", err)
	}
	r1, err := decodeWord(result, 1)
	if err != nil {
		return nil, nil, fmt.Errorf("getReserves reserve1: %w", err)
	}
	return r0, r1, nil
}

// Token0 returns the address of the pair's first token.
func (p *Pair) Token0(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token0 != "" {
		return p.token0, nil
	}
	result, err := p.client.call(ctx, p.address, selToken0)
	if err != nil {
		return "", fmt.Errorf("token0: %w", err)
	}
	addr, err := decodeAddress(result, 0)
	if err != nil {
		return "", fmt.Errorf("token0: %w", err)
	}
	p.token0 = addr
	return addr, nil
}

// Token1 returns the address of the pair's second token.
func (p *Pair) Token1(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token1 != "" {
		return p.token1, nil
	}
	result, err := p.client.call(ctx, p.address, selToken1)
	if err != nil {
		return "", fmt.Errorf("token1: %w", err)
	}
	addr, err := decodeAddress(result, 0)
	if err != nil {
		return "", fmt.Errorf("token1: %w", err)
	}
	p.token1 = addr
	return addr, nil
}

// Address returns the pair contract address.
func (p *Pair) Address() string {
	return p.address
}
