package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
)

// Token reads the external token contract's tax and burn accounting. The
// anti-dump burn/node split feeds into these figures; the engine itself only
// observes them.
type Token struct {
	client  *RPCClient
	address string
}

// NewToken creates a reader for the token contract address.
func NewToken(client *RPCClient, address string) *Token {
	return &Token{client: client, address: strings.ToLower(address)}
}

// TaxRates holds the token's transfer tax configuration in basis points.
type TaxRates struct {
	BuyBps      int64
	SellBps     int64
	TransferBps int64
}

// TaxRates reads the current buy/sell/transfer tax rates.
func (t *Token) TaxRates(ctx context.Context) (*TaxRates, error) {
	buy, err := t.client.callUint(ctx, t.address, selBuyTaxRate)
	if err != nil {
		return nil, fmt.Errorf("buyTaxRate: %w", err)
	}
	sell, err := t.client.callUint(ctx, t.address, selSellTaxRate)
	if err != nil {
		return nil, fmt.Errorf("sellTaxRate: %w", err)
	}
	transfer, err := t.client.callUint(ctx, t.address, selTransferTaxRate)
	if err != nil {
		return nil, fmt.Errorf("transferTaxRate: %w", err)
	}
	return &TaxRates{
		BuyBps:      buy.Int64(),
		SellBps:     sell.Int64(),
		TransferBps: transfer.Int64(),
	}, nil
}

// BurnStatus holds the token's burn accounting.
type BurnStatus struct {
	TotalBurned *big.Int
	StopSupply  *big.Int
}

// BurnStatus reads the cumulative burn and the burn stop supply.
func (t *Token) BurnStatus(ctx context.Context) (*BurnStatus, error) {
	burned, err := t.client.callUint(ctx, t.address, selTotalBurned)
	if err != nil {
		return nil, fmt.Errorf("totalBurned: %w", err)
	}
	stop, err := t.client.callUint(ctx, t.address, selBurnStopSupply)
	if err != nil {
		return nil, fmt.Errorf("BURN_STOP_SUPPLY: %w", err)
	}
	return &BurnStatus{TotalBurned: burned, StopSupply: stop}, nil
}

// BurnActive reports whether burning should continue: burning stops once
// total burned reaches the stop supply.
func (s *BurnStatus) BurnActive() bool {
	return s.TotalBurned.Cmp(s.StopSupply) < 0
}

// Address returns the token contract address.
func (t *Token) Address() string {
	return t.address
}
