// Package chain talks to the external token and AMM pair contracts over
// JSON-RPC and WebSocket. The engine only reads from these collaborators.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second
)

// Contract function selectors (first four bytes of the keccak256 signature).
const (
	selGetReserves      = "0x0902f1ac" // getReserves()
	selToken0           = "0x0dfe1681" // token0()
	selToken1           = "0xd21220a7" // token1()
	selBuyTaxRate       = "0x9b1f9e74" // buyTaxRate()
	selSellTaxRate      = "0xd6b513cf" // sellTaxRate()
	selTransferTaxRate  = "0x69fe0e2d" // transferTaxRate()
	selTotalBurned      = "0xd89135cd" // totalBurned()
	selBurnStopSupply   = "0x8c7af1eb" // BURN_STOP_SUPPLY()
)

// RPCClient is an EVM JSON-RPC 2.0 client restricted to the read-only calls
// the engine needs.
type RPCClient struct {
	endpoint  string
	client    *http.Client
	requestID atomic.Uint64
}

// ClientOption configures RPCClient.
type ClientOption func(*RPCClient)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *RPCClient) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *RPCClient) {
		c.client = client
	}
}

// NewRPCClient creates a client for an EVM JSON-RPC endpoint.
func NewRPCClient(endpoint string, opts ...ClientOption) *RPCClient {
	c := &RPCClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// call performs eth_call against a contract with pre-encoded calldata and
// returns the raw hex result.
func (c *RPCClient) call(ctx context.Context, contract, data string) (string, error) {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  "eth_call",
		Params: []interface{}{
			map[string]string{"to": contract, "data": data},
			"latest",
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http status %d: %s", httpResp.StatusCode, respBody)
	}

	var resp rpcResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return "", resp.Error
	}

	var result string
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return "", fmt.Errorf("unmarshal result: %w", err)
	}
	return result, nil
}

// callUint performs a read returning a single uint256.
func (c *RPCClient) callUint(ctx context.Context, contract, selector string) (*big.Int, error) {
	result, err := c.call(ctx, contract, selector)
	if err != nil {
		return nil, err
	}
	return decodeWord(result, 0)
}

// decodeWord extracts the n-th 32-byte word of an ABI-encoded hex result.
func decodeWord(result string, n int) (*big.Int, error) {
	hexData := strings.TrimPrefix(result, "0x")
	start := n * 64
	if len(hexData) < start+64 {
		return nil, fmt.Errorf("short call result: %d words, want word %d", len(hexData)/64, n)
	}
	word, ok := new(big.Int).SetString(hexData[start:start+64], 16)
	if !ok {
		return nil, fmt.Errorf("malformed call result word %d", n)
	}
	return word, nil
}

// decodeAddress extracts the n-th word as a lowercase hex address.
func decodeAddress(result string, n int) (string, error) {
	word, err := decodeWord(result, n)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("0x%040x", word), nil
}
