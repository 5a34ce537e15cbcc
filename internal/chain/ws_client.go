package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// SyncTopic is the event signature hash of the AMM pair's Sync(uint112,uint112)
// event, emitted on every reserve change.
const SyncTopic = "0x1c411e9a96e071241c2f21f7726b17ae89e3cab4c78be50e062b03a9fffbbad1"

// WSConfig configures WebSocket client behavior.
type WSConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is the maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns the default WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// ReserveSignal notifies that the pair's reserves changed.
type ReserveSignal struct {
	BlockNumber string // hex block number from the log
	TxHash      string
}

// WSClient subscribes to Sync events of one pair over an EVM WebSocket
// endpoint and delivers a signal per event. The subscription is restored
// automatically after a reconnect.
type WSClient struct {
	endpoint string
	pair     string
	config   WSConfig
	logger   *log.Logger

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	signals chan ReserveSignal
	done    chan struct{}
}

// NewWSClient creates a client for a WebSocket endpoint and pair address.
func NewWSClient(endpoint, pairAddress string, config WSConfig, logger *log.Logger) *WSClient {
	if logger == nil {
		logger = log.Default()
	}
	return &WSClient{
		endpoint: endpoint,
		pair:     pairAddress,
		config:   config,
		logger:   logger,
		signals:  make(chan ReserveSignal, 64),
		done:     make(chan struct{}),
	}
}

// Signals returns the channel reserve-change signals are delivered on.
// The channel is closed when the client shuts down.
func (c *WSClient) Signals() <-chan ReserveSignal {
	return c.signals
}

// Run connects, subscribes and pumps events until ctx is cancelled or
// Close is called. Reconnects with exponential backoff.
func (c *WSClient) Run(ctx context.Context) {
	defer close(c.signals)
	defer close(c.done)

	delay := c.config.ReconnectDelay
	for {
		if c.closed.Load() || ctx.Err() != nil {
			return
		}
		if err := c.connectAndPump(ctx); err != nil {
			if c.closed.Load() || ctx.Err() != nil {
				return
			}
			c.logger.Printf("ws: connection lost: %v, reconnecting in %s", err, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
			delay *= 2
			if delay > c.config.MaxReconnectDelay {
				delay = c.config.MaxReconnectDelay
			}
			continue
		}
		delay = c.config.ReconnectDelay
	}
}

// Close stops the client.
func (c *WSClient) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.connMu.Unlock()
}

// wsMessage covers both subscription confirmations and notifications.
type wsMessage struct {
	ID     uint64          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
	Params *struct {
		Subscription string          `json:"subscription"`
		Result       json.RawMessage `json:"result"`
	} `json:"params,omitempty"`
}

// logEntry is the subset of an EVM log notification the client uses.
type logEntry struct {
	Address     string `json:"address"`
	BlockNumber string `json:"blockNumber"`
	TxHash      string `json:"transactionHash"`
}

func (c *WSClient) connectAndPump(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: c.config.WriteTimeout}
	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	defer conn.Close()

	sub := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  "eth_subscribe",
		Params: []interface{}{
			"logs",
			map[string]interface{}{
				"address": c.pair,
				"topics":  []string{SyncTopic},
			},
		},
	}
	conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	c.logger.Printf("ws: subscribed to Sync events of %s", c.pair)

	for {
		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if msg.Error != nil {
			return fmt.Errorf("subscription: %w", msg.Error)
		}
		if msg.Params == nil {
			continue // subscription confirmation
		}

		var entry logEntry
		if err := json.Unmarshal(msg.Params.Result, &entry); err != nil {
			c.logger.Printf("ws: malformed log notification: %v", err)
			continue
		}
		signal := ReserveSignal{BlockNumber: entry.BlockNumber, TxHash: entry.TxHash}
		select {
		case c.signals <- signal:
		default:
			// Drop when the consumer lags; the next signal carries the
			// same information (reserves changed).
		}
	}
}
