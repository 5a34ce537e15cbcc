// Package main provides the yield engine daemon:
// - Chain watch (continuous): WebSocket Sync events drive stability updates
// - Accrual sweep (scheduled): settles pending output for active stakers
// - Rank snapshots (scheduled): rebuilds staking and community leaderboards
// - Token stats (scheduled): caches the token contract's tax/burn figures
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"hcf-engine/internal/antidump"
	"hcf-engine/internal/chain"
	"hcf-engine/internal/domain"
	"hcf-engine/internal/engine"
	"hcf-engine/internal/observability"
	"hcf-engine/internal/operator"
	"hcf-engine/internal/oracle"
	"hcf-engine/internal/referral"
	"hcf-engine/internal/rewards"
	"hcf-engine/internal/staking"
	"hcf-engine/internal/storage"
	chstore "hcf-engine/internal/storage/clickhouse"
	"hcf-engine/internal/storage/memory"
	"hcf-engine/internal/storage/migrations"
	pgstore "hcf-engine/internal/storage/postgres"
)

// Server holds all components of the daemon.
type Server struct {
	// Configuration
	rpcEndpoint      string
	wsEndpoint       string
	pairAddress      string
	useMemory        bool
	updateInterval   time.Duration
	accrueInterval   time.Duration
	snapshotInterval time.Duration
	tokenInterval    time.Duration

	// Components
	stores  *allStores
	engine  *engine.Engine
	token   *chain.Token
	metrics *observability.Metrics
	logger  *log.Logger

	// State
	mu            sync.Mutex
	started       time.Time
	lastUpdate    time.Time
	lastSweep     time.Time
	lastSnapshot  time.Time
	updateRuns    int
	sweepRuns     int
	snapshotRuns  int
	pendingPrices []*domain.PricePoint
	taxRates      *chain.TaxRates
	burnStatus    *chain.BurnStatus
}

// allStores holds all storage implementations.
type allStores struct {
	accountStore      storage.AccountStore
	referralEdgeStore storage.ReferralEdgeStore
	rankSnapshotStore storage.RankSnapshotStore
	stabilityStore    storage.StabilityStateStore
	ledgerEventStore  storage.LedgerEventStore
	auditLogStore     storage.AuditLogStore
	priceHistoryStore storage.PriceHistoryStore
	payoutStore       storage.PayoutHistoryStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("CHAIN_RPC_ENDPOINT"), "EVM JSON-RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("CHAIN_WS_ENDPOINT"), "EVM WebSocket endpoint")
	pairAddress := flag.String("pair", os.Getenv("PAIR_ADDRESS"), "AMM pair contract address")
	baseToken := flag.String("base-token", os.Getenv("BASE_TOKEN"), "Engine token contract address")
	quoteToken := flag.String("quote-token", os.Getenv("QUOTE_TOKEN"), "Paired asset contract address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	operators := flag.String("operators", os.Getenv("OPERATORS"), "Comma-separated operator addresses")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	updateInterval := flag.Duration("update-interval", 1*time.Minute, "Stability update fallback interval")
	accrueInterval := flag.Duration("accrue-interval", 1*time.Hour, "Accrual sweep interval")
	snapshotInterval := flag.Duration("snapshot-interval", 24*time.Hour, "Rank snapshot rebuild interval")
	tokenInterval := flag.Duration("token-interval", 10*time.Minute, "Token tax/burn stats refresh interval")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[engined] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if *wsEndpoint == "" {
		logger.Fatal("--ws-endpoint is required")
	}
	if *pairAddress == "" || *baseToken == "" || *quoteToken == "" {
		logger.Fatal("--pair, --base-token and --quote-token are required")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Create chain clients and oracle
	rpc := chain.NewRPCClient(*rpcEndpoint)
	pair := chain.NewPair(rpc, *pairAddress)
	token := chain.NewToken(rpc, *baseToken)
	priceOracle := oracle.New(pair, *baseToken, *quoteToken)

	// Create engine components
	registry, err := operator.NewRegistry(domain.DefaultEngineConfig(), splitList(*operators), stores.auditLogStore, logger)
	if err != nil {
		logger.Fatalf("Failed to create operator registry: %v", err)
	}
	controller := antidump.New(priceOracle, stores.stabilityStore, registry,
		log.New(os.Stdout, "[antidump] ", log.LstdFlags|log.Lshortfile))
	ledger := staking.New(stores.accountStore, stores.ledgerEventStore, registry)
	graph := referral.New(stores.referralEdgeStore, stores.accountStore, stores.rankSnapshotStore, registry)
	distributor := rewards.New(stores.accountStore, stores.ledgerEventStore)

	eng := engine.New(engine.Options{
		Oracle:      priceOracle,
		Ledger:      ledger,
		Controller:  controller,
		Graph:       graph,
		Distributor: distributor,
		Logger:      logger,
	})

	server := &Server{
		rpcEndpoint:      *rpcEndpoint,
		wsEndpoint:       *wsEndpoint,
		pairAddress:      *pairAddress,
		useMemory:        *useMemory,
		updateInterval:   *updateInterval,
		accrueInterval:   *accrueInterval,
		snapshotInterval: *snapshotInterval,
		tokenInterval:    *tokenInterval,
		stores:           stores,
		engine:           eng,
		token:            token,
		metrics:          observability.NewMetrics(""),
		logger:           logger,
		started:          time.Now(),
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start HTTP server
	go server.startHTTPServer(*metricsAddr)

	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			accountStore:      memory.NewAccountStore(),
			referralEdgeStore: memory.NewReferralEdgeStore(),
			rankSnapshotStore: memory.NewRankSnapshotStore(),
			stabilityStore:    memory.NewStabilityStateStore(),
			ledgerEventStore:  memory.NewLedgerEventStore(),
			auditLogStore:     memory.NewAuditLogStore(),
			priceHistoryStore: memory.NewPriceHistoryStore(),
			payoutStore:       memory.NewPayoutHistoryStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	stores := &allStores{
		accountStore:      pgstore.NewAccountStore(pool),
		referralEdgeStore: pgstore.NewReferralEdgeStore(pool),
		rankSnapshotStore: pgstore.NewRankSnapshotStore(pool),
		stabilityStore:    pgstore.NewStabilityStateStore(pool),
		ledgerEventStore:  pgstore.NewLedgerEventStore(pool),
		auditLogStore:     pgstore.NewAuditLogStore(pool),
	}

	cleanup := func() { pool.Close() }

	// ClickHouse is optional; analytics timeseries are skipped without it.
	if clickhouseDSN != "" {
		chConn, err := chstore.NewConn(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		if err := migrations.RunClickhouseMigrations(ctx, chConn); err != nil {
			chConn.Close()
			pool.Close()
			return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
		}
		stores.priceHistoryStore = chstore.NewPriceHistoryStore(chConn)
		stores.payoutStore = chstore.NewPayoutHistoryStore(chConn)
		cleanup = func() {
			chConn.Close()
			pool.Close()
		}
	}

	return stores, cleanup, nil
}

// Run starts the daemon with all loops.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting engine daemon...")

	errCh := make(chan error, 4)

	// Chain watch: Sync events plus a fallback ticker
	go func() {
		err := s.runChainWatch(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("chain watch: %w", err)
		}
	}()

	// Accrual sweep scheduler
	go func() {
		err := s.runAccrualScheduler(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("accrual scheduler: %w", err)
		}
	}()

	// Rank snapshot scheduler
	go func() {
		err := s.runSnapshotScheduler(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("snapshot scheduler: %w", err)
		}
	}()

	// Token tax/burn stats refresh
	go func() {
		err := s.runTokenRefresh(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("token refresh: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runChainWatch drives stability updates from Sync events, with a fallback
// ticker so the 24h window rolls even on a quiet pair.
func (s *Server) runChainWatch(ctx context.Context) error {
	s.logger.Printf("Watching pair %s (fallback interval: %v)...", s.pairAddress, s.updateInterval)

	ws := chain.NewWSClient(s.wsEndpoint, s.pairAddress, chain.DefaultWSConfig(),
		log.New(os.Stdout, "[chain-ws] ", log.LstdFlags|log.Lshortfile))
	defer ws.Close()
	go ws.Run(ctx)

	// Prime the controller on start
	s.runUpdate(ctx)

	ticker := time.NewTicker(s.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ws.Signals():
			s.metrics.ReserveSignals.Inc()
			s.runUpdate(ctx)
		case <-ticker.C:
			s.runUpdate(ctx)
		}
	}
}

// runUpdate executes one stability update and records the resulting point.
func (s *Server) runUpdate(ctx context.Context) {
	s.metrics.UpdateChecksTotal.Inc()

	state, err := s.engine.UpdateAndCheck(ctx)
	if err != nil {
		s.metrics.OracleErrors.Inc()
		s.logger.Printf("Stability update error: %v", err)
		return
	}

	s.metrics.ActiveTier.Set(float64(state.ActiveTier))
	s.metrics.DropBps.Set(float64(state.DropBps))
	s.metrics.LastSuccessfulUpdate.SetToCurrentTime()

	s.mu.Lock()
	s.lastUpdate = time.Now()
	s.updateRuns++
	s.pendingPrices = append(s.pendingPrices, &domain.PricePoint{
		Timestamp:  state.UpdatedAt,
		Price:      toTokens(state.CurrentPrice),
		DropBps:    state.DropBps,
		ActiveTier: state.ActiveTier,
	})
	flush := len(s.pendingPrices) >= 100
	var points []*domain.PricePoint
	if flush {
		points = s.pendingPrices
		s.pendingPrices = nil
	}
	s.mu.Unlock()

	if flush && s.stores.priceHistoryStore != nil {
		if err := s.stores.priceHistoryStore.InsertBulk(ctx, points); err != nil {
			s.logger.Printf("Price history flush error: %v", err)
		}
	}
}

// runAccrualScheduler settles pending output for all active stakers on
// schedule.
func (s *Server) runAccrualScheduler(ctx context.Context) error {
	s.logger.Printf("Starting accrual scheduler (interval: %v)...", s.accrueInterval)

	ticker := time.NewTicker(s.accrueInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runAccrualSweep(ctx)
		}
	}
}

// runAccrualSweep accrues every account with a positive stake.
func (s *Server) runAccrualSweep(ctx context.Context) {
	start := time.Now()
	accounts, err := s.stores.accountStore.List(ctx)
	if err != nil {
		s.logger.Printf("Accrual sweep list error: %v", err)
		return
	}

	var settled, capped int
	var payouts []*domain.PayoutPoint
	for _, a := range accounts {
		if a.StakedAmount.Sign() == 0 {
			continue
		}
		res, err := s.engine.Accrue(ctx, a.Address)
		if err != nil {
			s.metrics.OperationErrors.WithLabelValues("accrue").Inc()
			s.logger.Printf("Accrue %s error: %v", a.Address, err)
			continue
		}
		s.metrics.AccrualsTotal.Inc()
		if res.Capped {
			s.metrics.CappedAccruals.Inc()
			capped++
		}
		if res.Credited.Sign() > 0 {
			settled++
			payouts = append(payouts, &domain.PayoutPoint{
				Address:   a.Address,
				Kind:      domain.EventAccrue,
				Amount:    toTokens(res.Credited),
				Timestamp: time.Now().Unix(),
			})
		}
	}

	if len(payouts) > 0 && s.stores.payoutStore != nil {
		if err := s.stores.payoutStore.InsertBulk(ctx, payouts); err != nil {
			s.logger.Printf("Payout history flush error: %v", err)
		}
	}

	s.mu.Lock()
	s.lastSweep = time.Now()
	s.sweepRuns++
	s.mu.Unlock()

	s.logger.Printf("Accrual sweep completed in %v: %d settled, %d capped",
		time.Since(start), settled, capped)
}

// runSnapshotScheduler rebuilds rank snapshots on schedule.
func (s *Server) runSnapshotScheduler(ctx context.Context) error {
	s.logger.Printf("Starting snapshot scheduler (interval: %v)...", s.snapshotInterval)

	// Build initial snapshots so cascade rank bonuses apply from the start
	s.runSnapshotRebuild(ctx)

	ticker := time.NewTicker(s.snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runSnapshotRebuild(ctx)
		}
	}
}

// runSnapshotRebuild rebuilds both rank snapshots.
func (s *Server) runSnapshotRebuild(ctx context.Context) {
	start := time.Now()
	if err := s.engine.RebuildRankSnapshots(ctx); err != nil {
		s.logger.Printf("Snapshot rebuild error: %v", err)
		return
	}
	s.metrics.RankSnapshotsBuilt.Inc()

	s.mu.Lock()
	s.lastSnapshot = time.Now()
	s.snapshotRuns++
	s.mu.Unlock()

	s.logger.Printf("Rank snapshots rebuilt in %v", time.Since(start))
}

// runTokenRefresh polls the token contract's tax rates and burn accounting
// so /status and the burn gauges track the contract without hitting the RPC
// on every request.
func (s *Server) runTokenRefresh(ctx context.Context) error {
	s.logger.Printf("Starting token stats refresh for %s (interval: %v)...", s.token.Address(), s.tokenInterval)

	s.refreshTokenStats(ctx)

	ticker := time.NewTicker(s.tokenInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.refreshTokenStats(ctx)
		}
	}
}

// refreshTokenStats reads the token contract once. Failures keep the last
// cached values.
func (s *Server) refreshTokenStats(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	rates, err := s.token.TaxRates(ctx)
	if err != nil {
		s.logger.Printf("Token tax rates read error: %v", err)
		return
	}
	burn, err := s.token.BurnStatus(ctx)
	if err != nil {
		s.logger.Printf("Token burn status read error: %v", err)
		return
	}

	s.metrics.TokenTotalBurned.Set(toTokens(burn.TotalBurned))
	if burn.BurnActive() {
		s.metrics.TokenBurnActive.Set(1)
	} else {
		s.metrics.TokenBurnActive.Set(0)
	}

	s.mu.Lock()
	s.taxRates = rates
	s.burnStatus = burn
	s.mu.Unlock()
}

// startHTTPServer starts the HTTP server for health/metrics/status.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status       string    `json:"status"`
	Uptime       string    `json:"uptime"`
	LastUpdate   time.Time `json:"last_update,omitempty"`
	LastSweep    time.Time `json:"last_sweep,omitempty"`
	LastSnapshot time.Time `json:"last_snapshot,omitempty"`
	UpdateRuns   int       `json:"update_runs"`
	SweepRuns    int       `json:"sweep_runs"`
	SnapshotRuns int       `json:"snapshot_runs"`

	Token *TokenStatus `json:"token,omitempty"`
}

// TokenStatus reports the token contract's tax and burn figures.
type TokenStatus struct {
	BuyTaxBps      int64   `json:"buy_tax_bps"`
	SellTaxBps     int64   `json:"sell_tax_bps"`
	TransferTaxBps int64   `json:"transfer_tax_bps"`
	TotalBurned    float64 `json:"total_burned"`
	BurnActive     bool    `json:"burn_active"`
}

// handleStatus returns daemon status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:       "running",
		Uptime:       time.Since(s.started).String(),
		LastUpdate:   s.lastUpdate,
		LastSweep:    s.lastSweep,
		LastSnapshot: s.lastSnapshot,
		UpdateRuns:   s.updateRuns,
		SweepRuns:    s.sweepRuns,
		SnapshotRuns: s.snapshotRuns,
	}
	if s.taxRates != nil && s.burnStatus != nil {
		resp.Token = &TokenStatus{
			BuyTaxBps:      s.taxRates.BuyBps,
			SellTaxBps:     s.taxRates.SellBps,
			TransferTaxBps: s.taxRates.TransferBps,
			TotalBurned:    toTokens(s.burnStatus.TotalBurned),
			BurnActive:     s.burnStatus.BurnActive(),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// toTokens converts 1e18-scaled base units to a float for analytics rows.
func toTokens(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v), big.NewFloat(1e18)).Float64()
	return f
}

// splitList splits a comma-separated flag value.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
