// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	// Ledger metrics
	DepositsTotal    prometheus.Counter
	AccrualsTotal    prometheus.Counter
	CappedAccruals   prometheus.Counter
	RedeemsTotal     prometheus.Counter
	ClaimsTotal      prometheus.Counter
	OperationErrors  *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec

	// Referral metrics
	CascadeCredits   prometheus.Counter
	CascadeForfeited prometheus.Counter
	UplinesSet       prometheus.Counter

	// Stability metrics
	UpdateChecksTotal  prometheus.Counter
	ActiveTier         prometheus.Gauge
	DropBps            prometheus.Gauge
	OracleErrors       prometheus.Counter
	ReserveSignals     prometheus.Counter
	RankSnapshotsBuilt prometheus.Counter

	// Token metrics
	TokenTotalBurned prometheus.Gauge
	TokenBurnActive  prometheus.Gauge

	// Health metrics
	LastSuccessfulUpdate prometheus.Gauge
	UptimeSeconds        prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "hcf_engine"
	}

	return &Metrics{
		DepositsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposits_total",
			Help:      "Total deposits applied",
		}),
		AccrualsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accruals_total",
			Help:      "Total accruals settled",
		}),
		CappedAccruals: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capped_accruals_total",
			Help:      "Accruals truncated by the daily cap",
		}),
		RedeemsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redeems_total",
			Help:      "Total redemptions applied",
		}),
		ClaimsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_total",
			Help:      "Total claims paid out",
		}),
		OperationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Failed engine operations by kind",
		}, []string{"operation"}),
		OperationLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Engine operation latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		CascadeCredits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cascade_credits_total",
			Help:      "Referral cascade credits paid",
		}),
		CascadeForfeited: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cascade_forfeited_total",
			Help:      "Cascade hops forfeited by burn protection",
		}),
		UplinesSet: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uplines_set_total",
			Help:      "Referral edges created",
		}),
		UpdateChecksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "update_checks_total",
			Help:      "Stability update checks executed",
		}),
		ActiveTier: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_stability_tier",
			Help:      "Index of the active stability tier",
		}),
		DropBps: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "price_drop_bps",
			Help:      "Current 24h price drop in basis points",
		}),
		OracleErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_errors_total",
			Help:      "Price oracle read failures",
		}),
		ReserveSignals: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reserve_signals_total",
			Help:      "Pair reserve-change signals received",
		}),
		RankSnapshotsBuilt: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rank_snapshots_built_total",
			Help:      "Rank snapshots rebuilt",
		}),
		TokenTotalBurned: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "token_total_burned",
			Help:      "Cumulative tokens burned by the token contract",
		}),
		TokenBurnActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "token_burn_active",
			Help:      "1 while total burned is below the burn stop supply",
		}),
		LastSuccessfulUpdate: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_successful_update_timestamp",
			Help:      "Unix time of the last successful stability update",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uptime_seconds_total",
			Help:      "Daemon uptime in seconds",
		}),
	}
}

// Handler returns the HTTP handler exposing the metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
