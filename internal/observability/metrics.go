// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Fetch metrics
	MarketsFetched *prometheus.CounterVec
	FetchDuration  prometheus.Histogram
	CacheHits      *prometheus.CounterVec
	CacheMisses    *prometheus.CounterVec

	// Scan metrics
	ScanPages      prometheus.Counter
	ScanRecords    prometheus.Counter
	DegradedScans  prometheus.Counter
	TradesObserved *prometheus.CounterVec

	// Batch metrics
	BatchesCompleted prometheus.Counter
	BatchInFlight    prometheus.Gauge
	ActiveWatches    prometheus.Gauge
	StreamClients    prometheus.Gauge

	// Latency metrics
	RPCCallLatency *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Pricing metrics
	PriceFallbacks prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "battle_analytics"
	}

	return &Metrics{
		// Fetch metrics
		MarketsFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "markets_total",
			Help:      "Total number of market fetches by outcome",
		}, []string{"outcome"}),
		FetchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "End-to-end market fetch duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of state cache hits by backend",
		}, []string{"backend"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of state cache misses by backend",
		}, []string{"backend"}),

		// Scan metrics
		ScanPages: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "pages_total",
			Help:      "Total number of transfer feed pages read",
		}),
		ScanRecords: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "records_total",
			Help:      "Total number of transfer feed records read",
		}),
		DegradedScans: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "degraded_total",
			Help:      "Total number of scans that returned partial results",
		}),
		TradesObserved: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "trades_total",
			Help:      "Total number of classified trades by direction",
		}, []string{"type"}),

		// Batch metrics
		BatchesCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "completed_total",
			Help:      "Total number of completed fetch batches",
		}),
		BatchInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "in_flight",
			Help:      "Number of market fetches currently in flight",
		}),
		ActiveWatches: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "watch",
			Name:      "active",
			Help:      "Number of markets currently being polled",
		}),
		StreamClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "stream_clients",
			Help:      "Number of connected market stream clients",
		}),

		// Latency metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		PriceFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "fallbacks_total",
			Help:      "Total number of price quotes served from the fallback constant",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordMarketFetched records a finished market fetch.
// outcome is one of the ingestion.Outcome* labels.
func RecordMarketFetched(outcome string, seconds float64) {
	DefaultMetrics.MarketsFetched.WithLabelValues(outcome).Inc()
	DefaultMetrics.FetchDuration.Observe(seconds)
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(backend string, hit bool) {
	if hit {
		DefaultMetrics.CacheHits.WithLabelValues(backend).Inc()
		return
	}
	DefaultMetrics.CacheMisses.WithLabelValues(backend).Inc()
}

// RecordScanPage records one transfer feed page.
func RecordScanPage(records int) {
	DefaultMetrics.ScanPages.Inc()
	DefaultMetrics.ScanRecords.Add(float64(records))
}

// RecordTrade increments the classified trade counter.
func RecordTrade(tradeType string) {
	DefaultMetrics.TradesObserved.WithLabelValues(tradeType).Inc()
}

// RecordDegradedScan increments the degraded scan counter.
func RecordDegradedScan() {
	DefaultMetrics.DegradedScans.Inc()
}

// RecordBatch records a completed batch.
func RecordBatch() {
	DefaultMetrics.BatchesCompleted.Inc()
}

// AddInFlight adjusts the in-flight fetch gauge.
func AddInFlight(delta int) {
	DefaultMetrics.BatchInFlight.Add(float64(delta))
}

// AddActiveWatches adjusts the active watch gauge.
func AddActiveWatches(delta int) {
	DefaultMetrics.ActiveWatches.Add(float64(delta))
}

// AddStreamClients adjusts the connected websocket client gauge.
func AddStreamClients(delta int) {
	DefaultMetrics.StreamClients.Add(float64(delta))
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordPriceFallback increments the price fallback counter.
func RecordPriceFallback() {
	DefaultMetrics.PriceFallbacks.Inc()
}
