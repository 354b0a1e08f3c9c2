package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the signal service.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec // labels: signal
	AnalysisDuration prometheus.Histogram

	// Market data providers
	FetchTotal    *prometheus.CounterVec   // labels: source, result
	FetchDuration *prometheus.HistogramVec // labels: source
	BreakerState  *prometheus.GaugeVec     // labels: source; 0=closed, 1=open, 2=half-open

	CacheRequests *prometheus.CounterVec // labels: result=hit|miss

	HTTPRequests *prometheus.CounterVec   // labels: method, route, status
	HTTPDuration *prometheus.HistogramVec // labels: route

	SnapshotSymbols prometheus.Gauge
	SnapshotUpdated prometheus.Gauge // unix seconds of the last rebuild
	AlertsSent      prometheus.Counter
	MarketOpen      prometheus.Gauge // 0=closed, 1=open

	gatherer prometheus.Gatherer
}

// New registers all metrics on a fresh registry, together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "niftysignal_analyses_total",
			Help: "Completed symbol analyses by resulting signal",
		}, []string{"signal"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "niftysignal_analysis_duration_seconds",
			Help:    "Fetch plus compute latency for one symbol",
			Buckets: prometheus.DefBuckets,
		}),
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "niftysignal_fetch_total",
			Help: "Market data fetch attempts by provider and result",
		}, []string{"source", "result"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "niftysignal_fetch_duration_seconds",
			Help:    "Market data fetch latency by provider",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "niftysignal_provider_breaker_state",
			Help: "Circuit breaker state per provider",
		}, []string{"source"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "niftysignal_cache_requests_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "niftysignal_http_requests_total",
			Help: "HTTP requests by method, route pattern and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "niftysignal_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		SnapshotSymbols: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "niftysignal_snapshot_symbols",
			Help: "Symbols present in the latest watchlist snapshot",
		}),
		SnapshotUpdated: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "niftysignal_snapshot_updated_timestamp_seconds",
			Help: "Unix time of the latest watchlist snapshot",
		}),
		AlertsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "niftysignal_alerts_sent_total",
			Help: "Strong-signal alerts delivered",
		}),
		MarketOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "niftysignal_market_open",
			Help: "NSE session state observed by the scheduler",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.FetchTotal,
		m.FetchDuration,
		m.BreakerState,
		m.CacheRequests,
		m.HTTPRequests,
		m.HTTPDuration,
		m.SnapshotSymbols,
		m.SnapshotUpdated,
		m.AlertsSent,
		m.MarketOpen,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.gatherer }
