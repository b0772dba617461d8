// Package metrics defines the Prometheus metric collectors used across the
// services and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SolvesTotal          *prometheus.CounterVec
	SolveLatency         *prometheus.HistogramVec
	WordsFound           prometheus.Histogram
	PrefixesExpanded     prometheus.Histogram
	GridSize             prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	DictionaryWords      prometheus.Gauge
	EventsRecordedTotal  *prometheus.CounterVec
	CircuitBreakerState  *prometheus.GaugeVec
}

// New creates the collectors and registers them with the default registry.
func New() *Metrics {
	m := NewUnregistered()
	m.Register(prometheus.DefaultRegisterer)
	return m
}

// NewUnregistered creates the collectors without registering them, so tests
// can build as many as they like.
func NewUnregistered() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SolvesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordsearch_solves_total",
				Help: "Total puzzle solves by outcome (found, empty, rejected, error).",
			},
			[]string{"outcome"},
		),
		SolveLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wordsearch_solve_latency_seconds",
				Help:    "Puzzle solve latency in seconds.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
			},
			[]string{"cache_status"},
		),
		WordsFound: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wordsearch_words_found",
				Help:    "Number of words found per solve.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
			},
		),
		PrefixesExpanded: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wordsearch_prefixes_expanded",
				Help:    "Prefixes with live candidates expanded per solve.",
				Buckets: prometheus.ExponentialBuckets(10, 4, 8),
			},
		),
		GridSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wordsearch_grid_size",
				Help:    "Side length of solved grids.",
				Buckets: []float64{3, 5, 10, 15, 20, 30, 50, 100, 200},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of solve cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of solve cache misses.",
			},
		),
		DictionaryWords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wordsearch_dictionary_words",
				Help: "Number of words in the loaded dictionary.",
			},
		),
		EventsRecordedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordsearch_events_recorded_total",
				Help: "Solve events handled by the recorder, by status.",
			},
			[]string{"status"},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SolvesTotal,
		m.SolveLatency,
		m.WordsFound,
		m.PrefixesExpanded,
		m.GridSize,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DictionaryWords,
		m.EventsRecordedTotal,
		m.CircuitBreakerState,
	)
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
