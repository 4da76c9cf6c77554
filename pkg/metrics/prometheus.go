// Package metrics provides Prometheus metrics for the fairdesk service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the fairdesk service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Attendee lookup metrics
	lookups         *prometheus.CounterVec
	lookupFallbacks prometheus.Counter
	lookupLatency   prometheus.Histogram

	// Backend (external BaaS) metrics
	backendCalls   *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec

	// Stats cache metrics
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "fairdesk",
		subsystem: "api",
		// Backend round trips sit in the tens to hundreds of milliseconds.
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of metric definitions
	auto := promauto.With(m.registry)

	m.lookups = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "attendee_lookups_total",
			Help:        "Attendee searches by search type and outcome (found, not_found, invalid, backend_error)",
			ConstLabels: m.constLabels,
		},
		[]string{"search_type", "outcome"},
	)

	m.lookupFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "attendee_lookup_fallbacks_total",
		Help:        "Searches that retried with the email extracted from a QR payload",
		ConstLabels: m.constLabels,
	})

	m.lookupLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "attendee_lookup_duration_milliseconds",
		Help:        "End-to-end attendee resolution time including fallback",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.backendCalls = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "backend_calls_total",
			Help:        "Calls made to the backend by operation and result",
			ConstLabels: m.constLabels,
		},
		[]string{"operation", "result"},
	)

	m.backendLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "backend_call_duration_milliseconds",
			Help:        "Backend call latency in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.constLabels,
		},
		[]string{"operation"},
	)

	m.cacheHits = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "stats_cache_hits_total",
			Help:        "Stats cache hits by report",
			ConstLabels: m.constLabels,
		},
		[]string{"report"},
	)

	m.cacheMisses = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "stats_cache_misses_total",
			Help:        "Stats cache misses by report",
			ConstLabels: m.constLabels,
		},
		[]string{"report"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_endpoint_total",
			Help:        "HTTP error responses by endpoint, method and error type",
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "error_type"},
	)
}

// RecordLookup counts one attendee search outcome.
func RecordLookup(searchType, outcome string) {
	globalManager.lookups.WithLabelValues(searchType, outcome).Inc()
}

// RecordLookupFallback counts a QR email fallback attempt.
func RecordLookupFallback() {
	globalManager.lookupFallbacks.Inc()
}

// RecordLookupLatency records resolution time in milliseconds.
func RecordLookupLatency(latencyMs float64) {
	globalManager.lookupLatency.Observe(latencyMs)
}

// RecordBackendCall records one backend call and its latency.
func RecordBackendCall(operation, result string, latencyMs float64) {
	globalManager.backendCalls.WithLabelValues(operation, result).Inc()
	globalManager.backendLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordCacheHit increments the stats cache hit counter.
func RecordCacheHit(report string) {
	globalManager.cacheHits.WithLabelValues(report).Inc()
}

// RecordCacheMiss increments the stats cache miss counter.
func RecordCacheMiss(report string) {
	globalManager.cacheMisses.WithLabelValues(report).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error response for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// Configure rebuilds the global manager on a fresh registry with opts. Call it
// at startup, before metrics are recorded or the registry is served.
func Configure(opts ...Option) {
	reg := prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(reg)}, opts...)...)
	customRegistry = reg
	runtimeOnce = sync.Once{}
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

var runtimeOnce sync.Once //nolint:gochecknoglobals // guards one-time collector registration

// RegisterRuntimeCollectors adds Go runtime and process metrics (goroutines,
// memory, GC pauses, open fds) to the custom registry. Safe to call repeatedly.
func RegisterRuntimeCollectors() {
	runtimeOnce.Do(func() {
		customRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}
