// Package metrics provides Prometheus metrics for the rally ranking service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the rally service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Refresh pipeline
	refreshes         *prometheus.CounterVec
	refreshFailures   prometheus.Counter
	refreshDuration   prometheus.Histogram
	recomputeDuration prometheus.Histogram

	// Match log quality
	matchesLoaded  prometheus.Gauge
	rowsDropped    prometheus.Gauge
	rowsCoerced    prometheus.Gauge
	matchesSkipped prometheus.Gauge

	// Ranking snapshot
	playersTotal     prometheus.Gauge
	daysTotal        prometheus.Gauge
	snapshotVersion  prometheus.Gauge
	snapshotLastUnix prometheus.Gauge

	// Refresh queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimited         prometheus.Counter

	errorsByComponent *prometheus.CounterVec
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
		namespace:        "rally",
		subsystem:        "ranking",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: m.histogramBuckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.refreshes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refreshes_total",
		Help:      "Total number of successful snapshot refreshes by trigger",
	}, []string{"reason"})
	m.refreshFailures = m.counter("refresh_failures_total", "Total number of refreshes that kept the previous snapshot")
	m.refreshDuration = m.histogram("refresh_duration_milliseconds", "Load, compute and publish time in milliseconds")
	m.recomputeDuration = m.histogram("recompute_duration_milliseconds", "Ranking computation time in milliseconds")

	m.matchesLoaded = m.gauge("matches_loaded", "Matches read from the last loaded match log")
	m.rowsDropped = m.gauge("rows_dropped", "Rows dropped from the last loaded match log")
	m.rowsCoerced = m.gauge("rows_coerced", "Rows whose id or scores were coerced to 0")
	m.matchesSkipped = m.gauge("matches_skipped", "Matches left unscored by the last computation")

	m.playersTotal = m.gauge("players_total", "Players in the current snapshot")
	m.daysTotal = m.gauge("days_total", "Computed days in the current snapshot")
	m.snapshotVersion = m.gauge("snapshot_version", "Version of the published snapshot")
	m.snapshotLastUnix = m.gauge("snapshot_last_unix", "Unix time of the last published snapshot")

	m.queueSize = m.gauge("queue_size", "Pending refresh requests")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the refresh queue")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Refresh requests accepted by the queue")
	m.queueDequeued = m.counter("queue_dequeued_total", "Refresh requests taken by the worker")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Refresh requests rejected by a full queue")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.rateLimited = m.counter("http_rate_limited_total", "Refresh requests rejected by the rate limiter")

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_total",
		Help:      "Errors by component and type",
	}, []string{"component", "error_type"})
}

// RecordRefresh counts a successful refresh triggered by reason.
func RecordRefresh(reason string) {
	globalManager.refreshes.WithLabelValues(reason).Inc()
}

// RecordRefreshFailure counts a refresh that kept the previous snapshot.
func RecordRefreshFailure() {
	globalManager.refreshFailures.Inc()
}

// RecordRefreshDuration records a full refresh in milliseconds.
func RecordRefreshDuration(ms float64) {
	globalManager.refreshDuration.Observe(ms)
}

// RecordRecomputeDuration records a ranking computation in milliseconds.
func RecordRecomputeDuration(ms float64) {
	globalManager.recomputeDuration.Observe(ms)
}

// UpdateMatchLog sets the load report gauges.
func UpdateMatchLog(loaded, dropped, coerced int) {
	globalManager.matchesLoaded.Set(float64(loaded))
	globalManager.rowsDropped.Set(float64(dropped))
	globalManager.rowsCoerced.Set(float64(coerced))
}

// UpdateMatchesSkipped sets the number of unscored matches.
func UpdateMatchesSkipped(n int) {
	globalManager.matchesSkipped.Set(float64(n))
}

// UpdateRanking sets the player and day gauges.
func UpdateRanking(players, days int) {
	globalManager.playersTotal.Set(float64(players))
	globalManager.daysTotal.Set(float64(days))
}

// UpdateSnapshot records the published snapshot version and time.
func UpdateSnapshot(version uint64, at time.Time) {
	globalManager.snapshotVersion.Set(float64(version))
	globalManager.snapshotLastUnix.Set(float64(at.Unix()))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted request.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a request taken by the worker.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a request rejected by backpressure.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited counts a request rejected by the limiter.
func RecordRateLimited() {
	globalManager.rateLimited.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
