// Package metrics provides Prometheus metrics for the career standings service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the standings service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Ingestion
	resultsLoaded      *prometheus.CounterVec
	rowsSkipped        *prometheus.CounterVec
	duplicatesMerged   prometheus.Counter
	duplicateConflicts prometheus.Counter
	duplicateSources   prometheus.Counter

	// Scoring and standings
	unconfiguredEvents *prometheus.CounterVec
	standingsBuilds    prometheus.Counter
	standingsLatency   prometheus.Histogram
	botsDownsampled    prometheus.Counter

	// Season table
	seasonTableSize        prometheus.Gauge
	repositoryQueryLatency prometheus.Histogram

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// HTTP
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
		namespace:        "career",
		subsystem:        "standings",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one block per metric
	auto := promauto.With(m.registry)

	m.resultsLoaded = auto.NewCounterVec(
		m.counterOpts("results_loaded_total", "Result rows normalised into event results, by source format"),
		[]string{"format"},
	)
	m.rowsSkipped = auto.NewCounterVec(
		m.counterOpts("rows_skipped_total", "Result rows skipped during ingestion, by reason"),
		[]string{"reason"},
	)
	m.duplicatesMerged = auto.NewCounter(
		m.counterOpts("duplicates_merged_total", "Duplicate participant rows collapsed within one event"),
	)
	m.duplicateConflicts = auto.NewCounter(
		m.counterOpts("duplicate_conflicts_total", "Duplicate rows that disagreed on finish position"),
	)
	m.duplicateSources = auto.NewCounter(
		m.counterOpts("duplicate_sources_total", "Byte-identical source files skipped within one event load"),
	)

	m.unconfiguredEvents = auto.NewCounterVec(
		m.counterOpts("unconfigured_events_total", "Points calculated for events without a scoring profile"),
		[]string{"event"},
	)
	m.standingsBuilds = auto.NewCounter(
		m.counterOpts("builds_total", "Rider standings tables built"),
	)
	m.standingsLatency = auto.NewHistogram(
		m.histogramOpts("build_latency_milliseconds", "Rider standings build latency in milliseconds"),
	)
	m.botsDownsampled = auto.NewCounter(
		m.counterOpts("bots_downsampled_total", "Simulated entries dropped by stratified downsampling"),
	)

	m.seasonTableSize = auto.NewGauge(
		m.gaugeOpts("season_table_size", "Riders in the season table"),
	)
	m.repositoryQueryLatency = auto.NewHistogram(
		m.histogramOpts("repository_query_latency_milliseconds", "Season table query latency in milliseconds"),
	)

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current number of pending rider jobs"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum rider job queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Total number of rider jobs enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Total number of rider jobs dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Total number of enqueue errors"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Current number of standings workers"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogramOpts("worker_processing_latency_milliseconds", "Worker job latency in milliseconds"),
	)
	m.workerErrorRate = auto.NewCounter(m.counterOpts("worker_errors_total", "Total number of failed rider jobs"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
}

// RecordResultLoaded counts one normalised result row.
func RecordResultLoaded(format string) {
	globalManager.resultsLoaded.WithLabelValues(format).Inc()
}

// RecordRowSkipped counts one skipped row.
func RecordRowSkipped(reason string) {
	globalManager.rowsSkipped.WithLabelValues(reason).Inc()
}

// RecordDuplicateMerged counts one collapsed duplicate row.
func RecordDuplicateMerged() {
	globalManager.duplicatesMerged.Inc()
}

// RecordDuplicateConflict counts a duplicate with a contradicting position.
func RecordDuplicateConflict() {
	globalManager.duplicateConflicts.Inc()
}

// RecordDuplicateSource counts a skipped byte-identical source file.
func RecordDuplicateSource() {
	globalManager.duplicateSources.Inc()
}

// RecordUnconfiguredEvent counts a fallback-curve calculation.
func RecordUnconfiguredEvent(eventNumber int) {
	globalManager.unconfiguredEvents.WithLabelValues(strconv.Itoa(eventNumber)).Inc()
}

// RecordStandingsBuild records one standings build and its latency.
func RecordStandingsBuild(latencyMs float64) {
	globalManager.standingsBuilds.Inc()
	globalManager.standingsLatency.Observe(latencyMs)
}

// RecordBotsDownsampled adds the number of simulated entries dropped.
func RecordBotsDownsampled(n int) {
	if n > 0 {
		globalManager.botsDownsampled.Add(float64(n))
	}
}

// UpdateSeasonTableSize sets the season table rider count.
func UpdateSeasonTableSize(count int) {
	globalManager.seasonTableSize.Set(float64(count))
}

// RecordRepositoryQueryLatency records season table query latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
