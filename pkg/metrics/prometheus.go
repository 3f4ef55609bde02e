// Package metrics provides Prometheus metrics for the reputation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Evaluation pipeline
	evaluationsTotal    *prometheus.CounterVec
	evaluationLatency   prometheus.Histogram
	clientInputErrors   prometheus.Counter
	rewardPointsTotal   prometheus.Counter
	slashPointsTotal    prometheus.Counter

	// Oracle
	oracleCalls        prometheus.Counter
	oracleLatency      prometheus.Histogram
	oracleFallbacks    *prometheus.CounterVec
	oracleParseErrors  prometheus.Counter

	// Ledger
	ledgerUpdates prometheus.Counter
	ledgerErrors  prometheus.Counter
	ledgerEntries prometheus.Gauge

	// Batch selector
	batchRuns         prometheus.Counter
	batchItemsScored  prometheus.Counter
	batchItemsSkipped prometheus.Counter

	// Queue / workers
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueEnqueueErrs prometheus.Counter
	queueDequeues    prometheus.Counter
	workerCount      prometheus.Gauge
	workerErrors     prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// GetRegistry returns the registry backing the global manager, for use with
// promhttp handlers.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "infofi",
		subsystem:        "reputation",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.evaluationsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evaluations_total",
		Help:      "Total number of judgments produced, labeled by final label",
	}, []string{"label"})

	m.evaluationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evaluation_latency_milliseconds",
		Help:      "End-to-end evaluation pipeline latency in milliseconds",
		Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	})

	m.clientInputErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "client_input_errors_total",
		Help:      "Evaluations rejected before the oracle call due to bad input",
	})

	m.rewardPointsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reward_points_total",
		Help:      "Total reward points granted across all judgments",
	})

	m.slashPointsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "slash_points_total",
		Help:      "Total slash points applied across all judgments",
	})

	m.oracleCalls = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "oracle_calls_total",
		Help:      "Total number of oracle invocations",
	})

	m.oracleLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "oracle_latency_milliseconds",
		Help:      "Oracle call latency in milliseconds",
		Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
	})

	m.oracleFallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "oracle_fallbacks_total",
		Help:      "Fail-closed fallback judgments, labeled by cause",
	}, []string{"cause"})

	m.oracleParseErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "oracle_parse_errors_total",
		Help:      "Oracle responses that failed strict parsing",
	})

	m.ledgerUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_updates_total",
		Help:      "Atomic judgment+delta applications to the ledger",
	})

	m.ledgerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_errors_total",
		Help:      "Failed ledger delta applications",
	})

	m.ledgerEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_entries",
		Help:      "Number of (user, project) ledger entries tracked",
	})

	m.batchRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_runs_total",
		Help:      "Total batch evaluation invocations",
	})

	m.batchItemsScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_items_scored_total",
		Help:      "Content items scored by batch runs",
	})

	m.batchItemsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_items_skipped_total",
		Help:      "Content items skipped by batch runs (already claimed or judged)",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of queued evaluation tasks",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured evaluation queue capacity",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Total successful enqueues",
	})

	m.queueEnqueueErrs = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Enqueue attempts rejected (closed, full, cancelled)",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Total dequeued evaluation tasks",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of evaluation workers",
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Worker-level processing failures",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration by endpoint, method and status code",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordEvaluation increments the judgment counter for a final label.
func RecordEvaluation(label string) {
	globalManager.evaluationsTotal.WithLabelValues(label).Inc()
}

// RecordEvaluationLatency records end-to-end pipeline latency in milliseconds.
func RecordEvaluationLatency(latencyMs float64) {
	globalManager.evaluationLatency.Observe(latencyMs)
}

// RecordClientInputError increments the pre-oracle rejection counter.
func RecordClientInputError() {
	globalManager.clientInputErrors.Inc()
}

// RecordPoints adds granted reward and applied slash points.
func RecordPoints(reward, slash int) {
	globalManager.rewardPointsTotal.Add(float64(reward))
	globalManager.slashPointsTotal.Add(float64(slash))
}

// RecordOracleCall increments the oracle invocation counter.
func RecordOracleCall() {
	globalManager.oracleCalls.Inc()
}

// RecordOracleLatency records oracle call latency in milliseconds.
func RecordOracleLatency(latencyMs float64) {
	globalManager.oracleLatency.Observe(latencyMs)
}

// RecordOracleFallback increments the fallback counter for a cause
// ("transport", "parse", "timeout").
func RecordOracleFallback(cause string) {
	globalManager.oracleFallbacks.WithLabelValues(cause).Inc()
}

// RecordOracleParseError increments the strict-parse failure counter.
func RecordOracleParseError() {
	globalManager.oracleParseErrors.Inc()
}

// RecordLedgerUpdate increments the atomic ledger application counter.
func RecordLedgerUpdate() {
	globalManager.ledgerUpdates.Inc()
}

// RecordLedgerError increments the ledger failure counter.
func RecordLedgerError() {
	globalManager.ledgerErrors.Inc()
}

// UpdateLedgerEntries sets the tracked (user, project) pair gauge.
func UpdateLedgerEntries(count int) {
	globalManager.ledgerEntries.Set(float64(count))
}

// RecordBatchRun increments the batch invocation counter.
func RecordBatchRun() {
	globalManager.batchRuns.Inc()
}

// RecordBatchItemScored increments the batch scored-items counter.
func RecordBatchItemScored() {
	globalManager.batchItemsScored.Inc()
}

// RecordBatchItemSkipped increments the batch skipped-items counter.
func RecordBatchItemSkipped() {
	globalManager.batchItemsSkipped.Inc()
}

// UpdateQueueSize sets the current queue depth gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the configured queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the successful enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueEnqueueError increments the rejected enqueue counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrs.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// UpdateWorkerCount sets the worker gauge.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerError increments the worker failure counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}
