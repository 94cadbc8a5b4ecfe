// Package metrics provides Prometheus metrics for the report pipeline and the report server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the process.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Staging
	stagedPhotos        prometheus.Gauge
	previewsOutstanding prometheus.Gauge
	previewsReleased    prometheus.Counter
	stagingRejected     prometheus.Counter

	// Encoding & upload
	encodeLatency *prometheus.HistogramVec
	uploads       *prometheus.CounterVec
	uploadLatency prometheus.Histogram

	// Ticket lifecycle
	draftsCreated  prometheus.Counter
	submissions    *prometheus.CounterVec
	transitions    *prometheus.CounterVec
	pipelineErrors *prometheus.CounterVec

	// Outcome delivery
	outcomesDropped   prometheus.Counter
	outcomesDelivered prometheus.Counter
	outcomeQueueSize  prometheus.Gauge

	// Report server
	httpRequests           *prometheus.CounterVec
	httpRequestDuration    *prometheus.HistogramVec
	errorsByEndpoint       *prometheus.CounterVec
	repositoryQueryLatency *prometheus.HistogramVec
	ticketsTotal           *prometheus.GaugeVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics manager

// customRegistry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "roadreport",
		subsystem:        "pipeline",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.stagedPhotos = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "staged_photos",
		Help: "Number of photos currently staged across sessions",
	})
	m.previewsOutstanding = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "previews_outstanding",
		Help: "Number of preview handles acquired and not yet released",
	})
	m.previewsReleased = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "previews_released_total",
		Help: "Total number of preview handles released",
	})
	m.stagingRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "staging_rejected_total",
		Help: "Total number of add batches rejected for exceeding capacity",
	})

	m.encodeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "encode_latency_milliseconds",
		Help:    "Latency of base64 encoding of a staged batch",
		Buckets: m.histogramBuckets,
	}, []string{"result"})
	m.uploads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "uploads_total",
		Help: "Total number of detection batch uploads by result",
	}, []string{"result"})
	m.uploadLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "upload_latency_milliseconds",
		Help:    "Latency of the detection service call",
		Buckets: m.histogramBuckets,
	})

	m.draftsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "drafts_created_total",
		Help: "Total number of draft tickets created",
	})
	m.submissions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "submissions_total",
		Help: "Total number of submit calls by result (submitted, duplicate)",
	}, []string{"result"})
	m.transitions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "transitions_total",
		Help: "Ticket phase transitions",
	}, []string{"from", "to"})
	m.pipelineErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "errors_total",
		Help: "Pipeline failures by operation and error kind",
	}, []string{"op", "kind"})

	m.outcomesDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "outcomes_dropped_total",
		Help: "Outcomes dropped because the queue was full or closed",
	})
	m.outcomesDelivered = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "outcomes_delivered_total",
		Help: "Outcomes delivered to an attached handler",
	})
	m.outcomeQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "outcome_queue_size",
		Help: "Current number of undelivered outcomes",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "server", ConstLabels: m.constLabels,
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "server", ConstLabels: m.constLabels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "server", ConstLabels: m.constLabels,
		Name: "errors_by_endpoint_total",
		Help: "HTTP errors by endpoint and error type",
	}, []string{"endpoint", "method", "error_type"})
	m.repositoryQueryLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "server", ConstLabels: m.constLabels,
		Name:    "repository_latency_milliseconds",
		Help:    "Ticket repository operation latency",
		Buckets: m.histogramBuckets,
	}, []string{"op"})
	m.ticketsTotal = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "server", ConstLabels: m.constLabels,
		Name: "tickets",
		Help: "Stored tickets by status",
	}, []string{"status"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system", ConstLabels: m.constLabels,
		Name: "memory_usage_bytes",
		Help: "Heap bytes allocated",
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system", ConstLabels: m.constLabels,
		Name: "goroutine_count",
		Help: "Number of goroutines",
	})
}

// UpdateStagedPhotos adds delta to the staged photo gauge.
func UpdateStagedPhotos(delta int) { globalManager.stagedPhotos.Add(float64(delta)) }

// UpdatePreviewsOutstanding adds delta to the outstanding preview gauge.
func UpdatePreviewsOutstanding(delta int) {
	globalManager.previewsOutstanding.Add(float64(delta))
}

// RecordPreviewReleased counts one released preview handle.
func RecordPreviewReleased() { globalManager.previewsReleased.Inc() }

// RecordStagingRejected counts one rejected add batch.
func RecordStagingRejected() { globalManager.stagingRejected.Inc() }

// RecordEncodeLatency records batch encoding latency in milliseconds.
func RecordEncodeLatency(result string, latencyMs float64) {
	globalManager.encodeLatency.WithLabelValues(result).Observe(latencyMs)
}

// RecordUpload counts one detection upload by result.
func RecordUpload(result string) { globalManager.uploads.WithLabelValues(result).Inc() }

// RecordUploadLatency records the detection call latency in milliseconds.
func RecordUploadLatency(latencyMs float64) { globalManager.uploadLatency.Observe(latencyMs) }

// RecordDraftCreated counts one created draft.
func RecordDraftCreated() { globalManager.draftsCreated.Inc() }

// RecordSubmission counts one submit call by result.
func RecordSubmission(result string) { globalManager.submissions.WithLabelValues(result).Inc() }

// RecordTransition counts one phase transition.
func RecordTransition(from, to string) {
	globalManager.transitions.WithLabelValues(from, to).Inc()
}

// RecordPipelineError counts one failed operation.
func RecordPipelineError(op, kind string) {
	globalManager.pipelineErrors.WithLabelValues(op, kind).Inc()
}

// RecordOutcomeDropped counts one dropped outcome.
func RecordOutcomeDropped() { globalManager.outcomesDropped.Inc() }

// RecordOutcomeDelivered counts one delivered outcome.
func RecordOutcomeDelivered() { globalManager.outcomesDelivered.Inc() }

// UpdateOutcomeQueueSize sets the outcome backlog gauge.
func UpdateOutcomeQueueSize(size int) { globalManager.outcomeQueueSize.Set(float64(size)) }

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint counts one HTTP error.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordRepositoryLatency records a repository operation latency in milliseconds.
func RecordRepositoryLatency(op string, latencyMs float64) {
	globalManager.repositoryQueryLatency.WithLabelValues(op).Observe(latencyMs)
}

// UpdateTickets sets the stored ticket count for status.
func UpdateTickets(status string, count int) {
	globalManager.ticketsTotal.WithLabelValues(status).Set(float64(count))
}

// UpdateSystemMemoryUsage sets the heap usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry the global manager registers on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
