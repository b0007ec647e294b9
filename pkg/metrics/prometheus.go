// Package metrics provides Prometheus metrics for the ingredex service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector the service exports.
type Manager struct {
	registry prometheus.Registerer

	// Lookup metrics
	lookups       *prometheus.CounterVec
	lookupLatency prometheus.Histogram
	catalogSize   prometheus.Gauge

	// Scan metrics
	scans              *prometheus.CounterVec
	scanExtractedNames prometheus.Histogram
	scanMatched        prometheus.Histogram
	extractionLatency  *prometheus.HistogramVec
	extractionFailures *prometheus.CounterVec
	extractionCache    *prometheus.CounterVec
	extractionCached   prometheus.Gauge

	// Upload lifecycle
	tempFilesActive   prometheus.Gauge
	tempFilesReleased prometheus.Counter
	tempFileErrors    prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec
	errorLatency      *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

const (
	namespace = "ingredex"
	subsystem = "api"
)

// latencyBuckets are in milliseconds.
var latencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals // shared buckets

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		registry: prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.lookups = m.counterVec("ingredient_lookups_total",
		"Ingredient lookups by caller and outcome (resolved, not_found, cancelled)", "source", "outcome")
	m.lookupLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "ingredient_lookup_latency_milliseconds",
		Help:      "Latency of a single ingredient resolution in milliseconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
	})
	m.catalogSize = m.gauge("catalog_records", "Number of ingredient records in the loaded catalog")

	m.scans = m.counterVec("label_scans_total",
		"Label scans by status (success, extraction_failed)", "status")
	m.scanExtractedNames = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "label_scan_extracted_names",
		Help:      "Number of candidate names extracted per label",
		Buckets:   prometheus.LinearBuckets(0, 5, 10),
	})
	m.scanMatched = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "label_scan_matched_ingredients",
		Help:      "Number of catalog ingredients matched per label",
		Buckets:   prometheus.LinearBuckets(0, 1, 10),
	})
	m.extractionLatency = m.histogramVec("extraction_latency_milliseconds",
		"Latency of the external label text extraction call", latencyBuckets, "extractor")
	m.extractionFailures = m.counterVec("extraction_failures_total",
		"Failed label text extraction calls", "extractor", "reason")
	m.extractionCache = m.counterVec("extraction_cache_total",
		"Extraction cache lookups by result (hit, miss)", "result")
	m.extractionCached = m.gauge("extraction_cache_entries", "Label extractions currently cached")

	m.tempFilesActive = m.gauge("temp_files_active", "Uploaded images currently held on disk")
	m.tempFilesReleased = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "temp_files_released_total",
		Help:      "Uploaded images released from disk",
	})
	m.tempFileErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "temp_file_release_errors_total",
		Help:      "Uploaded images that could not be removed",
	})

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", latencyBuckets, "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_by_component_total",
		"Errors by component and error type", "component", "error_type")
	m.errorsByType = m.counterVec("errors_by_type_total",
		"Errors by type and severity", "error_type", "severity")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Errors by HTTP endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds",
		"Latency of requests that ended in error", latencyBuckets, "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// Lookup metrics.

// RecordLookup counts one resolution attempt. source is "name" or "label".
func RecordLookup(source, outcome string) {
	globalManager.lookups.WithLabelValues(source, outcome).Inc()
}

// RecordLookupLatency records resolution latency in milliseconds.
func RecordLookupLatency(latencyMs float64) {
	globalManager.lookupLatency.Observe(latencyMs)
}

// UpdateCatalogRecords sets the catalog size gauge.
func UpdateCatalogRecords(count int) {
	globalManager.catalogSize.Set(float64(count))
}

// Scan metrics.

// RecordScan counts one label scan by final status.
func RecordScan(status string) {
	globalManager.scans.WithLabelValues(status).Inc()
}

// RecordScanNames records how many names were extracted and matched for a label.
func RecordScanNames(extracted, matched int) {
	globalManager.scanExtractedNames.Observe(float64(extracted))
	globalManager.scanMatched.Observe(float64(matched))
}

// RecordExtractionLatency records the external extraction call latency.
func RecordExtractionLatency(extractor string, latencyMs float64) {
	globalManager.extractionLatency.WithLabelValues(extractor).Observe(latencyMs)
}

// RecordExtractionFailure counts a failed extraction call.
func RecordExtractionFailure(extractor, reason string) {
	globalManager.extractionFailures.WithLabelValues(extractor, reason).Inc()
}

// RecordExtractionCache counts an extraction cache lookup.
func RecordExtractionCache(result string) {
	globalManager.extractionCache.WithLabelValues(result).Inc()
}

// UpdateExtractionCacheEntries sets the cached extraction gauge.
func UpdateExtractionCacheEntries(count int64) {
	globalManager.extractionCached.Set(float64(count))
}

// Upload lifecycle.

// RecordTempFileAcquired marks an uploaded image as held on disk.
func RecordTempFileAcquired() {
	globalManager.tempFilesActive.Inc()
}

// RecordTempFileReleased marks an uploaded image as released.
func RecordTempFileReleased() {
	globalManager.tempFilesActive.Dec()
	globalManager.tempFilesReleased.Inc()
}

// RecordTempFileReleaseError counts a failed removal.
func RecordTempFileReleaseError() {
	globalManager.tempFileErrors.Inc()
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error metrics.

// RecordErrorByComponent records an error for a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error for an HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed request.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System metrics.

// UpdateSystemMemoryUsage sets the memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry backing /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
