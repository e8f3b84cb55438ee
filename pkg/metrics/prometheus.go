// Package metrics provides Prometheus metrics for the winner spinner.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the spinner.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Wheel metrics
	spinsStarted   prometheus.Counter
	spinsCompleted prometheus.Counter
	spinsIgnored   *prometheus.CounterVec
	spinDuration   prometheus.Histogram
	winnerIndex    prometheus.Histogram

	// Client contract metrics
	clientOperations       *prometheus.CounterVec
	clientOperationLatency *prometheus.HistogramVec
	cacheFallbacks         *prometheus.CounterVec

	// Session metrics
	settingsRefreshes   *prometheus.CounterVec
	settingsLoaded      prometheus.Gauge
	activeChanges       *prometheus.CounterVec
	highContrastEnabled prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "spinner",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.spinsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "spins_started_total",
		Help:        "Total number of spins that entered the spinning state",
		ConstLabels: labels,
	})

	m.spinsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "spins_completed_total",
		Help:        "Total number of spins that settled and reported a winner",
		ConstLabels: labels,
	})

	m.spinsIgnored = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "spins_ignored_total",
		Help:        "Spin requests that did not start a spin, by reason",
		ConstLabels: labels,
	}, []string{"reason"})

	m.spinDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "spin_duration_seconds",
		Help:        "Configured duration of started spins in seconds",
		Buckets:     []float64{1, 2, 3, 5, 8, 10, 15, 20, 30, 60},
		ConstLabels: labels,
	})

	m.winnerIndex = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "winner_index",
		Help:        "Index of the winning segment, useful to eyeball uniformity",
		Buckets:     prometheus.LinearBuckets(0, 1, 20),
		ConstLabels: labels,
	})

	m.clientOperations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "client_operations_total",
		Help:        "Client contract calls by variant, operation and result",
		ConstLabels: labels,
	}, []string{"variant", "operation", "result"})

	m.clientOperationLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "client_operation_duration_milliseconds",
		Help:        "Client contract call latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"variant", "operation"})

	m.cacheFallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_fallbacks_total",
		Help:        "Reads served from the local cache after a transport failure",
		ConstLabels: labels,
	}, []string{"operation"})

	m.settingsRefreshes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "settings_refresh_total",
		Help:        "Session settings loads by result",
		ConstLabels: labels,
	}, []string{"result"})

	m.settingsLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "settings_loaded",
		Help:        "Number of configurations in the last successful settings load",
		ConstLabels: labels,
	})

	m.activeChanges = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "active_configuration_changes_total",
		Help:        "Active configuration updates by result",
		ConstLabels: labels,
	}, []string{"result"})

	m.highContrastEnabled = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "high_contrast_enabled",
		Help:        "1 when the last resolved high-contrast mode is on",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_component_total",
		Help:        "Errors by component and type",
		ConstLabels: labels,
	}, []string{"component", "error_type"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_endpoint_total",
		Help:        "HTTP errors by endpoint, method and type",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})
}

// RegisterRuntimeCollectors adds the Go runtime and process collectors to
// the custom registry. The API server calls it once at startup.
func RegisterRuntimeCollectors() error {
	if err := customRegistry.Register(collectors.NewGoCollector()); err != nil {
		return fmt.Errorf("%w: go collector: %v", ErrRegisterFailed, err)
	}
	if err := customRegistry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return fmt.Errorf("%w: process collector: %v", ErrRegisterFailed, err)
	}
	return nil
}

// RecordSpinStarted counts a started spin and its configured duration.
func RecordSpinStarted(durationSeconds float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.spinsStarted.Inc()
	globalManager.spinDuration.Observe(durationSeconds)
}

// RecordSpinCompleted counts a settled spin and the winning index.
func RecordSpinCompleted(winnerIndex int) {
	if !globalManager.enabled {
		return
	}
	globalManager.spinsCompleted.Inc()
	globalManager.winnerIndex.Observe(float64(winnerIndex))
}

// RecordSpinIgnored counts a spin request that was a no-op.
func RecordSpinIgnored(reason string) {
	if !globalManager.enabled {
		return
	}
	globalManager.spinsIgnored.WithLabelValues(reason).Inc()
}

// RecordClientOperation counts a client contract call and its latency.
func RecordClientOperation(variant, operation, result string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.clientOperations.WithLabelValues(variant, operation, result).Inc()
	globalManager.clientOperationLatency.WithLabelValues(variant, operation).Observe(latencyMs)
}

// RecordCacheFallback counts a read served from the local cache.
func RecordCacheFallback(operation string) {
	if !globalManager.enabled {
		return
	}
	globalManager.cacheFallbacks.WithLabelValues(operation).Inc()
}

// RecordSettingsRefresh counts a settings load; count is only applied on success.
func RecordSettingsRefresh(success bool, count int) {
	if !globalManager.enabled {
		return
	}
	if !success {
		globalManager.settingsRefreshes.WithLabelValues("failure").Inc()
		return
	}
	globalManager.settingsRefreshes.WithLabelValues("success").Inc()
	globalManager.settingsLoaded.Set(float64(count))
}

// RecordActiveChange counts an active configuration update.
func RecordActiveChange(success bool) {
	if !globalManager.enabled {
		return
	}
	globalManager.activeChanges.WithLabelValues(resultLabel(success)).Inc()
}

// UpdateHighContrast records the current high-contrast mode.
func UpdateHighContrast(enabled bool) {
	if !globalManager.enabled {
		return
	}
	if enabled {
		globalManager.highContrastEnabled.Set(1)
		return
	}
	globalManager.highContrastEnabled.Set(0)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error for a specific component.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an HTTP error for a specific endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
