package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the desktop core.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Window metrics
	WindowsOpen  prometheus.Gauge
	WindowsTotal prometheus.Counter
	WindowOps    *prometheus.CounterVec

	// Runtime metrics
	InstancesActive prometheus.Gauge
	Launches        *prometheus.CounterVec
	LifecycleErrors *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge

	startTime time.Time
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskos_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "deskos_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "path"},
		),

		WindowsOpen: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "deskos_windows_open",
				Help: "Number of currently open windows",
			},
		),
		WindowsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "deskos_windows_total",
				Help: "Total number of windows created",
			},
		),
		WindowOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskos_window_ops_total",
				Help: "Window manager operations by kind",
			},
			[]string{"op"},
		),

		InstancesActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "deskos_instances_active",
				Help: "Number of live application instances",
			},
		),
		Launches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskos_launches_total",
				Help: "Application launches by descriptor",
			},
			[]string{"descriptor"},
		),
		LifecycleErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskos_lifecycle_errors_total",
				Help: "Reported lifecycle failures by kind",
			},
			[]string{"kind"},
		),

		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "deskos_ws_connections",
				Help: "Active WebSocket connections",
			},
		),
	}
}

// RecordHTTPRequest records metrics for a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordWindowOp counts a window manager operation.
func (m *Metrics) RecordWindowOp(op string) {
	if m == nil {
		return
	}
	m.WindowOps.WithLabelValues(op).Inc()
}

// RecordError counts a reported lifecycle failure.
func (m *Metrics) RecordError(kind string) {
	if m == nil {
		return
	}
	m.LifecycleErrors.WithLabelValues(kind).Inc()
}

// Uptime returns the process uptime.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}
