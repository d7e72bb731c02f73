// Package middleware holds Fiber middleware and the Prometheus collectors of the service
package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics owns the HTTP and registry collectors registered on one registry
type Metrics struct {
	// Total HTTP requests partitioned by method, route, and status code
	httpRequestsTotal *prometheus.CounterVec

	// Request duration in seconds partitioned by method, route, and status code
	httpRequestDuration *prometheus.HistogramVec

	// In-flight HTTP requests
	httpInFlight prometheus.Gauge

	codesCreated       *prometheus.CounterVec
	scansRecorded      prometheus.Counter
	scanRecordFailures prometheus.Counter
}

// NewMetrics registers all collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latencies in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		httpInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_inflight_requests",
				Help: "Number of HTTP requests currently being served",
			},
		),
		codesCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qr_codes_created_total",
				Help: "Total number of codes registered, by code type",
			},
			[]string{"type"},
		),
		scansRecorded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "qr_scans_recorded_total",
				Help: "Total number of scan events committed",
			},
		),
		scanRecordFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "qr_scan_record_failures_total",
				Help: "Total number of scan events that could not be committed",
			},
		),
	}
}

// Handler returns a Fiber v3 middleware that records request metrics.
// Labels are kept low-cardinality by using the matched route path when available.
func (m *Metrics) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		err := c.Next()

		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}

		labels := prometheus.Labels{
			"method": c.Method(),
			"route":  route,
			"status": strconv.Itoa(c.Response().StatusCode()),
		}
		m.httpRequestsTotal.With(labels).Inc()
		m.httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())

		return err
	}
}

// CodeCreated counts one registered code of the given type
func (m *Metrics) CodeCreated(codeType string) {
	m.codesCreated.WithLabelValues(codeType).Inc()
}

// ScanRecorded counts one committed scan event
func (m *Metrics) ScanRecorded() {
	m.scansRecorded.Inc()
}

// ScanRecordFailed counts one scan event that was not committed
func (m *Metrics) ScanRecordFailed() {
	m.scanRecordFailures.Inc()
}
