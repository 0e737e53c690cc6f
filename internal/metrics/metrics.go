// Package metrics exposes run counters for Prometheus scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the harness collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	tests              *prometheus.CounterVec
	duration           *prometheus.HistogramVec
	suiteRuns          *prometheus.CounterVec
	screenshotFailures prometheus.Counter
}

// New creates the collectors and registers them
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		tests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shopcheck_tests_total",
			Help: "Total number of finished tests by suite and status",
		}, []string{"suite", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shopcheck_test_duration_seconds",
			Help:    "Test duration",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"suite"}),
		suiteRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shopcheck_suite_runs_total",
			Help: "Total number of suite runs",
		}, []string{"suite"}),
		screenshotFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "shopcheck_screenshot_failures_total",
			Help: "Screenshots that could not be captured or stored",
		}),
	}
}

// ObserveTest counts a finished test
func (m *Metrics) ObserveTest(suite, status string, d time.Duration) {
	m.tests.WithLabelValues(suite, status).Inc()
	m.duration.WithLabelValues(suite).Observe(d.Seconds())
}

// SuiteRun counts a started suite
func (m *Metrics) SuiteRun(suite string) {
	m.suiteRuns.WithLabelValues(suite).Inc()
}

// ScreenshotFailed counts a failed capture
func (m *Metrics) ScreenshotFailed() {
	m.screenshotFailures.Inc()
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
