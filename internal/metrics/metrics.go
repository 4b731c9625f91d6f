package metrics

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Collector captures metrics for test runs.
type Collector struct {
	registry     *prometheus.Registry
	testsTotal   *prometheus.CounterVec
	testDuration *prometheus.HistogramVec
	assertions   prometheus.Counter
	workers      prometheus.Gauge
	runDuration  prometheus.Gauge
}

// NewCollector initializes a new metrics registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	collector := &Collector{
		registry: registry,
		testsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "gunit_tests_total", Help: "Total number of executed tests"},
			[]string{"status"},
		),
		testDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gunit_test_duration_seconds",
				Help:    "Test duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"fixture", "status"},
		),
		assertions: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "gunit_assertions_total", Help: "Total number of recorded assertions"},
		),
		workers: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "gunit_workers", Help: "Number of workers of the last run"},
		),
		runDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "gunit_run_duration_seconds", Help: "Wall time of the last run"},
		),
	}

	registry.MustRegister(collector.testsTotal, collector.testDuration, collector.assertions, collector.workers, collector.runDuration)
	return collector
}

// ObserveTest records a test outcome.
func (c *Collector) ObserveTest(fixture, status string, duration time.Duration, assertions int) {
	c.testsTotal.WithLabelValues(status).Inc()
	c.testDuration.WithLabelValues(fixture, status).Observe(duration.Seconds())
	c.assertions.Add(float64(assertions))
}

// ObserveRun records the shape of a whole run.
func (c *Collector) ObserveRun(workers int, duration time.Duration) {
	c.workers.Set(float64(workers))
	c.runDuration.Set(duration.Seconds())
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Write writes all metrics to a Prometheus text file.
func (c *Collector) Write(path string) error {
	metricFamilies, err := c.registry.Gather()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range metricFamilies {
		if err := enc.Encode(family); err != nil {
			return err
		}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
