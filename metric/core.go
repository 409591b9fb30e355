package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/accessmon/errors"
)

// Namespace prefixes every accessmon metric name.
const Namespace = "accessmon"

// Run status values reported by the RunStatus gauge.
const (
	StatusIdle = iota
	StatusRunning
	StatusCompleted
	StatusFailed
)

// Metrics contains the process-level metrics of a run (not component-specific)
type Metrics struct {
	BuildInfo   *prometheus.GaugeVec
	RunStatus   prometheus.Gauge
	RunDuration prometheus.Histogram
	ErrorsTotal *prometheus.CounterVec
	InputBytes  prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all run metrics
func NewMetrics() *Metrics {
	return &Metrics{
		BuildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "build_info",
				Help:      "Build information, always 1",
			},
			[]string{"version"},
		),

		RunStatus: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "run",
				Name:      "status",
				Help:      "Run status (0=idle, 1=running, 2=completed, 3=failed)",
			},
		),

		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "run",
				Name:      "duration_seconds",
				Help:      "Wall-clock duration of a monitoring run in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
			},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors by component and class",
			},
			[]string{"component", "class"},
		),

		InputBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "input",
				Name:      "bytes_total",
				Help:      "Total bytes read from the access log",
			},
		),
	}
}

// SetBuildInfo records the running version
func (m *Metrics) SetBuildInfo(version string) {
	if m == nil {
		return
	}
	m.BuildInfo.WithLabelValues(version).Set(1)
}

// SetRunStatus updates the run status gauge
func (m *Metrics) SetRunStatus(status int) {
	if m == nil {
		return
	}
	m.RunStatus.Set(float64(status))
}

// ObserveRunDuration records how long a run took
func (m *Metrics) ObserveRunDuration(seconds float64) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(seconds)
}

// RecordError counts an error against a component, labelled with its class
func (m *Metrics) RecordError(component string, err error) {
	if m == nil || err == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(component, errors.Classify(err).String()).Inc()
}

// AddInputBytes counts bytes consumed from the input stream
func (m *Metrics) AddInputBytes(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.InputBytes.Add(float64(n))
}
