package file

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/accessmon/metric"
)

type sinkMetrics struct {
	lines  prometheus.Counter
	bytes  prometheus.Counter
	errors prometheus.Counter
}

func newSinkMetrics(registry *metric.MetricsRegistry) (*sinkMetrics, error) {
	if registry == nil {
		return nil, nil // Metrics disabled
	}

	m := &sinkMetrics{
		lines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "output",
			Name:      "lines_total",
			Help:      "Output lines written",
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "output",
			Name:      "bytes_total",
			Help:      "Output bytes written, including newlines",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "output",
			Name:      "write_errors_total",
			Help:      "Failed output writes",
		}),
	}

	if err := registry.RegisterCounter("output", "lines", m.lines); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter("output", "bytes", m.bytes); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter("output", "write_errors", m.errors); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *sinkMetrics) recordLine(n int) {
	if m == nil {
		return
	}
	m.lines.Inc()
	m.bytes.Add(float64(n))
}

func (m *sinkMetrics) recordError() {
	if m == nil {
		return
	}
	m.errors.Inc()
}
