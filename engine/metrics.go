package engine

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/accessmon/metric"
)

// engineMetrics holds Prometheus metrics for the dispatch loop.
type engineMetrics struct {
	records prometheus.Counter
	lines   *prometheus.CounterVec // By monitor (stats, alert)
	logTime prometheus.Gauge
}

// newEngineMetrics creates and registers engine metrics with the provided registry.
func newEngineMetrics(registry *metric.MetricsRegistry) (*engineMetrics, error) {
	if registry == nil {
		return nil, nil // Metrics disabled
	}

	m := &engineMetrics{
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "engine",
			Name:      "records_total",
			Help:      "Ordered records dispatched to monitors",
		}),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "engine",
			Name:      "lines_total",
			Help:      "Output lines produced, by monitor",
		}, []string{"monitor"}),
		logTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metric.Namespace,
			Subsystem: "engine",
			Name:      "log_time_seconds",
			Help:      "Timestamp of the most recently dispatched record (Unix seconds)",
		}),
	}

	if err := registry.RegisterCounter("engine", "records", m.records); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("engine", "lines", m.lines); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge("engine", "log_time", m.logTime); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *engineMetrics) recordRecord(ts int64) {
	if m == nil {
		return
	}
	m.records.Inc()
	m.logTime.Set(float64(ts))
}

func (m *engineMetrics) recordLine(monitor string) {
	if m == nil {
		return
	}
	m.lines.WithLabelValues(monitor).Inc()
}
