package alert

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/accessmon/metric"
)

// alertMetrics holds Prometheus metrics for the alert monitor.
type alertMetrics struct {
	transitions *prometheus.CounterVec // By kind (alert, recovery)
	triggered   prometheus.Gauge
	rate        prometheus.Gauge
}

func newAlertMetrics(registry *metric.MetricsRegistry) (*alertMetrics, error) {
	if registry == nil {
		return nil, nil // Metrics disabled
	}

	m := &alertMetrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "alert",
			Name:      "transitions_total",
			Help:      "Alert state transitions",
		}, []string{"kind"}),
		triggered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metric.Namespace,
			Subsystem: "alert",
			Name:      "triggered",
			Help:      "Whether the alert is currently triggered (0 or 1)",
		}),
		rate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metric.Namespace,
			Subsystem: "alert",
			Name:      "window_rate",
			Help:      "Average requests per second over the rolling window, in log time",
		}),
	}

	if err := registry.RegisterCounterVec("alert", "transitions", m.transitions); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge("alert", "triggered", m.triggered); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge("alert", "window_rate", m.rate); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *alertMetrics) recordRate(rate float64) {
	if m == nil {
		return
	}
	m.rate.Set(rate)
}

func (m *alertMetrics) recordTransition(kind Kind) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(kind)).Inc()
	if kind == KindAlert {
		m.triggered.Set(1)
	} else {
		m.triggered.Set(0)
	}
}
