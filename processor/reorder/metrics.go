package reorder

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/accessmon/metric"
)

// reorderMetrics holds Prometheus metrics for the reorder buffer.
type reorderMetrics struct {
	accepted   prometheus.Counter
	released   prometheus.Counter
	violations *prometheus.CounterVec // By action (abort, skip)
	pending    prometheus.Gauge
	lateness   prometheus.Histogram // Seconds behind the watermark for out-of-order arrivals
}

// newReorderMetrics creates and registers reorder metrics with the provided registry.
func newReorderMetrics(registry *metric.MetricsRegistry) (*reorderMetrics, error) {
	if registry == nil {
		return nil, nil // Metrics disabled
	}

	m := &reorderMetrics{
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "reorder",
			Name:      "accepted_total",
			Help:      "Total number of records accepted into the reorder buffer",
		}),
		released: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "reorder",
			Name:      "released_total",
			Help:      "Total number of records released in timestamp order",
		}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "reorder",
			Name:      "chronology_violations_total",
			Help:      "Records that arrived later than the reorder window allows",
		}, []string{"action"}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metric.Namespace,
			Subsystem: "reorder",
			Name:      "pending",
			Help:      "Records held while their order is still undecided",
		}),
		lateness: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metric.Namespace,
			Subsystem: "reorder",
			Name:      "lateness_seconds",
			Help:      "How far behind the newest timestamp out-of-order records arrived",
			Buckets:   []float64{1, 2, 5, 10, 30, 60, 300},
		}),
	}

	if err := registry.RegisterCounter("reorder", "accepted", m.accepted); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter("reorder", "released", m.released); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("reorder", "violations", m.violations); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge("reorder", "pending", m.pending); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogram("reorder", "lateness", m.lateness); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *reorderMetrics) recordAccepted(pending int) {
	if m == nil {
		return
	}
	m.accepted.Inc()
	m.pending.Set(float64(pending))
}

func (m *reorderMetrics) recordReleased(pending int) {
	if m == nil {
		return
	}
	m.released.Inc()
	m.pending.Set(float64(pending))
}

func (m *reorderMetrics) recordViolation(action string) {
	if m == nil {
		return
	}
	m.violations.WithLabelValues(action).Inc()
}

func (m *reorderMetrics) recordLateness(seconds int64) {
	if m == nil {
		return
	}
	m.lateness.Observe(float64(seconds))
}
