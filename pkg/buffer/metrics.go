package buffer

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/accessmon/metric"
)

// bufferMetrics holds Prometheus metrics for queue operations.
type bufferMetrics struct {
	writes prometheus.Counter
	reads  prometheus.Counter
	peeks  prometheus.Counter
	grows  prometheus.Counter

	size     prometheus.Gauge
	capacity prometheus.Gauge
}

// newBufferMetrics creates and registers queue metrics with the provided registry.
func newBufferMetrics(registry *metric.MetricsRegistry, prefix string) (*bufferMetrics, error) {
	labels := prometheus.Labels{"component": prefix}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metric.Namespace,
			Subsystem:   "buffer",
			Name:        name,
			ConstLabels: labels,
			Help:        help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metric.Namespace,
			Subsystem:   "buffer",
			Name:        name,
			ConstLabels: labels,
			Help:        help,
		})
	}

	m := &bufferMetrics{
		writes:   counter("writes_total", "Total number of queue push operations"),
		reads:    counter("reads_total", "Total number of queue pop operations"),
		peeks:    counter("peeks_total", "Total number of queue front reads"),
		grows:    counter("grows_total", "Total number of times the ring doubled"),
		size:     gauge("size", "Current number of items in the queue"),
		capacity: gauge("capacity", "Current size of the backing ring"),
	}

	if err := registry.RegisterCounter(prefix, "buffer_writes", m.writes); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "buffer_reads", m.reads); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "buffer_peeks", m.peeks); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "buffer_grows", m.grows); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "buffer_size", m.size); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "buffer_capacity", m.capacity); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *bufferMetrics) recordWrite(size, capacity int) {
	m.writes.Inc()
	m.updateSize(size, capacity)
}

func (m *bufferMetrics) recordRead(size, capacity int) {
	m.reads.Inc()
	m.updateSize(size, capacity)
}

func (m *bufferMetrics) recordPeek() {
	m.peeks.Inc()
}

func (m *bufferMetrics) recordGrow(capacity int) {
	m.grows.Inc()
	m.capacity.Set(float64(capacity))
}

func (m *bufferMetrics) updateSize(size, capacity int) {
	m.size.Set(float64(size))
	m.capacity.Set(float64(capacity))
}
