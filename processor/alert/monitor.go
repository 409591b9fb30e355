package alert

import (
	"fmt"
	"log/slog"

	"github.com/c360/accessmon/config"
	"github.com/c360/accessmon/errors"
	"github.com/c360/accessmon/metric"
	"github.com/c360/accessmon/pkg/buffer"
	"github.com/c360/accessmon/pkg/timestamp"
	"github.com/c360/accessmon/record"
)

// maxInitialWindow caps the preallocated window; the queue grows past it on demand.
const maxInitialWindow = 4096

// Monitor tracks the request rate over a rolling window of log time and
// reports each time it crosses the threshold in either direction.
type Monitor struct {
	window    int64
	threshold int64
	triggered bool

	// timestamps of the requests inside the window, oldest first
	requests *buffer.Queue[int64]

	alerts     int64
	recoveries int64

	logger  *slog.Logger
	metrics *alertMetrics
}

// Option configures a Monitor.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	registry *metric.MetricsRegistry
}

// WithLogger sets the logger used for transition debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics registers alert metrics, and window-queue metrics, with registry.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// NewMonitor creates a monitor with a cfg.AlertWindow-second window and a
// cfg.AlertRate requests/second threshold.
func NewMonitor(cfg config.Config, opts ...Option) (*Monitor, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	m, err := newAlertMetrics(o.registry)
	if err != nil {
		return nil, errors.WrapTransient(err, "Monitor", "NewMonitor", "metrics registration")
	}

	var queueOpts []buffer.Option[int64]
	if o.registry != nil {
		queueOpts = append(queueOpts, buffer.WithMetrics[int64](o.registry, "alert_window"))
	}
	capacity := cfg.AlertWindow * cfg.AlertRate
	if capacity > maxInitialWindow {
		capacity = maxInitialWindow
	}
	requests, err := buffer.NewQueue[int64](int(capacity), queueOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "Monitor", "NewMonitor", "create window queue")
	}

	return &Monitor{
		window:    cfg.AlertWindow,
		threshold: cfg.AlertRate,
		requests:  requests,
		logger:    o.logger.With("component", "alert"),
		metrics:   m,
	}, nil
}

// Observe adds rec to the window, evicts requests at or before
// rec.Timestamp-window, and returns an Event if the alert state flipped.
func (m *Monitor) Observe(rec record.Record) (*Event, error) {
	if newest, ok := m.newest(); ok && rec.Timestamp < newest {
		return nil, errors.WrapFatal(
			fmt.Errorf("%w: record at %s precedes newest windowed request %s",
				errors.ErrChronology, timestamp.FormatDateTime(rec.Timestamp), timestamp.FormatDateTime(newest)),
			"Monitor", "Observe", "slide window")
	}

	m.requests.Push(rec.Timestamp)

	cutoff := rec.Timestamp - m.window
	for {
		oldest, ok := m.requests.Front()
		if !ok || oldest > cutoff {
			break
		}
		m.requests.Pop()
	}

	n := m.requests.Len()
	rate := float64(n) / float64(m.window)
	m.metrics.recordRate(rate)

	over := rate >= float64(m.threshold)
	if over == m.triggered {
		return nil, nil
	}
	m.triggered = over

	ev := &Event{
		Kind:      KindRecovery,
		Timestamp: rec.Timestamp,
		Rate:      rate,
		Window:    m.window,
		Threshold: m.threshold,
		Requests:  n,
	}
	if over {
		ev.Kind = KindAlert
		m.alerts++
	} else {
		m.recoveries++
	}
	m.metrics.recordTransition(ev.Kind)

	m.logger.Debug("Alert state changed",
		"kind", string(ev.Kind),
		"time", timestamp.FormatDateTime(ev.Timestamp),
		"rate", ev.Rate,
		"requests", n)

	return ev, nil
}

// Push implements the engine's monitor contract by rendering Observe's event.
func (m *Monitor) Push(rec record.Record) ([]string, error) {
	ev, err := m.Observe(rec)
	if err != nil || ev == nil {
		return nil, err
	}
	return []string{ev.String()}, nil
}

// Pending implements the engine's monitor contract. Alerts are edge-triggered,
// so nothing is held back at end of stream.
func (m *Monitor) Pending() []string {
	return nil
}

// Triggered reports whether the rate is currently at or above the threshold.
func (m *Monitor) Triggered() bool {
	return m.triggered
}

// Transitions returns how many alerts and recoveries have been emitted.
func (m *Monitor) Transitions() (alerts, recoveries int64) {
	return m.alerts, m.recoveries
}

// newest returns the most recent timestamp in the window.
func (m *Monitor) newest() (int64, bool) {
	n := m.requests.Len()
	if n == 0 {
		return 0, false
	}
	return m.requests.At(n - 1)
}
