package reorder

import (
	"container/heap"
	"fmt"
	"io"
	"log/slog"

	"github.com/c360/accessmon/config"
	"github.com/c360/accessmon/errors"
	"github.com/c360/accessmon/metric"
	"github.com/c360/accessmon/pkg/buffer"
	"github.com/c360/accessmon/pkg/timestamp"
	"github.com/c360/accessmon/record"
)

// Stats summarises what a Buffer did over its lifetime.
type Stats struct {
	Accepted   int64 `json:"accepted"`
	Released   int64 `json:"released"`
	Dropped    int64 `json:"dropped"`
	MaxPending int   `json:"max_pending"`
}

// Buffer pulls records from a source whose timestamps are only roughly
// ordered and yields them in non-decreasing timestamp order. It implements
// record.Source.
//
// A record is held until the newest timestamp seen (the watermark) is more
// than BufferSeconds past it. A record that arrives already that far behind
// the watermark may belong before output that has been released, and is
// handled by the chronology policy.
type Buffer struct {
	src           record.Source
	bufferSeconds int64
	policy        string

	logger  *slog.Logger
	metrics *reorderMetrics

	ready   *buffer.Queue[record.Record]
	pending pendingHeap

	watermark int64
	seen      bool
	arrivals  uint64
	drained   bool
	err       error

	stats Stats
}

// Option configures a Buffer.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	registry *metric.MetricsRegistry
}

// WithLogger sets the logger used for skipped records and drain output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics registers reorder metrics, and ready-queue metrics, with registry.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// New wraps src in a reorder buffer configured by cfg.
// Returns an error if metrics registration fails.
func New(src record.Source, cfg config.Config, opts ...Option) (*Buffer, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	m, err := newReorderMetrics(o.registry)
	if err != nil {
		return nil, errors.WrapTransient(err, "Buffer", "New", "metrics registration")
	}

	var queueOpts []buffer.Option[record.Record]
	if o.registry != nil {
		queueOpts = append(queueOpts, buffer.WithMetrics[record.Record](o.registry, "reorder_ready"))
	}
	ready, err := buffer.NewQueue[record.Record](64, queueOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "Buffer", "New", "create ready queue")
	}

	return &Buffer{
		src:           src,
		bufferSeconds: cfg.BufferSeconds(),
		policy:        cfg.ChronologyPolicy,
		logger:        o.logger.With("component", "reorder"),
		metrics:       m,
		ready:         ready,
	}, nil
}

// Next returns the next record in timestamp order, or io.EOF once the source
// is exhausted and every held record has been released.
func (b *Buffer) Next() (record.Record, error) {
	if b.err != nil {
		return record.Record{}, b.err
	}

	for {
		if rec, ok := b.ready.Pop(); ok {
			b.stats.Released++
			b.metrics.recordReleased(len(b.pending))
			return rec, nil
		}

		if b.drained {
			return record.Record{}, io.EOF
		}

		raw, err := b.src.Next()
		if err == io.EOF {
			b.drain()
			continue
		}
		if err != nil {
			b.err = err
			return record.Record{}, err
		}

		if err := b.accept(raw); err != nil {
			b.err = err
			return record.Record{}, err
		}
	}
}

// Stats returns a snapshot of the buffer's counters.
func (b *Buffer) Stats() Stats {
	return b.stats
}

// Pending returns how many records are held with undecided order.
func (b *Buffer) Pending() int {
	return len(b.pending)
}

// accept places one raw record, then releases every held record that can no
// longer be preceded by a future arrival.
func (b *Buffer) accept(rec record.Record) error {
	if b.seen && rec.Timestamp < b.watermark {
		b.metrics.recordLateness(b.watermark - rec.Timestamp)
	}

	if b.seen && rec.Timestamp < b.watermark-b.bufferSeconds {
		return b.late(rec)
	}

	if !b.seen || rec.Timestamp > b.watermark {
		b.watermark = rec.Timestamp
		b.seen = true
	}

	heap.Push(&b.pending, pendingEntry{rec: rec, arrival: b.arrivals})
	b.arrivals++
	b.stats.Accepted++
	if len(b.pending) > b.stats.MaxPending {
		b.stats.MaxPending = len(b.pending)
	}
	b.metrics.recordAccepted(len(b.pending))

	horizon := b.watermark - b.bufferSeconds
	for len(b.pending) > 0 && b.pending[0].rec.Timestamp < horizon {
		b.ready.Push(heap.Pop(&b.pending).(pendingEntry).rec)
	}

	return nil
}

// late applies the chronology policy to a record beyond the reorder window.
func (b *Buffer) late(rec record.Record) error {
	behind := b.watermark - rec.Timestamp

	if b.policy == config.PolicySkip {
		b.stats.Dropped++
		b.metrics.recordViolation(config.PolicySkip)
		b.logger.Warn("Dropping late record",
			"timestamp", rec.Timestamp,
			"time", timestamp.FormatDateTime(rec.Timestamp),
			"watermark", b.watermark,
			"behind_seconds", behind,
			"window_seconds", b.bufferSeconds)
		return nil
	}

	b.metrics.recordViolation(config.PolicyAbort)
	return errors.WrapFatal(
		fmt.Errorf("%w: record at %s (%d) is %ds behind newest timestamp %d, reorder window is %ds",
			errors.ErrChronology, timestamp.FormatDateTime(rec.Timestamp), rec.Timestamp,
			behind, b.watermark, b.bufferSeconds),
		"Buffer", "Next", "order record")
}

// drain releases every held record in order once the source is exhausted.
func (b *Buffer) drain() {
	held := len(b.pending)
	for len(b.pending) > 0 {
		b.ready.Push(heap.Pop(&b.pending).(pendingEntry).rec)
	}
	b.drained = true

	b.logger.Debug("Source exhausted",
		"released_on_drain", held,
		"accepted", b.stats.Accepted,
		"dropped", b.stats.Dropped,
		"max_pending", b.stats.MaxPending)
}
