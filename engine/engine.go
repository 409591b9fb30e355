package engine

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/c360/accessmon/config"
	"github.com/c360/accessmon/errors"
	"github.com/c360/accessmon/metric"
	"github.com/c360/accessmon/output/file"
	"github.com/c360/accessmon/processor/alert"
	"github.com/c360/accessmon/processor/parser"
	"github.com/c360/accessmon/processor/reorder"
	"github.com/c360/accessmon/processor/stats"
	"github.com/c360/accessmon/record"
)

// Monitor consumes ordered records and produces output lines.
type Monitor interface {
	// Push observes one record and returns the lines it completes.
	Push(rec record.Record) ([]string, error)
	// Pending returns the lines still held at end of stream.
	Pending() []string
}

// LineWriter receives output lines in emission order.
type LineWriter interface {
	WriteLine(line string) error
}

// Result summarises a run.
type Result struct {
	Records     int64         `json:"records"`
	Lines       int64         `json:"lines"`
	Chunks      int64         `json:"chunks"`
	EmptyChunks int64         `json:"empty_chunks"`
	Alerts      int64         `json:"alerts"`
	Recoveries  int64         `json:"recoveries"`
	Reorder     reorder.Stats `json:"reorder"`
	Duration    time.Duration `json:"duration"`
}

type namedMonitor struct {
	name    string
	monitor Monitor
}

// Engine drives one pass of ordered records through the stats aggregator and
// the alert monitor, in that order, and writes their lines.
type Engine struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *metric.MetricsRegistry
	metrics  *engineMetrics

	aggregator *stats.Aggregator
	alerts     *alert.Monitor
	monitors   []namedMonitor

	started bool
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	registry *metric.MetricsRegistry
}

// WithLogger sets the logger passed to every pipeline stage.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics enables metrics for the engine and every pipeline stage.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// New validates cfg and builds the monitors for a single run.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "Engine", "New", "validate config")
	}

	m, err := newEngineMetrics(o.registry)
	if err != nil {
		return nil, errors.WrapTransient(err, "Engine", "New", "metrics registration")
	}

	aggregator := stats.NewAggregator(cfg)
	alerts, err := alert.NewMonitor(cfg, alert.WithLogger(o.logger), alert.WithMetrics(o.registry))
	if err != nil {
		return nil, errors.Wrap(err, "Engine", "New", "create alert monitor")
	}

	return &Engine{
		cfg:        cfg,
		logger:     o.logger.With("component", "engine"),
		registry:   o.registry,
		metrics:    m,
		aggregator: aggregator,
		alerts:     alerts,
		monitors: []namedMonitor{
			{name: "stats", monitor: aggregator},
			{name: "alert", monitor: alerts},
		},
	}, nil
}

// Run reads src through a reorder buffer, feeds every ordered record to the
// monitors and writes their lines to out as they are produced. At end of
// input the monitors' pending lines are written. An Engine runs once.
//
// ctx is checked between records; cancellation returns ctx.Err() without the
// final flush. Lines written before an error stay written.
func (e *Engine) Run(ctx context.Context, src record.Source, out LineWriter) (Result, error) {
	if e.started {
		return Result{}, errors.WrapInvalid(errors.ErrAlreadyStarted, "Engine", "Run", "start run")
	}
	e.started = true

	core := e.registry.CoreMetrics()
	core.SetRunStatus(metric.StatusRunning)
	start := time.Now()

	e.logger.Info("Run started",
		"stats_window", e.cfg.StatsWindow,
		"alert_window", e.cfg.AlertWindow,
		"alert_rate", e.cfg.AlertRate,
		"max_timestamp_error", e.cfg.MaxTimestampError,
		"chronology_policy", e.cfg.ChronologyPolicy)

	var res Result
	ordered, err := reorder.New(src, e.cfg, reorder.WithLogger(e.logger), reorder.WithMetrics(e.registry))
	if err != nil {
		err = errors.Wrap(err, "Engine", "Run", "create reorder buffer")
	} else {
		err = e.run(ctx, ordered, out, &res)
		res.Reorder = ordered.Stats()
	}

	res.Chunks, res.EmptyChunks = e.aggregator.Chunks()
	res.Alerts, res.Recoveries = e.alerts.Transitions()
	res.Duration = time.Since(start)
	core.ObserveRunDuration(res.Duration.Seconds())

	if err != nil {
		core.SetRunStatus(metric.StatusFailed)
		core.RecordError("engine", err)
		if ctx.Err() != nil && err == ctx.Err() {
			e.logger.Info("Run cancelled", "records", res.Records, "lines", res.Lines)
		}
		return res, err
	}

	core.SetRunStatus(metric.StatusCompleted)
	e.logger.Info("Run finished",
		"records", res.Records,
		"lines", res.Lines,
		"chunks", res.Chunks,
		"empty_chunks", res.EmptyChunks,
		"alerts", res.Alerts,
		"recoveries", res.Recoveries,
		"dropped", res.Reorder.Dropped,
		"max_pending", res.Reorder.MaxPending,
		"duration", res.Duration)
	return res, nil
}

func (e *Engine) run(ctx context.Context, ordered record.Source, out LineWriter, res *Result) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := ordered.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "Engine", "Run", "read ordered record")
		}

		res.Records++
		e.metrics.recordRecord(rec.Timestamp)

		for _, m := range e.monitors {
			lines, pushErr := m.monitor.Push(rec)
			if err := e.write(out, m.name, lines, res); err != nil {
				return err
			}
			if pushErr != nil {
				return errors.Wrap(pushErr, "Engine", "Run", "push to "+m.name)
			}
		}
	}

	for _, m := range e.monitors {
		if err := e.write(out, m.name, m.monitor.Pending(), res); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) write(out LineWriter, monitor string, lines []string, res *Result) error {
	for _, line := range lines {
		if err := out.WriteLine(line); err != nil {
			return errors.Wrap(err, "Engine", "Run", "write "+monitor+" line")
		}
		res.Lines++
		e.metrics.recordLine(monitor)
	}
	return nil
}

// MonitorStream decodes CSV access-log input from r, runs it through a new
// Engine and writes the output lines to w.
func MonitorStream(ctx context.Context, r io.Reader, w io.Writer, cfg config.Config, opts ...Option) error {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	eng, err := New(cfg, opts...)
	if err != nil {
		return err
	}

	dec := parser.NewDecoder(r, parser.WithLogger(o.logger), parser.WithMetrics(o.registry))
	if err := dec.ReadHeader(); err != nil {
		return err
	}

	sink, err := file.NewSink(w, file.WithLogger(o.logger), file.WithMetrics(o.registry))
	if err != nil {
		return err
	}

	_, runErr := eng.Run(ctx, dec, sink)
	if err := sink.Close(); err != nil && runErr == nil {
		return err
	}
	return runErr
}
