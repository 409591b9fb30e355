package file

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/c360/accessmon/errors"
	"github.com/c360/accessmon/metric"
)

// StdoutPath selects standard output when used as Config.Path.
const StdoutPath = "-"

// Config holds configuration for a line sink.
type Config struct {
	// Path of the output file. Empty or "-" writes to stdout.
	Path string `json:"path"`
	// Append to an existing file instead of truncating it.
	Append bool `json:"append"`
	// BufferSize is the write buffer size in bytes.
	BufferSize int `json:"buffer_size"`
	// LineBuffered flushes after every line.
	LineBuffered bool `json:"line_buffered"`
}

// Validate checks the configuration for errors
func (c Config) Validate() error {
	if c.BufferSize < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: buffer_size cannot be negative", errors.ErrInvalidConfig),
			"Config", "Validate", "check buffer_size")
	}
	if c.Append && c.isStdout() {
		return errors.WrapInvalid(
			fmt.Errorf("%w: append requires an output file", errors.ErrInvalidConfig),
			"Config", "Validate", "check append")
	}
	return nil
}

func (c Config) isStdout() bool {
	return c.Path == "" || c.Path == StdoutPath
}

// DefaultConfig returns a line-buffered stdout sink.
func DefaultConfig() Config {
	return Config{
		Path:         StdoutPath,
		BufferSize:   4096,
		LineBuffered: true,
	}
}

// Sink writes newline-terminated output lines in order.
type Sink struct {
	name         string
	w            *bufio.Writer
	closer       io.Closer
	lineBuffered bool
	logger       *slog.Logger
	metrics      *sinkMetrics

	mu           sync.Mutex
	closed       bool
	linesWritten int64
	bytesWritten int64
}

// Option configures a Sink.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	registry *metric.MetricsRegistry
}

// WithLogger sets the sink logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics registers output metrics with registry.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// NewSink wraps w. Close flushes but does not close w.
func NewSink(w io.Writer, opts ...Option) (*Sink, error) {
	cfg := DefaultConfig()
	cfg.LineBuffered = false
	return newSink("writer", w, nil, cfg, opts)
}

// Open creates a sink for cfg, opening or creating the output file.
func Open(cfg Config, opts ...Option) (*Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.isStdout() {
		return newSink("stdout", os.Stdout, nil, cfg, opts)
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.WrapFatal(err, "Sink", "Open", "create output directory")
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if cfg.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(cfg.Path, flags, 0644)
	if err != nil {
		return nil, errors.WrapFatal(err, "Sink", "Open", "open output file")
	}

	s, err := newSink(cfg.Path, f, f, cfg, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return s, nil
}

func newSink(name string, w io.Writer, closer io.Closer, cfg Config, opts []Option) (*Sink, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	m, err := newSinkMetrics(o.registry)
	if err != nil {
		return nil, errors.WrapTransient(err, "Sink", "Open", "metrics registration")
	}

	size := cfg.BufferSize
	if size <= 0 {
		size = DefaultConfig().BufferSize
	}

	s := &Sink{
		name:         name,
		w:            bufio.NewWriterSize(w, size),
		closer:       closer,
		lineBuffered: cfg.LineBuffered,
		logger:       o.logger.With("component", "output", "sink", name),
		metrics:      m,
	}

	s.logger.Debug("Output sink opened",
		"append", cfg.Append,
		"buffer_size", size,
		"line_buffered", cfg.LineBuffered)

	return s, nil
}

// WriteLine writes line followed by a newline.
func (s *Sink) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.WrapFatal(errors.ErrSinkClosed, "Sink", "WriteLine", "write line")
	}

	n, err := s.w.WriteString(line)
	if err == nil {
		err = s.w.WriteByte('\n')
		n++
	}
	if err == nil && s.lineBuffered {
		err = s.w.Flush()
	}
	if err != nil {
		s.metrics.recordError()
		return errors.WrapFatal(fmt.Errorf("%w: %w", errors.ErrWriteFailed, err), "Sink", "WriteLine", "write line")
	}

	s.linesWritten++
	s.bytesWritten += int64(n)
	s.metrics.recordLine(n)
	return nil
}

// Flush writes any buffered lines to the underlying writer.
func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	if err := s.w.Flush(); err != nil {
		s.metrics.recordError()
		return errors.WrapFatal(fmt.Errorf("%w: %w", errors.ErrWriteFailed, err), "Sink", "Flush", "flush buffer")
	}
	return nil
}

// Close flushes and, for files opened by Open, closes the file.
// Calling Close more than once is a no-op.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	flushErr := s.w.Flush()
	var closeErr error
	if s.closer != nil {
		closeErr = s.closer.Close()
	}

	s.logger.Debug("Output sink closed",
		"lines_written", s.linesWritten,
		"bytes_written", s.bytesWritten)

	if flushErr != nil {
		return errors.WrapFatal(fmt.Errorf("%w: %w", errors.ErrWriteFailed, flushErr), "Sink", "Close", "flush buffer")
	}
	if closeErr != nil {
		return errors.WrapFatal(closeErr, "Sink", "Close", "close output file")
	}
	return nil
}

// Stats returns the number of lines and bytes accepted so far.
func (s *Sink) Stats() (lines, bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.linesWritten, s.bytesWritten
}
