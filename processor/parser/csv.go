package parser

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/c360/accessmon/errors"
	"github.com/c360/accessmon/metric"
	"github.com/c360/accessmon/pkg/timestamp"
	"github.com/c360/accessmon/record"
)

// Headers is the exact header row an access log must start with.
var Headers = []string{"remotehost", "rfc931", "authuser", "date", "request", "status", "bytes"}

// Column positions within a row.
const (
	colRemoteHost = iota
	colRFC931
	colAuthUser
	colDate
	colRequest
	colStatus
	colBytes
)

// Decoder reads CSV access-log rows and yields records. It implements record.Source.
type Decoder struct {
	r       *csv.Reader
	in      *countingReader
	logger  *slog.Logger
	metrics *metric.Metrics

	headerRead bool
	rows       int64
	err        error // sticky once set, including io.EOF
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Decoder) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMetrics counts consumed input bytes in the registry's core metrics.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(d *Decoder) {
		d.metrics = registry.CoreMetrics()
	}
}

// NewDecoder creates a decoder over r. The header is checked on the first
// call to ReadHeader or Next.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	d := &Decoder{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	d.in = &countingReader{r: r, metrics: d.metrics}
	d.r = csv.NewReader(d.in)
	// Field counts are checked per row so the header can be reported as a header error.
	d.r.FieldsPerRecord = -1
	d.r.ReuseRecord = true
	d.logger = d.logger.With("component", "parser")

	return d
}

// ReadHeader consumes the header row and checks it against Headers.
// Calling it more than once is a no-op.
func (d *Decoder) ReadHeader() error {
	if d.headerRead {
		return nil
	}
	if d.err != nil {
		return d.err
	}

	row, err := d.r.Read()
	switch {
	case err == io.EOF:
		d.err = errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrHeaderMismatch, ErrEmptyInput),
			"Decoder", "ReadHeader", "read header")
		return d.err
	case err != nil:
		d.err = errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrHeaderMismatch, err),
			"Decoder", "ReadHeader", "read header")
		return d.err
	}

	if !equalFields(row, Headers) {
		d.err = errors.WrapInvalid(
			fmt.Errorf("%w: expected %q, got %q", errors.ErrHeaderMismatch,
				strings.Join(Headers, ","), strings.Join(row, ",")),
			"Decoder", "ReadHeader", "check header")
		return d.err
	}

	d.headerRead = true
	d.logger.Debug("Header accepted")
	return nil
}

// Next returns the next decoded record, or io.EOF at the end of input.
// Malformed rows stop decoding with an error naming the input line.
func (d *Decoder) Next() (record.Record, error) {
	if err := d.ReadHeader(); err != nil {
		return record.Record{}, err
	}
	if d.err != nil {
		return record.Record{}, d.err
	}

	row, err := d.r.Read()
	if err == io.EOF {
		d.err = io.EOF
		d.logger.Debug("Input exhausted", "rows", d.rows, "bytes", d.in.n)
		return record.Record{}, io.EOF
	}
	if err != nil {
		var perr *csv.ParseError
		line := 0
		if stderrors.As(err, &perr) {
			line = perr.Line
		}
		d.err = errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrParsingFailed, err),
			"Decoder", "Next", fmt.Sprintf("decode line %d", line))
		return record.Record{}, d.err
	}

	line, _ := d.r.FieldPos(0)
	rec, err := decodeRow(row)
	if err != nil {
		d.err = errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrParsingFailed, err),
			"Decoder", "Next", fmt.Sprintf("decode line %d", line))
		return record.Record{}, d.err
	}

	d.rows++
	return rec, nil
}

// Rows returns how many records have been decoded so far.
func (d *Decoder) Rows() int64 {
	return d.rows
}

// BytesRead returns how many input bytes have been consumed so far.
func (d *Decoder) BytesRead() int64 {
	return d.in.n
}

// decodeRow converts one CSV row into a record. The rfc931 and authuser
// columns are accepted but not kept.
func decodeRow(row []string) (record.Record, error) {
	if len(row) != len(Headers) {
		return record.Record{}, fmt.Errorf("%w: expected %d, got %d", ErrFieldCount, len(Headers), len(row))
	}

	ts, err := timestamp.Parse(row[colDate])
	if err != nil {
		return record.Record{}, fmt.Errorf("field %s: %w", Headers[colDate], err)
	}

	status, err := strconv.ParseUint(row[colStatus], 10, 16)
	if err != nil {
		return record.Record{}, fmt.Errorf("field %s: invalid value %q", Headers[colStatus], row[colStatus])
	}

	size, err := strconv.ParseUint(row[colBytes], 10, 64)
	if err != nil {
		return record.Record{}, fmt.Errorf("field %s: invalid value %q", Headers[colBytes], row[colBytes])
	}

	return record.Record{
		RemoteHost: row[colRemoteHost],
		Timestamp:  ts,
		Request:    row[colRequest],
		Status:     uint16(status),
		Bytes:      size,
	}, nil
}

func equalFields(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// countingReader tracks bytes consumed from the underlying input.
type countingReader struct {
	r       io.Reader
	n       int64
	metrics *metric.Metrics
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	c.metrics.AddInputBytes(n)
	return n, err
}
