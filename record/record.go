// Package record defines the decoded access-log entry shared by every stage of
// the pipeline, and the Source interface stages use to pull entries.
package record

import (
	"io"
	"strings"
)

// UnknownSection is reported for request lines that carry no usable path.
const UnknownSection = "unknown"

// Record is one decoded access-log entry.
// Records are passed by value and never mutated after decoding.
type Record struct {
	RemoteHost string
	Timestamp  int64 // unix seconds
	Request    string
	Status     uint16
	Bytes      uint64
}

// Section returns the first path segment of the request, without slashes.
//
//	"GET /api/user HTTP/1.0"  -> "api"
//	"GET /search?q=1 HTTP/1.0" -> "search"
//	"GET / HTTP/1.0"          -> ""
//	"garbage"                 -> UnknownSection
func (r Record) Section() string {
	fields := strings.Fields(r.Request)
	if len(fields) < 2 {
		return UnknownSection
	}

	path := fields[1]
	if !strings.HasPrefix(path, "/") {
		return UnknownSection
	}

	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	path = path[1:]
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}

// Source yields records one at a time. Next returns io.EOF once the stream is
// exhausted, and keeps returning it on later calls.
type Source interface {
	Next() (Record, error)
}

// SliceSource serves records from a slice in order.
type SliceSource struct {
	records []Record
	pos     int
}

// NewSliceSource returns a Source over records. The slice is not copied.
func NewSliceSource(records []Record) *SliceSource {
	return &SliceSource{records: records}
}

// Next implements Source.
func (s *SliceSource) Next() (Record, error) {
	if s.pos >= len(s.records) {
		return Record{}, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}

// Collect drains src into a slice, stopping at io.EOF.
// Any other error is returned together with the records read so far.
func Collect(src Source) ([]Record, error) {
	var out []Record
	for {
		rec, err := src.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}
