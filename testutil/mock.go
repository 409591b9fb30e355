package testutil

import (
	"errors"
	"io"
	"sync"

	"github.com/c360/accessmon/record"
)

// LineRecorder collects output lines in memory. Safe for concurrent use.
type LineRecorder struct {
	mu    sync.Mutex
	lines []string
}

// WriteLine records line.
func (r *LineRecorder) WriteLine(line string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
	return nil
}

// Lines returns a copy of the recorded lines.
func (r *LineRecorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// FailingWriter rejects every line with Err.
type FailingWriter struct {
	Err error
}

// WriteLine returns w.Err, or a generic error when it is unset.
func (w FailingWriter) WriteLine(string) error {
	if w.Err == nil {
		return errors.New("write rejected")
	}
	return w.Err
}

// ErrorSource yields Records and then fails with Err instead of io.EOF.
type ErrorSource struct {
	Records []record.Record
	Err     error
	next    int
}

// Next implements record.Source.
func (s *ErrorSource) Next() (record.Record, error) {
	if s.next < len(s.Records) {
		rec := s.Records[s.next]
		s.next++
		return rec, nil
	}
	if s.Err == nil {
		return record.Record{}, io.EOF
	}
	return record.Record{}, s.Err
}
