package record

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Section(t *testing.T) {
	tests := []struct {
		name    string
		request string
		want    string
	}{
		{"nested path", "GET /api/user HTTP/1.0", "api"},
		{"single segment", "GET /report HTTP/1.0", "report"},
		{"trailing slash", "POST /report/ HTTP/1.0", "report"},
		{"query string", "GET /search?q=1 HTTP/1.1", "search"},
		{"fragment", "GET /docs#intro HTTP/1.1", "docs"},
		{"root", "GET / HTTP/1.0", ""},
		{"root with query", "GET /?x=1 HTTP/1.0", ""},
		{"no protocol", "GET /api", "api"},
		{"extra whitespace", "  GET   /api/user   HTTP/1.0 ", "api"},
		{"empty", "", UnknownSection},
		{"method only", "GET", UnknownSection},
		{"absolute url", "GET http://example.com/api HTTP/1.0", UnknownSection},
		{"relative path", "GET api/user HTTP/1.0", UnknownSection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Record{Request: tt.request}.Section())
		})
	}
}

func TestSliceSource(t *testing.T) {
	records := []Record{
		{Timestamp: 1, Request: "GET /a HTTP/1.0"},
		{Timestamp: 2, Request: "GET /b HTTP/1.0"},
	}
	src := NewSliceSource(records)

	for _, want := range records {
		got, err := src.Next()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := src.Next()
	assert.Equal(t, io.EOF, err)
	_, err = src.Next()
	assert.Equal(t, io.EOF, err, "EOF must be sticky")
}

type failingSource struct {
	served int
	err    error
}

func (f *failingSource) Next() (Record, error) {
	if f.served == 0 {
		f.served++
		return Record{Timestamp: 7}, nil
	}
	return Record{}, f.err
}

func TestCollect(t *testing.T) {
	got, err := Collect(NewSliceSource([]Record{{Timestamp: 1}, {Timestamp: 2}}))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = Collect(NewSliceSource(nil))
	require.NoError(t, err)
	assert.Empty(t, got)

	boom := errors.New("boom")
	got, err = Collect(&failingSource{err: boom})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []Record{{Timestamp: 7}}, got)
}
