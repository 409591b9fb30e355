package parser

import (
	stderrors "errors"
	"io"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/accessmon/errors"
	"github.com/c360/accessmon/metric"
	"github.com/c360/accessmon/record"
)

const header = "remotehost,rfc931,authuser,date,request,status,bytes\n"

func TestDecoder_ValidInput(t *testing.T) {
	input := header +
		`"10.0.0.2","-","apache",1549573860,"GET /api/user HTTP/1.0",200,1234` + "\n" +
		`"10.0.0.4","-","apache",1549573861,"POST /report HTTP/1.0",503,12` + "\n"

	dec := NewDecoder(strings.NewReader(input))
	got, err := record.Collect(dec)
	require.NoError(t, err)

	want := []record.Record{
		{RemoteHost: "10.0.0.2", Timestamp: 1549573860, Request: "GET /api/user HTTP/1.0", Status: 200, Bytes: 1234},
		{RemoteHost: "10.0.0.4", Timestamp: 1549573861, Request: "POST /report HTTP/1.0", Status: 503, Bytes: 12},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, int64(2), dec.Rows())
	assert.Equal(t, int64(len(input)), dec.BytesRead())

	_, err = dec.Next()
	assert.Equal(t, io.EOF, err, "EOF must be sticky")
}

func TestDecoder_HeaderOnly(t *testing.T) {
	dec := NewDecoder(strings.NewReader(header))
	_, err := dec.Next()
	assert.Equal(t, io.EOF, err)
}

func TestDecoder_HeaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"blank lines only", "\n\n"},
		{"wrong order", "rfc931,remotehost,authuser,date,request,status,bytes\n"},
		{"missing column", "remotehost,rfc931,authuser,date,request,status\n"},
		{"extra column", "remotehost,rfc931,authuser,date,request,status,bytes,referer\n"},
		{"upper case", "REMOTEHOST,RFC931,AUTHUSER,DATE,REQUEST,STATUS,BYTES\n"},
		{"data without header", `"10.0.0.2","-","apache",1549573860,"GET / HTTP/1.0",200,1` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := NewDecoder(strings.NewReader(tt.input))
			_, err := dec.Next()
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrHeaderMismatch), "got %v", err)
			assert.True(t, errors.IsInvalid(err))
			assert.Equal(t, int64(0), dec.Rows())
		})
	}
}

func TestDecoder_EmptyInputNamesCause(t *testing.T) {
	err := NewDecoder(strings.NewReader("")).ReadHeader()
	assert.True(t, stderrors.Is(err, ErrEmptyInput))
}

func TestDecoder_RowErrors(t *testing.T) {
	tests := []struct {
		name     string
		row      string
		contains string
	}{
		{"too few fields", `"h","-","u",1549573860,"GET / HTTP/1.0",200`, "wrong number of fields"},
		{"too many fields", `"h","-","u",1549573860,"GET / HTTP/1.0",200,1,2`, "wrong number of fields"},
		{"bad date", `"h","-","u",yesterday,"GET / HTTP/1.0",200,1`, "date"},
		{"negative date", `"h","-","u",-5,"GET / HTTP/1.0",200,1`, "date"},
		{"bad status", `"h","-","u",1549573860,"GET / HTTP/1.0",OK,1`, "status"},
		{"status overflow", `"h","-","u",1549573860,"GET / HTTP/1.0",70000,1`, "status"},
		{"bad bytes", `"h","-","u",1549573860,"GET / HTTP/1.0",200,-1`, "bytes"},
		{"unterminated quote", `"h,"-","u",1549573860,"GET / HTTP/1.0",200,1`, "parsing failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			good := `"h","-","u",1549573850,"GET / HTTP/1.0",200,1`
			dec := NewDecoder(strings.NewReader(header + good + "\n" + tt.row + "\n"))

			_, err := dec.Next()
			require.NoError(t, err)

			_, err = dec.Next()
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrParsingFailed), "got %v", err)
			assert.True(t, errors.IsInvalid(err))
			assert.Contains(t, err.Error(), tt.contains)

			_, again := dec.Next()
			assert.Equal(t, err, again, "errors must be sticky")
		})
	}
}

func TestDecoder_RowErrorNamesLine(t *testing.T) {
	input := header +
		`"h","-","u",1549573850,"GET / HTTP/1.0",200,1` + "\n" +
		`"h","-","u",1549573851,"GET / HTTP/1.0",200,1` + "\n" +
		`"h","-","u",1549573852,"GET / HTTP/1.0",abc,1` + "\n"

	_, err := record.Collect(NewDecoder(strings.NewReader(input)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode line 4")
}

func TestDecoder_ReadHeaderIdempotent(t *testing.T) {
	dec := NewDecoder(strings.NewReader(header))
	require.NoError(t, dec.ReadHeader())
	require.NoError(t, dec.ReadHeader())

	_, err := dec.Next()
	assert.Equal(t, io.EOF, err)
}

func TestDecoder_Metrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	input := header + `"h","-","u",1549573850,"GET / HTTP/1.0",200,1` + "\n"

	_, err := record.Collect(NewDecoder(strings.NewReader(input), WithMetrics(registry), WithLogger(nil)))
	require.NoError(t, err)

	assert.Equal(t, float64(len(input)), testutil.ToFloat64(registry.CoreMetrics().InputBytes))
}
