package testutil

import (
	"fmt"
	"strings"
)

// Header is the CSV header row of an access log, quoted as in real exports.
const Header = `"remotehost","rfc931","authuser","date","request","status","bytes"`

// Start is 2019-02-07 21:11:00 UTC, a convenient round log time.
const Start = int64(1549573860)

// Row is one access-log line before encoding.
type Row struct {
	Host      string
	Timestamp int64
	Request   string
	Status    int
	Bytes     int
}

// APIRow is a 100-byte successful GET /api/user at ts.
func APIRow(ts int64) Row {
	return Row{Host: "10.0.0.1", Timestamp: ts, Request: "GET /api/user HTTP/1.0", Status: 200, Bytes: 100}
}

// Burst returns perSecond APIRows for each second in [from, from+seconds).
func Burst(from, seconds int64, perSecond int) []Row {
	rows := make([]Row, 0, int(seconds)*perSecond)
	for ts := from; ts < from+seconds; ts++ {
		for i := 0; i < perSecond; i++ {
			rows = append(rows, APIRow(ts))
		}
	}
	return rows
}

// Span returns one APIRow per second for every second in [from, to].
func Span(from, to int64) []Row {
	return Burst(from, to-from+1, 1)
}

// CSV encodes rows as an access log, header included.
func CSV(rows ...Row) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteByte('\n')
	for _, r := range rows {
		host := r.Host
		if host == "" {
			host = "10.0.0.1"
		}
		fmt.Fprintf(&b, "%q,\"-\",\"apache\",%d,%q,%d,%d\n", host, r.Timestamp, r.Request, r.Status, r.Bytes)
	}
	return b.String()
}
