// Package accessmon monitors HTTP access logs in a single pass, printing
// periodic traffic summaries and edge-triggered rate alerts.
//
// # Overview
//
// Input is a CSV access log with the header
//
//	"remotehost","rfc931","authuser","date","request","status","bytes"
//
// where date is a Unix timestamp in seconds. Rows are only roughly ordered by
// time; a record may appear up to max_timestamp_error seconds away from its
// true position. Output is a stream of lines: one summary per stats window of
// log time, and an ALERT or RECOVERY line whenever the average request rate
// over the rolling alert window crosses the threshold.
//
// All timing is log time. The wall clock never affects output, so the same
// input always yields the same lines.
//
// # Architecture
//
//	┌─────────────────────┐
//	│   parser.Decoder    │  CSV rows → record.Record
//	└──────────┬──────────┘
//	           ↓ pulls
//	┌─────────────────────┐
//	│   reorder.Buffer    │  Heap held 2×max_timestamp_error behind the watermark
//	└──────────┬──────────┘
//	           ↓ ordered records
//	┌─────────────────────┐
//	│    engine.Engine    │  Pushes each record to the monitors in order
//	└──────────┬──────────┘
//	     ┌─────┴──────┐
//	     ↓            ↓
//	┌──────────┐ ┌──────────┐
//	│  stats   │ │  alert   │  Chunk summaries, rolling-window alerts
//	└────┬─────┘ └────┬─────┘
//	     └─────┬──────┘
//	           ↓ lines
//	┌─────────────────────┐
//	│     file.Sink       │  stdout or a file
//	└─────────────────────┘
//
// # Packages
//
//   - record: the Record type, section extraction and the Source interface
//   - config: settings, layered JSON/YAML loading, env overrides, schema checks
//   - processor/parser: CSV decoding with header and row validation
//   - processor/reorder: bounded-disorder reordering and chronology checks
//   - processor/stats: fixed-width chunk aggregation and summary rendering
//   - processor/alert: rolling-window rate alerts
//   - engine: the dispatch loop and MonitorStream
//   - output/file: buffered line sink
//   - metric: Prometheus registry, /metrics server and text dumps
//   - errors: classified errors and standard sentinels
//   - pkg/buffer: generic growable ring queue
//   - pkg/timestamp: Unix-seconds parsing and UTC rendering
//   - cmd/accessmon: the command-line tool
//
// # Quick Start
//
//	accessmon < sample.csv
//	accessmon --input=sample.csv --alert-rate=5 --metrics-port=9090
package accessmon
