// Package stats summarises access-log traffic over fixed-width time chunks.
//
// The first chunk opens at the first record's timestamp, not at an aligned
// boundary. Each chunk is the half-open range [start, start+stats_window).
// When a record lands beyond the open chunk, that chunk is closed and
// summarised, and one empty summary is produced for every chunk the stream
// skipped over. Flush closes the last chunk at end of stream.
//
// A summary reports the request count and rate, the busiest section, and up
// to three busiest status codes with integer percentages. Ties go to the
// smaller section name or status code. Times are rendered in UTC.
package stats
