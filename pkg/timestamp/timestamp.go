// Package timestamp provides Unix-seconds timestamp handling utilities.
//
// Access logs carry whole-second Unix timestamps, so this package uses int64
// seconds as the canonical format. All rendering is in UTC so that output is
// identical regardless of the host's local zone.
//
// Usage Examples:
//
//	// Parse a log column
//	ts, err := timestamp.Parse("1549573860")
//
//	// Render a chunk boundary
//	start := timestamp.FormatDateTime(ts)  // "2019-02-07 21:11:00"
//	end := timestamp.FormatClock(ts + 10)  // "21:11:10"
package timestamp

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DateTimeLayout renders a full UTC date and time.
	DateTimeLayout = "2006-01-02 15:04:05"

	// ClockLayout renders only the UTC time of day.
	ClockLayout = "15:04:05"

	// maxSeconds is 3000-01-01T00:00:00Z, beyond which a value is not a plausible log time.
	maxSeconds = 32503680000
)

// ToTime converts Unix seconds to a UTC time.Time.
func ToTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// FromTime converts a time.Time to Unix seconds.
// Returns 0 for the zero time.
func FromTime(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

// FormatDateTime renders Unix seconds as "YYYY-MM-DD HH:MM:SS" in UTC.
func FormatDateTime(sec int64) string {
	return ToTime(sec).Format(DateTimeLayout)
}

// FormatClock renders Unix seconds as "HH:MM:SS" in UTC.
func FormatClock(sec int64) string {
	return ToTime(sec).Format(ClockLayout)
}

// Parse converts a decimal Unix-seconds string into int64 seconds.
// Surrounding whitespace is ignored. Negative and out-of-range values are rejected.
func Parse(s string) (int64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("empty timestamp")
	}

	sec, err := strconv.ParseUint(trimmed, 10, 63)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}

	if err := Validate(int64(sec)); err != nil {
		return 0, err
	}
	return int64(sec), nil
}

// Validate checks if a timestamp is valid (non-negative and reasonable).
func Validate(sec int64) error {
	if sec < 0 {
		return fmt.Errorf("timestamp cannot be negative: %d", sec)
	}
	if sec > maxSeconds {
		return fmt.Errorf("timestamp too far in future: %d", sec)
	}
	return nil
}

// Between returns the duration from start to end.
func Between(start, end int64) time.Duration {
	return time.Duration(end-start) * time.Second
}

// Max returns the later of two timestamps.
func Max(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// Min returns the earlier of two timestamps.
func Min(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
