package alert

import (
	"fmt"

	"github.com/c360/accessmon/pkg/timestamp"
)

// Kind distinguishes the two edges of the alert state.
type Kind string

const (
	// KindAlert marks the rate reaching the threshold.
	KindAlert Kind = "ALERT"
	// KindRecovery marks the rate falling back below the threshold.
	KindRecovery Kind = "RECOVERY"
)

// Event is one transition of the alert state.
type Event struct {
	Kind      Kind
	Timestamp int64   // timestamp of the record that caused the transition
	Rate      float64 // average requests per second over the window
	Window    int64   // window length in seconds
	Threshold int64   // configured alert rate
	Requests  int     // requests in the window at the transition
}

// String renders the event as one output line.
func (e Event) String() string {
	when := timestamp.FormatDateTime(e.Timestamp)
	if e.Kind == KindAlert {
		return fmt.Sprintf("%s ALERT-----+------> average of %5.1frps over last %3d seconds exceeds threshold of  %5.1frps <-------ALERT",
			when, e.Rate, e.Window, float64(e.Threshold))
	}
	return fmt.Sprintf("%s RECOVERY--+------> average of %5.1frps over last %3d seconds is below threshold of %5.1frps <----RECOVERY",
		when, e.Rate, e.Window, float64(e.Threshold))
}
