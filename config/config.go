package config

import (
	"encoding/json"
	"fmt"

	"github.com/c360/accessmon/errors"
)

// Chronology policies decide what happens to a record that arrives after its
// slot in the ordered stream may already have been released.
const (
	// PolicyAbort stops the run with a chronology error.
	PolicyAbort = "abort"
	// PolicySkip drops the late record, logs it and keeps going.
	PolicySkip = "skip"
)

// Config is the immutable bundle of tunables for one monitoring run.
type Config struct {
	StatsWindow       int64  `json:"stats_window" yaml:"stats_window"`               // seconds per stats chunk
	AlertWindow       int64  `json:"alert_window" yaml:"alert_window"`               // seconds in the rolling alert window
	AlertRate         int64  `json:"alert_rate" yaml:"alert_rate"`                   // requests/second threshold
	MaxTimestampError int64  `json:"max_timestamp_error" yaml:"max_timestamp_error"` // seconds of tolerated disorder
	ChronologyPolicy  string `json:"chronology_policy" yaml:"chronology_policy"`
}

// DefaultConfig returns the documented defaults: 10s chunks, a 120s alert
// window at 10 req/s, 1s of timestamp error, and aborting on late records.
func DefaultConfig() Config {
	return Config{
		StatsWindow:       10,
		AlertWindow:       120,
		AlertRate:         10,
		MaxTimestampError: 1,
		ChronologyPolicy:  PolicyAbort,
	}
}

// BufferSeconds is how far behind the newest timestamp a record may arrive
// and still be placed in order.
func (c Config) BufferSeconds() int64 {
	return 2 * c.MaxTimestampError
}

// Validate checks every tunable and names the first offending field.
func (c Config) Validate() error {
	check := func(ok bool, field string, value any, rule string) error {
		if ok {
			return nil
		}
		return errors.WrapInvalid(
			fmt.Errorf("%w: %s=%v must be %s", errors.ErrInvalidConfig, field, value, rule),
			"Config", "Validate", "check "+field)
	}

	if err := check(c.StatsWindow > 0, "stats_window", c.StatsWindow, "> 0"); err != nil {
		return err
	}
	if err := check(c.AlertWindow > 0, "alert_window", c.AlertWindow, "> 0"); err != nil {
		return err
	}
	if err := check(c.AlertRate > 0, "alert_rate", c.AlertRate, "> 0"); err != nil {
		return err
	}
	if err := check(c.MaxTimestampError >= 0, "max_timestamp_error", c.MaxTimestampError, ">= 0"); err != nil {
		return err
	}
	policyOK := c.ChronologyPolicy == PolicyAbort || c.ChronologyPolicy == PolicySkip
	if err := check(policyOK, "chronology_policy", c.ChronologyPolicy,
		fmt.Sprintf("%q or %q", PolicyAbort, PolicySkip)); err != nil {
		return err
	}
	return nil
}

// String returns a JSON representation of the config
func (c Config) String() string {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Sprintf("%#v", c)
	}
	return string(data)
}
