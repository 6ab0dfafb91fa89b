package throttle

import (
	"fmt"
	"time"

	"github.com/throttlify/throttlify/errors"
	"github.com/throttlify/throttlify/metrics"
)

const (
	// DefaultWindowLimit is the number of admissions allowed per window when none is set.
	DefaultWindowLimit = 60
	// DefaultWindowDuration is the rolling window duration when none is set.
	DefaultWindowDuration = 60 * time.Second

	compactWindowLimit    = 10
	compactWindowDuration = 15 * time.Second
)

// Config is the configuration of a throttle.
//
// Zero values are "not set" and get the defaults, so a zero WindowLimit or
// WindowDuration can't be used to reject every call or to disable the window.
type Config struct {
	// ConcurrentLimit is the max number of calls in flight at the same time.
	// 0 disables the concurrency gate (unbounded).
	ConcurrentLimit int
	// WindowLimit is the max number of calls admitted inside a rolling window.
	// 0 uses DefaultWindowLimit.
	WindowLimit int
	// WindowDuration is the duration of the rolling window. A window slot is held
	// for at least this duration after admission and never released before the
	// call has finished.
	// 0 uses DefaultWindowDuration.
	WindowDuration time.Duration
	// ID identifies the throttle on the metrics.
	ID string
	// MetricsRecorder is the recorder used to measure the gates. When nil the
	// runner flavour uses the recorder from the context (if any).
	MetricsRecorder metrics.Recorder
}

// DefaultConfig returns the standard profile: 60 calls per minute, no concurrency limit.
func DefaultConfig() Config {
	return Config{
		WindowLimit:    DefaultWindowLimit,
		WindowDuration: DefaultWindowDuration,
	}
}

// CompactConfig returns the short window profile: 10 calls every 15 seconds.
func CompactConfig() Config {
	return Config{
		WindowLimit:    compactWindowLimit,
		WindowDuration: compactWindowDuration,
	}
}

// validate checks the values the user set, zero values mean "not set"
// and are filled later by defaults.
func (c Config) validate() error {
	if c.WindowDuration < 0 {
		return fmt.Errorf("%w: window duration must be greater than 0, got %s", errors.ErrInvalidConfig, c.WindowDuration)
	}

	if c.WindowLimit < 0 {
		return fmt.Errorf("%w: window limit must be greater than 0, got %d", errors.ErrInvalidConfig, c.WindowLimit)
	}

	if c.ConcurrentLimit < 0 {
		return fmt.Errorf("%w: concurrent limit must be greater than 0, got %d", errors.ErrInvalidConfig, c.ConcurrentLimit)
	}

	return nil
}

func (c *Config) defaults() {
	if c.WindowLimit == 0 {
		c.WindowLimit = DefaultWindowLimit
	}

	if c.WindowDuration == 0 {
		c.WindowDuration = DefaultWindowDuration
	}
}
