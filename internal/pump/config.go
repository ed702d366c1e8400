package pump

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultPeriod is the nominal spacing between ticks. Hosts may coalesce
	// or delay firings, so it is a minimum, not a guarantee.
	DefaultPeriod = time.Millisecond

	// DefaultYield is how long every tick blocks the host thread before it
	// drains the registry.
	DefaultYield = 20 * time.Millisecond
)

// Config tunes a Driver.
type Config struct {
	// Period is the minimum spacing between ticks requested from the host.
	Period time.Duration

	// Yield is the minimum duration each tick blocks the host thread so that
	// cooperatively scheduled work sharing that thread can make progress. Its
	// right value depends on the host and on the workload it has to let run.
	Yield time.Duration
}

// DefaultConfig returns the configuration the original heartbeat used.
func DefaultConfig() Config {
	return Config{
		Period: DefaultPeriod,
		Yield:  DefaultYield,
	}
}

// Validate checks that the configuration can drive a timer.
func (c Config) Validate() error {
	var errs []error
	if c.Period <= 0 {
		errs = append(errs, fmt.Errorf("period must be positive, got %s", c.Period))
	}
	if c.Yield < 0 {
		errs = append(errs, fmt.Errorf("yield must not be negative, got %s", c.Yield))
	}
	return errors.Join(errs...)
}
