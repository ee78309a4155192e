// Package retry wraps provider call establishment with exponential backoff.
// Only transient failures are retried; a server-supplied Retry-After hint
// takes precedence over the computed delay.
package retry

import (
	"math"
	"math/rand"
	"time"
)

// Config controls backoff behavior.
type Config struct {
	// MaxAttempts bounds the total number of calls, counting the first.
	MaxAttempts int

	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps every wait, including server-provided hints.
	MaxDelay time.Duration

	// Multiplier grows the delay between successive retries.
	Multiplier float64

	// Jitter spreads each delay by a random factor in [1-Jitter, 1+Jitter]
	// so clients recovering from the same outage do not retry in lockstep.
	Jitter float64
}

// DefaultConfig returns the configuration used by client entry points:
// 10 attempts, 1s initial delay doubling up to 60s, 10% jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  10,
		InitialDelay: time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// Disabled returns a single-attempt configuration.
func Disabled() Config {
	return Config{MaxAttempts: 1}
}

// Delay returns the wait after attempt n (0-indexed): InitialDelay grown by
// Multiplier^n, capped at MaxDelay, then jittered.
func (c Config) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	d := float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt))
	d = math.Min(d, float64(c.MaxDelay))

	if c.Jitter > 0 {
		d *= 1 + (rand.Float64()*2-1)*c.Jitter
	}

	return time.Duration(d)
}
