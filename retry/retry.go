package retry

import (
	"context"
	"time"

	ai "github.com/mwhitford/manifold"
)

// Do executes fn with retry on transient errors, backing off between
// attempts. A server-provided retry-after hint overrides the computed
// backoff. Context cancellation is respected during waits.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return zero, err
		}

		if attempt < cfg.MaxAttempts-1 {
			if err := wait(ctx, backoff(cfg, attempt, err)); err != nil {
				return zero, err
			}
		}
	}

	return zero, lastErr
}

// DoStream is like Do but for functions returning a channel.
// It retries stream establishment, not individual chunks.
func DoStream[T any](ctx context.Context, cfg Config, fn func() (<-chan T, error)) (<-chan T, error) {
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		ch, err := fn()
		if err == nil {
			return ch, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return nil, err
		}

		if attempt < cfg.MaxAttempts-1 {
			if err := wait(ctx, backoff(cfg, attempt, err)); err != nil {
				return nil, err
			}
		}
	}

	return nil, lastErr
}

func backoff(cfg Config, attempt int, err error) time.Duration {
	if ra := ai.RetryAfterOf(err); ra > 0 {
		if cfg.MaxDelay > 0 && ra > cfg.MaxDelay {
			return cfg.MaxDelay
		}
		return ra
	}
	return cfg.Delay(attempt)
}

func wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
