package connection

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRetriesExhausted indicates the attempt budget ran out before a
// dial succeeded. The last dial error is wrapped alongside it.
var ErrRetriesExhausted = errors.New("connection retries exhausted")

// DialFunc attempts to establish a session once.
type DialFunc func(ctx context.Context) error

// RetryConfig configures a retrying dial loop.
type RetryConfig struct {
	// Backoff supplies inter-attempt delays. Nil means default backoff.
	Backoff *Backoff

	// MaxAttempts caps the number of dial attempts. Zero or negative
	// means retry until the context is cancelled.
	MaxAttempts int

	// OnRetry is invoked before each wait, with the attempt number
	// (starting at 1), the upcoming delay, and the dial error.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// Retry dials until one attempt succeeds, the context is cancelled, or
// MaxAttempts is exhausted. The backoff is reset on success so the
// same instance can be reused for later reconnects.
func Retry(ctx context.Context, cfg RetryConfig, dial DialFunc) error {
	backoff := cfg.Backoff
	if backoff == nil {
		backoff = NewBackoff()
	}

	attempt := 0
	for {
		attempt++

		err := dial(ctx)
		if err == nil {
			backoff.Reset()
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt, err)
		}

		delay := backoff.Next()
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, delay, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
