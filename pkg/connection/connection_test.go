package connection

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBackoffGrowth(t *testing.T) {
	b := NewBackoffWithConfig(BackoffConfig{
		Initial:    100 * time.Millisecond,
		Max:        time.Second,
		Multiplier: 2.0,
		Jitter:     -1, // deterministic delays
	})

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second, // capped
		time.Second,
	}
	for i, w := range want {
		if got := b.Next(); got != w {
			t.Errorf("delay %d: expected %v, got %v", i, w, got)
		}
	}
	if b.Attempts() != len(want) {
		t.Errorf("expected %d attempts, got %d", len(want), b.Attempts())
	}
}

func TestBackoffReset(t *testing.T) {
	b := NewBackoffWithConfig(BackoffConfig{
		Initial: 100 * time.Millisecond,
		Jitter:  -1,
	})

	b.Next()
	b.Next()
	b.Reset()

	if b.Attempts() != 0 {
		t.Errorf("expected 0 attempts after reset, got %d", b.Attempts())
	}
	if got := b.Next(); got != 100*time.Millisecond {
		t.Errorf("expected initial delay after reset, got %v", got)
	}
}

func TestBackoffJitterBounds(t *testing.T) {
	b := NewBackoffWithConfig(BackoffConfig{
		Initial: 100 * time.Millisecond,
		Jitter:  0.25,
	})

	delay := b.Next()
	if delay < 100*time.Millisecond || delay > 125*time.Millisecond {
		t.Errorf("jittered delay %v outside [100ms, 125ms]", delay)
	}
}

func TestBackoffDefaults(t *testing.T) {
	b := NewBackoff()
	delay := b.Next()
	if delay < InitialBackoff {
		t.Errorf("expected at least the initial delay, got %v", delay)
	}
	if delay > InitialBackoff+time.Duration(float64(InitialBackoff)*JitterFactor) {
		t.Errorf("delay %v exceeds the jitter bound", delay)
	}
}

func TestRetry(t *testing.T) {
	fastBackoff := func() *Backoff {
		return NewBackoffWithConfig(BackoffConfig{
			Initial: time.Millisecond,
			Max:     2 * time.Millisecond,
			Jitter:  -1,
		})
	}

	t.Run("SucceedsAfterFailures", func(t *testing.T) {
		calls := 0
		var retries []int

		err := Retry(context.Background(), RetryConfig{
			Backoff: fastBackoff(),
			OnRetry: func(attempt int, delay time.Duration, err error) {
				retries = append(retries, attempt)
			},
		}, func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("refused")
			}
			return nil
		})

		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if calls != 3 {
			t.Errorf("expected 3 dial attempts, got %d", calls)
		}
		if len(retries) != 2 || retries[0] != 1 || retries[1] != 2 {
			t.Errorf("expected retry callbacks [1 2], got %v", retries)
		}
	})

	t.Run("ExhaustsAttempts", func(t *testing.T) {
		dialErr := errors.New("refused")
		calls := 0

		err := Retry(context.Background(), RetryConfig{
			Backoff:     fastBackoff(),
			MaxAttempts: 3,
		}, func(ctx context.Context) error {
			calls++
			return dialErr
		})

		if !errors.Is(err, ErrRetriesExhausted) {
			t.Errorf("expected ErrRetriesExhausted, got %v", err)
		}
		if !errors.Is(err, dialErr) {
			t.Errorf("expected the last dial error to be wrapped, got %v", err)
		}
		if calls != 3 {
			t.Errorf("expected 3 dial attempts, got %d", calls)
		}
	})

	t.Run("ContextCancelStopsRetrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		err := Retry(ctx, RetryConfig{
			Backoff: NewBackoffWithConfig(BackoffConfig{Initial: time.Hour, Jitter: -1}),
		}, func(ctx context.Context) error {
			cancel()
			return errors.New("refused")
		})

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("BackoffResetOnSuccess", func(t *testing.T) {
		b := fastBackoff()
		fail := true

		dial := func(ctx context.Context) error {
			if fail {
				fail = false
				return errors.New("refused")
			}
			return nil
		}

		if err := Retry(context.Background(), RetryConfig{Backoff: b}, dial); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.Attempts() != 0 {
			t.Errorf("expected backoff reset after success, got %d attempts", b.Attempts())
		}
	})
}
