package retry

import (
	"context"
	"time"

	ai "github.com/spetersoncode/baton"
)

// Event describes a failed attempt that will be retried.
type Event struct {
	Attempt     int // 1-indexed
	MaxAttempts int
	Err         error
	Delay       time.Duration
}

// Notify is called before sleeping between attempts.
type Notify func(Event)

// effectiveDelay honors the server's Retry-After if it is larger.
func effectiveDelay(configured time.Duration, err error) time.Duration {
	if server := ai.RetryAfterOf(err); server > configured {
		return server
	}
	return configured
}

// Do executes fn until it succeeds, returns a non-transient error, or the
// attempts run out. Backoff waits respect ctx cancellation.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	return DoNotify(ctx, cfg, nil, fn)
}

// DoNotify is like Do but reports each retry to notify, which may be nil.
func DoNotify[T any](ctx context.Context, cfg Config, notify Notify, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := max(cfg.MaxAttempts, 1)
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsTransient(err) || attempt == attempts-1 {
			break
		}

		delay := effectiveDelay(cfg.Delay(attempt), err)
		if notify != nil {
			notify(Event{Attempt: attempt + 1, MaxAttempts: attempts, Err: err, Delay: delay})
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}
