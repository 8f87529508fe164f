package solana

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Default retry configuration values.
const (
	DefaultMaxRetries  = 2
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// ErrRateLimited is the transient error recorded for HTTP 429 responses.
var ErrRateLimited = errors.New("rate limited (429)")

// RetryPolicy is an exponential backoff budget shared by the HTTP clients.
type RetryPolicy struct {
	MaxRetries  int
	Delay       time.Duration
	MaxDelay    time.Duration
	BackoffMult float64
}

// DefaultRetryPolicy returns 2 retries starting at 500ms, doubling per attempt.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:  DefaultMaxRetries,
		Delay:       DefaultRetryDelay,
		MaxDelay:    DefaultMaxDelay,
		BackoffMult: DefaultBackoffMult,
	}
}

// permanentError marks an attempt error that must not be retried.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so that Retry returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retry runs fn until it succeeds, returns a Permanent error, the budget is
// exhausted or ctx is done. The first attempt runs without delay.
func Retry(ctx context.Context, p RetryPolicy, fn func(ctx context.Context) error) error {
	delay := p.Delay
	var lastErr error

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * p.BackoffMult)
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
