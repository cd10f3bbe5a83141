package httputil

import (
	"context"
	"errors"
	"time"

	rerrors "github.com/matzehuels/roadmap/pkg/errors"
)

// Retry defaults used by JIRA requests.
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second

	// maxRetryAfter caps the wait requested by a 429 Retry-After header.
	maxRetryAfter = 30 * time.Second
)

// RetryableError marks a transient failure (network error, 5xx, 429) that
// [Retry] should attempt again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry runs fn up to attempts times. Only [RetryableError] failures are
// retried; the delay doubles after each one, except that a rate limit with
// a Retry-After value waits that long instead. It returns the last error,
// or ctx.Err() when ctx ends while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
		if i == attempts-1 {
			break
		}

		wait := retryDelay(lastErr, delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}
	return lastErr
}

// RetryWithBackoff calls [Retry] with [DefaultAttempts] and [DefaultDelay].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, DefaultAttempts, DefaultDelay, fn)
}

// retryDelay returns how long to wait after err.
func retryDelay(err error, backoff time.Duration) time.Duration {
	var rl *rerrors.RateLimitedError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return min(time.Duration(rl.RetryAfter)*time.Second, maxRetryAfter)
	}
	return backoff
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
