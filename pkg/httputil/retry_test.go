package httputil

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	rerrors "github.com/matzehuels/roadmap/pkg/errors"
)

func TestRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("success first try", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			return nil
		})
		if err != nil || calls != 1 {
			t.Errorf("Retry() = %v after %d calls, want nil after 1", err, calls)
		}
	})

	t.Run("non-retryable stops", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			return ErrNotFound
		})
		if !errors.Is(err, ErrNotFound) || calls != 1 {
			t.Errorf("Retry() = %v after %d calls, want ErrNotFound after 1", err, calls)
		}
	})

	t.Run("retryable retries", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			if calls < 3 {
				return &RetryableError{Err: ErrNetwork}
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("Retry() = %v after %d calls, want nil after 3", err, calls)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 2, time.Millisecond, func() error {
			calls++
			return &RetryableError{Err: ErrNetwork}
		})
		if !errors.Is(err, ErrNetwork) || calls != 2 {
			t.Errorf("Retry() = %v after %d calls, want ErrNetwork after 2", err, calls)
		}
	})
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Second, func() error {
		return &RetryableError{Err: ErrNetwork}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() = %v, want context.Canceled", err)
	}
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want time.Duration
	}{
		{"backoff", &RetryableError{Err: ErrNetwork}, 2 * time.Second},
		{"retry after", &RetryableError{Err: &rerrors.RateLimitedError{RetryAfter: 5}}, 5 * time.Second},
		{"capped", &RetryableError{Err: &rerrors.RateLimitedError{RetryAfter: 600}}, maxRetryAfter},
		{"no header", &RetryableError{Err: &rerrors.RateLimitedError{}}, 2 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryDelay(tt.err, 2*time.Second); got != tt.want {
				t.Errorf("retryDelay = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryRateLimitedThenOK(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), DefaultAttempts, time.Millisecond, func() error {
		calls++
		if calls == 1 {
			resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}}
			return CheckStatus(resp)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("Retry() = %v after %d calls, want nil after 2", err, calls)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		header    http.Header
		wantErr   error
		retryable bool
	}{
		{name: "200 OK", code: 200},
		{name: "204 No Content", code: 204},
		{name: "404 Not Found", code: 404, wantErr: ErrNotFound},
		{name: "401 Unauthorized", code: 401, wantErr: ErrUnauthorized},
		{name: "403 Forbidden", code: 403, wantErr: ErrUnauthorized},
		{name: "500", code: 500, wantErr: ErrNetwork, retryable: true},
		{name: "503", code: 503, wantErr: ErrNetwork, retryable: true},
		{name: "400", code: 400, wantErr: ErrNetwork},
		{name: "429", code: 429, header: http.Header{"Retry-After": {"7"}}, retryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckStatus(&http.Response{StatusCode: tt.code, Header: tt.header})
			if tt.wantErr == nil && !tt.retryable {
				if err != nil {
					t.Errorf("CheckStatus() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("CheckStatus() should return error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckStatus() error = %v, want %v", err, tt.wantErr)
			}
			if got := isRetryable(err); got != tt.retryable {
				t.Errorf("retryable = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestCheckStatusRateLimit(t *testing.T) {
	err := CheckStatus(&http.Response{StatusCode: 429, Header: http.Header{"Retry-After": {"7"}}})
	var rl *rerrors.RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("CheckStatus(429) = %T, want RateLimitedError", err)
	}
	if rl.RetryAfter != 7 {
		t.Errorf("RetryAfter = %d, want 7", rl.RetryAfter)
	}
}
