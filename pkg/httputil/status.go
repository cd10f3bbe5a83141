package httputil

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	rerrors "github.com/matzehuels/roadmap/pkg/errors"
)

// DefaultTimeout is the request timeout of clients made by [NewHTTPClient].
const DefaultTimeout = 15 * time.Second

var (
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized is returned for 401 and 403 responses.
	ErrUnauthorized = errors.New("unauthorized")
)

// NewHTTPClient creates an HTTP client with [DefaultTimeout].
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// CheckStatus classifies a response. It returns nil for 2xx, [ErrNotFound]
// for 404, [ErrUnauthorized] for 401/403, a retryable rate limit error for
// 429, a retryable [ErrNetwork] for 5xx and a plain [ErrNetwork] otherwise.
func CheckStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, code)
	case code == http.StatusTooManyRequests:
		retry, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &RetryableError{Err: &rerrors.RateLimitedError{RetryAfter: retry}}
	case code >= 500:
		return &RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
