package jira

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	rerrors "github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/httputil"
	"github.com/matzehuels/roadmap/pkg/observability"
)

var (
	// ErrNotFound is returned when a board, sprint or issue doesn't exist.
	ErrNotFound = errors.New("jira: not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("jira: network error")

	// ErrUnauthorized is returned when the credentials are rejected.
	ErrUnauthorized = errors.New("jira: unauthorized")
)

// Config holds the connection settings of a JIRA site.
type Config struct {
	BaseURL    string `toml:"base_url"`
	Email      string `toml:"email"`
	Token      string `toml:"-"`
	ProjectKey string `toml:"project_key"`
	// MaxResults caps JQL searches. Zero means 100.
	MaxResults int `toml:"max_results"`
}

// Validate checks that the base URL and credentials are usable.
func (c Config) Validate() error {
	if err := rerrors.ValidateURL(c.BaseURL); err != nil {
		return err
	}
	if c.Email == "" || c.Token == "" {
		return rerrors.New(rerrors.ErrCodeUnauthorized, "jira email and API token are required")
	}
	if c.ProjectKey != "" {
		return rerrors.ValidateProjectKey(c.ProjectKey)
	}
	return nil
}

// Client talks to the JIRA REST API with basic auth, caching GET responses.
type Client struct {
	http       *http.Client
	cache      *httputil.Cache
	baseURL    string
	headers    map[string]string
	maxResults int
	logger     *log.Logger

	// Refresh bypasses cached responses (they are still written).
	Refresh bool
}

// NewClient creates a Client for cfg. Responses are cached in c under the
// "jira" namespace; pass nil to disable caching.
func NewClient(cfg Config, c *httputil.Cache, logger *log.Logger) *Client {
	if c == nil {
		c = httputil.NewCache(nil, nil, 0)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	auth := base64.StdEncoding.EncodeToString([]byte(cfg.Email + ":" + cfg.Token))
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 100
	}
	return &Client{
		http:    httputil.NewHTTPClient(),
		cache:   c.Namespace("jira"),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		headers: map[string]string{
			"Authorization": "Basic " + auth,
			"Accept":        "application/json",
			"Content-Type":  "application/json",
		},
		maxResults: maxResults,
		logger:     logger,
	}
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

// Cached retrieves a value from cache or executes fetch and caches the result.
// The fetch function should populate v; on success, v is stored in the cache.
func (c *Client) Cached(ctx context.Context, key string, v any, fetch func() error) error {
	if !c.Refresh {
		if ok, _ := c.cache.Get(ctx, key, v); ok {
			observability.Cache().OnCacheHit(ctx, "http")
			return nil
		}
		observability.Cache().OnCacheMiss(ctx, "http")
	}
	if err := httputil.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}
	if err := c.cache.Set(ctx, key, v); err != nil {
		c.logger.Debug("cache write failed", "key", key, "err", err)
	}
	return nil
}

// get fetches path (relative to the base URL, with query) into v through
// the cache.
func (c *Client) get(ctx context.Context, path string, v any) error {
	return c.Cached(ctx, path, v, func() error {
		return c.getJSON(ctx, path, v)
	})
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	body, err := c.doRequest(ctx, path)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, p := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, p)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, p, err)
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	hooks.OnResponse(ctx, req.Method, host, p, resp.StatusCode, time.Since(start))
	c.logger.Debug("jira request", "path", p, "status", resp.StatusCode, "duration", time.Since(start))

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %w", p, err)
	}
	return resp.Body, nil
}

// checkStatus maps the shared HTTP classification onto this package's
// sentinel errors, keeping retryability.
func checkStatus(resp *http.Response) error {
	err := httputil.CheckStatus(resp)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, httputil.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, httputil.ErrUnauthorized):
		return fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case errors.Is(err, httputil.ErrNetwork):
		if errors.As(err, new(*httputil.RetryableError)) {
			return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)}
		}
		return fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
	default:
		return err
	}
}

// AsCoded converts a client error into a coded error for the CLI and API.
func AsCoded(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return rerrors.Wrap(rerrors.ErrCodeBoardNotFound, err, "jira resource not found")
	case errors.Is(err, ErrUnauthorized):
		return rerrors.Wrap(rerrors.ErrCodeUnauthorized, err, "jira rejected the credentials")
	case errors.Is(err, context.DeadlineExceeded):
		return rerrors.Wrap(rerrors.ErrCodeTimeout, err, "jira request timed out")
	case errors.As(err, new(*rerrors.RateLimitedError)):
		return err
	case errors.Is(err, ErrNetwork):
		return rerrors.Wrap(rerrors.ErrCodeNetwork, err, "jira request failed")
	default:
		return rerrors.Wrap(rerrors.ErrCodeInternal, err, "jira")
	}
}

func query(kv ...string) string {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return v.Encode()
}
