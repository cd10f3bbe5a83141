// Package httputil provides HTTP plumbing shared by the JIRA client and the
// API server.
//
// # Caching
//
// [Cache] stores decoded JSON responses in any [cache.Cache] backend
// (file for the CLI, Redis for a shared server) under keys produced by a
// [cache.Keyer]. Namespaces keep responses from different sources apart.
//
//	c := httputil.NewCache(backend, nil, cache.TTLHTTP).Namespace("jira")
//	var boards boardList
//	if ok, _ := c.Get(ctx, path, &boards); !ok {
//	    boards = fetch()
//	    _ = c.Set(ctx, path, boards)
//	}
//
// # Retry
//
// [Retry] runs an operation with exponential backoff. Only errors wrapped
// in [RetryableError] are retried: network failures, 5xx responses and
// 429 rate limits. A 429 with Retry-After waits the requested time (at
// most 30 seconds) instead of the backoff. [RetryWithBackoff] uses 3
// attempts starting at one second.
//
// # Status handling
//
// [CheckStatus] classifies an HTTP status code into nil, [ErrNotFound],
// [ErrUnauthorized], or a network error, marking transient ones retryable.
//
// [cache.Cache]: github.com/matzehuels/roadmap/pkg/cache.Cache
// [cache.Keyer]: github.com/matzehuels/roadmap/pkg/cache.Keyer
package httputil
