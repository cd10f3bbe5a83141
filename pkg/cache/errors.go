package cache

import (
	"context"
	"errors"
)

// Sentinel errors for caching operations.
var (
	// ErrCacheMiss is returned by helpers that require a hit.
	ErrCacheMiss = errors.New("cache miss")

	// ErrClosed is returned when a closed backend is used.
	ErrClosed = errors.New("cache closed")

	// ErrUnknownBackend is returned by [Open] for an unrecognised backend name.
	ErrUnknownBackend = errors.New("unknown cache backend")
)

// MustGet is like Cache.Get but turns a miss into [ErrCacheMiss].
func MustGet(ctx context.Context, c Cache, key string) ([]byte, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCacheMiss
	}
	return data, nil
}
