// Package cache stores computed boards, layouts and rendered artifacts.
//
// Callers talk to the [Cache] interface and build keys with a [Keyer].
// [FileCache] backs the CLI, [RedisCache] backs a shared API deployment,
// and [NullCache] disables caching.
package cache

import (
	"context"
	"time"
)

// Default time-to-live per entry kind.
const (
	// TTLHTTP is how long raw JIRA responses are kept.
	TTLHTTP = 10 * time.Minute

	// TTLBoard is how long a fetched board file is kept.
	TTLBoard = 30 * time.Minute

	// TTLLayout and TTLArtifact are keyed by content hash, so they only
	// expire to bound disk usage.
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); an error means the backend
// itself failed. A ttl of 0 means no expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
