package httputil

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/roadmap/pkg/cache"
)

// Cache is a JSON view over a [cache.Cache] for HTTP response bodies.
//
// Keys are built with [cache.Keyer.HTTPKey] from the namespace and the
// caller's key, so the same backend can hold responses from several APIs
// next to layouts and artifacts:
//
//	jira := httputil.NewCache(backend, nil, 10*time.Minute).Namespace("jira")
//	jira.Set(ctx, "/rest/agile/1.0/board?name=HEL", boards)
//
// Cache is safe for concurrent use if the backend is.
type Cache struct {
	backend   cache.Cache
	keyer     cache.Keyer
	ttl       time.Duration
	namespace string
}

// NewCache creates a Cache over backend. A nil backend disables caching
// and a nil keyer uses [cache.NewDefaultKeyer]. A ttl of 0 means entries
// never expire.
func NewCache(backend cache.Cache, keyer cache.Keyer, ttl time.Duration) *Cache {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Cache{backend: backend, keyer: keyer, ttl: ttl}
}

// TTL returns the time-to-live for cache entries.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Key returns the backend key used for key.
func (c *Cache) Key(key string) string {
	return c.keyer.HTTPKey(c.namespace, key)
}

// Get retrieves a cached value by key and unmarshals it into v.
//
//   - (true, nil): hit, v is populated.
//   - (false, nil): miss or expired entry, v is unchanged.
//   - (false, err): backend or decode failure.
func (c *Cache) Get(ctx context.Context, key string, v any) (bool, error) {
	data, ok, err := c.backend.Get(ctx, c.Key(key))
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

// Set marshals v to JSON and stores it under key, resetting its TTL.
func (c *Cache) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.backend.Set(ctx, c.Key(key), data, c.ttl)
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.backend.Delete(ctx, c.Key(key))
}

// Namespace returns a Cache that shares the backend and TTL but files keys
// under namespace. Calls chain: Namespace("jira").Namespace("HEL") files
// under "jira:HEL".
func (c *Cache) Namespace(namespace string) *Cache {
	ns := namespace
	if c.namespace != "" && namespace != "" {
		ns = c.namespace + ":" + namespace
	} else if namespace == "" {
		ns = c.namespace
	}
	return &Cache{
		backend:   c.backend,
		keyer:     c.keyer,
		ttl:       c.ttl,
		namespace: ns,
	}
}
