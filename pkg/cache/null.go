package cache

import (
	"context"
	"time"
)

// NullCache is the "none" backend: every Get misses and writes are
// dropped. It backs --no-cache and servers started without a cache.
type NullCache struct{}

// NewNullCache returns the "none" backend.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
