package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config selects and configures a cache backend.
type Config struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"-"`
	RedisDB       int    `toml:"redis_db"`
}

// Open returns the backend named by cfg.Backend. An empty backend means
// file when Dir is set and none otherwise.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = BackendNone
		if cfg.Dir != "" {
			backend = BackendFile
		}
	}
	switch backend {
	case BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file cache: no directory")
		}
		fc, err := NewFileCache(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	case BackendRedis:
		addr := cfg.RedisAddr
		if addr == "" {
			addr = "localhost:6379"
		}
		rc, err := NewRedisCache(ctx, addr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
