package store

import (
	"context"
	"errors"
	"fmt"
)

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendMongo  = "mongo"
)

// ErrUnknownBackend is returned by [Open] for an unrecognized backend.
var ErrUnknownBackend = errors.New("unknown store backend")

// Config selects and configures a store backend.
type Config struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	MongoURI string `toml:"-"`
	Database string `toml:"database"`
}

// Open returns the backend named by cfg.Backend. An empty backend means
// file.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		fs, err := NewFileStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("mongo store: no URI")
		}
		ms, err := NewMongoStore(ctx, cfg.MongoURI, cfg.Database)
		if err != nil {
			return nil, err
		}
		return ms, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
