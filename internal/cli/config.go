package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/roadmap/internal/api"
	"github.com/matzehuels/roadmap/pkg/board"
	"github.com/matzehuels/roadmap/pkg/cache"
	"github.com/matzehuels/roadmap/pkg/jira"
	"github.com/matzehuels/roadmap/pkg/pipeline"
	"github.com/matzehuels/roadmap/pkg/store"
)

// Config is the contents of config.toml.
//
//	[jira]
//	base_url = "https://example.atlassian.net"
//	email = "me@example.com"
//	project_key = "TVSMART"
//
//	[board]
//	columns = 6
//	pi_start = "2026-01-19"
//
//	[store]
//	backend = "mongo"
//	database = "roadmap"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
// Secrets are read from the environment only.
type Config struct {
	JIRA   jira.Config  `toml:"jira"`
	Board  BoardConfig  `toml:"board"`
	Server ServerConfig `toml:"server"`
	Store  store.Config `toml:"store"`
	Cache  cache.Config `toml:"cache"`
}

// BoardConfig holds layout and calendar defaults.
type BoardConfig struct {
	board.Geometry
	board.CalendarOptions

	Mode   string  `toml:"mode"`
	Width  float64 `toml:"width"`
	Legend bool    `toml:"legend"`
}

// ServerConfig configures "roadmap serve".
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Environment variables read by [Config.ApplyEnv].
const (
	EnvJIRABaseURL    = "JIRA_BASE_URL"
	EnvJIRAEmail      = "JIRA_EMAIL"
	EnvJIRAToken      = "JIRA_API_TOKEN"
	EnvJIRAProjectKey = "JIRA_PROJECT_KEY"
	EnvMongoURI       = "ROADMAP_MONGO_URI"
	EnvRedisAddr      = "ROADMAP_REDIS_ADDR"
	EnvRedisPassword  = "ROADMAP_REDIS_PASSWORD"
)

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: api.DefaultAddr},
	}
}

// defaultConfigPath returns config.toml inside the config directory.
func defaultConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LoadConfig reads path on top of [DefaultConfig]. A missing file is not an
// error unless required is set. Unknown keys are returned so callers can
// warn about them.
func LoadConfig(path string, required bool) (Config, []string, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return DefaultConfig(), nil, nil
	}
	if err != nil {
		return DefaultConfig(), nil, fmt.Errorf("load config %s: %w", path, err)
	}
	var unknown []string
	for _, k := range md.Undecoded() {
		unknown = append(unknown, k.String())
	}
	return cfg, unknown, nil
}

// ApplyEnv overrides connection settings from the environment. getenv is
// usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.JIRA.BaseURL, EnvJIRABaseURL)
	set(&c.JIRA.Email, EnvJIRAEmail)
	set(&c.JIRA.Token, EnvJIRAToken)
	set(&c.JIRA.ProjectKey, EnvJIRAProjectKey)
	set(&c.Store.MongoURI, EnvMongoURI)
	set(&c.Cache.RedisAddr, EnvRedisAddr)
	set(&c.Cache.RedisPassword, EnvRedisPassword)
	if c.Store.MongoURI != "" && c.Store.Backend == "" {
		c.Store.Backend = store.BackendMongo
	}
	if c.Cache.RedisAddr != "" && c.Cache.Backend == "" {
		c.Cache.Backend = cache.BackendRedis
	}
}

// LayoutOptions returns pipeline options seeded with the board defaults.
func (c Config) LayoutOptions() pipeline.Options {
	return pipeline.Options{
		Mode:      c.Board.Mode,
		Columns:   c.Board.Columns,
		RowHeight: c.Board.RowHeight,
		RowGap:    c.Board.RowGap,
		Width:     c.Board.Width,
		Legend:    c.Board.Legend,
		BrowseURL: c.JIRA.BaseURL,
	}
}

// loadConfig resolves the config path and loads it into c.Config.
func (c *CLI) loadConfig() error {
	path, required := c.configPath, true
	if path == "" {
		required = false
		var err error
		if path, err = defaultConfigPath(); err != nil {
			path = ""
		}
	}
	cfg, unknown, err := LoadConfig(path, required)
	if err != nil {
		return err
	}
	for _, k := range unknown {
		c.Logger.Warn("unknown config key", "key", k, "file", path)
	}
	cfg.ApplyEnv(os.Getenv)
	c.Config = cfg
	return nil
}
