package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/roadmap/pkg/board"
	"github.com/matzehuels/roadmap/pkg/cache"
	"github.com/matzehuels/roadmap/pkg/jira"
	"github.com/matzehuels/roadmap/pkg/observability"
)

// Source builds board files; *jira.Client implements it.
type Source interface {
	FetchBoard(ctx context.Context, pi board.PI, projects []string, opts jira.FetchOptions) (board.File, error)
}

var _ Source = (*jira.Client)(nil)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a [cache.NullCache] is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs layout and render with caching.
func (r *Runner) Execute(ctx context.Context, f board.File, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Layout
	layoutStart := time.Now()
	l, hash, layoutHit, err := r.layout(ctx, f, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.BoardHash = hash
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.TaskCount = len(l.Tasks)
	result.Stats.RowCount = l.Rows
	result.Stats.Conflicts = l.Conflicts
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"tasks", len(l.Tasks),
		"rows", l.Rows,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)
	if l.Conflicts > 0 {
		r.Logger.Warn("saved positions overlap", "conflicts", l.Conflicts)
	}

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Fetch builds a board file for one PI from src, caching it under the
// board key of the first project.
func (r *Runner) Fetch(ctx context.Context, src Source, pi board.PI, projects []string, opts Options) (board.File, bool, error) {
	if len(projects) == 0 {
		return board.File{}, false, fmt.Errorf("fetch: no projects")
	}
	opts.SetLayoutDefaults()
	key := r.Keyer.BoardKey(joinProjects(projects), pi.ID)
	if opts.Releases {
		key += ":releases"
	}

	if !opts.Refresh {
		var cached board.File
		if r.getJSON(ctx, "board", key, &cached) {
			return cached, true, nil
		}
	}

	f, err := src.FetchBoard(ctx, pi, projects, jira.FetchOptions{Columns: opts.Columns, Releases: opts.Releases})
	if err != nil {
		return board.File{}, false, err
	}
	r.setJSON(ctx, "board", key, f, cache.TTLBoard)
	return f, false, nil
}

func joinProjects(ps []string) string {
	out := ps[0]
	for _, p := range ps[1:] {
		out += "+" + p
	}
	return out
}

// LayoutWithCacheInfo computes a layout with caching and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, f board.File, opts Options) (board.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return board.Layout{}, false, err
	}
	l, _, hit, err := r.layout(ctx, f, opts)
	return l, hit, err
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, f board.File, opts Options) (board.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, f, opts)
	return l, err
}

// layout expects validated options.
func (r *Runner) layout(ctx context.Context, f board.File, opts Options) (board.Layout, string, bool, error) {
	prepared := Prepare(f, opts)
	hash, err := cache.HashJSON(prepared)
	if err != nil {
		return board.Layout{}, "", false, fmt.Errorf("board cache key: %w", err)
	}
	key := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		var cached board.Layout
		if r.getJSON(ctx, "layout", key, &cached) {
			return cached, hash, true, nil
		}
	}

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, opts.Mode, prepared.TaskCount())
	l := buildLayout(prepared, opts)
	observability.Pipeline().OnLayoutComplete(ctx, opts.Mode, l.Rows, time.Since(start), nil)

	r.setJSON(ctx, "layout", key, l, cache.TTLLayout)
	return l, hash, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l board.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutHash, err := cache.HashJSON(l)
	if err != nil {
		return nil, false, fmt.Errorf("layout cache key: %w", err)
	}

	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	rendered, err := RenderLayout(ctx, l, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l board.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) getJSON(ctx context.Context, keyType, key string, v any) bool {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		r.Logger.Debug("discarding unreadable cache entry", "type", keyType, "err", err)
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true
}

func (r *Runner) setJSON(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
