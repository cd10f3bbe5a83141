package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, _ := c.Get(ctx, "layout:abc"); hit {
		t.Fatal("empty cache should miss")
	}

	if err := c.Set(ctx, "layout:abc", []byte(`{"rows":2}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:abc")
	if err != nil || !hit {
		t.Fatalf("Get = %v, %v; want hit", hit, err)
	}
	if string(data) != `{"rows":2}` {
		t.Errorf("Get data = %s", data)
	}

	if err := c.Delete(ctx, "layout:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout:abc"); hit {
		t.Error("deleted key should miss")
	}
	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}

	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("ttl 0 should never expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "k", []byte("v"), time.Hour)

	if err := os.WriteFile(c.path("k"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, hit, err := c.Get(ctx, "k")
	if err != nil || hit {
		t.Errorf("corrupt entry: hit=%v err=%v, want miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("cleared entry should miss")
	}
}

func TestMustGet(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if _, err := MustGet(ctx, c, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("MustGet missing = %v, want ErrCacheMiss", err)
	}
	_ = c.Set(ctx, "k", []byte("v"), 0)
	if data, err := MustGet(ctx, c, "k"); err != nil || string(data) != "v" {
		t.Errorf("MustGet = %q, %v", data, err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{"empty is none", Config{}, "cache.NullCache", false},
		{"dir implies file", Config{Dir: t.TempDir()}, "*cache.FileCache", false},
		{"explicit none", Config{Backend: BackendNone, Dir: t.TempDir()}, "cache.NullCache", false},
		{"file without dir", Config{Backend: BackendFile}, "", true},
		{"unknown", Config{Backend: "memcached"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(ctx, tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer c.Close()
			if got := typeName(c); got != tt.want {
				t.Errorf("Open() = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(c Cache) string {
	switch c.(type) {
	case NullCache:
		return "cache.NullCache"
	case *FileCache:
		return "*cache.FileCache"
	case *RedisCache:
		return "*cache.RedisCache"
	}
	return "?"
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("ROADMAP_REDIS_ADDR")
	if addr == "" {
		t.Skip("ROADMAP_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, addr, "", 0)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	key := "roadmap-test:" + Hash([]byte(t.Name()))
	defer c.Delete(ctx, key)

	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Fatalf("Get before Set = %v, %v; want miss", hit, err)
	}
	if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if n, err := c.Clear(ctx, key); err != nil || n != 1 {
		t.Errorf("Clear = %d, %v; want 1", n, err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.HTTPKey("jira", "/rest/agile/1.0/board?name=HEL"); got != "http:jira:/rest/agile/1.0/board?name=HEL" {
		t.Errorf("HTTPKey unexpected: %s", got)
	}

	if got := k.BoardKey("hel", "PI1"); got != "board:HEL:pi1" {
		t.Errorf("BoardKey unexpected: %s", got)
	}

	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Mode: "chronological", Columns: 6})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Mode: "manual", Columns: 6})
	lk3 := k.LayoutKey("hash123", LayoutKeyOpts{Mode: "chronological", Columns: 6, Today: "2026-01-20"})
	if lk1 == lk2 || lk1 == lk3 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(lk1, "layout:") {
		t.Errorf("LayoutKey prefix: %s", lk1)
	}
	if lk1 != k.LayoutKey("hash123", LayoutKeyOpts{Mode: "chronological", Columns: 6}) {
		t.Error("LayoutKey should be deterministic")
	}

	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", Markers: true})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "dot", Markers: true})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "team:hel:")

	if got := scoped.HTTPKey("jira", "x"); got != "team:hel:http:jira:x" {
		t.Errorf("ScopedKeyer HTTPKey unexpected: %s", got)
	}
	if got := scoped.BoardKey("HEL", "pi2"); got != "team:hel:board:HEL:pi2" {
		t.Errorf("ScopedKeyer BoardKey unexpected: %s", got)
	}

	lk := scoped.LayoutKey("h", LayoutKeyOpts{})
	if !strings.HasPrefix(lk, "team:hel:layout:") {
		t.Errorf("ScopedKeyer LayoutKey should be prefixed: %s", lk)
	}
	ak := scoped.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"})
	if !strings.HasPrefix(ak, "team:hel:artifact:") {
		t.Errorf("ScopedKeyer ArtifactKey should be prefixed: %s", ak)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.HTTPKey("test", "key")
	if key != "prefix:http:test:key" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestHashJSON(t *testing.T) {
	type board struct {
		PI    string   `json:"pi"`
		Tasks []string `json:"tasks"`
	}
	a, err := HashJSON(board{PI: "PI 1 2026", Tasks: []string{"HEL-1"}})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := HashJSON(board{PI: "PI 1 2026", Tasks: []string{"HEL-1"}})
	c, _ := HashJSON(board{PI: "PI 1 2026", Tasks: []string{"HEL-2"}})
	if a != b || a == c {
		t.Errorf("HashJSON not content addressed: %s %s %s", a, b, c)
	}
	if a != Hash([]byte(`{"pi":"PI 1 2026","tasks":["HEL-1"]}`)) {
		t.Error("HashJSON should hash the JSON encoding")
	}
	if _, err := HashJSON(make(chan int)); err == nil {
		t.Error("unencodable value should fail")
	}
}
