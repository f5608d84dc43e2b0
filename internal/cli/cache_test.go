package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/sankey/pkg/cache"
	"github.com/matzehuels/sankey/pkg/pipeline"
)

func TestCacheDirDefault(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	c := New(&bytes.Buffer{}, LogInfo)
	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(xdg, appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirFromConfig(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	c.cfg.Cache.Dir = "/srv/sankey-cache"

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/srv/sankey-cache" {
		t.Errorf("cacheDir() = %q, want configured dir", dir)
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	c := New(&bytes.Buffer{}, LogInfo)
	c.cfg.Cache.Dir = t.TempDir()

	cc, err := c.newCache(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cc.(*cache.NullCache); !ok {
		t.Errorf("newCache(noCache) = %T, want *cache.NullCache", cc)
	}

	cc, err = c.newCache(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if fc, ok := cc.(*cache.FileCache); !ok || fc.Dir() != c.cfg.Cache.Dir {
		t.Errorf("newCache() = %T, want *cache.FileCache in config dir", cc)
	}

	// An unreachable redis degrades to no caching.
	c.cfg.Cache.Backend = cache.BackendRedis
	c.cfg.Cache.RedisURL = "redis://127.0.0.1:1/0"
	cc, err = c.newCache(ctx, false)
	if err != nil {
		t.Fatalf("newCache(redis down) error = %v", err)
	}
	if _, ok := cc.(*cache.NullCache); !ok {
		t.Errorf("newCache(redis down) = %T, want *cache.NullCache", cc)
	}
}

func TestCacheCommands(t *testing.T) {
	env := newTestEnv(t)
	dir := filepath.Join(env.cacheHome, appName)

	out, err := env.run("cache", "path")
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), dir)
	}

	if _, err := env.run("layout", env.input); err != nil {
		t.Fatalf("layout error: %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) == 0 {
		t.Fatal("layout did not populate the cache")
	}

	if _, err := env.run("cache", "clear"); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after clear", len(entries))
	}
}

func TestNewRunnerUsesConfig(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	c.cfg.Cache.Dir = t.TempDir()
	c.cfg.Cache.Prefix = "staging:"
	c.cfg.Cache.TTL.Duration = time.Hour

	r, err := c.newRunner(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if r.TTL != time.Hour {
		t.Errorf("TTL = %s, want 1h", r.TTL)
	}
	opts := pipeline.DefaultOptions()
	key := r.Keyer.LayoutKey("abc", opts.LayoutKeyOpts())
	if !strings.HasPrefix(key, "staging:") {
		t.Errorf("LayoutKey() = %q, want staging: prefix", key)
	}
}
