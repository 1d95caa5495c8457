package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/graphimg/pkg/cache"
)

func TestCachePathCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envCacheDir, dir)

	out, err := runCommand(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path printed %q, want %q", out, dir)
	}
}

func TestCacheClearCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envCacheDir, dir)

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"graph:aa11", "graph:bb22"} {
		if err := fc.Set(ctx, key, []byte("x"), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := runCommand(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}

	if _, ok, _ := fc.Get(ctx, "graph:aa11"); ok {
		t.Error("entry should be gone after cache clear")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir should be empty, has %d entries", len(entries))
	}
}

func TestCacheClearMissingDir(t *testing.T) {
	t.Setenv(envCacheDir, filepath.Join(t.TempDir(), "never-created"))

	if _, err := runCommand(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear on a missing dir: %v", err)
	}
}

func TestNewCacheSelection(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	ctx := context.Background()

	t.Setenv(envRedisURL, "")
	t.Setenv(envCacheDir, t.TempDir())

	got, keyer, err := c.newCache(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.(*cache.NullCache); !ok {
		t.Errorf("--no-cache should give a NullCache, got %T", got)
	}
	if keyer != nil {
		t.Errorf("keyer = %T, want nil", keyer)
	}

	got, _, err = c.newCache(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.(*cache.FileCache); !ok {
		t.Errorf("default cache should be a FileCache, got %T", got)
	}
}

func TestNewCacheRedisFallback(t *testing.T) {
	var logs bytes.Buffer
	c := New(&logs, LogInfo)

	t.Setenv(envRedisURL, "not-a-redis-url")
	t.Setenv(envCacheDir, t.TempDir())

	got, keyer, err := c.newCache(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.(*cache.FileCache); !ok {
		t.Errorf("unreachable redis should fall back to a FileCache, got %T", got)
	}
	if keyer != nil {
		t.Errorf("file cache keyer = %T, want nil", keyer)
	}
	if !strings.Contains(logs.String(), "redis cache unavailable") {
		t.Errorf("expected a fallback warning, got %q", logs.String())
	}
}
