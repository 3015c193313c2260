package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/treeline-io/treeline/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	// Clear XDG_CACHE_HOME to test the default location.
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	if dir == "" {
		t.Error("cacheDir() returned empty string")
	}

	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(dir, home) {
		t.Errorf("cacheDir() = %q, should be under home %q", dir, home)
	}

	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestResolveCacheConfig(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c := New(io.Discard, LogInfo)

	// Defaults use the in-memory backend, which is useless across CLI
	// invocations; the CLI swaps it for the file backend.
	cfg, err := c.resolveCacheConfig()
	if err != nil {
		t.Fatalf("resolveCacheConfig() error: %v", err)
	}
	if cfg.Backend != cache.BackendFile {
		t.Errorf("Backend = %q, want %q", cfg.Backend, cache.BackendFile)
	}
	if cfg.Dir == "" {
		t.Error("Dir should default to the user cache directory")
	}
}

func TestResolveCacheConfigExplicitBackend(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.cfg.Cache.Backend = cache.BackendRedis
	c.cfg.Cache.URL = "redis://localhost:6379/0"

	cfg, err := c.resolveCacheConfig()
	if err != nil {
		t.Fatalf("resolveCacheConfig() error: %v", err)
	}
	if cfg.Backend != cache.BackendRedis {
		t.Errorf("Backend = %q, want %q", cfg.Backend, cache.BackendRedis)
	}
	if cfg.URL != "redis://localhost:6379/0" {
		t.Errorf("URL = %q, should be preserved", cfg.URL)
	}
}

func TestResolveCacheConfigExplicitDir(t *testing.T) {
	dir := t.TempDir()

	c := New(io.Discard, LogInfo)
	c.cfg.Cache.Backend = cache.BackendFile
	c.cfg.Cache.Dir = dir

	cfg, err := c.resolveCacheConfig()
	if err != nil {
		t.Fatalf("resolveCacheConfig() error: %v", err)
	}
	if cfg.Dir != dir {
		t.Errorf("Dir = %q, want %q", cfg.Dir, dir)
	}
}

func TestNewCacheDisabled(t *testing.T) {
	c := New(io.Discard, LogInfo)

	got := c.newCache(context.Background(), true)
	if _, ok := got.(*cache.NullCache); !ok {
		t.Errorf("newCache(noCache=true) = %T, want *cache.NullCache", got)
	}
}

func TestNewCacheFallsBackToNull(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.cfg.Cache.Backend = "bogus"

	// An unopenable backend degrades to the null cache instead of failing
	// the command.
	got := c.newCache(context.Background(), false)
	if _, ok := got.(*cache.NullCache); !ok {
		t.Errorf("newCache with bogus backend = %T, want *cache.NullCache", got)
	}
}

func TestNewCacheFileBackend(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c := New(io.Discard, LogInfo)

	got := c.newCache(context.Background(), false)
	if _, ok := got.(*cache.NullCache); ok {
		t.Error("newCache should open the file backend, not fall back to null")
	}
	if err := got.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.configPath = filepath.Join(t.TempDir(), "missing.toml")

	if err := c.loadConfig(); err == nil {
		t.Error("loadConfig() with explicit missing path should error")
	}
}

func TestLoadConfigExplicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "treeline.toml")
	content := "[layout]\nengine = \"dot\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	c.configPath = path

	if err := c.loadConfig(); err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if c.cfg.Layout.Engine != "dot" {
		t.Errorf("Layout.Engine = %q, want %q", c.cfg.Layout.Engine, "dot")
	}
}

func TestResolveNodeIDWithArg(t *testing.T) {
	id, err := resolveNodeID([]string{"node-1"}, "Pick a node", nil)
	if err != nil {
		t.Fatalf("resolveNodeID() error: %v", err)
	}
	if id != "node-1" {
		t.Errorf("resolveNodeID() = %q, want %q", id, "node-1")
	}
}

func TestNodeNotFound(t *testing.T) {
	err := nodeNotFound("abc123")
	if err == nil {
		t.Fatal("nodeNotFound() returned nil")
	}
	if !strings.Contains(err.Error(), "abc123") {
		t.Errorf("error %q should name the missing id", err)
	}
}

func TestRootCommand(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	if root.Use != appName {
		t.Errorf("Use = %q, want %q", root.Use, appName)
	}

	want := []string{"new", "add", "set", "move", "delete", "detach", "select", "undo", "redo", "layout", "route", "inspect", "serve", "cache", "version", "completion"}
	have := make(map[string]bool)
	for _, sub := range root.Commands() {
		have[sub.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}
