package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/treeline-io/treeline/pkg/diagram"
	"github.com/treeline-io/treeline/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "treeline.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	// Defaults mirror the option structs
	if cfg.Store.DefaultNodeWidth != 160 || cfg.Store.DefaultNodeHeight != 80 {
		t.Errorf("default node size = %vx%v, want 160x80",
			cfg.Store.DefaultNodeWidth, cfg.Store.DefaultNodeHeight)
	}
	if cfg.Store.HistoryLimit != diagram.DefaultHistoryLimit {
		t.Errorf("history limit = %d, want %d", cfg.Store.HistoryLimit, diagram.DefaultHistoryLimit)
	}
	if cfg.Layout.Engine != "tree" || cfg.Layout.Direction != "TB" {
		t.Errorf("layout defaults = %s/%s, want tree/TB", cfg.Layout.Engine, cfg.Layout.Direction)
	}
	if cfg.Router.BarFraction != 0.3 || cfg.Router.Order != "away" {
		t.Errorf("router defaults = %v/%s, want 0.3/away", cfg.Router.BarFraction, cfg.Router.Order)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("cache backend = %s, want memory", cfg.Cache.Backend)
	}

	// The defaults validate
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() should validate: %v", err)
	}
}

func TestLoadOverridesOnlyNamedKeys(t *testing.T) {
	path := writeConfig(t, `
[store]
default_node_width = 200
history_limit = 100

[layout]
engine = "dot"
direction = "LR"

[router]
order = "alternating"
padding = 8
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Named keys are overridden
	if cfg.Store.DefaultNodeWidth != 200 {
		t.Errorf("default_node_width = %v, want 200", cfg.Store.DefaultNodeWidth)
	}
	if cfg.Store.HistoryLimit != 100 {
		t.Errorf("history_limit = %d, want 100", cfg.Store.HistoryLimit)
	}
	if cfg.Layout.Engine != "dot" || cfg.Layout.Direction != "LR" {
		t.Errorf("layout = %s/%s, want dot/LR", cfg.Layout.Engine, cfg.Layout.Direction)
	}
	if cfg.Router.Order != "alternating" || cfg.Router.Padding != 8 {
		t.Errorf("router = %s/%v, want alternating/8", cfg.Router.Order, cfg.Router.Padding)
	}

	// Unnamed keys keep their defaults
	if cfg.Store.DefaultNodeHeight != 80 {
		t.Errorf("default_node_height = %v, want default 80", cfg.Store.DefaultNodeHeight)
	}
	if cfg.Router.BarFraction != 0.3 {
		t.Errorf("bar_fraction = %v, want default 0.3", cfg.Router.BarFraction)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("cache backend = %s, want default memory", cfg.Cache.Backend)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Missing file should fail with FILE_NOT_FOUND, got %v", err)
	}
}

func TestLoadIfPresentMissingFile(t *testing.T) {
	cfg, err := LoadIfPresent(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadIfPresent should tolerate a missing file: %v", err)
	}
	if cfg.Store.DefaultNodeWidth != 160 {
		t.Errorf("LoadIfPresent should return defaults, got width %v", cfg.Store.DefaultNodeWidth)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := writeConfig(t, `[store` + "\n")
	_, err := Load(path)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Malformed TOML should fail with INVALID_CONFIG, got %v", err)
	}
}

func TestLoadRejectsOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bar fraction above one", "[router]\nbar_fraction = 2.0\n"},
		{"negative padding", "[router]\npadding = -1\n"},
		{"unknown direction", "[layout]\ndirection = \"XX\"\n"},
		{"unknown edge type", "[store]\nedge_type = \"bezier\"\n"},
		{"max below min", "[store]\nmax_node_width = 10\n"},
		{"unknown cache backend", "[cache]\nbackend = \"dynamo\"\n"},
		{"unknown log level", "[log]\nlevel = \"chatty\"\n"},
	}

	for _, tt := range tests {
		path := writeConfig(t, tt.content)
		if _, err := Load(path); err == nil {
			t.Errorf("%s: Load should fail", tt.name)
		}
	}
}

func TestLoadRejectsUnknownEngine(t *testing.T) {
	path := writeConfig(t, "[layout]\nengine = \"force\"\n")
	_, err := Load(path)
	if !errors.Is(err, errors.ErrCodeInvalidEngine) {
		t.Errorf("Unknown engine should fail with INVALID_ENGINE, got %v", err)
	}
}

func TestConversions(t *testing.T) {
	path := writeConfig(t, `
[store]
default_node_width = 220
edge_type = "step"

[layout]
rank_sep = 90

[router]
step = 10

[cache]
backend = "file"
dir = "/tmp/cache"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	so := cfg.StoreOptions()
	if so.DefaultNodeWidth != 220 {
		t.Errorf("StoreOptions width = %v, want 220", so.DefaultNodeWidth)
	}
	if so.Edges.Type != diagram.EdgeStep {
		t.Errorf("StoreOptions edge type = %q, want step", so.Edges.Type)
	}

	po := cfg.PipelineOptions()
	if po.RankSep != 90 {
		t.Errorf("PipelineOptions rank sep = %v, want 90", po.RankSep)
	}
	if po.Step != 10 {
		t.Errorf("PipelineOptions step = %v, want 10", po.Step)
	}

	cc := cfg.CacheConfig()
	if cc.Backend != "file" || cc.Dir != "/tmp/cache" {
		t.Errorf("CacheConfig = %s/%s, want file//tmp/cache", cc.Backend, cc.Dir)
	}
}
