// Package config loads the treeline.toml configuration file.
//
// Configuration is optional: every field has a documented default, a config
// file overrides only the keys it names, and flags override the file. The
// zero-means-default convention of the underlying option structs applies to
// TOML values too, so `step = 0` selects the default step.
//
// # Example
//
//	[store]
//	default_node_width = 200
//	history_limit = 100
//
//	[layout]
//	engine = "dot"
//	direction = "LR"
//
//	[router]
//	order = "alternating"
//	padding = 8
//
//	[cache]
//	backend = "redis"
//	url = "redis://localhost:6379/0"
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/treeline-io/treeline/pkg/cache"
	"github.com/treeline-io/treeline/pkg/diagram"
	"github.com/treeline-io/treeline/pkg/errors"
	"github.com/treeline-io/treeline/pkg/layout"
	"github.com/treeline-io/treeline/pkg/pipeline"
	"github.com/treeline-io/treeline/pkg/route"
)

// DefaultPath is the config file looked up when no --config flag is given.
const DefaultPath = "treeline.toml"

// =============================================================================
// Sections
// =============================================================================

// Config is the root of the treeline.toml file.
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Layout LayoutConfig `toml:"layout"`
	Router RouterConfig `toml:"router"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
	Server ServerConfig `toml:"server"`
}

// StoreConfig tunes the mutation store: node geometry bounds, provisional
// placement gaps, history depth and the derived-edge rendering type.
type StoreConfig struct {
	MinNodeWidth      float64 `toml:"min_node_width"`
	MaxNodeWidth      float64 `toml:"max_node_width"`
	MinNodeHeight     float64 `toml:"min_node_height"`
	MaxNodeHeight     float64 `toml:"max_node_height"`
	DefaultNodeWidth  float64 `toml:"default_node_width"`
	DefaultNodeHeight float64 `toml:"default_node_height"`
	ChildGapY         float64 `toml:"child_gap_y"`
	SiblingGapX       float64 `toml:"sibling_gap_x"`
	HistoryLimit      int     `toml:"history_limit"`
	EdgeType          string  `toml:"edge_type"`
}

// LayoutConfig selects the layout engine and its spacing.
type LayoutConfig struct {
	Engine    string  `toml:"engine"`
	Direction string  `toml:"direction"`
	RankSep   float64 `toml:"rank_sep"`
	NodeSep   float64 `toml:"node_sep"`
}

// RouterConfig tunes the connector router.
type RouterConfig struct {
	Order           string  `toml:"order"`
	BendTolerance   float64 `toml:"bend_tolerance"`
	BarFraction     float64 `toml:"bar_fraction"`
	BarMaxOffset    float64 `toml:"bar_max_offset"`
	Step            float64 `toml:"step"`
	MaxSearchOffset float64 `toml:"max_search_offset"`
	ExitLength      float64 `toml:"exit_length"`
	CornerRadius    float64 `toml:"corner_radius"`
	Padding         float64 `toml:"padding"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	URL      string `toml:"url"`
	Database string `toml:"database"`
}

// LogConfig controls CLI and server logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// ServerConfig controls the snapshot API server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// =============================================================================
// Loading
// =============================================================================

// Default returns the documented defaults, identical to the values the
// option structs fill in themselves.
func Default() Config {
	return Config{
		Store: StoreConfig{
			MinNodeWidth:      60,
			MaxNodeWidth:      480,
			MinNodeHeight:     40,
			MaxNodeHeight:     320,
			DefaultNodeWidth:  160,
			DefaultNodeHeight: 80,
			ChildGapY:         60,
			SiblingGapX:       40,
			HistoryLimit:      diagram.DefaultHistoryLimit,
			EdgeType:          string(diagram.EdgeSmoothstep),
		},
		Layout: LayoutConfig{
			Engine:    layout.EngineTree,
			Direction: string(layout.DirectionTopBottom),
			RankSep:   60,
			NodeSep:   40,
		},
		Router: RouterConfig{
			Order:           string(route.OrderAway),
			BendTolerance:   4,
			BarFraction:     0.3,
			BarMaxOffset:    25,
			Step:            12,
			MaxSearchOffset: 350,
			ExitLength:      10,
			CornerRadius:    6,
			Padding:         5,
		},
		Cache: CacheConfig{
			Backend: cache.BackendMemory,
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads the file at path over the defaults and validates the result.
// Returns FILE_NOT_FOUND when the file does not exist and INVALID_CONFIG for
// malformed TOML or out-of-range values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config file %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config file %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadIfPresent reads the file at path if it exists and returns the plain
// defaults otherwise. The CLI uses this for the implicit treeline.toml
// lookup, where an absent file is not an error.
func LoadIfPresent(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		return Default(), nil
	}
	return cfg, err
}

// Validate checks every section by running it through the option structs it
// configures.
func (c *Config) Validate() error {
	so := c.StoreOptions()
	if err := so.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if !diagram.EdgeType(c.Store.EdgeType).Valid() {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown edge type %q", c.Store.EdgeType)
	}

	po := c.PipelineOptions()
	if err := po.ValidateAndSetDefaults(); err != nil {
		return err
	}

	switch c.Cache.Backend {
	case cache.BackendMemory, cache.BackendFile, cache.BackendRedis, cache.BackendMongo, cache.BackendNull:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "unknown log level %q", c.Log.Level)
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server address must not be empty")
	}
	return nil
}

// =============================================================================
// Conversions
// =============================================================================

// StoreOptions returns the mutation store options this config describes.
func (c Config) StoreOptions() diagram.Options {
	return diagram.Options{
		MinNodeWidth:      c.Store.MinNodeWidth,
		MaxNodeWidth:      c.Store.MaxNodeWidth,
		MinNodeHeight:     c.Store.MinNodeHeight,
		MaxNodeHeight:     c.Store.MaxNodeHeight,
		DefaultNodeWidth:  c.Store.DefaultNodeWidth,
		DefaultNodeHeight: c.Store.DefaultNodeHeight,
		ChildGapY:         c.Store.ChildGapY,
		SiblingGapX:       c.Store.SiblingGapX,
		HistoryLimit:      c.Store.HistoryLimit,
		Edges: diagram.EdgeOptions{
			Type: diagram.EdgeType(c.Store.EdgeType),
		},
	}
}

// PipelineOptions returns the pipeline options this config describes.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Engine:          c.Layout.Engine,
		Direction:       c.Layout.Direction,
		RankSep:         c.Layout.RankSep,
		NodeSep:         c.Layout.NodeSep,
		Order:           c.Router.Order,
		BendTolerance:   c.Router.BendTolerance,
		BarFraction:     c.Router.BarFraction,
		BarMaxOffset:    c.Router.BarMaxOffset,
		Step:            c.Router.Step,
		MaxSearchOffset: c.Router.MaxSearchOffset,
		ExitLength:      c.Router.ExitLength,
		CornerRadius:    c.Router.CornerRadius,
		Padding:         c.Router.Padding,
	}
}

// CacheConfig returns the cache backend configuration.
func (c Config) CacheConfig() cache.Config {
	return cache.Config{
		Backend:  c.Cache.Backend,
		Dir:      c.Cache.Dir,
		URL:      c.Cache.URL,
		Database: c.Cache.Database,
	}
}
