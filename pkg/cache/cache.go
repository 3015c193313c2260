// Package cache provides pluggable result caching for expensive pipeline
// stages (layout runs, route plans, serialized diagrams).
//
// Backends share one byte-oriented interface with TTL support:
//   - memory: in-process map for development/testing
//   - file: directory-backed cache for CLI usage
//   - redis: shared cache for multi-instance deployments
//   - mongo: document-backed cache with server-side expiry
//   - null: disables caching entirely
//
// Keys are produced by a Keyer so every caller derives them the same way;
// wrap a Keyer with NewScopedKeyer to namespace keys per user or session.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Default TTLs per cached artifact kind. Layout and route results are
// cheap to recompute relative to their churn, so they expire faster than
// serialized diagrams.
const (
	// TTLDiagram is the lifetime of serialized diagram snapshots.
	TTLDiagram = 7 * 24 * time.Hour

	// TTLLayout is the lifetime of cached layout results.
	TTLLayout = 24 * time.Hour

	// TTLRoutes is the lifetime of cached route plans.
	TTLRoutes = 24 * time.Hour
)

// Cache is the interface implemented by all cache backends.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss;
	// expired entries count as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration; a negative
	// ttl stores an already-expired entry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// =============================================================================
// Keyer
// =============================================================================

// LayoutKeyOpts captures every input that changes a layout result.
type LayoutKeyOpts struct {
	Engine    string
	Direction string
	RankSep   float64
	NodeSep   float64
}

// RouteKeyOpts captures every router option that changes a route plan.
type RouteKeyOpts struct {
	Order           string
	BendTolerance   float64
	BarFraction     float64
	BarMaxOffset    float64
	Step            float64
	MaxSearchOffset float64
	ExitLength      float64
	CornerRadius    float64
	Padding         float64
}

// Keyer generates cache keys for the pipeline stages. Using one Keyer
// everywhere guarantees that producers and consumers of a cached result
// derive identical keys.
type Keyer interface {
	// DiagramKey generates a key for serialized diagram snapshots.
	DiagramKey(namespace, name string) string

	// LayoutKey generates a key for layout results. structureHash must
	// cover the forest shape and node sizes (not positions).
	LayoutKey(structureHash string, opts LayoutKeyOpts) string

	// RouteKey generates a key for route plans. geometryHash must cover
	// node positions and sizes along with the forest shape.
	RouteKey(geometryHash string, opts RouteKeyOpts) string
}

// DefaultKeyer is the standard Keyer implementation.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// DiagramKey generates a key for serialized diagram snapshots.
func (k *DefaultKeyer) DiagramKey(namespace, name string) string {
	return "diagram:" + namespace + ":" + name
}

// LayoutKey generates a key for layout results.
func (k *DefaultKeyer) LayoutKey(structureHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", structureHash, opts)
}

// RouteKey generates a key for route plans.
func (k *DefaultKeyer) RouteKey(geometryHash string, opts RouteKeyOpts) string {
	return hashKey("routes", geometryHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)

// =============================================================================
// Factory
// =============================================================================

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNull   = "null"
)

// Config selects and configures a cache backend.
type Config struct {
	// Backend is one of the Backend* constants. Empty selects memory.
	Backend string

	// Dir is the root directory for the file backend.
	Dir string

	// URL is the connection string for the redis and mongo backends
	// (redis://host:port/db, mongodb://host:port).
	URL string

	// Database is the database name for the mongo backend.
	Database string
}

// Open creates the configured cache backend. Network backends are probed
// before Open returns, so configuration errors surface at startup rather
// than on first use.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryCache(), nil
	case BackendFile:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file cache requires a directory")
		}
		return NewFileCache(cfg.Dir)
	case BackendRedis:
		if cfg.URL == "" {
			return nil, fmt.Errorf("redis cache requires a connection URL")
		}
		return NewRedisCache(ctx, cfg.URL)
	case BackendMongo:
		if cfg.URL == "" {
			return nil, fmt.Errorf("mongo cache requires a connection URL")
		}
		return NewMongoCache(ctx, cfg.URL, cfg.Database)
	case BackendNull:
		return NewNullCache(), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}
