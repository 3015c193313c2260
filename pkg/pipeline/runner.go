package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/treeline-io/treeline/pkg/cache"
	"github.com/treeline-io/treeline/pkg/diagram"
	"github.com/treeline-io/treeline/pkg/layout"
	"github.com/treeline-io/treeline/pkg/observability"
	"github.com/treeline-io/treeline/pkg/route"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different diagrams and options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
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

// Execute runs the complete layout → route pipeline with caching.
//
// Routes are planned against the laid-out geometry, so Result.Positions and
// Result.Routes are always consistent with each other. The caller's diagram
// is never modified; apply Result.Positions through layout.Apply to commit
// the new arrangement to a store.
func (r *Runner) Execute(ctx context.Context, d diagram.Data, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}
	result.Stats.NodeCount = len(d.Nodes)
	result.Stats.EdgeCount = len(d.Edges)
	result.StructureHash = StructureHash(d)

	// Stage 1: Layout
	layoutStart := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, opts.Engine, len(d.Nodes))
	positions, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, d, opts)
	observability.Pipeline().OnLayoutComplete(ctx, opts.Engine, time.Since(layoutStart), err)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Positions = positions
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"engine", opts.Engine,
		"nodes", len(positions),
		"duration", result.Stats.LayoutTime)

	// Route against the laid-out geometry, not the caller's.
	work := d.Clone()
	applyCenters(&work, positions)
	result.GeometryHash = GeometryHash(work)

	// Stage 2: Route
	routeStart := time.Now()
	observability.Pipeline().OnRouteStart(ctx, len(work.Edges))
	routes, routeHit, err := r.PlanRoutesWithCacheInfo(ctx, work, opts)
	observability.Pipeline().OnRouteComplete(ctx, len(work.Edges), time.Since(routeStart), err)
	if err != nil {
		return nil, fmt.Errorf("route: %w", err)
	}
	result.Routes = routes
	result.Stats.RouteTime = time.Since(routeStart)
	result.CacheInfo.RouteHit = routeHit

	r.Logger.Info("planned routes",
		"edges", len(routes),
		"duration", result.Stats.RouteTime)

	return result, nil
}

// ComputeLayoutWithCacheInfo computes a layout with caching and returns
// cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, d diagram.Data, opts Options) (layout.Positions, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	// Compute cache key
	cacheKey := r.Keyer.LayoutKey(StructureHash(d), opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Positions
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	// Compute layout
	positions, err := ComputeLayout(ctx, d, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := json.Marshal(positions); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}

	return positions, false, nil // Cache miss
}

// ComputeLayout is a convenience wrapper that calls
// ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, d diagram.Data, opts Options) (layout.Positions, error) {
	positions, _, err := r.ComputeLayoutWithCacheInfo(ctx, d, opts)
	return positions, err
}

// PlanRoutesWithCacheInfo plans routes with caching and returns cache hit
// info. Routing reads the diagram's current geometry; run the layout stage
// first when fresh positions are wanted.
func (r *Runner) PlanRoutesWithCacheInfo(ctx context.Context, d diagram.Data, opts Options) ([]route.EdgeRoute, bool, error) {
	if err := opts.ValidateForRoute(); err != nil {
		return nil, false, err
	}

	// Compute cache key
	cacheKey := r.Keyer.RouteKey(GeometryHash(d), opts.RouteKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached []route.EdgeRoute
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "routes")
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "routes")
	}

	// Plan routes
	routes, err := PlanRoutes(d, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := json.Marshal(routes); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLRoutes)
		observability.Cache().OnCacheSet(ctx, "routes", len(data))
	}

	return routes, false, nil // Cache miss
}

// PlanRoutes is a convenience wrapper that calls PlanRoutesWithCacheInfo and
// discards the cache hit info.
func (r *Runner) PlanRoutes(ctx context.Context, d diagram.Data, opts Options) ([]route.EdgeRoute, error) {
	routes, _, err := r.PlanRoutesWithCacheInfo(ctx, d, opts)
	return routes, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
