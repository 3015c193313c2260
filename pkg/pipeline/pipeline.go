// Package pipeline provides the core geometry pipeline for Treeline.
//
// This package implements the complete layout → route pipeline shared by the
// CLI and the HTTP API. Centralizing this logic keeps defaults and caching
// behavior identical across all entry points.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Layout: Compute node positions for the diagram's forest
//  2. Route: Plan an obstacle-avoiding connector path for every edge
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Engine:    "tree",
//	    Direction: "TB",
//	}
//	result, err := runner.Execute(ctx, d, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	positions := result.Positions
//	routes := result.Routes
//
// Run individual stages:
//
//	// Layout only
//	positions, err := runner.ComputeLayout(ctx, d, opts)
//
//	// Route against existing geometry
//	routes, err := runner.PlanRoutes(ctx, d, opts)
package pipeline

import (
	"time"

	"github.com/treeline-io/treeline/pkg/cache"
	"github.com/treeline-io/treeline/pkg/layout"
	"github.com/treeline-io/treeline/pkg/route"
)

// =============================================================================
// Defaults - Single Source of Truth for CLI and API
// =============================================================================

// DefaultEngine is the layout engine used when none is requested.
const DefaultEngine = layout.EngineTree

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the geometry pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Engine    string  `json:"engine,omitempty"`
	Direction string  `json:"direction,omitempty"`
	RankSep   float64 `json:"rank_sep,omitempty"`
	NodeSep   float64 `json:"node_sep,omitempty"`

	// Routing options
	Order           string  `json:"order,omitempty"`
	BendTolerance   float64 `json:"bend_tolerance,omitempty"`
	BarFraction     float64 `json:"bar_fraction,omitempty"`
	BarMaxOffset    float64 `json:"bar_max_offset,omitempty"`
	Step            float64 `json:"step,omitempty"`
	MaxSearchOffset float64 `json:"max_search_offset,omitempty"`
	ExitLength      float64 `json:"exit_length,omitempty"`
	CornerRadius    float64 `json:"corner_radius,omitempty"`
	Padding         float64 `json:"padding,omitempty"`

	// Refresh bypasses cache reads so both stages recompute. Results are
	// still written back to the cache.
	Refresh bool `json:"refresh,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Positions are the computed node centers keyed by node id.
	Positions layout.Positions

	// Routes are the planned connector paths in edge order, computed
	// against the laid-out geometry.
	Routes []route.EdgeRoute

	// StructureHash is the content hash of the diagram's forest shape and
	// node sizes (the layout cache key input).
	StructureHash string

	// GeometryHash is the content hash of the laid-out geometry (the route
	// cache key input).
	GeometryHash string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LayoutTime time.Duration
	RouteTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether layout positions came from cache
	RouteHit  bool // Whether route plans came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults for the full
// pipeline. This method is idempotent - calling it multiple times has the
// same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRoute(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLayout validates the layout fields and normalizes them to their
// canonical form, so equivalent requests produce identical cache keys.
func (o *Options) ValidateForLayout() error {
	eng, err := layout.New(o.Engine)
	if err != nil {
		return err
	}
	o.Engine = eng.Name()

	lo := o.LayoutOptions()
	if err := lo.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.Direction = string(lo.Direction)
	o.RankSep = lo.RankSep
	o.NodeSep = lo.NodeSep
	return nil
}

// ValidateForRoute validates the routing fields and normalizes them to their
// canonical form.
func (o *Options) ValidateForRoute() error {
	ro := o.RouteOptions()
	if err := ro.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.Order = string(ro.Order)
	o.BendTolerance = ro.BendTolerance
	o.BarFraction = ro.BarFraction
	o.BarMaxOffset = ro.BarMaxOffset
	o.Step = ro.Step
	o.MaxSearchOffset = ro.MaxSearchOffset
	o.ExitLength = ro.ExitLength
	o.CornerRadius = ro.CornerRadius
	o.Padding = ro.Padding
	return nil
}

// LayoutOptions returns the layout engine options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		Direction: layout.Direction(o.Direction),
		RankSep:   o.RankSep,
		NodeSep:   o.NodeSep,
	}
}

// RouteOptions returns the connector router options.
func (o *Options) RouteOptions() route.Options {
	return route.Options{
		BendTolerance:   o.BendTolerance,
		BarFraction:     o.BarFraction,
		BarMaxOffset:    o.BarMaxOffset,
		Step:            o.Step,
		MaxSearchOffset: o.MaxSearchOffset,
		ExitLength:      o.ExitLength,
		CornerRadius:    o.CornerRadius,
		Padding:         o.Padding,
		Order:           route.SearchOrder(o.Order),
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Engine:    o.Engine,
		Direction: o.Direction,
		RankSep:   o.RankSep,
		NodeSep:   o.NodeSep,
	}
}

// RouteKeyOpts returns cache key options for route planning.
func (o *Options) RouteKeyOpts() cache.RouteKeyOpts {
	return cache.RouteKeyOpts{
		Order:           o.Order,
		BendTolerance:   o.BendTolerance,
		BarFraction:     o.BarFraction,
		BarMaxOffset:    o.BarMaxOffset,
		Step:            o.Step,
		MaxSearchOffset: o.MaxSearchOffset,
		ExitLength:      o.ExitLength,
		CornerRadius:    o.CornerRadius,
		Padding:         o.Padding,
	}
}
