package pipeline

import (
	"github.com/treeline-io/treeline/pkg/diagram"
	"github.com/treeline-io/treeline/pkg/route"
)

// =============================================================================
// Route Stage
// =============================================================================

// PlanRoutes routes every edge of the diagram against its current geometry.
// This is the uncached stage implementation; the Runner wraps it with
// caching.
func PlanRoutes(d diagram.Data, opts Options) ([]route.EdgeRoute, error) {
	if err := opts.ValidateForRoute(); err != nil {
		return nil, err
	}
	return route.Plan(d, opts.RouteOptions())
}
