package pipeline

import (
	"context"

	"github.com/treeline-io/treeline/pkg/diagram"
	"github.com/treeline-io/treeline/pkg/geo"
	"github.com/treeline-io/treeline/pkg/layout"
)

// =============================================================================
// Layout Stage
// =============================================================================

// ComputeLayout runs the configured engine over the diagram and returns one
// center coordinate per node. This is the uncached stage implementation; the
// Runner wraps it with caching.
func ComputeLayout(ctx context.Context, d diagram.Data, opts Options) (layout.Positions, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	eng, err := layout.New(opts.Engine)
	if err != nil {
		return nil, err
	}
	return eng.Layout(ctx, d, opts.LayoutOptions())
}

// applyCenters moves every node of d so its center matches the engine
// output. Ids absent from centers keep their position. Unlike layout.Apply
// this works on a detached Data value and records no history; the pipeline
// uses it to route against freshly laid-out geometry without touching the
// caller's store.
func applyCenters(d *diagram.Data, centers layout.Positions) {
	for i := range d.Nodes {
		c, ok := centers[d.Nodes[i].ID]
		if !ok {
			continue
		}
		d.Nodes[i].Position = geo.Point{
			X: c.X - d.Nodes[i].Width/2,
			Y: c.Y - d.Nodes[i].Height/2,
		}
	}
}
