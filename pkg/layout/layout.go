// Package layout arranges diagram forests automatically. An Engine maps a
// forest plus node sizes to one center coordinate per node; Apply writes
// those centers back to the store as corner positions in a single history
// entry.
//
// Two engines ship by default: the built-in tree engine (no external
// dependencies, deterministic) and the Graphviz dot engine for larger or
// irregular charts. Engines return node centers; only Apply knows that the
// store keeps top-left corners.
package layout

import (
	"context"

	"github.com/treeline-io/treeline/pkg/diagram"
	"github.com/treeline-io/treeline/pkg/errors"
	"github.com/treeline-io/treeline/pkg/geo"
)

// Engine names accepted by New.
const (
	EngineTree     = "tree"
	EngineGraphviz = "dot"
)

// =============================================================================
// Options
// =============================================================================

// Direction is the primary growth axis of the layout, using Graphviz
// rankdir vocabulary.
type Direction string

// Layout directions.
const (
	DirectionTopBottom Direction = "TB"
	DirectionBottomTop Direction = "BT"
	DirectionLeftRight Direction = "LR"
	DirectionRightLeft Direction = "RL"
)

// Valid reports whether the value is a known direction.
func (d Direction) Valid() bool {
	switch d {
	case DirectionTopBottom, DirectionBottomTop, DirectionLeftRight, DirectionRightLeft:
		return true
	}
	return false
}

// Options tunes a layout run. The zero value is usable after
// ValidateAndSetDefaults.
type Options struct {
	// Direction is the axis along which ranks advance.
	Direction Direction

	// RankSep is the gap between consecutive ranks, in diagram units.
	RankSep float64

	// NodeSep is the gap between adjacent siblings within a rank.
	NodeSep float64
}

// ValidateAndSetDefaults fills zero fields with defaults and validates the
// result.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Direction == "" {
		o.Direction = DirectionTopBottom
	}
	if o.RankSep == 0 {
		o.RankSep = 60
	}
	if o.NodeSep == 0 {
		o.NodeSep = 40
	}

	switch {
	case !o.Direction.Valid():
		return errors.New(errors.ErrCodeInvalidConfig, "unknown layout direction %q", o.Direction)
	case o.RankSep <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "rank separation must be positive")
	case o.NodeSep <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "node separation must be positive")
	}
	return nil
}

// =============================================================================
// Engine
// =============================================================================

// Positions maps node id to the node's center coordinate in diagram units.
type Positions map[string]geo.Point

// Engine computes node centers for a diagram forest. Implementations are
// stateless; each Layout call is independent and safe to run concurrently.
type Engine interface {
	// Name identifies the engine for configuration and logging.
	Name() string

	// Layout returns one center per node in d. Every node id present in
	// d.Nodes must appear in the result.
	Layout(ctx context.Context, d diagram.Data, opts Options) (Positions, error)
}

// New returns the engine registered under name. Returns an INVALID_ENGINE
// error for unknown names.
func New(name string) (Engine, error) {
	switch name {
	case EngineTree, "":
		return &TreeEngine{}, nil
	case EngineGraphviz, "graphviz":
		return &GraphvizEngine{}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidEngine, "unknown layout engine %q (available: %s, %s)",
		name, EngineTree, EngineGraphviz)
}

// Names lists the available engine names.
func Names() []string {
	return []string{EngineTree, EngineGraphviz}
}

// =============================================================================
// Apply
// =============================================================================

// Apply writes engine-produced centers back to the store, converting each
// center to the store's corner convention (position = center - size/2). The
// whole batch lands as one history entry. Centers for unknown ids are
// ignored; nodes without a center keep their position. Returns the number
// of nodes moved.
func Apply(s *diagram.Store, centers Positions) int {
	updates := make([]diagram.PositionUpdate, 0, len(centers))
	for _, n := range s.Nodes() {
		c, ok := centers[n.ID]
		if !ok {
			continue
		}
		updates = append(updates, diagram.PositionUpdate{
			ID: n.ID,
			X:  c.X - n.Width/2,
			Y:  c.Y - n.Height/2,
		})
	}
	s.SetPositions(updates)
	return len(updates)
}

// Run lays out the store's current diagram with the named engine and
// applies the result. This is the convenience path used by the CLI and the
// HTTP API.
func Run(ctx context.Context, s *diagram.Store, engine string, opts Options) (int, error) {
	eng, err := New(engine)
	if err != nil {
		return 0, err
	}
	centers, err := eng.Layout(ctx, s.Save(), opts)
	if err != nil {
		return 0, err
	}
	return Apply(s, centers), nil
}
