package layout

import (
	"context"

	"github.com/treeline-io/treeline/pkg/diagram"
	"github.com/treeline-io/treeline/pkg/errors"
	"github.com/treeline-io/treeline/pkg/geo"
)

// TreeEngine is the built-in tidy-tree layout: nodes are ranked by depth,
// each parent is centered over the span of its children, and sibling
// subtrees never overlap. It needs no external tooling and is fully
// deterministic, which makes it the default engine.
type TreeEngine struct{}

var _ Engine = (*TreeEngine)(nil)

// Name implements Engine.
func (e *TreeEngine) Name() string { return EngineTree }

// Layout implements Engine.
func (e *TreeEngine) Layout(ctx context.Context, d diagram.Data, opts Options) (Positions, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, err, "layout canceled")
	}

	s := newTreeSolver(d, opts)
	if err := s.solve(); err != nil {
		return nil, err
	}
	return s.finish(), nil
}

// =============================================================================
// Solver
// =============================================================================

// treeSolver carries the per-run state of one tree layout. Coordinates are
// computed in top-to-bottom orientation and transposed or flipped at the
// end for the other directions.
type treeSolver struct {
	opts       Options
	horizontal bool

	order    []string
	size     map[string]geo.Point // primary = Y, secondary = X
	children map[string][]string
	roots    []string

	rank    map[string]int
	rowSize []float64
	rowTop  []float64

	span    map[string]float64
	centers Positions
}

func newTreeSolver(d diagram.Data, opts Options) *treeSolver {
	horizontal := opts.Direction == DirectionLeftRight || opts.Direction == DirectionRightLeft

	s := &treeSolver{
		opts:       opts,
		horizontal: horizontal,
		size:       make(map[string]geo.Point, len(d.Nodes)),
		children:   make(map[string][]string, len(d.Nodes)),
		rank:       make(map[string]int, len(d.Nodes)),
		span:       make(map[string]float64, len(d.Nodes)),
		centers:    make(Positions, len(d.Nodes)),
	}

	known := make(map[string]struct{}, len(d.Nodes))
	for i := range d.Nodes {
		known[d.Nodes[i].ID] = struct{}{}
	}

	for i := range d.Nodes {
		n := &d.Nodes[i]
		s.order = append(s.order, n.ID)

		// Horizontal layouts rank by width and spread by height, so the
		// solver works on transposed sizes and finish() swaps axes back.
		if horizontal {
			s.size[n.ID] = geo.Point{X: n.Height, Y: n.Width}
		} else {
			s.size[n.ID] = geo.Point{X: n.Width, Y: n.Height}
		}

		parent := n.ParentID
		if _, ok := known[parent]; parent == "" || !ok {
			s.roots = append(s.roots, n.ID)
			continue
		}
		s.children[parent] = append(s.children[parent], n.ID)
	}
	return s
}

func (s *treeSolver) solve() error {
	// Rank assignment by BFS from the roots. Anything left unranked sits on
	// a cycle, which a well-formed diagram never contains.
	queue := append([]string(nil), s.roots...)
	for _, id := range queue {
		s.rank[id] = 0
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range s.children[id] {
			s.rank[c] = s.rank[id] + 1
			queue = append(queue, c)
		}
	}
	if len(s.rank) != len(s.order) {
		return errors.New(errors.ErrCodeInvalidDiagram, "layout input contains a parent cycle")
	}

	// Rank rows: height of the tallest node per rank, stacked with RankSep.
	for _, id := range s.order {
		r := s.rank[id]
		for len(s.rowSize) <= r {
			s.rowSize = append(s.rowSize, 0)
		}
		if h := s.size[id].Y; h > s.rowSize[r] {
			s.rowSize[r] = h
		}
	}
	s.rowTop = make([]float64, len(s.rowSize))
	for r := 1; r < len(s.rowSize); r++ {
		s.rowTop[r] = s.rowTop[r-1] + s.rowSize[r-1] + s.opts.RankSep
	}

	// Place root subtrees left to right.
	cursor := 0.0
	for _, id := range s.roots {
		s.place(id, cursor)
		cursor += s.subtreeSpan(id) + s.opts.NodeSep
	}
	return nil
}

// subtreeSpan returns the horizontal extent needed by id's subtree: the
// wider of the node itself and its children's combined spans.
func (s *treeSolver) subtreeSpan(id string) float64 {
	if w, ok := s.span[id]; ok {
		return w
	}

	childSpan := 0.0
	for i, c := range s.children[id] {
		if i > 0 {
			childSpan += s.opts.NodeSep
		}
		childSpan += s.subtreeSpan(c)
	}

	w := s.size[id].X
	if childSpan > w {
		w = childSpan
	}
	s.span[id] = w
	return w
}

// place positions id's subtree into the horizontal slot starting at left:
// the node is centered on the slot, children are centered beneath it.
func (s *treeSolver) place(id string, left float64) {
	slot := s.subtreeSpan(id)
	r := s.rank[id]
	s.centers[id] = geo.Point{
		X: left + slot/2,
		Y: s.rowTop[r] + s.rowSize[r]/2,
	}

	children := s.children[id]
	if len(children) == 0 {
		return
	}

	childSpan := 0.0
	for i, c := range children {
		if i > 0 {
			childSpan += s.opts.NodeSep
		}
		childSpan += s.subtreeSpan(c)
	}

	cursor := left + (slot-childSpan)/2
	for _, c := range children {
		s.place(c, cursor)
		cursor += s.subtreeSpan(c) + s.opts.NodeSep
	}
}

// finish converts solver-space centers into the requested direction.
func (s *treeSolver) finish() Positions {
	if s.opts.Direction == DirectionTopBottom {
		return s.centers
	}

	total := 0.0
	if len(s.rowTop) > 0 {
		total = s.rowTop[len(s.rowTop)-1] + s.rowSize[len(s.rowSize)-1]
	}

	out := make(Positions, len(s.centers))
	for id, c := range s.centers {
		switch s.opts.Direction {
		case DirectionBottomTop:
			out[id] = geo.Point{X: c.X, Y: total - c.Y}
		case DirectionLeftRight:
			out[id] = geo.Point{X: c.Y, Y: c.X}
		case DirectionRightLeft:
			out[id] = geo.Point{X: total - c.Y, Y: c.X}
		}
	}
	return out
}
