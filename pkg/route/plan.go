package route

import (
	"github.com/treeline-io/treeline/pkg/diagram"
	"github.com/treeline-io/treeline/pkg/geo"
)

// EdgeRoute pairs one derived edge with its routed path.
type EdgeRoute struct {
	EdgeID string `json:"edgeId"`
	Source string `json:"source"`
	Target string `json:"target"`
	Path   Path   `json:"path"`
}

// Obstacles returns the padded bounding rectangle of every node except the
// ids listed in exclude. This is the obstacle set for routing one edge:
// all nodes but the edge's own endpoints.
func Obstacles(nodes []diagram.Node, pad float64, exclude ...string) []geo.Rect {
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}

	out := make([]geo.Rect, 0, len(nodes))
	for i := range nodes {
		if _, ok := skip[nodes[i].ID]; ok {
			continue
		}
		out = append(out, nodes[i].Rect().Expand(pad))
	}
	return out
}

// Plan routes every edge in the diagram and returns the results in edge
// order. Anchors follow org-chart convention: the parent's bottom-center to
// the child's top-center.
//
// Straight edges bypass orthogonal routing and connect their anchors
// directly. Step edges are routed but keep square corners; smoothstep edges
// carry the router's corner rounding.
//
// Returns an INVALID_CONFIG error when the options are out of range.
func Plan(d diagram.Data, opts Options) ([]EdgeRoute, error) {
	r, err := New(opts)
	if err != nil {
		return nil, err
	}

	routes := make([]EdgeRoute, 0, len(d.Edges))
	for _, e := range d.Edges {
		src, okS := d.NodeByID(e.Source)
		tgt, okT := d.NodeByID(e.Target)
		if !okS || !okT {
			continue
		}

		er := EdgeRoute{EdgeID: e.ID, Source: e.Source, Target: e.Target}

		srcAnchor := src.Rect().BottomCenter()
		tgtAnchor := tgt.Rect().TopCenter()

		if e.Type == diagram.EdgeStraight {
			er.Path = Path{Points: []geo.Point{srcAnchor, tgtAnchor}}
			routes = append(routes, er)
			continue
		}

		obstacles := Obstacles(d.Nodes, r.opts.Padding, e.Source, e.Target)
		er.Path = r.Route(srcAnchor, tgtAnchor, obstacles)
		if e.Type == diagram.EdgeStep {
			er.Path.Corners = nil
		}
		routes = append(routes, er)
	}
	return routes, nil
}
