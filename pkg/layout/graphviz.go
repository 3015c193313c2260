package layout

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/treeline-io/treeline/pkg/diagram"
	"github.com/treeline-io/treeline/pkg/errors"
	"github.com/treeline-io/treeline/pkg/geo"
)

// GraphvizEngine delegates ranking and placement to Graphviz dot. The
// forest is serialized to DOT with fixed node sizes, laid out, and the
// node centers are read back from the annotated dot output.
//
// Graphviz measures in inches and points (72 per inch) with the y axis
// pointing up; the engine converts both back to diagram units with y down.
type GraphvizEngine struct{}

var _ Engine = (*GraphvizEngine)(nil)

// Name implements Engine.
func (e *GraphvizEngine) Name() string { return EngineGraphviz }

// Layout implements Engine.
func (e *GraphvizEngine) Layout(ctx context.Context, d diagram.Data, opts Options) (Positions, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if len(d.Nodes) == 0 {
		return Positions{}, nil
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(buildDOT(d, opts)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse generated DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "graphviz layout")
	}

	return parsePositions(buf.String(), d)
}

// =============================================================================
// DOT Generation
// =============================================================================

// buildDOT serializes the forest for layout. Sizes are fixed so dot only
// decides placement; labels are blank because rendering happens elsewhere.
func buildDOT(d diagram.Data, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", opts.Direction)
	fmt.Fprintf(&buf, "  ranksep=%.4f;\n", opts.RankSep/72)
	fmt.Fprintf(&buf, "  nodesep=%.4f;\n", opts.NodeSep/72)
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("\n")

	for i := range d.Nodes {
		n := &d.Nodes[i]
		fmt.Fprintf(&buf, "  %q [width=%.4f, height=%.4f];\n", n.ID, n.Width/72, n.Height/72)
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// =============================================================================
// Output Parsing
// =============================================================================

var (
	stmtRe = regexp.MustCompile(`(?m)^\s*("(?:[^"\\]|\\.)*"|[\w.-]+)\s+\[([^\]]*)\]`)
	posRe  = regexp.MustCompile(`pos="(-?[0-9.]+),(-?[0-9.]+)"`)
	bbRe   = regexp.MustCompile(`bb="[-0-9.]+,[-0-9.]+,[-0-9.]+,(-?[0-9.]+)"`)
)

// parsePositions extracts node centers from annotated dot output and flips
// them into screen orientation using the graph's bounding box height.
func parsePositions(out string, d diagram.Data) (Positions, error) {
	// Long statements wrap with backslash continuations.
	out = strings.ReplaceAll(out, "\\\n", "")

	bb := bbRe.FindStringSubmatch(out)
	if bb == nil {
		return nil, errors.New(errors.ErrCodeInternal, "graphviz output has no bounding box")
	}
	height, _ := strconv.ParseFloat(bb[1], 64)

	known := make(map[string]struct{}, len(d.Nodes))
	for i := range d.Nodes {
		known[d.Nodes[i].ID] = struct{}{}
	}

	centers := make(Positions, len(d.Nodes))
	for _, m := range stmtRe.FindAllStringSubmatch(out, -1) {
		id := unquoteID(m[1])
		if _, ok := known[id]; !ok {
			continue
		}
		pos := posRe.FindStringSubmatch(m[2])
		if pos == nil {
			continue
		}
		x, _ := strconv.ParseFloat(pos[1], 64)
		y, _ := strconv.ParseFloat(pos[2], 64)
		centers[id] = geo.Point{X: x, Y: height - y}
	}

	for i := range d.Nodes {
		if _, ok := centers[d.Nodes[i].ID]; !ok {
			return nil, errors.New(errors.ErrCodeInternal, "graphviz omitted position for node %q", d.Nodes[i].ID)
		}
	}
	return centers, nil
}

// unquoteID strips DOT quoting from a node identifier.
func unquoteID(tok string) string {
	if len(tok) >= 2 && strings.HasPrefix(tok, `"`) && strings.HasSuffix(tok, `"`) {
		tok = tok[1 : len(tok)-1]
		tok = strings.ReplaceAll(tok, `\"`, `"`)
		tok = strings.ReplaceAll(tok, `\\`, `\`)
	}
	return tok
}
