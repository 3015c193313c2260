// Package route implements the obstacle-avoiding orthogonal connector
// router. Given a source anchor (conventionally a parent's bottom-center),
// a target anchor (a child's top-center) and the padded bounding rectangles
// of every other node, it produces a Manhattan path: at most one horizontal
// bar plus up to two corrective jogs.
//
// The router is pure and stateless: identical inputs always produce the
// same path, nothing is cached between calls, and concurrent invocation is
// safe. When the bounded clearance search is exhausted the router degrades
// to its best candidate rather than failing - connectors are never omitted.
package route

import (
	"math"

	"github.com/treeline-io/treeline/pkg/errors"
	"github.com/treeline-io/treeline/pkg/geo"
)

// =============================================================================
// Options
// =============================================================================

// SearchOrder selects how the bar clearance search probes candidate
// offsets. The two historical routing behaviors differ only in this
// ordering, so they are one implementation with a configuration knob.
type SearchOrder string

// Search orders.
const (
	// OrderAway probes every offset on the far side of the source first and
	// falls back to the near side only after the far side is exhausted.
	// This keeps the bar visually attached to the parent, matching
	// conventional org-chart style.
	OrderAway SearchOrder = "away"

	// OrderAlternating probes both sides symmetrically, nearest offsets
	// first.
	OrderAlternating SearchOrder = "alternating"
)

// Valid reports whether the value is a known search order.
func (o SearchOrder) Valid() bool {
	return o == OrderAway || o == OrderAlternating
}

// Options tunes the router. The zero value is usable after
// ValidateAndSetDefaults; all fields have sensible defaults.
type Options struct {
	// BendTolerance is the |sourceX - targetX| below which the router emits
	// a single direct vertical segment.
	BendTolerance float64

	// BarFraction positions the candidate bar at this fraction of the
	// vertical gap beyond the source anchor.
	BarFraction float64

	// BarMaxOffset caps the candidate bar's distance from the source
	// anchor, keeping the bend attached to the parent.
	BarMaxOffset float64

	// Step is the increment used by all clearance searches.
	Step float64

	// MaxSearchOffset bounds how far any clearance search may wander from
	// its starting candidate before giving up.
	MaxSearchOffset float64

	// ExitLength is the fixed vertical stub leaving the source and entering
	// the target on multi-bend fallback paths.
	ExitLength float64

	// CornerRadius caps the cosmetic quarter-circle rounding applied at
	// canonical path corners.
	CornerRadius float64

	// Padding is the margin added around node rectangles when building
	// obstacle sets (see Obstacles). The router itself treats the
	// rectangles it receives as final.
	Padding float64

	// Order selects the bar search strategy.
	Order SearchOrder
}

// ValidateAndSetDefaults fills zero fields with defaults and validates the
// result. Returns an INVALID_CONFIG error for out-of-range values.
func (o *Options) ValidateAndSetDefaults() error {
	if o.BendTolerance == 0 {
		o.BendTolerance = 4
	}
	if o.BarFraction == 0 {
		o.BarFraction = 0.3
	}
	if o.BarMaxOffset == 0 {
		o.BarMaxOffset = 25
	}
	if o.Step == 0 {
		o.Step = 12
	}
	if o.MaxSearchOffset == 0 {
		o.MaxSearchOffset = 350
	}
	if o.ExitLength == 0 {
		o.ExitLength = 10
	}
	if o.CornerRadius == 0 {
		o.CornerRadius = 6
	}
	if o.Padding == 0 {
		o.Padding = 5
	}
	if o.Order == "" {
		o.Order = OrderAway
	}

	switch {
	case o.BendTolerance < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "bend tolerance must not be negative")
	case o.BarFraction <= 0 || o.BarFraction >= 1:
		return errors.New(errors.ErrCodeInvalidConfig, "bar fraction must be in (0, 1)")
	case o.BarMaxOffset <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "bar max offset must be positive")
	case o.Step <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "step must be positive")
	case o.MaxSearchOffset < o.Step:
		return errors.New(errors.ErrCodeInvalidConfig, "max search offset must be at least one step")
	case o.ExitLength <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "exit length must be positive")
	case o.CornerRadius < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "corner radius must not be negative")
	case o.Padding < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "padding must not be negative")
	case !o.Order.Valid():
		return errors.New(errors.ErrCodeInvalidConfig, "unknown search order %q", o.Order)
	}
	return nil
}

// =============================================================================
// Path
// =============================================================================

// Corner is the cosmetic quarter-circle rounding applied at one interior
// point of a canonical path. Rounding never alters the routed coordinates;
// renderers shorten the adjacent segments by Radius and draw an arc.
type Corner struct {
	Index  int     `json:"index"` // interior point index in Points
	Radius float64 `json:"radius"`
}

// Path is a routed connector: an ordered point list forming axis-aligned
// segments, with optional corner rounding metadata.
type Path struct {
	Points  []geo.Point `json:"points"`
	Corners []Corner    `json:"corners,omitempty"`

	// Fallback marks a multi-bend path synthesized because a vertical leg
	// of the canonical route was obstructed. Fallback paths are never
	// rounded.
	Fallback bool `json:"fallback,omitempty"`

	// Exhausted marks a best-effort path: the clearance search hit its
	// bound and the path may overlap obstacles.
	Exhausted bool `json:"exhausted,omitempty"`

	// Probes counts clearance-search steps taken while routing. Zero for
	// paths that needed no searching.
	Probes int `json:"-"`
}

// =============================================================================
// Router
// =============================================================================

// Router computes orthogonal connector paths around rectangular obstacles.
//
// The zero value is not usable - use New.
type Router struct {
	opts Options
}

// New creates a Router. Returns an INVALID_CONFIG error when the options
// are out of range.
func New(opts Options) (*Router, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Router{opts: opts}, nil
}

// Options returns the router's effective (defaulted) options.
func (r *Router) Options() Options { return r.opts }

// Route computes a path from src to tgt around the given obstacle
// rectangles. Obstacles are expected to be pre-padded (see Obstacles) and
// must not include the endpoints' own rectangles.
//
// The result always contains at least two points. A path with Exhausted
// set may overlap obstacles; every other path is collision-free with
// respect to its bar and vertical legs.
func (r *Router) Route(src, tgt geo.Point, obstacles []geo.Rect) Path {
	// Aligned anchors route as a single vertical segment.
	if math.Abs(src.X-tgt.X) < r.opts.BendTolerance {
		return Path{Points: []geo.Point{src, tgt}}
	}

	down := tgt.Y > src.Y
	gap := math.Abs(tgt.Y - src.Y)

	// Candidate bar biased toward the source side.
	offset := math.Min(r.opts.BarFraction*gap, r.opts.BarMaxOffset)
	candidate := src.Y + offset
	if !down {
		candidate = src.Y - offset
	}

	probes := 0
	barY, barOK := r.searchBarY(candidate, src.X, tgt.X, down, obstacles, &probes)

	srcLegClear := clearV(src.X, src.Y, barY, obstacles)
	tgtLegClear := clearV(tgt.X, barY, tgt.Y, obstacles)
	if srcLegClear && tgtLegClear {
		return r.canonical(src, tgt, barY, !barOK, probes)
	}

	// A leg is obstructed: jog it sideways to a clear column and synthesize
	// the multi-bend fallback.
	srcX, srcXOK := src.X, true
	if !srcLegClear {
		srcX, srcXOK = r.searchLegX(src.X, tgt.X, src.Y, barY, obstacles, &probes)
	}
	tgtX, tgtXOK := tgt.X, true
	if !tgtLegClear {
		tgtX, tgtXOK = r.searchLegX(tgt.X, src.X, barY, tgt.Y, obstacles, &probes)
	}

	exhausted := !barOK || !srcXOK || !tgtXOK
	return r.multiBend(src, tgt, srcX, tgtX, barY, down, exhausted, probes)
}

// canonical emits the 3-segment path (vertical, horizontal, vertical) with
// cosmetic corner rounding.
func (r *Router) canonical(src, tgt geo.Point, barY float64, exhausted bool, probes int) Path {
	pts := dedupe([]geo.Point{
		src,
		{X: src.X, Y: barY},
		{X: tgt.X, Y: barY},
		tgt,
	})

	p := Path{Points: pts, Exhausted: exhausted, Probes: probes}
	p.Corners = roundCorners(pts, r.opts.CornerRadius)
	return p
}

// multiBend synthesizes the fallback path: fixed vertical exit, jog to the
// clear source column, drop to the bar, cross, symmetric jog near the
// target, vertical entry. No rounding is applied.
func (r *Router) multiBend(src, tgt geo.Point, srcX, tgtX, barY float64, down bool, exhausted bool, probes int) Path {
	exit := r.opts.ExitLength
	srcExitY := src.Y + exit
	tgtEntryY := tgt.Y - exit
	if !down {
		srcExitY = src.Y - exit
		tgtEntryY = tgt.Y + exit
	}

	pts := dedupe([]geo.Point{
		src,
		{X: src.X, Y: srcExitY},
		{X: srcX, Y: srcExitY},
		{X: srcX, Y: barY},
		{X: tgtX, Y: barY},
		{X: tgtX, Y: tgtEntryY},
		{X: tgt.X, Y: tgtEntryY},
		tgt,
	})

	return Path{Points: pts, Fallback: true, Exhausted: exhausted, Probes: probes}
}

// =============================================================================
// Clearance Searches
// =============================================================================

// searchBarY finds a bar height whose horizontal span [srcX, tgtX] clears
// all obstacles, stepping outward from candidate per the configured order.
// Falls back to the candidate itself (ok=false) when the bound is hit.
func (r *Router) searchBarY(candidate, srcX, tgtX float64, down bool, obstacles []geo.Rect, probes *int) (float64, bool) {
	if clearH(candidate, srcX, tgtX, obstacles) {
		return candidate, true
	}

	away := 1.0 // direction of travel, away from the source
	if !down {
		away = -1
	}

	for _, delta := range r.offsets() {
		*probes++
		y := candidate + away*delta
		if clearH(y, srcX, tgtX, obstacles) {
			return y, true
		}
	}
	return candidate, false
}

// searchLegX finds a clear column for a vertical leg spanning [y1, y2],
// probing symmetrically left and right of candidate, the side toward
// otherX first.
func (r *Router) searchLegX(candidate, otherX, y1, y2 float64, obstacles []geo.Rect, probes *int) (float64, bool) {
	toward := 1.0
	if otherX < candidate {
		toward = -1
	}

	for k := r.opts.Step; k <= r.opts.MaxSearchOffset; k += r.opts.Step {
		*probes++
		if x := candidate + toward*k; clearV(x, y1, y2, obstacles) {
			return x, true
		}
		*probes++
		if x := candidate - toward*k; clearV(x, y1, y2, obstacles) {
			return x, true
		}
	}
	return candidate, false
}

// offsets returns the sequence of absolute bar displacements to probe, in
// search order. OrderAway yields every far-side offset before any
// near-side one; OrderAlternating interleaves them nearest first.
func (r *Router) offsets() []float64 {
	steps := int(r.opts.MaxSearchOffset / r.opts.Step)
	out := make([]float64, 0, 2*steps)

	switch r.opts.Order {
	case OrderAlternating:
		for i := 1; i <= steps; i++ {
			d := float64(i) * r.opts.Step
			out = append(out, d, -d)
		}
	default: // OrderAway
		for i := 1; i <= steps; i++ {
			out = append(out, float64(i)*r.opts.Step)
		}
		for i := 1; i <= steps; i++ {
			out = append(out, -float64(i)*r.opts.Step)
		}
	}
	return out
}

// clearH reports whether the horizontal segment at y spanning [x1, x2]
// avoids every obstacle.
func clearH(y, x1, x2 float64, obstacles []geo.Rect) bool {
	for _, o := range obstacles {
		if o.HitsHSegment(y, x1, x2) {
			return false
		}
	}
	return true
}

// clearV reports whether the vertical segment at x spanning [y1, y2]
// avoids every obstacle.
func clearV(x, y1, y2 float64, obstacles []geo.Rect) bool {
	for _, o := range obstacles {
		if o.HitsVSegment(x, y1, y2) {
			return false
		}
	}
	return true
}

// =============================================================================
// Geometry Helpers
// =============================================================================

// roundCorners computes the cosmetic rounding for each interior point of an
// axis-aligned path: radius capped by the configured maximum and by half of
// each adjacent segment so arcs never overlap.
func roundCorners(pts []geo.Point, limit float64) []Corner {
	if limit <= 0 || len(pts) < 3 {
		return nil
	}
	corners := make([]Corner, 0, len(pts)-2)
	for i := 1; i < len(pts)-1; i++ {
		in := segmentLength(pts[i-1], pts[i])
		out := segmentLength(pts[i], pts[i+1])
		radius := math.Min(limit, math.Min(in/2, out/2))
		if radius > 0 {
			corners = append(corners, Corner{Index: i, Radius: radius})
		}
	}
	return corners
}

func segmentLength(a, b geo.Point) float64 {
	return math.Abs(a.X-b.X) + math.Abs(a.Y-b.Y)
}

// dedupe removes consecutive duplicate points.
func dedupe(pts []geo.Point) []geo.Point {
	out := pts[:0]
	for _, p := range pts {
		if len(out) == 0 || out[len(out)-1] != p {
			out = append(out, p)
		}
	}
	return out
}
