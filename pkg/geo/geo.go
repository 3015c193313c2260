// Package geo provides the plane-geometry primitives shared by the diagram
// model, the connector router, and the layout engines.
//
// Coordinates follow screen convention: the origin is the top-left corner of
// the canvas and y grows downward. All values are float64 so callers can feed
// positions straight into rendering collaborators without conversion.
package geo

import "math"

// =============================================================================
// Point
// =============================================================================

// Point is a position in diagram coordinates.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Translate returns the point shifted by (dx, dy).
func (p Point) Translate(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// DistanceTo returns the Euclidean distance to q.
func (p Point) DistanceTo(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// =============================================================================
// Rect
// =============================================================================

// Rect is an axis-aligned rectangle identified by its top-left corner.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Left returns the minimum x coordinate.
func (r Rect) Left() float64 { return r.X }

// Right returns the maximum x coordinate.
func (r Rect) Right() float64 { return r.X + r.Width }

// Top returns the minimum y coordinate.
func (r Rect) Top() float64 { return r.Y }

// Bottom returns the maximum y coordinate.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the rectangle's midpoint.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// TopCenter returns the midpoint of the top edge.
func (r Rect) TopCenter() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y}
}

// BottomCenter returns the midpoint of the bottom edge.
func (r Rect) BottomCenter() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height}
}

// Contains reports whether p lies inside the rectangle. Points on the
// boundary count as inside.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left() && p.X <= r.Right() && p.Y >= r.Top() && p.Y <= r.Bottom()
}

// Intersects reports whether the two rectangles overlap. Touching edges
// count as an intersection.
func (r Rect) Intersects(o Rect) bool {
	return r.Left() <= o.Right() && o.Left() <= r.Right() &&
		r.Top() <= o.Bottom() && o.Top() <= r.Bottom()
}

// Expand returns the rectangle grown by pad on every side. A negative pad
// shrinks it.
func (r Rect) Expand(pad float64) Rect {
	return Rect{
		X:      r.X - pad,
		Y:      r.Y - pad,
		Width:  r.Width + 2*pad,
		Height: r.Height + 2*pad,
	}
}

// HitsHSegment reports whether the horizontal segment at height y spanning
// [x1, x2] passes through the rectangle. The x endpoints may be given in
// either order.
func (r Rect) HitsHSegment(y, x1, x2 float64) bool {
	if y < r.Top() || y > r.Bottom() {
		return false
	}
	lo, hi := ordered(x1, x2)
	return lo <= r.Right() && r.Left() <= hi
}

// HitsVSegment reports whether the vertical segment at x spanning [y1, y2]
// passes through the rectangle. The y endpoints may be given in either order.
func (r Rect) HitsVSegment(x, y1, y2 float64) bool {
	if x < r.Left() || x > r.Right() {
		return false
	}
	lo, hi := ordered(y1, y2)
	return lo <= r.Bottom() && r.Top() <= hi
}

// =============================================================================
// Internal Helpers
// =============================================================================

// ordered returns (min, max) of two values.
func ordered(a, b float64) (float64, float64) {
	if a > b {
		return b, a
	}
	return a, b
}
