// Package diagram implements the hierarchical diagram model: typed nodes
// with style and geometry attributes, edges derived from parent links, and a
// mutation store with selection state and bounded undo/redo history.
//
// The model is a rooted forest. Every node carries an optional ParentID;
// nodes without one are roots. Edges are never authored directly - they are
// recomputed from the parent links after every structural change, so the edge
// list is always exactly one edge per non-root node.
//
// The store is single-writer and synchronous: every operation is one atomic
// state transition that runs to completion on the calling goroutine.
// Operations that reference unknown ids are silent no-ops.
package diagram

import (
	"fmt"
	"time"

	"github.com/treeline-io/treeline/pkg/geo"
)

// SchemaVersion is the current persisted schema version.
const SchemaVersion = 1

// =============================================================================
// Enumerations
// =============================================================================

// TextSize is the text size bucket for node labels.
type TextSize string

// Text size buckets.
const (
	TextSizeS  TextSize = "s"
	TextSizeM  TextSize = "m"
	TextSizeL  TextSize = "l"
	TextSizeXL TextSize = "xl"
)

// Valid reports whether the value is a known text size.
func (s TextSize) Valid() bool {
	switch s {
	case TextSizeS, TextSizeM, TextSizeL, TextSizeXL:
		return true
	}
	return false
}

// TextAlign is the horizontal alignment of node text.
type TextAlign string

// Text alignment values.
const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// Valid reports whether the value is a known alignment.
func (a TextAlign) Valid() bool {
	switch a {
	case AlignLeft, AlignCenter, AlignRight:
		return true
	}
	return false
}

// DashPattern is the border dash style of a node box.
type DashPattern string

// Border dash patterns.
const (
	DashSolid  DashPattern = "solid"
	DashDashed DashPattern = "dashed"
	DashDotted DashPattern = "dotted"
)

// Valid reports whether the value is a known dash pattern.
func (d DashPattern) Valid() bool {
	switch d {
	case DashSolid, DashDashed, DashDotted:
		return true
	}
	return false
}

// CornerStyle is the corner-radius bucket of a node box.
type CornerStyle string

// Corner-radius buckets.
const (
	CornerNone  CornerStyle = "none"
	CornerSmall CornerStyle = "small"
	CornerLarge CornerStyle = "large"
)

// Valid reports whether the value is a known corner style.
func (c CornerStyle) Valid() bool {
	switch c {
	case CornerNone, CornerSmall, CornerLarge:
		return true
	}
	return false
}

// ShadowStyle is the drop-shadow bucket of a node box.
type ShadowStyle string

// Shadow buckets.
const (
	ShadowNone ShadowStyle = "none"
	ShadowSoft ShadowStyle = "soft"
	ShadowHard ShadowStyle = "hard"
)

// Valid reports whether the value is a known shadow style.
func (s ShadowStyle) Valid() bool {
	switch s {
	case ShadowNone, ShadowSoft, ShadowHard:
		return true
	}
	return false
}

// BadgeSize is the box size bucket of a node badge.
type BadgeSize string

// Badge size buckets.
const (
	BadgeSizeS BadgeSize = "s"
	BadgeSizeM BadgeSize = "m"
	BadgeSizeL BadgeSize = "l"
)

// Valid reports whether the value is a known badge size.
func (s BadgeSize) Valid() bool {
	switch s {
	case BadgeSizeS, BadgeSizeM, BadgeSizeL:
		return true
	}
	return false
}

// EdgeType is the rendering style of a connector.
type EdgeType string

// Edge rendering types.
const (
	EdgeStraight   EdgeType = "straight"
	EdgeStep       EdgeType = "step"
	EdgeSmoothstep EdgeType = "smoothstep"
)

// Valid reports whether the value is a known edge type.
func (t EdgeType) Valid() bool {
	switch t {
	case EdgeStraight, EdgeStep, EdgeSmoothstep:
		return true
	}
	return false
}

// =============================================================================
// Style Attributes
// =============================================================================

// Style holds a node's color attributes as CSS color strings. Fill, Border
// and Text color the box; BadgeFill and BadgeText color the badge.
type Style struct {
	Fill      string `json:"fill,omitempty" bson:"fill,omitempty"`
	Border    string `json:"border,omitempty" bson:"border,omitempty"`
	Text      string `json:"text,omitempty" bson:"text,omitempty"`
	BadgeFill string `json:"badgeFill,omitempty" bson:"badgeFill,omitempty"`
	BadgeText string `json:"badgeText,omitempty" bson:"badgeText,omitempty"`
}

// DefaultStyle returns the colors applied to nodes created without an
// inherited style.
func DefaultStyle() Style {
	return Style{
		Fill:      "#ffffff",
		Border:    "#1a192b",
		Text:      "#1a192b",
		BadgeFill: "#ff0072",
		BadgeText: "#ffffff",
	}
}

// TextStyle holds a node's typography attributes.
type TextStyle struct {
	Bold      bool      `json:"bold,omitempty" bson:"bold,omitempty"`
	Italic    bool      `json:"italic,omitempty" bson:"italic,omitempty"`
	Underline bool      `json:"underline,omitempty" bson:"underline,omitempty"`
	Size      TextSize  `json:"size,omitempty" bson:"size,omitempty"`
	Align     TextAlign `json:"align,omitempty" bson:"align,omitempty"`
}

// BoxStyle holds a node's box decoration attributes.
type BoxStyle struct {
	BorderWidth int         `json:"borderWidth,omitempty" bson:"borderWidth,omitempty"` // Clamped to [1, 4]
	BorderDash  DashPattern `json:"borderDash,omitempty" bson:"borderDash,omitempty"`
	Corners     CornerStyle `json:"corners,omitempty" bson:"corners,omitempty"`
	Shadow      ShadowStyle `json:"shadow,omitempty" bson:"shadow,omitempty"`
}

// MinBorderWidth and MaxBorderWidth bound BoxStyle.BorderWidth.
const (
	MinBorderWidth = 1
	MaxBorderWidth = 4
)

// Normalize returns a copy with BorderWidth clamped into [MinBorderWidth,
// MaxBorderWidth] and unknown enum values replaced by their defaults.
func (b BoxStyle) Normalize() BoxStyle {
	if b.BorderWidth < MinBorderWidth {
		b.BorderWidth = MinBorderWidth
	}
	if b.BorderWidth > MaxBorderWidth {
		b.BorderWidth = MaxBorderWidth
	}
	if !b.BorderDash.Valid() {
		b.BorderDash = DashSolid
	}
	if !b.Corners.Valid() {
		b.Corners = CornerSmall
	}
	if !b.Shadow.Valid() {
		b.Shadow = ShadowNone
	}
	return b
}

// BadgeConfig positions a node's badge relative to the node's top-right
// corner. Offsets may place the badge outside the node's bounds.
type BadgeConfig struct {
	OffsetX float64   `json:"offsetX,omitempty" bson:"offsetX,omitempty"`
	OffsetY float64   `json:"offsetY,omitempty" bson:"offsetY,omitempty"`
	Size    BadgeSize `json:"size,omitempty" bson:"size,omitempty"`
}

// EdgeStyle holds a connector's visual attributes.
type EdgeStyle struct {
	Stroke      string  `json:"stroke,omitempty" bson:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty" bson:"strokeWidth,omitempty"`
	Animated    bool    `json:"animated,omitempty" bson:"animated,omitempty"`
}

// =============================================================================
// Node
// =============================================================================

// Node is a single box in the diagram.
//
// ID is opaque and unique within a diagram. ParentID references another
// node's ID or is empty for roots. Position is the top-left corner in
// diagram coordinates.
type Node struct {
	ID          string       `json:"id" bson:"id"`
	ParentID    string       `json:"parentId,omitempty" bson:"parentId,omitempty"`
	Title       string       `json:"title" bson:"title"`
	Subtitle    string       `json:"subtitle,omitempty" bson:"subtitle,omitempty"`
	Badge       string       `json:"badge,omitempty" bson:"badge,omitempty"`
	BadgeConfig *BadgeConfig `json:"badgeConfig,omitempty" bson:"badgeConfig,omitempty"`
	Style       Style        `json:"style" bson:"style"`
	TextStyle   *TextStyle   `json:"textStyle,omitempty" bson:"textStyle,omitempty"`
	BoxStyle    *BoxStyle    `json:"boxStyle,omitempty" bson:"boxStyle,omitempty"`
	Width       float64      `json:"width" bson:"width"`
	Height      float64      `json:"height" bson:"height"`
	Position    geo.Point    `json:"position" bson:"position"`
}

// Rect returns the node's bounding rectangle in diagram coordinates.
func (n *Node) Rect() geo.Rect {
	return geo.Rect{X: n.Position.X, Y: n.Position.Y, Width: n.Width, Height: n.Height}
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.ParentID == "" }

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	out := n
	if n.BadgeConfig != nil {
		bc := *n.BadgeConfig
		out.BadgeConfig = &bc
	}
	if n.TextStyle != nil {
		ts := *n.TextStyle
		out.TextStyle = &ts
	}
	if n.BoxStyle != nil {
		bs := *n.BoxStyle
		out.BoxStyle = &bs
	}
	return out
}

// CloneNodes returns a deep copy of a node list.
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// =============================================================================
// Edge
// =============================================================================

// Edge is a parent-to-child connector. Edges are derived from parent links
// and never authored directly; see DeriveEdges.
type Edge struct {
	ID     string    `json:"id" bson:"id"`
	Source string    `json:"source" bson:"source"` // Parent node id
	Target string    `json:"target" bson:"target"` // Child node id
	Type   EdgeType  `json:"type" bson:"type"`
	Style  EdgeStyle `json:"style,omitempty" bson:"style,omitempty"`
}

// EdgeID returns the deterministic id of the edge from parentID to childID.
func EdgeID(parentID, childID string) string {
	return fmt.Sprintf("edge-%s-%s", parentID, childID)
}

// EdgeOptions selects the rendering type and style stamped onto derived
// edges. The zero value derives smoothstep edges with default styling.
type EdgeOptions struct {
	Type  EdgeType
	Style EdgeStyle
}

// DeriveEdges computes the edge list from the parent links in nodes.
//
// The result contains exactly one edge per node whose ParentID resolves to
// another node in the list, in node order. Nodes referencing a missing
// parent derive no edge. The function is pure: identical inputs always
// produce identical output.
func DeriveEdges(nodes []Node, opts EdgeOptions) []Edge {
	typ := opts.Type
	if !typ.Valid() {
		typ = EdgeSmoothstep
	}

	ids := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = struct{}{}
	}

	edges := make([]Edge, 0, len(nodes))
	for _, n := range nodes {
		if n.ParentID == "" {
			continue
		}
		if _, ok := ids[n.ParentID]; !ok {
			continue
		}
		edges = append(edges, Edge{
			ID:     EdgeID(n.ParentID, n.ID),
			Source: n.ParentID,
			Target: n.ID,
			Type:   typ,
			Style:  opts.Style,
		})
	}
	return edges
}

// CloneEdges returns a copy of an edge list.
func CloneEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// =============================================================================
// Data - Persisted Unit
// =============================================================================

// Settings holds diagram-level metadata.
type Settings struct {
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Data is the persisted unit: the full diagram state exchanged with
// persistence and rendering collaborators.
//
// Edges is a denormalized cache of DeriveEdges(Nodes), stored for
// convenience and compatibility. It is recomputed after every mutation and
// on load, never hand-edited.
type Data struct {
	SchemaVersion int      `json:"schemaVersion" bson:"schemaVersion"`
	Nodes         []Node   `json:"nodes" bson:"nodes"`
	Edges         []Edge   `json:"edges" bson:"edges"`
	Settings      Settings `json:"settings" bson:"settings"`
}

// Clone returns a deep copy of the diagram data.
func (d Data) Clone() Data {
	return Data{
		SchemaVersion: d.SchemaVersion,
		Nodes:         CloneNodes(d.Nodes),
		Edges:         CloneEdges(d.Edges),
		Settings:      d.Settings,
	}
}

// NodeByID returns the node with the given id, if present.
func (d *Data) NodeByID(id string) (*Node, bool) {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i], true
		}
	}
	return nil, false
}

// EdgeByID returns the edge with the given id, if present.
func (d *Data) EdgeByID(id string) (*Edge, bool) {
	for i := range d.Edges {
		if d.Edges[i].ID == id {
			return &d.Edges[i], true
		}
	}
	return nil, false
}
