package pipeline

import (
	"encoding/json"

	"github.com/treeline-io/treeline/pkg/cache"
	"github.com/treeline-io/treeline/pkg/diagram"
)

// =============================================================================
// Content Hashes
// =============================================================================

// structureRecord is the per-node projection feeding StructureHash.
type structureRecord struct {
	ID       string  `json:"id"`
	ParentID string  `json:"parentId,omitempty"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// geometryRecord is the per-node projection feeding GeometryHash.
type geometryRecord struct {
	ID       string  `json:"id"`
	ParentID string  `json:"parentId,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// geometryEdge is the per-edge projection feeding GeometryHash. Edge type
// matters because straight and step edges route differently.
type geometryEdge struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// geometryProjection bundles the inputs that determine route plans.
type geometryProjection struct {
	Nodes []geometryRecord `json:"nodes"`
	Edges []geometryEdge   `json:"edges"`
}

// StructureHash returns the content hash of everything a layout engine reads:
// node ids, parent links and node sizes. Positions, titles and styling are
// deliberately excluded, so moving or recoloring nodes does not invalidate
// cached layouts.
func StructureHash(d diagram.Data) string {
	records := make([]structureRecord, len(d.Nodes))
	for i, n := range d.Nodes {
		records[i] = structureRecord{
			ID:       n.ID,
			ParentID: n.ParentID,
			Width:    n.Width,
			Height:   n.Height,
		}
	}
	data, _ := json.Marshal(records)
	return cache.Hash(data)
}

// GeometryHash returns the content hash of everything the router reads: node
// rectangles (position plus size), parent links and per-edge rendering types.
// Any node move invalidates cached routes; styling changes do not.
func GeometryHash(d diagram.Data) string {
	proj := geometryProjection{
		Nodes: make([]geometryRecord, len(d.Nodes)),
		Edges: make([]geometryEdge, len(d.Edges)),
	}
	for i, n := range d.Nodes {
		proj.Nodes[i] = geometryRecord{
			ID:       n.ID,
			ParentID: n.ParentID,
			X:        n.Position.X,
			Y:        n.Position.Y,
			Width:    n.Width,
			Height:   n.Height,
		}
	}
	for i, e := range d.Edges {
		proj.Edges[i] = geometryEdge{ID: e.ID, Type: string(e.Type)}
	}
	data, _ := json.Marshal(proj)
	return cache.Hash(data)
}
