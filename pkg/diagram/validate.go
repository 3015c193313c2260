package diagram

import (
	"github.com/treeline-io/treeline/pkg/errors"
)

// Validate checks the structural invariants of persisted diagram data:
//
//   - the schema version is supported
//   - node ids are well formed and unique
//   - every non-empty ParentID references an existing node
//   - the parent links form a forest (no node is its own ancestor)
//   - node sizes are positive
//
// The stored edge list is not checked: it is a denormalized cache and is
// recomputed from the parent links whenever data is loaded.
//
// Returns an INVALID_DIAGRAM error describing the first violation found,
// or nil if the data is structurally sound.
func Validate(d Data) error {
	if d.SchemaVersion != SchemaVersion {
		return errors.New(errors.ErrCodeInvalidDiagram,
			"unsupported schema version %d (want %d)", d.SchemaVersion, SchemaVersion)
	}

	byID := make(map[string]*Node, len(d.Nodes))
	for i := range d.Nodes {
		n := &d.Nodes[i]
		if err := errors.ValidateNodeID(n.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDiagram, err, "node %d", i)
		}
		if _, dup := byID[n.ID]; dup {
			return errors.New(errors.ErrCodeInvalidDiagram, "duplicate node id: %s", n.ID)
		}
		byID[n.ID] = n
	}

	for i := range d.Nodes {
		n := &d.Nodes[i]
		if n.ParentID != "" {
			if _, ok := byID[n.ParentID]; !ok {
				return errors.New(errors.ErrCodeInvalidDiagram,
					"node %s references missing parent %s", n.ID, n.ParentID)
			}
		}
		if n.Width <= 0 || n.Height <= 0 {
			return errors.New(errors.ErrCodeInvalidDiagram,
				"node %s has non-positive size %gx%g", n.ID, n.Width, n.Height)
		}
	}

	// Forest check: following parent links from any node must terminate at a
	// root without revisiting the starting node.
	for i := range d.Nodes {
		start := d.Nodes[i].ID
		cur := d.Nodes[i].ParentID
		for steps := 0; cur != ""; steps++ {
			if cur == start {
				return errors.New(errors.ErrCodeInvalidDiagram,
					"cycle detected through node %s", start)
			}
			if steps > len(d.Nodes) {
				return errors.New(errors.ErrCodeInvalidDiagram,
					"parent chain from node %s does not terminate", start)
			}
			parent, ok := byID[cur]
			if !ok {
				break
			}
			cur = parent.ParentID
		}
	}

	if err := errors.ValidateDiagramName(d.Settings.Name); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDiagram, err, "settings")
	}

	return nil
}
