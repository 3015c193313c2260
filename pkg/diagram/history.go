package diagram

// DefaultHistoryLimit caps the number of snapshots a history retains.
// The limit includes the initial state, so a fresh store can undo through
// the most recent DefaultHistoryLimit-1 edits.
const DefaultHistoryLimit = 50

// Snapshot is a deep, immutable copy of the node and edge state retained
// for undo/redo. Selection and diagram settings are deliberately excluded:
// undoing an edit must not move the user's selection or rewind metadata.
type Snapshot struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Nodes: CloneNodes(s.Nodes),
		Edges: CloneEdges(s.Edges),
	}
}

// History is a bounded linear undo history: a list of snapshots plus a
// cursor. Pushing after undoing truncates the redoable tail first, so the
// history never branches. When the list exceeds its limit the oldest
// snapshot is evicted.
//
// The zero value is not usable - use NewHistory.
type History struct {
	snapshots []Snapshot
	cursor    int
	limit     int
}

// NewHistory creates an empty history holding at most limit snapshots.
// A limit below 2 falls back to DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit < 2 {
		limit = DefaultHistoryLimit
	}
	return &History{
		snapshots: make([]Snapshot, 0, limit),
		cursor:    -1,
		limit:     limit,
	}
}

// Push records a new snapshot as the current state. Any redoable snapshots
// beyond the cursor are discarded first. The snapshot is cloned on the way
// in so later mutations by the caller cannot corrupt history.
func (h *History) Push(s Snapshot) {
	// Drop the redoable tail when pushing mid-history.
	if h.cursor < len(h.snapshots)-1 {
		h.snapshots = h.snapshots[:h.cursor+1]
	}

	h.snapshots = append(h.snapshots, s.Clone())
	h.cursor = len(h.snapshots) - 1

	// Evict the oldest snapshot beyond the cap. The cursor tracks the same
	// element at its shifted index.
	if len(h.snapshots) > h.limit {
		h.snapshots = h.snapshots[1:]
		h.cursor--
	}
}

// Undo moves the cursor one step back and returns a copy of that snapshot.
// Returns false when there is nothing to undo.
func (h *History) Undo() (Snapshot, bool) {
	if !h.CanUndo() {
		return Snapshot{}, false
	}
	h.cursor--
	return h.snapshots[h.cursor].Clone(), true
}

// Redo moves the cursor one step forward and returns a copy of that
// snapshot. Returns false when there is nothing to redo.
func (h *History) Redo() (Snapshot, bool) {
	if !h.CanRedo() {
		return Snapshot{}, false
	}
	h.cursor++
	return h.snapshots[h.cursor].Clone(), true
}

// CanUndo reports whether an earlier snapshot exists.
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo reports whether a later snapshot exists.
func (h *History) CanRedo() bool {
	return h.cursor >= 0 && h.cursor < len(h.snapshots)-1
}

// Len returns the number of retained snapshots.
func (h *History) Len() int {
	return len(h.snapshots)
}

// Cursor returns the index of the current snapshot, or -1 when empty.
func (h *History) Cursor() int {
	return h.cursor
}

// Snapshots returns a deep copy of the retained snapshots, oldest first.
// Used together with Cursor by editing sessions to persist history.
func (h *History) Snapshots() []Snapshot {
	out := make([]Snapshot, len(h.snapshots))
	for i, s := range h.snapshots {
		out[i] = s.Clone()
	}
	return out
}

// Restore replaces the history content, clamping the cursor into range and
// the snapshot list to the configured limit (keeping the newest entries).
func (h *History) Restore(snapshots []Snapshot, cursor int) {
	if len(snapshots) > h.limit {
		drop := len(snapshots) - h.limit
		snapshots = snapshots[drop:]
		cursor -= drop
	}
	h.snapshots = make([]Snapshot, len(snapshots))
	for i, s := range snapshots {
		h.snapshots[i] = s.Clone()
	}
	h.cursor = cursor
	if h.cursor >= len(h.snapshots) {
		h.cursor = len(h.snapshots) - 1
	}
	if h.cursor < 0 && len(h.snapshots) > 0 {
		h.cursor = 0
	}
	if len(h.snapshots) == 0 {
		h.cursor = -1
	}
}
