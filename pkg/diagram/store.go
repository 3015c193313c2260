package diagram

import (
	"time"

	"github.com/google/uuid"

	"github.com/treeline-io/treeline/pkg/errors"
	"github.com/treeline-io/treeline/pkg/geo"
)

// =============================================================================
// Options
// =============================================================================

// Options configures a Store.
type Options struct {
	// Node geometry bounds. Widths and heights written through any operation
	// are clamped into [MinNodeWidth, MaxNodeWidth] and
	// [MinNodeHeight, MaxNodeHeight].
	MinNodeWidth  float64
	MaxNodeWidth  float64
	MinNodeHeight float64
	MaxNodeHeight float64

	// DefaultNodeWidth and DefaultNodeHeight size newly created nodes.
	DefaultNodeWidth  float64
	DefaultNodeHeight float64

	// ChildGapY and SiblingGapX space the provisional position of a new node
	// relative to its structural neighbor, pending auto-layout.
	ChildGapY   float64
	SiblingGapX float64

	// HistoryLimit caps the undo history. Zero means DefaultHistoryLimit.
	HistoryLimit int

	// Edges selects the rendering type and style stamped onto derived edges.
	Edges EdgeOptions

	// NewID generates node ids. Nil means random UUIDs.
	NewID func() string

	// Now supplies timestamps for diagram settings. Nil means time.Now.
	Now func() time.Time
}

// ValidateAndSetDefaults fills zero fields with defaults and validates the
// result. Returns an INVALID_CONFIG error when bounds are inconsistent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.MinNodeWidth == 0 {
		o.MinNodeWidth = 60
	}
	if o.MaxNodeWidth == 0 {
		o.MaxNodeWidth = 480
	}
	if o.MinNodeHeight == 0 {
		o.MinNodeHeight = 40
	}
	if o.MaxNodeHeight == 0 {
		o.MaxNodeHeight = 320
	}
	if o.DefaultNodeWidth == 0 {
		o.DefaultNodeWidth = 160
	}
	if o.DefaultNodeHeight == 0 {
		o.DefaultNodeHeight = 80
	}
	if o.ChildGapY == 0 {
		o.ChildGapY = 60
	}
	if o.SiblingGapX == 0 {
		o.SiblingGapX = 40
	}
	if o.HistoryLimit == 0 {
		o.HistoryLimit = DefaultHistoryLimit
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Now == nil {
		o.Now = time.Now
	}

	if o.MinNodeWidth <= 0 || o.MinNodeHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "minimum node size must be positive")
	}
	if o.MaxNodeWidth < o.MinNodeWidth || o.MaxNodeHeight < o.MinNodeHeight {
		return errors.New(errors.ErrCodeInvalidConfig, "maximum node size below minimum")
	}
	if o.HistoryLimit < 2 {
		return errors.New(errors.ErrCodeInvalidConfig, "history limit must be at least 2")
	}
	return nil
}

// DefaultTitle is the title stamped onto newly created nodes.
const DefaultTitle = "Untitled"

// =============================================================================
// Store
// =============================================================================

// Store owns the authoritative diagram state: the node list, the derived
// edge list, the selection, and a bounded undo history.
//
// Every public operation is a single atomic state transition. Operations
// that reference unknown node or edge ids are silent no-ops; nothing in the
// store panics or returns an error for an invalid reference. The only
// invariant actively enforced at mutation time is that the edge list is a
// pure function of the node list, recomputed after every structural change.
//
// The store is not safe for concurrent mutation. All operations are expected
// to run on a single goroutine; read-only collaborators receive deep copies.
//
// The zero value is not usable - use New.
type Store struct {
	opts Options
	data Data

	history *History

	selectedNodes []string
	selectedEdges []string
}

// New creates an empty diagram store with the given display name.
// Returns an INVALID_CONFIG error when the options are inconsistent.
func New(name string, opts Options) (*Store, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := errors.ValidateDiagramName(name); err != nil {
		return nil, err
	}

	now := opts.Now()
	s := &Store{
		opts: opts,
		data: Data{
			SchemaVersion: SchemaVersion,
			Nodes:         []Node{},
			Edges:         []Edge{},
			Settings: Settings{
				Name:      name,
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
		history: NewHistory(opts.HistoryLimit),
	}
	s.history.Push(s.snapshot())
	return s, nil
}

// =============================================================================
// Node Creation
// =============================================================================

// AddRoot creates a new top-level node with default styling, selects it and
// returns its id. New roots are placed to the right of existing roots.
func (s *Store) AddRoot() string {
	n := s.newNode(nil)

	roots := 0
	for i := range s.data.Nodes {
		if s.data.Nodes[i].IsRoot() {
			roots++
		}
	}
	n.Position = geo.Point{X: float64(roots) * (n.Width + s.opts.SiblingGapX), Y: 0}

	s.data.Nodes = append(s.data.Nodes, n)
	s.commit()
	s.setNodeSelection([]string{n.ID})
	return n.ID
}

// AddChild creates a new node under parentID, selects it and returns its id.
// The child inherits the parent's style and box style and is provisionally
// placed below the parent, pending auto-layout. Returns "" without changing
// anything when parentID does not exist.
func (s *Store) AddChild(parentID string) string {
	parent, ok := s.data.NodeByID(parentID)
	if !ok {
		return ""
	}

	n := s.newNode(parent)
	n.ParentID = parentID

	siblings := 0
	for i := range s.data.Nodes {
		if s.data.Nodes[i].ParentID == parentID {
			siblings++
		}
	}
	n.Position = geo.Point{
		X: parent.Position.X + float64(siblings)*(n.Width+s.opts.SiblingGapX),
		Y: parent.Position.Y + parent.Height + s.opts.ChildGapY,
	}

	s.data.Nodes = append(s.data.Nodes, n)
	s.commit()
	s.setNodeSelection([]string{n.ID})
	return n.ID
}

// AddSibling creates a new node sharing siblingID's parent, selects it and
// returns its id. The new node inherits the sibling's style and box style
// and is provisionally placed to its right. Returns "" without changing
// anything when siblingID does not exist. A sibling of a root is a new root.
func (s *Store) AddSibling(siblingID string) string {
	sib, ok := s.data.NodeByID(siblingID)
	if !ok {
		return ""
	}

	n := s.newNode(sib)
	n.ParentID = sib.ParentID
	n.Position = geo.Point{
		X: sib.Position.X + sib.Width + s.opts.SiblingGapX,
		Y: sib.Position.Y,
	}

	s.data.Nodes = append(s.data.Nodes, n)
	s.commit()
	s.setNodeSelection([]string{n.ID})
	return n.ID
}

// newNode builds a fresh node, inheriting colors and box decoration from the
// given neighbor when present.
func (s *Store) newNode(inherit *Node) Node {
	n := Node{
		ID:     s.opts.NewID(),
		Title:  DefaultTitle,
		Style:  DefaultStyle(),
		Width:  s.clampWidth(s.opts.DefaultNodeWidth),
		Height: s.clampHeight(s.opts.DefaultNodeHeight),
	}
	if inherit != nil {
		n.Style = inherit.Style
		if inherit.BoxStyle != nil {
			bs := *inherit.BoxStyle
			n.BoxStyle = &bs
		}
	}
	return n
}

// =============================================================================
// Updates
// =============================================================================

// Patch is a partial node update. Nil fields are left untouched; non-nil
// fields replace the node's corresponding attribute wholesale (shallow
// merge). Style groups are replaced as units, not merged field by field.
type Patch struct {
	ParentID    *string
	Title       *string
	Subtitle    *string
	Badge       *string
	BadgeConfig *BadgeConfig
	Style       *Style
	TextStyle   *TextStyle
	BoxStyle    *BoxStyle
	Width       *float64
	Height      *float64
	Position    *geo.Point
}

// Update shallow-merges the patch into the node with the given id.
// Unknown ids are silent no-ops. A ParentID change that would break the
// forest invariant (unknown parent, self-parent, or a cycle) is skipped
// while the rest of the patch still applies.
func (s *Store) Update(id string, patch Patch) {
	s.UpdateMany([]string{id}, patch)
}

// UpdateMany applies one patch to every node in ids, skipping unknown ids.
// All changes commit as a single atomic transition with one history entry.
func (s *Store) UpdateMany(ids []string, patch Patch) {
	changed := false
	for _, id := range ids {
		n, ok := s.data.NodeByID(id)
		if !ok {
			continue
		}
		if s.applyPatch(n, patch) {
			changed = true
		}
	}
	if changed {
		s.commit()
	}
}

// applyPatch merges patch into n, reporting whether anything changed.
func (s *Store) applyPatch(n *Node, p Patch) bool {
	changed := false

	if p.ParentID != nil && *p.ParentID != n.ParentID && s.validParent(n.ID, *p.ParentID) {
		n.ParentID = *p.ParentID
		changed = true
	}
	if p.Title != nil && *p.Title != n.Title {
		n.Title = *p.Title
		changed = true
	}
	if p.Subtitle != nil && *p.Subtitle != n.Subtitle {
		n.Subtitle = *p.Subtitle
		changed = true
	}
	if p.Badge != nil && *p.Badge != n.Badge {
		n.Badge = *p.Badge
		changed = true
	}
	if p.BadgeConfig != nil && (n.BadgeConfig == nil || *n.BadgeConfig != *p.BadgeConfig) {
		bc := *p.BadgeConfig
		n.BadgeConfig = &bc
		changed = true
	}
	if p.Style != nil && *p.Style != n.Style {
		n.Style = *p.Style
		changed = true
	}
	if p.TextStyle != nil && (n.TextStyle == nil || *n.TextStyle != *p.TextStyle) {
		ts := *p.TextStyle
		n.TextStyle = &ts
		changed = true
	}
	if p.BoxStyle != nil {
		bs := p.BoxStyle.Normalize()
		if n.BoxStyle == nil || *n.BoxStyle != bs {
			n.BoxStyle = &bs
			changed = true
		}
	}
	if p.Width != nil {
		if w := s.clampWidth(*p.Width); w != n.Width {
			n.Width = w
			changed = true
		}
	}
	if p.Height != nil {
		if h := s.clampHeight(*p.Height); h != n.Height {
			n.Height = h
			changed = true
		}
	}
	if p.Position != nil && *p.Position != n.Position {
		n.Position = *p.Position
		changed = true
	}

	return changed
}

// validParent reports whether reparenting nodeID under parentID keeps the
// forest invariant. An empty parentID (detach to root) is always valid.
func (s *Store) validParent(nodeID, parentID string) bool {
	if parentID == "" {
		return true
	}
	if parentID == nodeID {
		return false
	}
	if _, ok := s.data.NodeByID(parentID); !ok {
		return false
	}
	// Walk up from the proposed parent; hitting nodeID means a cycle.
	cur := parentID
	for steps := 0; cur != "" && steps <= len(s.data.Nodes); steps++ {
		if cur == nodeID {
			return false
		}
		p, ok := s.data.NodeByID(cur)
		if !ok {
			break
		}
		cur = p.ParentID
	}
	return true
}

// =============================================================================
// Deletion
// =============================================================================

// Delete removes the node with the given id together with its full
// descendant subtree. Unknown ids are silent no-ops.
func (s *Store) Delete(id string) {
	s.DeleteMany([]string{id})
}

// DeleteMany removes every listed node and all of their descendants in one
// atomic transition. Unknown ids are skipped. Selection entries pointing at
// removed nodes are cleared.
func (s *Store) DeleteMany(ids []string) {
	doomed := s.descendantClosure(ids)
	if len(doomed) == 0 {
		return
	}

	kept := s.data.Nodes[:0]
	for _, n := range s.data.Nodes {
		if _, gone := doomed[n.ID]; !gone {
			kept = append(kept, n)
		}
	}
	s.data.Nodes = kept
	s.commit()
}

// descendantClosure collects each valid id plus every node reachable from it
// via child links, using a depth-first walk over the parent-link index.
func (s *Store) descendantClosure(ids []string) map[string]struct{} {
	children := make(map[string][]string, len(s.data.Nodes))
	for i := range s.data.Nodes {
		n := &s.data.Nodes[i]
		if n.ParentID != "" {
			children[n.ParentID] = append(children[n.ParentID], n.ID)
		}
	}

	closure := make(map[string]struct{})
	var stack []string
	for _, id := range ids {
		if _, ok := s.data.NodeByID(id); ok {
			stack = append(stack, id)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := closure[id]; seen {
			continue
		}
		closure[id] = struct{}{}
		stack = append(stack, children[id]...)
	}
	return closure
}

// Detach clears the ParentID of the given edge's target node, promoting it
// to a root. The node itself is kept. Unknown edge ids are silent no-ops.
func (s *Store) Detach(edgeID string) {
	e, ok := s.data.EdgeByID(edgeID)
	if !ok {
		return
	}
	n, ok := s.data.NodeByID(e.Target)
	if !ok {
		return
	}
	n.ParentID = ""
	s.commit()
}

// =============================================================================
// Positions
// =============================================================================

// PositionUpdate is one absolute position write.
type PositionUpdate struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// SetPositions applies absolute positions in bulk and commits one history
// entry for the whole batch. Used by the layout adapter and at the end of a
// drag gesture. Unknown ids are skipped.
func (s *Store) SetPositions(moves []PositionUpdate) {
	if !s.applyPositions(moves) {
		return
	}
	s.commit()
}

// PreviewPositions applies absolute positions without recording history.
// Used for live drag frames; callers finish the gesture with SetPositions
// so the whole drag undoes as one step.
func (s *Store) PreviewPositions(moves []PositionUpdate) {
	s.applyPositions(moves)
}

func (s *Store) applyPositions(moves []PositionUpdate) bool {
	changed := false
	for _, m := range moves {
		n, ok := s.data.NodeByID(m.ID)
		if !ok {
			continue
		}
		p := geo.Point{X: m.X, Y: m.Y}
		if n.Position != p {
			n.Position = p
			changed = true
		}
	}
	return changed
}

// =============================================================================
// Undo / Redo
// =============================================================================

// Undo restores the previous history snapshot. Returns false when there is
// nothing to undo. Selection entries invalidated by the restored state are
// pruned; the selection itself is not versioned.
func (s *Store) Undo() bool {
	snap, ok := s.history.Undo()
	if !ok {
		return false
	}
	s.restoreSnapshot(snap)
	return true
}

// Redo reapplies the next history snapshot. Returns false when there is
// nothing to redo.
func (s *Store) Redo() bool {
	snap, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.restoreSnapshot(snap)
	return true
}

// CanUndo reports whether Undo would change state.
func (s *Store) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether Redo would change state.
func (s *Store) CanRedo() bool { return s.history.CanRedo() }

// HistoryLen returns the number of retained history snapshots.
func (s *Store) HistoryLen() int { return s.history.Len() }

// HistoryCursor returns the index of the current history snapshot.
func (s *Store) HistoryCursor() int { return s.history.Cursor() }

func (s *Store) restoreSnapshot(snap Snapshot) {
	s.data.Nodes = snap.Nodes
	s.data.Edges = snap.Edges
	s.data.Settings.UpdatedAt = s.opts.Now()
	s.pruneSelection()
}

// =============================================================================
// Selection
// =============================================================================

// Select makes the given node the only selected element. Unknown ids are
// silent no-ops.
func (s *Store) Select(id string) {
	if _, ok := s.data.NodeByID(id); !ok {
		return
	}
	s.setNodeSelection([]string{id})
}

// SetSelection replaces the node selection with the known ids from the
// given list, preserving order and dropping duplicates. Selecting nodes
// clears any edge selection.
func (s *Store) SetSelection(ids []string) {
	seen := make(map[string]struct{}, len(ids))
	sel := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		if _, ok := s.data.NodeByID(id); !ok {
			continue
		}
		seen[id] = struct{}{}
		sel = append(sel, id)
	}
	s.setNodeSelection(sel)
}

// Toggle adds the node to the selection if absent, removes it if present.
// Unknown ids are silent no-ops. Toggling a node clears any edge selection.
func (s *Store) Toggle(id string) {
	if _, ok := s.data.NodeByID(id); !ok {
		return
	}
	for i, sel := range s.selectedNodes {
		if sel == id {
			s.selectedNodes = append(s.selectedNodes[:i], s.selectedNodes[i+1:]...)
			return
		}
	}
	s.selectedNodes = append(s.selectedNodes, id)
	s.selectedEdges = nil
}

// SelectEdge makes the given edge the only selected element. Selecting an
// edge clears any node selection. Unknown edge ids are silent no-ops.
func (s *Store) SelectEdge(edgeID string) {
	if _, ok := s.data.EdgeByID(edgeID); !ok {
		return
	}
	s.selectedEdges = []string{edgeID}
	s.selectedNodes = nil
}

// ToggleEdge adds the edge to the edge selection if absent, removes it if
// present. Unknown edge ids are silent no-ops.
func (s *Store) ToggleEdge(edgeID string) {
	if _, ok := s.data.EdgeByID(edgeID); !ok {
		return
	}
	for i, sel := range s.selectedEdges {
		if sel == edgeID {
			s.selectedEdges = append(s.selectedEdges[:i], s.selectedEdges[i+1:]...)
			return
		}
	}
	s.selectedEdges = append(s.selectedEdges, edgeID)
	s.selectedNodes = nil
}

// ClearSelection empties both the node and edge selections.
func (s *Store) ClearSelection() {
	s.selectedNodes = nil
	s.selectedEdges = nil
}

// Selection returns the selected node ids in selection order.
func (s *Store) Selection() []string {
	out := make([]string, len(s.selectedNodes))
	copy(out, s.selectedNodes)
	return out
}

// SelectedEdges returns the selected edge ids in selection order.
func (s *Store) SelectedEdges() []string {
	out := make([]string, len(s.selectedEdges))
	copy(out, s.selectedEdges)
	return out
}

func (s *Store) setNodeSelection(ids []string) {
	s.selectedNodes = ids
	s.selectedEdges = nil
}

// pruneSelection drops selection entries whose target no longer exists.
func (s *Store) pruneSelection() {
	if len(s.selectedNodes) > 0 {
		kept := s.selectedNodes[:0]
		for _, id := range s.selectedNodes {
			if _, ok := s.data.NodeByID(id); ok {
				kept = append(kept, id)
			}
		}
		s.selectedNodes = kept
	}
	if len(s.selectedEdges) > 0 {
		kept := s.selectedEdges[:0]
		for _, id := range s.selectedEdges {
			if _, ok := s.data.EdgeByID(id); ok {
				kept = append(kept, id)
			}
		}
		s.selectedEdges = kept
	}
}

// =============================================================================
// Read Accessors
// =============================================================================

// Nodes returns a deep copy of the node list.
func (s *Store) Nodes() []Node { return CloneNodes(s.data.Nodes) }

// Edges returns a copy of the derived edge list.
func (s *Store) Edges() []Edge { return CloneEdges(s.data.Edges) }

// Node returns a copy of the node with the given id.
func (s *Store) Node(id string) (Node, bool) {
	n, ok := s.data.NodeByID(id)
	if !ok {
		return Node{}, false
	}
	return n.Clone(), true
}

// Len returns the number of nodes.
func (s *Store) Len() int { return len(s.data.Nodes) }

// Name returns the diagram's display name.
func (s *Store) Name() string { return s.data.Settings.Name }

// SetName updates the diagram's display name. Settings are metadata, not
// diagram content, so the change is not undoable.
func (s *Store) SetName(name string) error {
	if err := errors.ValidateDiagramName(name); err != nil {
		return err
	}
	s.data.Settings.Name = name
	s.data.Settings.UpdatedAt = s.opts.Now()
	return nil
}

// Settings returns a copy of the diagram settings.
func (s *Store) Settings() Settings { return s.data.Settings }

// =============================================================================
// Persistence Boundary
// =============================================================================

// Save returns a deep snapshot of the diagram for persistence and export
// collaborators. Mutating the result does not affect the store.
func (s *Store) Save() Data {
	return s.data.Clone()
}

// Load validates d, replaces the full store state with it and resets the
// undo history. On validation failure the prior state is preserved and an
// INVALID_DIAGRAM error is returned.
//
// Sizes are clamped into the configured bounds and box styles are
// normalized on the way in; edges are re-derived from the parent links
// rather than trusted from the input.
func (s *Store) Load(d Data) error {
	if err := Validate(d); err != nil {
		return err
	}

	clean := d.Clone()
	for i := range clean.Nodes {
		n := &clean.Nodes[i]
		n.Width = s.clampWidth(n.Width)
		n.Height = s.clampHeight(n.Height)
		if n.BoxStyle != nil {
			bs := n.BoxStyle.Normalize()
			n.BoxStyle = &bs
		}
	}
	clean.Edges = DeriveEdges(clean.Nodes, s.opts.Edges)

	s.data = clean
	s.history = NewHistory(s.opts.HistoryLimit)
	s.history.Push(s.snapshot())
	s.ClearSelection()
	return nil
}

// =============================================================================
// Session State
// =============================================================================

// State is the complete serializable store state. Editing sessions persist
// it so undo history and selection survive across process runs.
type State struct {
	Data          Data       `json:"data"`
	Snapshots     []Snapshot `json:"snapshots"`
	Cursor        int        `json:"cursor"`
	SelectedNodes []string   `json:"selectedNodes,omitempty"`
	SelectedEdges []string   `json:"selectedEdges,omitempty"`
}

// ExportState returns a deep copy of the full store state.
func (s *Store) ExportState() State {
	return State{
		Data:          s.data.Clone(),
		Snapshots:     s.history.Snapshots(),
		Cursor:        s.history.Cursor(),
		SelectedNodes: s.Selection(),
		SelectedEdges: s.SelectedEdges(),
	}
}

// RestoreState validates and installs a previously exported state,
// including history and selection. On validation failure the prior state is
// preserved.
func (s *Store) RestoreState(st State) error {
	if err := Validate(st.Data); err != nil {
		return err
	}

	s.data = st.Data.Clone()
	s.data.Edges = DeriveEdges(s.data.Nodes, s.opts.Edges)

	s.history = NewHistory(s.opts.HistoryLimit)
	if len(st.Snapshots) > 0 {
		s.history.Restore(st.Snapshots, st.Cursor)
	} else {
		s.history.Push(s.snapshot())
	}

	s.selectedNodes = append([]string(nil), st.SelectedNodes...)
	s.selectedEdges = append([]string(nil), st.SelectedEdges...)
	s.pruneSelection()
	return nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

// commit finalizes a mutation: re-derive edges, stamp the update time,
// prune stale selection entries and record a history snapshot.
func (s *Store) commit() {
	s.data.Edges = DeriveEdges(s.data.Nodes, s.opts.Edges)
	s.data.Settings.UpdatedAt = s.opts.Now()
	s.pruneSelection()
	s.history.Push(s.snapshot())
}

func (s *Store) snapshot() Snapshot {
	return Snapshot{Nodes: s.data.Nodes, Edges: s.data.Edges}
}

func (s *Store) clampWidth(w float64) float64 {
	return clamp(w, s.opts.MinNodeWidth, s.opts.MaxNodeWidth)
}

func (s *Store) clampHeight(h float64) float64 {
	return clamp(h, s.opts.MinNodeHeight, s.opts.MaxNodeHeight)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
