package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/treeline-io/treeline/pkg/codec"
	"github.com/treeline-io/treeline/pkg/diagram"
	"github.com/treeline-io/treeline/pkg/route"
)

// runCLI executes one command the way main does: a fresh CLI per
// invocation, so anything that must survive between commands has to go
// through the session store.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

// newDiagramFile isolates state and cache directories in a temp dir and
// returns the path for a fresh diagram file.
func newDiagramFile(t *testing.T) string {
	t.Helper()

	tmp := t.TempDir()
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmp, "state"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmp, "cache"))
	return filepath.Join(tmp, "team.json")
}

func loadDiagram(t *testing.T, path string) diagram.Data {
	t.Helper()

	d, err := codec.Import(path)
	if err != nil {
		t.Fatalf("codec.Import(%q): %v", path, err)
	}
	return d
}

func TestNewCommand(t *testing.T) {
	file := newDiagramFile(t)

	if err := runCLI(t, "new", "--file", file, "--name", "Acme Org", "--root", "CEO"); err != nil {
		t.Fatalf("new: %v", err)
	}

	d := loadDiagram(t, file)
	if d.Settings.Name != "Acme Org" {
		t.Errorf("Settings.Name = %q, want %q", d.Settings.Name, "Acme Org")
	}
	if len(d.Nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(d.Nodes))
	}
	if d.Nodes[0].Title != "CEO" {
		t.Errorf("root title = %q, want %q", d.Nodes[0].Title, "CEO")
	}

	// A second new without --force must refuse to clobber the file.
	if err := runCLI(t, "new", "--file", file); err == nil {
		t.Error("new on an existing file should error without --force")
	}
	if err := runCLI(t, "new", "--file", file, "--force"); err != nil {
		t.Errorf("new --force: %v", err)
	}
	if d := loadDiagram(t, file); len(d.Nodes) != 0 {
		t.Errorf("after new --force got %d nodes, want 0", len(d.Nodes))
	}
}

func TestNewCommandDerivesName(t *testing.T) {
	file := newDiagramFile(t)

	if err := runCLI(t, "new", "--file", file); err != nil {
		t.Fatalf("new: %v", err)
	}

	if d := loadDiagram(t, file); d.Settings.Name != "team" {
		t.Errorf("Settings.Name = %q, want %q", d.Settings.Name, "team")
	}
}

func TestEditingFlow(t *testing.T) {
	file := newDiagramFile(t)

	if err := runCLI(t, "new", "--file", file); err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := runCLI(t, "add", "root", "--file", file); err != nil {
		t.Fatalf("add root: %v", err)
	}

	d := loadDiagram(t, file)
	if len(d.Nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(d.Nodes))
	}
	rootID := d.Nodes[0].ID

	if err := runCLI(t, "add", "child", rootID, "--file", file); err != nil {
		t.Fatalf("add child: %v", err)
	}

	d = loadDiagram(t, file)
	if len(d.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(d.Nodes))
	}
	if len(d.Edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(d.Edges))
	}
	childID := d.Nodes[1].ID
	if d.Nodes[1].ParentID != rootID {
		t.Errorf("child ParentID = %q, want %q", d.Nodes[1].ParentID, rootID)
	}

	if err := runCLI(t, "set", childID, "--file", file, "--title", "Engineering", "--badge", "12"); err != nil {
		t.Fatalf("set: %v", err)
	}

	d = loadDiagram(t, file)
	if d.Nodes[1].Title != "Engineering" {
		t.Errorf("title = %q, want %q", d.Nodes[1].Title, "Engineering")
	}
	if d.Nodes[1].Badge != "12" {
		t.Errorf("badge = %q, want %q", d.Nodes[1].Badge, "12")
	}
}

func TestUndoRedoAcrossInvocations(t *testing.T) {
	file := newDiagramFile(t)

	if err := runCLI(t, "new", "--file", file); err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := runCLI(t, "add", "root", "--file", file); err != nil {
		t.Fatalf("add root: %v", err)
	}
	rootID := loadDiagram(t, file).Nodes[0].ID
	if err := runCLI(t, "add", "child", rootID, "--file", file); err != nil {
		t.Fatalf("add child: %v", err)
	}

	// Undo in a separate invocation: the child disappears again.
	if err := runCLI(t, "undo", "--file", file); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if d := loadDiagram(t, file); len(d.Nodes) != 1 {
		t.Errorf("after undo got %d nodes, want 1", len(d.Nodes))
	}

	// Redo restores it.
	if err := runCLI(t, "redo", "--file", file); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if d := loadDiagram(t, file); len(d.Nodes) != 2 {
		t.Errorf("after redo got %d nodes, want 2", len(d.Nodes))
	}

	// Multi-step undo walks back to the empty diagram.
	if err := runCLI(t, "undo", "--steps", "2", "--file", file); err != nil {
		t.Fatalf("undo --steps 2: %v", err)
	}
	if d := loadDiagram(t, file); len(d.Nodes) != 0 {
		t.Errorf("after undo --steps 2 got %d nodes, want 0", len(d.Nodes))
	}

	// Undo past the beginning is not an error, just a no-op.
	if err := runCLI(t, "undo", "--file", file); err != nil {
		t.Fatalf("undo at start: %v", err)
	}
}

func TestDeleteCommandCascades(t *testing.T) {
	file := newDiagramFile(t)

	if err := runCLI(t, "new", "--file", file); err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := runCLI(t, "add", "root", "--file", file); err != nil {
		t.Fatalf("add root: %v", err)
	}
	rootID := loadDiagram(t, file).Nodes[0].ID
	if err := runCLI(t, "add", "child", rootID, "--file", file); err != nil {
		t.Fatalf("add child: %v", err)
	}

	// Deleting the root removes its descendant too.
	if err := runCLI(t, "delete", rootID, "--file", file); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if d := loadDiagram(t, file); len(d.Nodes) != 0 {
		t.Errorf("after delete got %d nodes, want 0", len(d.Nodes))
	}

	// Deleting a missing node reports the id.
	err := runCLI(t, "delete", "ghost", "--file", file)
	if err == nil {
		t.Fatal("delete of unknown id should error")
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error %q should name the id", err)
	}
}

func TestDetachCommand(t *testing.T) {
	file := newDiagramFile(t)

	if err := runCLI(t, "new", "--file", file); err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := runCLI(t, "add", "root", "--file", file); err != nil {
		t.Fatalf("add root: %v", err)
	}
	rootID := loadDiagram(t, file).Nodes[0].ID
	if err := runCLI(t, "add", "child", rootID, "--file", file); err != nil {
		t.Fatalf("add child: %v", err)
	}

	d := loadDiagram(t, file)
	edgeID := d.Edges[0].ID
	childID := d.Nodes[1].ID

	if err := runCLI(t, "detach", edgeID, "--file", file); err != nil {
		t.Fatalf("detach: %v", err)
	}

	d = loadDiagram(t, file)
	if len(d.Edges) != 0 {
		t.Errorf("after detach got %d edges, want 0", len(d.Edges))
	}
	for _, n := range d.Nodes {
		if n.ID == childID && n.ParentID != "" {
			t.Errorf("detached child ParentID = %q, want empty", n.ParentID)
		}
	}

	if err := runCLI(t, "detach", "edge-a-b", "--file", file); err == nil {
		t.Error("detach of unknown edge should error")
	}
}

func TestMoveCommand(t *testing.T) {
	file := newDiagramFile(t)

	if err := runCLI(t, "new", "--file", file, "--root", "CEO"); err != nil {
		t.Fatalf("new: %v", err)
	}
	rootID := loadDiagram(t, file).Nodes[0].ID

	if err := runCLI(t, "move", rootID, "120", "-45.5", "--file", file); err != nil {
		t.Fatalf("move: %v", err)
	}

	d := loadDiagram(t, file)
	if d.Nodes[0].Position.X != 120 || d.Nodes[0].Position.Y != -45.5 {
		t.Errorf("position = (%g, %g), want (120, -45.5)", d.Nodes[0].Position.X, d.Nodes[0].Position.Y)
	}

	if err := runCLI(t, "move", rootID, "abc", "0", "--file", file); err == nil {
		t.Error("move with a bad coordinate should error")
	}
}

func TestSelectCommand(t *testing.T) {
	file := newDiagramFile(t)

	if err := runCLI(t, "new", "--file", file, "--root", "CEO"); err != nil {
		t.Fatalf("new: %v", err)
	}
	rootID := loadDiagram(t, file).Nodes[0].ID

	if err := runCLI(t, "select", rootID, "--file", file); err != nil {
		t.Fatalf("select: %v", err)
	}
	// Bare select prints the current selection.
	if err := runCLI(t, "select", "--file", file); err != nil {
		t.Fatalf("select (show): %v", err)
	}
	if err := runCLI(t, "select", "--clear", "--file", file); err != nil {
		t.Fatalf("select --clear: %v", err)
	}
}

func TestLayoutCommand(t *testing.T) {
	file := newDiagramFile(t)

	if err := runCLI(t, "new", "--file", file); err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := runCLI(t, "add", "root", "--file", file); err != nil {
		t.Fatalf("add root: %v", err)
	}
	rootID := loadDiagram(t, file).Nodes[0].ID
	for i := 0; i < 3; i++ {
		if err := runCLI(t, "add", "child", rootID, "--file", file); err != nil {
			t.Fatalf("add child: %v", err)
		}
	}

	if err := runCLI(t, "layout", "--file", file); err != nil {
		t.Fatalf("layout: %v", err)
	}

	// Top-to-bottom layout puts every child strictly below the root.
	d := loadDiagram(t, file)
	var rootY float64
	for _, n := range d.Nodes {
		if n.ID == rootID {
			rootY = n.Position.Y
		}
	}
	for _, n := range d.Nodes {
		if n.ID != rootID && n.Position.Y <= rootY {
			t.Errorf("child %s at y=%g, want below root y=%g", n.ID, n.Position.Y, rootY)
		}
	}

	// Layout is undoable like any other mutation.
	if err := runCLI(t, "undo", "--file", file); err != nil {
		t.Fatalf("undo: %v", err)
	}
}

func TestLayoutCommandEmptyDiagram(t *testing.T) {
	file := newDiagramFile(t)

	if err := runCLI(t, "new", "--file", file); err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := runCLI(t, "layout", "--file", file); err != nil {
		t.Fatalf("layout on empty diagram: %v", err)
	}
}

func TestRouteCommand(t *testing.T) {
	file := newDiagramFile(t)

	if err := runCLI(t, "new", "--file", file); err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := runCLI(t, "add", "root", "--file", file); err != nil {
		t.Fatalf("add root: %v", err)
	}
	rootID := loadDiagram(t, file).Nodes[0].ID
	if err := runCLI(t, "add", "child", rootID, "--file", file); err != nil {
		t.Fatalf("add child: %v", err)
	}
	if err := runCLI(t, "layout", "--file", file); err != nil {
		t.Fatalf("layout: %v", err)
	}

	if err := runCLI(t, "route", "--file", file); err != nil {
		t.Fatalf("route: %v", err)
	}

	routesPath := strings.TrimSuffix(file, filepath.Ext(file)) + ".routes.json"
	raw, err := os.ReadFile(routesPath)
	if err != nil {
		t.Fatalf("reading %q: %v", routesPath, err)
	}

	var routes []route.EdgeRoute
	if err := json.Unmarshal(raw, &routes); err != nil {
		t.Fatalf("decoding routes: %v", err)
	}
	if len(routes) != 1 {
		t.Fatalf("got %d routes, want 1", len(routes))
	}
	if len(routes[0].Path.Points) < 2 {
		t.Errorf("route has %d points, want at least 2", len(routes[0].Path.Points))
	}

	// Routing never mutates the diagram, so there is nothing to undo.
	d := loadDiagram(t, file)
	if len(d.Nodes) != 2 {
		t.Errorf("route changed the diagram: got %d nodes, want 2", len(d.Nodes))
	}
}

func TestInspectCommand(t *testing.T) {
	file := newDiagramFile(t)

	if err := runCLI(t, "new", "--file", file, "--root", "CEO"); err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := runCLI(t, "inspect", "--file", file); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if err := runCLI(t, "inspect", "--edges", "--file", file); err != nil {
		t.Fatalf("inspect --edges: %v", err)
	}
}

func TestResetFlag(t *testing.T) {
	file := newDiagramFile(t)

	if err := runCLI(t, "new", "--file", file, "--root", "CEO"); err != nil {
		t.Fatalf("new: %v", err)
	}
	rootID := loadDiagram(t, file).Nodes[0].ID
	if err := runCLI(t, "add", "child", rootID, "--file", file); err != nil {
		t.Fatalf("add child: %v", err)
	}

	// --reset discards the session including its history, so undo becomes
	// a no-op while the diagram content survives via the file.
	if err := runCLI(t, "undo", "--reset", "--file", file); err != nil {
		t.Fatalf("undo --reset: %v", err)
	}
	if d := loadDiagram(t, file); len(d.Nodes) != 2 {
		t.Errorf("after reset got %d nodes, want 2", len(d.Nodes))
	}
}
