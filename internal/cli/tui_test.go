package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/treeline-io/treeline/pkg/diagram"
)

// keyMsg builds the tea.KeyMsg for a key name used by Update.
func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// pickerFixture builds a store with a root, two children, and a grandchild.
func pickerFixture(t *testing.T) *diagram.Store {
	t.Helper()

	store, err := diagram.New("picker test", diagram.Options{})
	if err != nil {
		t.Fatalf("diagram.New: %v", err)
	}
	root := store.AddRoot()
	store.Update(root, diagram.Patch{Title: strPtr("Root")})
	a := store.AddChild(root)
	store.Update(a, diagram.Patch{Title: strPtr("Alpha")})
	b := store.AddChild(root)
	store.Update(b, diagram.Patch{Title: strPtr("Beta")})
	leaf := store.AddChild(a)
	store.Update(leaf, diagram.Patch{Title: strPtr("Leaf")})
	return store
}

func strPtr(s string) *string { return &s }

func TestNodeRowsDepthFirst(t *testing.T) {
	store := pickerFixture(t)

	rows := nodeRows(store.Nodes())
	if len(rows) != 4 {
		t.Fatalf("nodeRows() returned %d rows, want 4", len(rows))
	}

	wantTitles := []string{"Root", "Alpha", "Leaf", "Beta"}
	wantDepths := []int{0, 1, 2, 1}
	for i, r := range rows {
		if r.node.Title != wantTitles[i] {
			t.Errorf("row %d title = %q, want %q", i, r.node.Title, wantTitles[i])
		}
		if r.depth != wantDepths[i] {
			t.Errorf("row %d depth = %d, want %d", i, r.depth, wantDepths[i])
		}
	}

	// Root has two children, Alpha one, the rest none.
	if rows[0].children != 2 {
		t.Errorf("root children = %d, want 2", rows[0].children)
	}
	if rows[1].children != 1 {
		t.Errorf("Alpha children = %d, want 1", rows[1].children)
	}
}

func TestNodePickerNavigation(t *testing.T) {
	store := pickerFixture(t)
	m := NewNodePickerModel("Pick a node", store)

	if m.Cursor != 0 {
		t.Fatalf("initial cursor = %d, want 0", m.Cursor)
	}

	// Moving up at the top stays put.
	next, _ := m.Update(keyMsg("up"))
	m = next.(NodePickerModel)
	if m.Cursor != 0 {
		t.Errorf("cursor after up at top = %d, want 0", m.Cursor)
	}

	// j and down both move the cursor.
	next, _ = m.Update(keyMsg("j"))
	m = next.(NodePickerModel)
	next, _ = m.Update(keyMsg("down"))
	m = next.(NodePickerModel)
	if m.Cursor != 2 {
		t.Errorf("cursor after two downs = %d, want 2", m.Cursor)
	}

	// k moves back up.
	next, _ = m.Update(keyMsg("k"))
	m = next.(NodePickerModel)
	if m.Cursor != 1 {
		t.Errorf("cursor after k = %d, want 1", m.Cursor)
	}

	// Moving past the last row stays put.
	for i := 0; i < 10; i++ {
		next, _ = m.Update(keyMsg("down"))
		m = next.(NodePickerModel)
	}
	if m.Cursor != len(m.Rows)-1 {
		t.Errorf("cursor after many downs = %d, want %d", m.Cursor, len(m.Rows)-1)
	}
}

func TestNodePickerSelect(t *testing.T) {
	store := pickerFixture(t)
	m := NewNodePickerModel("Pick a node", store)

	next, _ := m.Update(keyMsg("down"))
	m = next.(NodePickerModel)
	next, cmd := m.Update(keyMsg("enter"))
	m = next.(NodePickerModel)

	if m.Selected == nil {
		t.Fatal("enter should set Selected")
	}
	if m.Selected.Title != "Alpha" {
		t.Errorf("Selected.Title = %q, want %q", m.Selected.Title, "Alpha")
	}
	if cmd == nil {
		t.Fatal("enter should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("enter command should be tea.Quit")
	}
}

func TestNodePickerDismiss(t *testing.T) {
	store := pickerFixture(t)
	m := NewNodePickerModel("Pick a node", store)

	for _, key := range []string{"q", "esc", "ctrl+c"} {
		next, cmd := m.Update(keyMsg(key))
		got := next.(NodePickerModel)

		if got.Selected != nil {
			t.Errorf("%q should not select a node", key)
		}
		if cmd == nil {
			t.Fatalf("%q should return a quit command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%q command should be tea.Quit", key)
		}
	}
}

func TestNodePickerScrolling(t *testing.T) {
	store := pickerFixture(t)
	m := NewNodePickerModel("Pick a node", store)
	m.Height = 2

	// Move below the visible window; the offset follows the cursor.
	for i := 0; i < 3; i++ {
		next, _ := m.Update(keyMsg("down"))
		m = next.(NodePickerModel)
	}
	if m.Cursor != 3 {
		t.Fatalf("cursor = %d, want 3", m.Cursor)
	}
	if m.Offset != 2 {
		t.Errorf("offset = %d, want 2", m.Offset)
	}

	// Moving back above the window pulls the offset up.
	for i := 0; i < 3; i++ {
		next, _ := m.Update(keyMsg("up"))
		m = next.(NodePickerModel)
	}
	if m.Offset != 0 {
		t.Errorf("offset after scrolling up = %d, want 0", m.Offset)
	}
}

func TestNodePickerWindowResize(t *testing.T) {
	store := pickerFixture(t)
	m := NewNodePickerModel("Pick a node", store)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m = next.(NodePickerModel)
	if m.Height != 24 {
		t.Errorf("height after resize = %d, want 24", m.Height)
	}

	// Tiny windows clamp to a usable minimum.
	next, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 4})
	m = next.(NodePickerModel)
	if m.Height != 5 {
		t.Errorf("height after tiny resize = %d, want 5", m.Height)
	}
}

func TestNodePickerView(t *testing.T) {
	store := pickerFixture(t)
	m := NewNodePickerModel("Pick a parent", store)

	view := m.View()
	for _, want := range []string{"Pick a parent", "Root", "Alpha", "Leaf", "[1/4]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() should contain %q", want)
		}
	}
}

func TestNodePickerEmptyEnter(t *testing.T) {
	m := NodePickerModel{Title: "Empty", Height: 15}

	next, cmd := m.Update(keyMsg("enter"))
	got := next.(NodePickerModel)

	if got.Selected != nil {
		t.Error("enter on an empty picker should not select")
	}
	if cmd == nil {
		t.Fatal("enter on an empty picker should quit")
	}
}

func TestPickNodeEmptyStore(t *testing.T) {
	store, err := diagram.New("empty", diagram.Options{})
	if err != nil {
		t.Fatalf("diagram.New: %v", err)
	}

	if _, err := pickNode("Pick a node", store); err == nil {
		t.Error("pickNode() on an empty store should error")
	}
}
