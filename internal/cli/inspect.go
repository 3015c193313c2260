package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/treeline-io/treeline/pkg/diagram"
)

// inspectCommand creates the inspect command for viewing the diagram.
func (c *CLI) inspectCommand() *cobra.Command {
	var showEdges bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the diagram tree and session stats",
		Long: `Show the diagram tree and session stats.

The tree view lists every node with its id, marks the current selection,
and is followed by a summary of the editing session, including how much
history is available to undo.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), showEdges)
		},
	}

	cmd.Flags().BoolVar(&showEdges, "edges", false, "also list connector edge ids")

	return cmd
}

// runInspect renders the forest and the session summary.
func (c *CLI) runInspect(ctx context.Context, showEdges bool) error {
	w, err := c.openWorkspace(ctx)
	if err != nil {
		return err
	}

	fmt.Println(renderForest(w.store))
	printNewline()

	if showEdges {
		for _, e := range w.store.Edges() {
			printDetail("%s (%s %s %s)", e.ID, e.Source, iconArrow, e.Target)
		}
		printNewline()
	}

	roots := 0
	for _, n := range w.store.Nodes() {
		if n.IsRoot() {
			roots++
		}
	}

	printKeyValue("File", w.file)
	printKeyValue("Session", w.sess.Name)
	printKeyValue("Nodes", fmt.Sprintf("%d (%d roots)", w.store.Len(), roots))
	printKeyValue("Edges", fmt.Sprintf("%d", len(w.store.Edges())))
	printKeyValue("Selected", fmt.Sprintf("%d nodes, %d edges", len(w.store.Selection()), len(w.store.SelectedEdges())))
	printKeyValue("History", historySummary(w.store))
	printKeyValue("Updated", w.sess.UpdatedAt.Format("2006-01-02 15:04:05"))

	return nil
}

// renderForest draws the node forest rooted at the diagram name, with
// ids dimmed and the selection highlighted.
func renderForest(store *diagram.Store) string {
	nodes := store.Nodes()

	selected := make(map[string]bool)
	for _, id := range store.Selection() {
		selected[id] = true
	}

	children := make(map[string][]diagram.Node)
	for _, n := range nodes {
		if n.ParentID != "" {
			children[n.ParentID] = append(children[n.ParentID], n)
		}
	}

	var build func(n diagram.Node) *tree.Tree
	build = func(n diagram.Node) *tree.Tree {
		t := tree.Root(nodeLabel(n, selected[n.ID]))
		for _, child := range children[n.ID] {
			t.Child(build(child))
		}
		return t
	}

	forest := tree.Root(StyleTitle.Render(store.Name())).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(StyleDim)
	for _, n := range nodes {
		if n.IsRoot() {
			forest.Child(build(n))
		}
	}
	return forest.String()
}

// nodeLabel renders one tree entry: title, optional badge, dimmed id,
// and a selection marker.
func nodeLabel(n diagram.Node, selected bool) string {
	title := n.Title
	if selected {
		title = StyleHighlight.Render(title + " ●")
	}

	label := title
	if n.Badge != "" {
		label += " " + StyleWarning.Render("["+n.Badge+"]")
	}
	return label + " " + StyleDim.Render("("+n.ID+")")
}

// historySummary describes the undo state in one line.
func historySummary(store *diagram.Store) string {
	s := fmt.Sprintf("%d entries, position %d", store.HistoryLen(), store.HistoryCursor()+1)
	switch {
	case store.CanUndo() && store.CanRedo():
		return s + " (undo and redo available)"
	case store.CanUndo():
		return s + " (undo available)"
	case store.CanRedo():
		return s + " (redo available)"
	}
	return s
}
