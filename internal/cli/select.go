package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

// selectCommand creates the select command for managing the selection.
func (c *CLI) selectCommand() *cobra.Command {
	var (
		add   bool
		clear bool
		edges bool
	)

	cmd := &cobra.Command{
		Use:   "select [id...]",
		Short: "Select nodes or edges",
		Long: `Select nodes or edges.

The selection is part of the editing session: it survives across
commands and is restored by undo and redo. Without arguments the current
selection is printed. With --add the given ids toggle in and out of the
selection instead of replacing it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSelect(cmd.Context(), args, add, clear, edges)
		},
	}

	cmd.Flags().BoolVar(&add, "add", false, "toggle ids instead of replacing the selection")
	cmd.Flags().BoolVar(&clear, "clear", false, "clear the selection")
	cmd.Flags().BoolVar(&edges, "edges", false, "treat arguments as edge ids")

	return cmd
}

// runSelect updates or prints the selection and persists the session.
func (c *CLI) runSelect(ctx context.Context, args []string, add, clear, edges bool) error {
	w, err := c.openWorkspace(ctx)
	if err != nil {
		return err
	}

	if clear {
		w.store.ClearSelection()
		if err := w.save(ctx); err != nil {
			return err
		}
		printSuccess("Selection cleared")
		return nil
	}

	if len(args) == 0 {
		printSelection(w)
		return nil
	}

	switch {
	case edges:
		// ToggleEdge accumulates; SelectEdge would keep only the last id.
		if !add {
			w.store.ClearSelection()
		}
		for _, id := range args {
			w.store.ToggleEdge(id)
		}
	case add:
		for _, id := range args {
			w.store.Toggle(id)
		}
	default:
		w.store.SetSelection(args)
	}

	if err := w.save(ctx); err != nil {
		return err
	}

	nodes, edgeIDs := w.store.Selection(), w.store.SelectedEdges()
	printSuccess("Selected %s, %s", plural(len(nodes), "node"), plural(len(edgeIDs), "edge"))

	return nil
}

// printSelection lists the current selection.
func printSelection(w *workspace) {
	nodes := w.store.Selection()
	edges := w.store.SelectedEdges()

	if len(nodes) == 0 && len(edges) == 0 {
		printInfo("Nothing selected")
		return
	}

	if len(nodes) > 0 {
		printKeyValue("Nodes", strings.Join(nodes, ", "))
	}
	if len(edges) > 0 {
		printKeyValue("Edges", strings.Join(edges, ", "))
	}
}
