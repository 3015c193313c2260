package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// deleteCommand creates the delete command for removing subtrees.
func (c *CLI) deleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [node-id...]",
		Short: "Delete nodes and their descendants",
		Long: `Delete nodes and their descendants.

Deleting a node removes its entire subtree in one undoable step. Without
a node id the command opens an interactive picker (requires a terminal).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDelete(cmd.Context(), args)
		},
	}

	return cmd
}

// runDelete removes the requested subtrees and persists the result.
func (c *CLI) runDelete(ctx context.Context, args []string) error {
	w, err := c.openWorkspace(ctx)
	if err != nil {
		return err
	}

	ids := args
	if len(ids) == 0 {
		id, err := resolveNodeID(nil, "Select node to delete", w.store)
		if err != nil {
			return err
		}
		if id == "" {
			printDetail("No selection made")
			return nil
		}
		ids = []string{id}
	}

	for _, id := range ids {
		if _, ok := w.store.Node(id); !ok {
			return nodeNotFound(id)
		}
	}

	before := w.store.Len()
	w.store.DeleteMany(ids)
	removed := before - w.store.Len()

	if err := w.save(ctx); err != nil {
		return err
	}

	printSuccess("Deleted %s", plural(removed, "node"))
	if removed > len(ids) {
		printDetail("includes descendants of the deleted nodes")
	}

	return nil
}
