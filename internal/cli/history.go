package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// undoCommand creates the undo command.
func (c *CLI) undoCommand() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Undo the most recent change",
		Long: `Undo the most recent change.

History lives in the editing session, so undo works across invocations:
a node added yesterday can be undone today. Node positions, selection,
and structure all roll back together.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHistory(cmd.Context(), "undo", steps)
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "number of changes to undo")

	return cmd
}

// redoCommand creates the redo command.
func (c *CLI) redoCommand() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "redo",
		Short: "Reapply the most recently undone change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHistory(cmd.Context(), "redo", steps)
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "number of changes to redo")

	return cmd
}

// runHistory walks the history in the given direction and persists the
// resulting state.
func (c *CLI) runHistory(ctx context.Context, direction string, steps int) error {
	w, err := c.openWorkspace(ctx)
	if err != nil {
		return err
	}

	step := w.store.Undo
	if direction == "redo" {
		step = w.store.Redo
	}

	moved := 0
	for i := 0; i < steps; i++ {
		if !step() {
			break
		}
		moved++
	}

	if moved == 0 {
		printInfo("Nothing to %s", direction)
		return nil
	}

	if err := w.save(ctx); err != nil {
		return err
	}

	if direction == "undo" {
		printSuccess("Undid %s", plural(moved, "change"))
	} else {
		printSuccess("Redid %s", plural(moved, "change"))
	}
	printDetail("history position %d of %d", w.store.HistoryCursor()+1, w.store.HistoryLen())

	return nil
}
