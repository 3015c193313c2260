package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// detachCommand creates the detach command for severing a connector.
func (c *CLI) detachCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detach <edge-id>",
		Short: "Remove a connector, turning its child into a root",
		Long: `Remove a connector, turning its child into a root.

The child keeps its whole subtree; only the link to its parent goes
away. Edge ids are listed by inspect and follow the form
edge-<parent>-<child>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDetach(cmd.Context(), args[0])
		},
	}

	return cmd
}

// runDetach severs the edge and persists the result.
func (c *CLI) runDetach(ctx context.Context, edgeID string) error {
	w, err := c.openWorkspace(ctx)
	if err != nil {
		return err
	}

	var childID string
	for _, e := range w.store.Edges() {
		if e.ID == edgeID {
			childID = e.Target
			break
		}
	}
	if childID == "" {
		return fmt.Errorf("no edge with id %s", edgeID)
	}

	w.store.Detach(edgeID)

	if err := w.save(ctx); err != nil {
		return err
	}

	printSuccess("Detached %s", StyleHighlight.Render(edgeID))
	printDetail("%s is now a root node", childID)

	return nil
}
