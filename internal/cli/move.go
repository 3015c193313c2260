package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/treeline-io/treeline/pkg/diagram"
)

// moveCommand creates the move command for repositioning a node.
func (c *CLI) moveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <node-id> <x> <y>",
		Short: "Move a node to an absolute position",
		Long: `Move a node to an absolute position.

The coordinates name the node's top-left corner in diagram space. The
move commits a single undoable history entry.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid x coordinate %q", args[1])
			}
			y, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid y coordinate %q", args[2])
			}
			return c.runMove(cmd.Context(), args[0], x, y)
		},
	}

	return cmd
}

// runMove repositions the node and persists the result.
func (c *CLI) runMove(ctx context.Context, id string, x, y float64) error {
	w, err := c.openWorkspace(ctx)
	if err != nil {
		return err
	}

	if _, ok := w.store.Node(id); !ok {
		return nodeNotFound(id)
	}

	w.store.SetPositions([]diagram.PositionUpdate{{ID: id, X: x, Y: y}})

	if err := w.save(ctx); err != nil {
		return err
	}

	printSuccess("Moved %s to (%g, %g)", StyleHighlight.Render(id), x, y)

	return nil
}
