package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/treeline-io/treeline/pkg/diagram"
)

// setCommand creates the set command for patching node fields.
func (c *CLI) setCommand() *cobra.Command {
	var (
		title    string
		subtitle string
		badge    string
		parent   string
		width    float64
		height   float64
		fill     string
		border   string
		text     string
	)

	cmd := &cobra.Command{
		Use:   "set [node-id]",
		Short: "Update fields on a node",
		Long: `Update fields on a node.

Only the flags given change; everything else keeps its value. Setting
--parent reparents the node (an empty value detaches it to a root), and
reparenting that would create a cycle is skipped. Without a node id the
command opens an interactive picker (requires a terminal).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := diagram.Patch{}
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("subtitle") {
				patch.Subtitle = &subtitle
			}
			if flags.Changed("badge") {
				patch.Badge = &badge
			}
			if flags.Changed("parent") {
				patch.ParentID = &parent
			}
			if flags.Changed("width") {
				patch.Width = &width
			}
			if flags.Changed("height") {
				patch.Height = &height
			}

			style := styleChanges{}
			if flags.Changed("fill") {
				style.fill = &fill
			}
			if flags.Changed("border") {
				style.border = &border
			}
			if flags.Changed("text") {
				style.text = &text
			}

			return c.runSet(cmd.Context(), args, patch, style)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "node title")
	cmd.Flags().StringVar(&subtitle, "subtitle", "", "node subtitle")
	cmd.Flags().StringVar(&badge, "badge", "", "node badge text")
	cmd.Flags().StringVar(&parent, "parent", "", "new parent node id (empty detaches to a root)")
	cmd.Flags().Float64Var(&width, "width", 0, "node width")
	cmd.Flags().Float64Var(&height, "height", 0, "node height")
	cmd.Flags().StringVar(&fill, "fill", "", "fill color (hex)")
	cmd.Flags().StringVar(&border, "border", "", "border color (hex)")
	cmd.Flags().StringVar(&text, "text", "", "text color (hex)")

	return cmd
}

// styleChanges carries the individual color overrides. Style patches
// replace the whole style struct, so runSet merges these onto the node's
// current colors first.
type styleChanges struct {
	fill   *string
	border *string
	text   *string
}

func (sc styleChanges) empty() bool {
	return sc.fill == nil && sc.border == nil && sc.text == nil
}

// runSet applies the patch to the chosen node and persists the result.
func (c *CLI) runSet(ctx context.Context, args []string, patch diagram.Patch, style styleChanges) error {
	w, err := c.openWorkspace(ctx)
	if err != nil {
		return err
	}

	id, err := resolveNodeID(args, "Select node", w.store)
	if err != nil {
		return err
	}
	if id == "" {
		printDetail("No selection made")
		return nil
	}

	n, ok := w.store.Node(id)
	if !ok {
		return nodeNotFound(id)
	}

	if !style.empty() {
		merged := n.Style
		if style.fill != nil {
			merged.Fill = *style.fill
		}
		if style.border != nil {
			merged.Border = *style.border
		}
		if style.text != nil {
			merged.Text = *style.text
		}
		patch.Style = &merged
	}

	if patch == (diagram.Patch{}) {
		printInfo("Nothing to change")
		return nil
	}

	before := w.store.HistoryCursor()
	w.store.Update(id, patch)
	if w.store.HistoryCursor() == before {
		printInfo("No changes applied")
		return nil
	}

	if err := w.save(ctx); err != nil {
		return err
	}

	printSuccess("Updated %s", StyleHighlight.Render(id))

	return nil
}
