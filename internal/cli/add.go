package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/treeline-io/treeline/pkg/diagram"
)

// addCommand creates the add command with its root/child/sibling subcommands.
func (c *CLI) addCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add nodes to the diagram",
	}

	cmd.AddCommand(c.addRootCommand())
	cmd.AddCommand(c.addChildCommand())
	cmd.AddCommand(c.addSiblingCommand())

	return cmd
}

// addFields holds the optional content flags shared by the add subcommands.
type addFields struct {
	title    string
	subtitle string
	badge    string
}

func registerAddFlags(cmd *cobra.Command, f *addFields) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "node title")
	cmd.Flags().StringVar(&f.subtitle, "subtitle", "", "node subtitle")
	cmd.Flags().StringVar(&f.badge, "badge", "", "node badge text")
}

// patch converts the set flags into a node patch. Empty flags are left
// out so new nodes keep their defaults.
func (f *addFields) patch() diagram.Patch {
	p := diagram.Patch{}
	if f.title != "" {
		p.Title = &f.title
	}
	if f.subtitle != "" {
		p.Subtitle = &f.subtitle
	}
	if f.badge != "" {
		p.Badge = &f.badge
	}
	return p
}

// addRootCommand creates the "add root" subcommand.
func (c *CLI) addRootCommand() *cobra.Command {
	var fields addFields

	cmd := &cobra.Command{
		Use:   "root",
		Short: "Add a top-level node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAdd(cmd.Context(), args, "root", "", fields)
		},
	}
	registerAddFlags(cmd, &fields)

	return cmd
}

// addChildCommand creates the "add child" subcommand.
func (c *CLI) addChildCommand() *cobra.Command {
	var fields addFields

	cmd := &cobra.Command{
		Use:   "child [parent-id]",
		Short: "Add a node under a parent",
		Long: `Add a node under a parent.

Without a parent id the command opens an interactive picker (requires a
terminal). The new child inherits the parent's style.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAdd(cmd.Context(), args, "child", "Select parent", fields)
		},
	}
	registerAddFlags(cmd, &fields)

	return cmd
}

// addSiblingCommand creates the "add sibling" subcommand.
func (c *CLI) addSiblingCommand() *cobra.Command {
	var fields addFields

	cmd := &cobra.Command{
		Use:   "sibling [node-id]",
		Short: "Add a node next to an existing one, under the same parent",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAdd(cmd.Context(), args, "sibling", "Select sibling", fields)
		},
	}
	registerAddFlags(cmd, &fields)

	return cmd
}

// runAdd opens the session, inserts the node, and persists the result.
// For child and sibling inserts the reference node comes from args or the
// interactive picker.
func (c *CLI) runAdd(ctx context.Context, args []string, kind, prompt string, fields addFields) error {
	w, err := c.openWorkspace(ctx)
	if err != nil {
		return err
	}

	var refID string
	if kind != "root" {
		refID, err = resolveNodeID(args, prompt, w.store)
		if err != nil {
			return err
		}
		if refID == "" {
			printDetail("No selection made")
			return nil
		}
	}

	var id string
	switch kind {
	case "root":
		id = w.store.AddRoot()
	case "child":
		id = w.store.AddChild(refID)
	case "sibling":
		id = w.store.AddSibling(refID)
	}
	if id == "" {
		return fmt.Errorf("no node with id %s", refID)
	}

	if patch := fields.patch(); patch != (diagram.Patch{}) {
		w.store.Update(id, patch)
	}

	if err := w.save(ctx); err != nil {
		return err
	}

	n, _ := w.store.Node(id)
	printSuccess("Added %s %s", kind, StyleHighlight.Render(id))
	printDetail("title: %s", n.Title)

	return nil
}
