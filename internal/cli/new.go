package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/treeline-io/treeline/pkg/codec"
	"github.com/treeline-io/treeline/pkg/diagram"
	"github.com/treeline-io/treeline/pkg/session"
)

// newCommand creates the new command for starting a diagram.
func (c *CLI) newCommand() *cobra.Command {
	var (
		name  string
		root  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new diagram file and editing session",
		Long: `Create a new diagram file and its editing session.

The diagram is written to the path given with --file (diagram.json by
default) and a fresh session is stored for it, so subsequent editing
commands pick up where new left off.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runNew(cmd.Context(), name, root, force)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "diagram name (default: derived from the file name)")
	cmd.Flags().StringVar(&root, "root", "", "title for an initial root node")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing diagram file")

	return cmd
}

// runNew builds the empty diagram, writes the file, and stores the session.
func (c *CLI) runNew(ctx context.Context, name, rootTitle string, force bool) error {
	if !force {
		if _, err := os.Stat(c.filePath); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", c.filePath)
		}
	}

	if name == "" {
		name = strings.TrimSuffix(filepath.Base(c.filePath), filepath.Ext(c.filePath))
	}

	store, err := diagram.New(name, c.cfg.StoreOptions())
	if err != nil {
		return err
	}
	if rootTitle != "" {
		id := store.AddRoot()
		store.Update(id, diagram.Patch{Title: &rootTitle})
	}

	if err := codec.Export(store.Save(), c.filePath); err != nil {
		return err
	}

	sessions, err := session.NewFileStore("")
	if err != nil {
		return err
	}
	sessName := c.sessionName
	if sessName == "" {
		sessName = session.DeriveName(c.filePath)
	}
	sess, err := session.New(sessName, c.filePath, store.ExportState())
	if err != nil {
		return err
	}
	if err := sessions.Save(ctx, sess); err != nil {
		return err
	}

	printSuccess("Created %s", StyleHighlight.Render(name))
	printFile(c.filePath)
	printNewline()
	printNextStep("Add a node", "treeline add root --title \"...\"")

	return nil
}
