package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/treeline-io/treeline/pkg/layout"
	"github.com/treeline-io/treeline/pkg/pipeline"
)

// layoutCommand creates the layout command for arranging the diagram.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		engine    string
		direction string
		rankSep   float64
		nodeSep   float64
		noCache   bool
		refresh   bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Arrange nodes with an auto-layout engine",
		Long: `Arrange nodes with an auto-layout engine.

The tree engine is a fast layered arrangement for strict hierarchies;
the dot engine delegates to Graphviz for denser diagrams. The new
positions commit as a single undoable history entry.

Results are cached locally, keyed by the diagram's structure, for faster
subsequent runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.cfg.PipelineOptions()
			flags := cmd.Flags()
			if flags.Changed("engine") {
				opts.Engine = engine
			}
			if flags.Changed("direction") {
				opts.Direction = direction
			}
			if flags.Changed("rank-sep") {
				opts.RankSep = rankSep
			}
			if flags.Changed("node-sep") {
				opts.NodeSep = nodeSep
			}
			opts.Refresh = refresh
			return c.runLayout(cmd.Context(), opts, noCache)
		},
	}

	cmd.Flags().StringVarP(&engine, "engine", "e", layout.EngineTree, "layout engine: tree, dot")
	cmd.Flags().StringVarP(&direction, "direction", "d", string(layout.DirectionTopBottom), "flow direction: TB, BT, LR, RL")
	cmd.Flags().Float64Var(&rankSep, "rank-sep", 0, "vertical gap between tree levels")
	cmd.Flags().Float64Var(&nodeSep, "node-sep", 0, "horizontal gap between siblings")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even on a cache hit")

	return cmd
}

// runLayout computes positions for the whole diagram and commits them.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, noCache bool) error {
	w, err := c.openWorkspace(ctx)
	if err != nil {
		return err
	}

	if w.store.Len() == 0 {
		printInfo("The diagram has no nodes to arrange")
		return nil
	}

	runner := c.newRunner(ctx, noCache)
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Engine))
	spinner.Start()

	positions, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, w.store.Save(), opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	moved := layout.Apply(w.store, positions)
	if err := w.save(ctx); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Arranged %s", plural(moved, "node")))

	printSuccess("Layout complete")
	printStats(w.store.Len(), len(w.store.Edges()), cacheHit)
	printNewline()
	printNextStep("Plan connector routes", "treeline route")

	return nil
}
