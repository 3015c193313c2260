package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/treeline-io/treeline/pkg/pipeline"
	"github.com/treeline-io/treeline/pkg/route"
)

// routeCommand creates the route command for planning connector paths.
func (c *CLI) routeCommand() *cobra.Command {
	var (
		output        string
		order         string
		bendTolerance float64
		step          float64
		padding       float64
		cornerRadius  float64
		noCache       bool
		refresh       bool
	)

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Plan obstacle-avoiding connector routes",
		Long: `Plan obstacle-avoiding connector routes.

Each parent-child connector gets an orthogonal path around the boxes of
unrelated nodes, against the diagram's current geometry (run layout
first for a clean arrangement). Routing never modifies the diagram; the
planned paths are written as JSON.

The output defaults to <file>.routes.json next to the diagram file. Use
-o - to write to stdout. Results are cached locally, keyed by the
diagram's geometry.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.cfg.PipelineOptions()
			flags := cmd.Flags()
			if flags.Changed("order") {
				opts.Order = order
			}
			if flags.Changed("bend-tolerance") {
				opts.BendTolerance = bendTolerance
			}
			if flags.Changed("step") {
				opts.Step = step
			}
			if flags.Changed("padding") {
				opts.Padding = padding
			}
			if flags.Changed("corner-radius") {
				opts.CornerRadius = cornerRadius
			}
			opts.Refresh = refresh
			return c.runRoute(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <file>.routes.json, - for stdout)")
	cmd.Flags().StringVar(&order, "order", string(route.OrderAway), "detour search order: away, alternating")
	cmd.Flags().Float64Var(&bendTolerance, "bend-tolerance", 0, "grid slack accepted to reuse a channel")
	cmd.Flags().Float64Var(&step, "step", 0, "detour search step size")
	cmd.Flags().Float64Var(&padding, "padding", 0, "obstacle padding around nodes")
	cmd.Flags().Float64Var(&cornerRadius, "corner-radius", 0, "rounded corner radius hint")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even on a cache hit")

	return cmd
}

// runRoute plans routes for the current geometry and writes them as JSON.
func (c *CLI) runRoute(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	w, err := c.openWorkspace(ctx)
	if err != nil {
		return err
	}

	runner := c.newRunner(ctx, noCache)
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, "Planning connector routes...")
	spinner.Start()

	routes, cacheHit, err := runner.PlanRoutesWithCacheInfo(ctx, w.store.Save(), opts)
	if err != nil {
		spinner.StopWithError("Routing failed")
		return fmt.Errorf("plan routes: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Planned %s", plural(len(routes), "route")))

	toStdout := output == "-"
	outputPath := output
	if toStdout {
		outputPath = ""
	} else if outputPath == "" {
		outputPath = strings.TrimSuffix(w.file, filepath.Ext(w.file)) + ".routes.json"
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(routes); err != nil {
		return fmt.Errorf("write routes: %w", err)
	}

	if toStdout {
		return nil
	}

	printSuccess("Planned %s", plural(len(routes), "route"))
	printFile(outputPath)
	printStats(w.store.Len(), len(routes), cacheHit)
	if fallbacks := countFallbacks(routes); fallbacks > 0 {
		printWarning("%s could not clear every obstacle", plural(fallbacks, "route"))
	}

	return nil
}

// countFallbacks counts routes that gave up on full obstacle avoidance.
func countFallbacks(routes []route.EdgeRoute) int {
	n := 0
	for i := range routes {
		if routes[i].Path.Fallback {
			n++
		}
	}
	return n
}

// nopCloser wraps an io.Writer with a no-op Close method, making
// os.Stdout usable where an io.WriteCloser is needed.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path. An empty path
// means stdout; otherwise the file is created, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
