package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/treeline-io/treeline/internal/httpapi"
	"github.com/treeline-io/treeline/pkg/cache"
	"github.com/treeline-io/treeline/pkg/pipeline"
)

// shutdownTimeout bounds connection draining when the server stops.
const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command for the read-only HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a read-only JSON API for the diagram",
		Long: `Serve a read-only JSON API for the diagram.

The server exposes the session's current state: the full document under
/api/diagram, individual nodes under /api/nodes/{id}, and freshly
planned connector routes under /api/routes. It never writes; editing
stays with the CLI.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.cfg.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable route caching")

	return cmd
}

// runServe blocks serving the API until the context is cancelled.
func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	w, err := c.openWorkspace(ctx)
	if err != nil {
		return err
	}

	runner := c.serveRunner(ctx, noCache)
	defer runner.Close()

	api, err := httpapi.New(w.store, httpapi.Options{
		Logger:   c.Logger,
		Runner:   runner,
		Pipeline: c.cfg.PipelineOptions(),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      api.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	printInfo("Serving %s on %s", StyleHighlight.Render(w.store.Name()), StyleLink.Render("http://"+displayAddr(addr)))
	printDetail("endpoints: /healthz /api/diagram /api/nodes /api/routes")
	printDetail("press Ctrl+C to stop")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		printNewline()
		printSuccess("Server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// serveRunner builds the route-planning runner for the server. Network
// cache backends are opened with retries, since a briefly unreachable
// Redis or MongoDB should not keep the server from starting.
func (c *CLI) serveRunner(ctx context.Context, noCache bool) *pipeline.Runner {
	if noCache {
		return pipeline.NewRunner(cache.NewNullCache(), nil, c.Logger)
	}

	cfg, err := c.resolveCacheConfig()
	if err != nil {
		c.Logger.Warn("route caching disabled", "error", err)
		return pipeline.NewRunner(cache.NewNullCache(), nil, c.Logger)
	}

	var cc cache.Cache
	err = cache.RetryWithBackoff(ctx, func() error {
		var openErr error
		cc, openErr = cache.Open(ctx, cfg)
		return openErr
	})
	if err != nil {
		c.Logger.Warn("route caching disabled", "backend", cfg.Backend, "error", err)
		cc = cache.NewNullCache()
	}

	return pipeline.NewRunner(cc, nil, c.Logger)
}

// displayAddr turns a listen address into something clickable: a bare
// ":8080" becomes "localhost:8080".
func displayAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
