// Package cli implements the treeline command-line interface.
//
// Treeline edits hierarchical diagrams (org charts, tree-shaped mind maps)
// from the terminal. Every editing command opens the diagram's session,
// applies one mutation to the store, and persists both the session and the
// diagram file, so undo history survives across invocations.
//
// # Commands
//
// The main commands are:
//   - new: Create a diagram file and its editing session
//   - add: Add root, child, or sibling nodes
//   - set, move, delete, detach: Edit nodes and connectors
//   - undo, redo: Walk the mutation history
//   - layout: Arrange nodes with an auto-layout engine
//   - route: Plan obstacle-avoiding connector routes
//   - inspect: Show the diagram tree and session stats
//   - serve: Expose a read-only JSON API over HTTP
//   - cache: Manage the local result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so engine internals can report progress.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/treeline-io/treeline/pkg/buildinfo"
	"github.com/treeline-io/treeline/pkg/cache"
	"github.com/treeline-io/treeline/pkg/codec"
	"github.com/treeline-io/treeline/pkg/config"
	"github.com/treeline-io/treeline/pkg/diagram"
	"github.com/treeline-io/treeline/pkg/pipeline"
	"github.com/treeline-io/treeline/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "treeline"

	// defaultFile is the diagram file edited when --file is not given.
	defaultFile = "diagram.json"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// cfg is loaded by the root command's PersistentPreRunE, before any
	// subcommand runs.
	cfg config.Config

	// Persistent flag values shared by subcommands.
	configPath  string
	filePath    string
	sessionName string
	reset       bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "treeline",
		Short:        "Treeline edits tree-shaped diagrams from the terminal",
		Long:         `Treeline is a CLI for building hierarchical diagrams such as org charts and tree-shaped mind maps. It keeps an undoable editing session per diagram file, arranges nodes with pluggable layout engines, and plans orthogonal connector routes around obstacles.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVarP(&c.filePath, "file", "f", defaultFile, "diagram file to edit")
	flags.StringVar(&c.sessionName, "session", "", "session name (default: derived from the file path)")
	flags.BoolVar(&c.reset, "reset", false, "discard the stored session and reload the diagram file")
	flags.StringVar(&c.configPath, "config", "", "config file (default: "+config.DefaultPath+" if present)")

	// Register all subcommands
	root.AddCommand(c.newCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.setCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.detachCommand())
	root.AddCommand(c.selectCommand())
	root.AddCommand(c.undoCommand())
	root.AddCommand(c.redoCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.routeCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file into c.cfg. An explicit --config path
// must exist; the implicit default lookup tolerates a missing file.
func (c *CLI) loadConfig() error {
	if c.configPath != "" {
		cfg, err := config.Load(c.configPath)
		if err != nil {
			return err
		}
		c.cfg = cfg
		return nil
	}

	cfg, err := config.LoadIfPresent(config.DefaultPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// =============================================================================
// Workspace - Session-Backed Editing
// =============================================================================

// workspace bundles an open editing session with the stores that persist it.
type workspace struct {
	store    *diagram.Store
	sess     *session.Session
	sessions *session.FileStore
	file     string
}

// openWorkspace opens the editing session for the diagram file given on the
// command line, seeding one from the file when no session exists yet.
func (c *CLI) openWorkspace(ctx context.Context) (*workspace, error) {
	sessions, err := session.NewFileStore("")
	if err != nil {
		return nil, err
	}

	store, sess, err := session.Open(ctx, sessions, session.OpenOptions{
		Name:  c.sessionName,
		File:  c.filePath,
		Reset: c.reset,
		Store: c.cfg.StoreOptions(),
	})
	if err != nil {
		return nil, err
	}

	return &workspace{store: store, sess: sess, sessions: sessions, file: c.filePath}, nil
}

// save persists the session and rewrites the diagram file, keeping both
// views of the document in step.
func (w *workspace) save(ctx context.Context) error {
	w.sess.Capture(w.store)
	if err := w.sessions.Save(ctx, w.sess); err != nil {
		return err
	}
	return codec.Export(w.store.Save(), w.file)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) *pipeline.Runner {
	return pipeline.NewRunner(c.newCache(ctx, noCache), nil, c.Logger)
}

// newCache opens the configured cache backend. A backend that cannot be
// opened degrades to the null cache with a warning, so commands still run
// without caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}

	cfg, err := c.resolveCacheConfig()
	if err != nil {
		c.Logger.Warn("caching disabled", "error", err)
		return cache.NewNullCache()
	}

	cc, err := cache.Open(ctx, cfg)
	if err != nil {
		c.Logger.Warn("caching disabled", "error", err)
		return cache.NewNullCache()
	}
	return cc
}

// resolveCacheConfig fills in the CLI-specific cache defaults. The config
// package defaults to an in-memory cache, which would never produce a hit
// across CLI invocations, so the CLI swaps it for the file backend under
// the user cache directory.
func (c *CLI) resolveCacheConfig() (cache.Config, error) {
	cfg := c.cfg.CacheConfig()
	if cfg.Backend == "" || cfg.Backend == cache.BackendMemory {
		cfg.Backend = cache.BackendFile
	}
	if cfg.Backend == cache.BackendFile && cfg.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			return cache.Config{}, err
		}
		cfg.Dir = dir
	}
	return cfg, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/treeline/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Argument Helpers
// =============================================================================

// resolveNodeID returns the id argument when present. Without one it opens
// the interactive picker, which requires a terminal on stdin.
func resolveNodeID(args []string, prompt string, store *diagram.Store) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if !stdinIsTerminal() {
		return "", fmt.Errorf("node id required (pass an id or run on a terminal to pick one)")
	}
	return pickNode(prompt, store)
}

// stdinIsTerminal reports whether stdin is attached to a terminal.
func stdinIsTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// nodeNotFound is the standard error for a missing node id.
func nodeNotFound(id string) error {
	return fmt.Errorf("no node with id %s", id)
}
