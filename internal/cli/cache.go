package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local result cache",
		Long: `Manage the local result cache.

Layout positions and connector routes are cached on disk, keyed by
diagram content, so repeated runs skip recomputation. These commands
operate on the local file cache only; Redis and MongoDB backends expire
entries through server-side TTLs.`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand. The file cache
// shards entries into one subdirectory per hash prefix, so clearing means
// counting the files per shard and removing the shard wholesale.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached layouts and routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}

			shards, err := os.ReadDir(dir)
			if os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}
			if err != nil {
				return fmt.Errorf("read cache dir: %w", err)
			}

			count := 0
			for _, shard := range shards {
				path := filepath.Join(dir, shard.Name())
				if shard.IsDir() {
					if files, err := os.ReadDir(path); err == nil {
						count += len(files)
					}
				} else {
					count++
				}
				if err := os.RemoveAll(path); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand. The bare path on
// stdout keeps it composable: du -sh $(treeline cache path).
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}
