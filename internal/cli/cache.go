package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dynalayout/pkg/cache"
)

// cacheCommand groups the commands that manage the local file cache.
// A Redis cache used by serve is managed with Redis tooling instead.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local layout and render cache",
	}
	cmd.AddCommand(
		c.sweepCommand("clear", "Remove all cached layouts, slices and artifacts", "Cleared %d cached entries", (*cache.FileCache).Clear),
		c.sweepCommand("prune", "Remove expired and corrupt cache entries", "Pruned %d stale entries", (*cache.FileCache).Prune),
		c.cachePathCommand(),
	)
	return cmd
}

// sweepCommand builds a subcommand that removes entries from the local
// cache with sweep and reports the count with done.
func (c *CLI) sweepCommand(use, short, done string, sweep func(*cache.FileCache) (int, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := openLocalCache()
			if errors.Is(err, fs.ErrNotExist) {
				printInfo("Cache is empty")
				return nil
			}
			if err != nil {
				return err
			}
			n, err := sweep(fc)
			if err != nil {
				return fmt.Errorf("%s cache: %w", use, err)
			}
			c.Logger.Debug("swept cache", "op", use, "dir", fc.Dir(), "removed", n)
			printSuccess(done, n)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// openLocalCache opens the existing cache directory without creating it.
// It returns an fs.ErrNotExist error when nothing was ever cached.
func openLocalCache() (*cache.FileCache, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	return cache.NewFileCache(dir)
}
