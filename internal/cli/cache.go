package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the cache of JIRA responses, boards, layouts and renders",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var pattern string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached entries",
		Long: `Clear all cached entries.

The file cache is emptied completely. With the Redis backend, --pattern
limits the deletion to matching keys (for example "layout:*").`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend, err := c.openCache(ctx, false)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer backend.Close()

			var n int
			switch b := backend.(type) {
			case *cache.FileCache:
				n, err = b.Clear()
				printDetail("Directory: %s", b.Dir())
			case *cache.RedisCache:
				n, err = b.Clear(ctx, pattern)
				printDetail("Redis: %s", c.Config.Cache.RedisAddr)
			default:
				printInfo("Cache is disabled")
				return nil
			}
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			if n == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&pattern, "pattern", "", "Redis key pattern (default: all keys)")

	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.Config.Cache.Dir
			if dir == "" {
				var err error
				if dir, err = cacheDir(); err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
