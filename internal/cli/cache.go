package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/polagram/pkg/cache"
	"github.com/matzehuels/polagram/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the parse and view cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached trees and views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := c.newCache(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if _, ok := store.(*cache.NullCache); ok {
				printInfo("Cache is disabled")
				return nil
			}
			clearer, ok := store.(cache.Clearer)
			if !ok {
				return fmt.Errorf("the %s cache cannot be cleared", cfg.Cache.Backend)
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %s cache", cfg.Cache.Backend)
			if fc, ok := store.(*cache.FileCache); ok {
				printDetail("Directory: %s", fc.Dir())
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend != config.BackendFile {
				printInfo("The %s backend has no directory", cfg.Cache.Backend)
				return nil
			}
			dir, err := resolveCacheDir(cfg)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
