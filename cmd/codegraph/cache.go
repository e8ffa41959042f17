package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codegraph-dev/codegraph/internal/cache"
)

var flagClearCacheDir string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the parse cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached parse results",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := cache.New(flagClearCacheDir, 0)
		if err := c.Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Cache cleared.")
		return nil
	},
}

func init() {
	cacheClearCmd.Flags().StringVar(&flagClearCacheDir, "cache-dir", "", "parse cache directory (default under the system temp dir)")
	cacheCmd.AddCommand(cacheClearCmd)
}
