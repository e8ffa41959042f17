package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/codegraph-dev/codegraph/internal/config"
	"github.com/codegraph-dev/codegraph/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Analyze a source tree and re-analyze on every change",
	Long:  "Runs an initial analysis, then polls the tree and re-runs the full pipeline whenever a source file is added, removed, or modified. Stops on interrupt.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	// Watch shares the analyze flag set; they write the same outputs.
	watchCmd.Flags().AddFlagSet(analyzeCmd.Flags())
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}
	applyFlags(cfg)

	languages, err := cfg.ResolveLanguages()
	if err != nil {
		return err
	}

	pc := newCache(cfg)
	w := watcher.New(root, languages, cfg.Ignore, func(ctx context.Context) error {
		return analyzeOnce(ctx, root, cfg, pc)
	})

	if err := w.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
