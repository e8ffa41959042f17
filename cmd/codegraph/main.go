// Command codegraph analyzes a source tree with tree-sitter and emits a
// cross-file dependency graph of its functions, classes, and calls.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var flagVerbose bool

var rootCmd = &cobra.Command{
	Use:           "codegraph",
	Short:         "Cross-file code dependency graph extraction",
	Long:          "codegraph parses source files with tree-sitter, indexes their functions and classes, resolves call sites across files, and writes the resulting graph as JSON or a markdown digest.",
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelInfo
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log pipeline progress to stderr")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(cacheCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
