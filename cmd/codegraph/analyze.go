package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/codegraph-dev/codegraph/internal/analyzer"
	"github.com/codegraph-dev/codegraph/internal/cache"
	"github.com/codegraph-dev/codegraph/internal/config"
	"github.com/codegraph-dev/codegraph/internal/format"
	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/store"
)

var (
	flagOutput    string
	flagFormat    string
	flagLanguages string
	flagIgnore    []string
	flagCacheDir  string
	flagNoCache   bool
	flagDB        string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze a source tree and write its dependency graph",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file (default from config, '-' for stdout)")
	analyzeCmd.Flags().StringVar(&flagFormat, "format", "", "output format: json|llm (default from config)")
	analyzeCmd.Flags().StringVar(&flagLanguages, "languages", "", "comma-separated language filter (e.g. python,go)")
	analyzeCmd.Flags().StringSliceVar(&flagIgnore, "ignore", nil, "extra ignore patterns (repeatable)")
	analyzeCmd.Flags().StringVar(&flagCacheDir, "cache-dir", "", "parse cache directory (default under the system temp dir)")
	analyzeCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "keep the parse cache in memory only")
	analyzeCmd.Flags().StringVar(&flagDB, "db", "", "also persist the graph to a SQLite database at this path")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}
	applyFlags(cfg)

	pc := newCache(cfg)
	return analyzeOnce(cmd.Context(), root, cfg, pc)
}

func newCache(cfg *config.Config) *cache.Cache {
	if flagNoCache {
		return cache.InMemoryOnly()
	}
	return cache.New(cfg.CacheDir, cfg.MaxCacheEntries)
}

// analyzeOnce runs one full analysis pass and writes every configured
// output. Shared by analyze and watch.
func analyzeOnce(ctx context.Context, root string, cfg *config.Config, pc *cache.Cache) error {
	start := time.Now()

	languages, err := cfg.ResolveLanguages()
	if err != nil {
		return err
	}

	a := analyzer.New(root, languages, cfg.Ignore, pc)
	g, stats, err := a.Run(ctx)
	if err != nil {
		return err
	}

	f, err := format.ForName(cfg.Format)
	if err != nil {
		return err
	}
	out, err := f.Format(g)
	if err != nil {
		return fmt.Errorf("format graph: %w", err)
	}

	if cfg.Output == "-" {
		if _, err := os.Stdout.Write(out); err != nil {
			return err
		}
	} else if err := os.WriteFile(cfg.Output, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if cfg.Database != "" {
		if err := saveToDatabase(cfg.Database, g); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "Analyzed %d files (%d cached) in %s: %d nodes, %d edges, %d/%d calls resolved.\n",
		stats.FilesScanned, stats.CacheHits, time.Since(start).Round(time.Millisecond),
		stats.NodesTotal, stats.EdgesTotal, stats.EdgesResolved, stats.CallSites)
	if cfg.Output != "-" {
		fmt.Fprintf(os.Stderr, "Wrote %s\n", cfg.Output)
	}
	return nil
}

// applyFlags overlays command-line flags onto the loaded config.
func applyFlags(cfg *config.Config) {
	if flagOutput != "" {
		cfg.Output = flagOutput
	}
	if flagFormat != "" {
		cfg.Format = flagFormat
	}
	if flagLanguages != "" {
		parts := strings.Split(flagLanguages, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.Languages = parts
	}
	if len(flagIgnore) > 0 {
		cfg.Ignore = append(cfg.Ignore, flagIgnore...)
	}
	if flagCacheDir != "" {
		cfg.CacheDir = flagCacheDir
	}
	if flagDB != "" {
		cfg.Database = flagDB
	}
	// The markdown default only makes sense for the llm formatter.
	if cfg.Format == "json" && cfg.Output == config.Default().Output {
		cfg.Output = "codegraph.json"
	}
}

func saveToDatabase(path string, g *graph.Graph) error {
	s, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()
	if err := s.SaveGraph(g); err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Saved graph to %s\n", path)
	return nil
}
