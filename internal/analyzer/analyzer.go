// Package analyzer orchestrates the analysis pipeline: scan the tree, parse
// each file through the cache, merge per-file results into one graph, then
// resolve call sites into call edges.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codegraph-dev/codegraph/internal/cache"
	"github.com/codegraph-dev/codegraph/internal/extract"
	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/lang"
	"github.com/codegraph-dev/codegraph/internal/resolve"
	"github.com/codegraph-dev/codegraph/internal/scan"
)

// Stats summarizes one analysis run.
type Stats struct {
	FilesScanned  int
	FilesParsed   int
	CacheHits     int
	CallSites     int
	EdgesResolved int
	NodesTotal    int
	EdgesTotal    int
}

// Analyzer runs the end-to-end pipeline over one source tree.
type Analyzer struct {
	root      string
	languages []lang.Language
	ignore    []string
	cache     *cache.Cache
	registry  *extract.Registry
}

// New creates an Analyzer for root. A nil cache falls back to memory-only
// caching.
func New(root string, languages []lang.Language, ignore []string, c *cache.Cache) *Analyzer {
	if c == nil {
		c = cache.InMemoryOnly()
	}
	return &Analyzer{
		root:      root,
		languages: languages,
		ignore:    ignore,
		cache:     c,
		registry:  extract.NewRegistry(),
	}
}

// Run analyzes the tree and returns the resolved graph. Per-file parse
// failures are logged and skipped; only scan and index failures abort the
// run.
func (a *Analyzer) Run(ctx context.Context) (*graph.Graph, Stats, error) {
	var stats Stats
	slog.Info("analyze.start", "root", a.root, "languages", len(a.languages))

	t := time.Now()
	files, err := scan.Scan(ctx, a.root, a.languages, a.ignore)
	if err != nil {
		return nil, stats, fmt.Errorf("scan: %w", err)
	}
	stats.FilesScanned = len(files)
	slog.Info("analyze.scanned", "files", len(files), "elapsed", time.Since(t))

	builder := graph.NewBuilder()
	var sites []graph.CallSite

	t = time.Now()
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		res, fromCache, err := a.parseFile(f)
		if err != nil {
			slog.Warn("analyze.file.err", "path", f.RelPath, "err", err)
			continue
		}
		if fromCache {
			stats.CacheHits++
		} else {
			stats.FilesParsed++
		}
		for _, n := range res.Nodes {
			builder.AddNode(n)
		}
		for _, e := range res.Edges {
			builder.AddEdge(e)
		}
		sites = append(sites, res.CallSites...)
	}
	stats.CallSites = len(sites)
	slog.Info("analyze.extracted", "nodes", builder.NodeCount(), "call_sites", len(sites), "cache_hits", stats.CacheHits, "elapsed", time.Since(t))

	t = time.Now()
	resolver := resolve.New()
	if err := resolver.BuildIndexes(builder.Nodes()); err != nil {
		return nil, stats, fmt.Errorf("build indexes: %w", err)
	}
	edges := resolver.ResolveCalls(sites)
	slog.Info("analyze.resolved", "functions", resolver.FunctionCount(), "methods", resolver.MethodCount(), "edges", len(edges), "elapsed", time.Since(t))

	for _, e := range edges {
		// Constructor calls may target classes the scan never saw; register
		// the placeholder so the edge attaches.
		if !builder.HasNode(e.TargetID) {
			if name, ok := externalClassName(e.TargetID); ok {
				builder.AddNode(graph.NewNode(e.TargetID, name, graph.NodeClass, "external", 0, ""))
			}
		}
		if builder.AddEdge(e) {
			stats.EdgesResolved++
		}
	}

	g := builder.Build()
	stats.NodesTotal = g.NodeCount()
	stats.EdgesTotal = g.EdgeCount()
	slog.Info("analyze.done", "nodes", stats.NodesTotal, "edges", stats.EdgesTotal)
	return g, stats, nil
}

// parseFile returns the extraction result for f, serving it from the cache
// when the file is unchanged since the last run.
func (a *Analyzer) parseFile(f scan.FileInfo) (*extract.Result, bool, error) {
	stale, err := a.cache.NeedsUpdate(f.Path)
	if err != nil {
		return nil, false, err
	}
	if !stale {
		if res, ok := a.cache.Get(f.Path); ok {
			return res, true, nil
		}
	}

	ex, err := a.registry.Get(f.Language)
	if err != nil {
		return nil, false, err
	}
	res, err := ex.ParseFile(f.Path)
	if err != nil {
		return nil, false, err
	}
	if err := a.cache.Store(f.Path, res); err != nil {
		slog.Warn("cache.store.err", "path", f.RelPath, "err", err)
	}
	return res, false, nil
}

// externalClassName extracts the class name from an external placeholder ID
// of the form "external:class:<Name>:0".
func externalClassName(id string) (string, bool) {
	rest, ok := strings.CutPrefix(id, "external:class:")
	if !ok {
		return "", false
	}
	name, ok := strings.CutSuffix(rest, ":0")
	if !ok || name == "" {
		return "", false
	}
	return name, true
}
