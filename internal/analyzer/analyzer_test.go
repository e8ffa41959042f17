package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/codegraph-dev/codegraph/internal/cache"
	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/lang"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRunResolvesCrossFileCalls(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"helpers.py": "def helper(x):\n    return x * 2\n",
		"main.py":    "from helpers import helper\n\ndef main():\n    return helper(21)\n",
	})

	a := New(root, []lang.Language{lang.Python}, nil, nil)
	g, stats, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if stats.FilesScanned != 2 || stats.FilesParsed != 2 {
		t.Errorf("stats = %+v, want 2 files scanned and parsed", stats)
	}
	if stats.EdgesResolved == 0 {
		t.Fatal("no call edges resolved")
	}

	var helperID string
	for _, n := range g.Nodes() {
		if n.Type == graph.NodeFunction && n.Name == "helper" {
			helperID = n.ID
		}
	}
	if helperID == "" {
		t.Fatal("helper node missing from graph")
	}

	found := false
	for _, e := range g.Edges() {
		if e.Type == graph.EdgeCall && e.TargetID == helperID {
			found = true
		}
	}
	if !found {
		t.Error("call edge into helper missing")
	}
}

func TestRunCacheHitsOnSecondPass(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.py": "def a(): pass\n",
		"b.py": "def b(): pass\n",
	})

	c := cache.New(filepath.Join(t.TempDir(), "cache"), 10)

	a1 := New(root, []lang.Language{lang.Python}, nil, c)
	if _, stats, err := a1.Run(context.Background()); err != nil {
		t.Fatal(err)
	} else if stats.CacheHits != 0 {
		t.Errorf("first run cache hits = %d, want 0", stats.CacheHits)
	}

	a2 := New(root, []lang.Language{lang.Python}, nil, c)
	_, stats, err := a2.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.CacheHits != 2 {
		t.Errorf("second run cache hits = %d, want 2", stats.CacheHits)
	}
	if stats.FilesParsed != 0 {
		t.Errorf("second run parsed %d files, want 0", stats.FilesParsed)
	}
}

func TestRunRegistersExternalConstructorTargets(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app.py": "def build():\n    return Widget()\n",
	})

	a := New(root, []lang.Language{lang.Python}, nil, nil)
	g, _, err := a.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	placeholder := g.NodeByID(graph.ExternalClassID("Widget"))
	if placeholder == nil {
		t.Fatal("external constructor placeholder node missing")
	}
	if placeholder.Type != graph.NodeClass || placeholder.Name != "Widget" {
		t.Errorf("placeholder = %+v", placeholder)
	}
}

func TestRunSkipsUnparseableFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"ok.py": "def fine(): pass\n",
	})
	// An unreadable file must be skipped, not abort the run.
	bad := filepath.Join(root, "bad.py")
	if err := os.WriteFile(bad, []byte("def x(): pass\n"), 0o000); err != nil {
		t.Fatal(err)
	}
	if os.Getuid() == 0 {
		t.Skip("running as root, chmod 000 is not enforced")
	}

	a := New(root, []lang.Language{lang.Python}, nil, nil)
	g, stats, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if stats.FilesParsed != 1 {
		t.Errorf("FilesParsed = %d, want 1", stats.FilesParsed)
	}
	if g.NodeCount() == 0 {
		t.Error("graph empty although ok.py parsed")
	}
}

func TestRunMissingRoot(t *testing.T) {
	a := New(filepath.Join(t.TempDir(), "nope"), []lang.Language{lang.Python}, nil, nil)
	if _, _, err := a.Run(context.Background()); err == nil {
		t.Error("Run() succeeded on a missing root")
	}
}
