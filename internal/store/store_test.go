package store

import (
	"testing"

	"github.com/codegraph-dev/codegraph/internal/graph"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder()
	foo := graph.NewNode("a.py:function:foo:1", "foo", graph.NodeFunction, "a.py", 1, "python").WithSignature("foo(x)")
	bar := graph.NewNode("b.py:function:bar:5", "bar", graph.NodeFunction, "b.py", 5, "python")
	b.AddNode(foo)
	b.AddNode(bar)
	if !b.AddEdge(graph.NewEdge(graph.EdgeCall, foo.ID, bar.ID).WithContext("line:3")) {
		t.Fatal("AddEdge failed")
	}
	return b.Build()
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveGraphAndCounts(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveGraph(testGraph(t)); err != nil {
		t.Fatalf("SaveGraph() error: %v", err)
	}

	c, err := s.GraphCounts()
	if err != nil {
		t.Fatal(err)
	}
	if c.Nodes != 2 || c.Edges != 1 {
		t.Errorf("GraphCounts() = %+v, want 2 nodes, 1 edge", c)
	}
}

func TestSaveGraphReplaces(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveGraph(testGraph(t)); err != nil {
		t.Fatal(err)
	}
	// Saving again must replace, not append.
	if err := s.SaveGraph(testGraph(t)); err != nil {
		t.Fatal(err)
	}
	c, err := s.GraphCounts()
	if err != nil {
		t.Fatal(err)
	}
	if c.Nodes != 2 || c.Edges != 1 {
		t.Errorf("GraphCounts() after resave = %+v", c)
	}
}

func TestFindNode(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveGraph(testGraph(t)); err != nil {
		t.Fatal(err)
	}

	n, err := s.FindNode("a.py:function:foo:1")
	if err != nil {
		t.Fatal(err)
	}
	if n == nil {
		t.Fatal("FindNode() = nil for stored node")
	}
	if n.Name != "foo" || n.Type != graph.NodeFunction || n.Signature != "foo(x)" {
		t.Errorf("FindNode() = %+v", n)
	}

	missing, err := s.FindNode("nope")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Errorf("FindNode() = %+v for unknown ID", missing)
	}
}

func TestNodesByType(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveGraph(testGraph(t)); err != nil {
		t.Fatal(err)
	}

	fns, err := s.NodesByType(graph.NodeFunction)
	if err != nil {
		t.Fatal(err)
	}
	if len(fns) != 2 {
		t.Errorf("NodesByType(function) = %d nodes, want 2", len(fns))
	}
	classes, err := s.NodesByType(graph.NodeClass)
	if err != nil {
		t.Fatal(err)
	}
	if len(classes) != 0 {
		t.Errorf("NodesByType(class) = %d nodes, want 0", len(classes))
	}
}

func TestCalleesAndCallers(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveGraph(testGraph(t)); err != nil {
		t.Fatal(err)
	}

	out, err := s.Callees("a.py:function:foo:1")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].TargetID != "b.py:function:bar:5" {
		t.Errorf("Callees() = %+v", out)
	}
	if out[0].Context != "line:3" {
		t.Errorf("Callees() context = %q", out[0].Context)
	}

	in, err := s.Callers("b.py:function:bar:5")
	if err != nil {
		t.Fatal(err)
	}
	if len(in) != 1 || in[0].SourceID != "a.py:function:foo:1" {
		t.Errorf("Callers() = %+v", in)
	}
}
