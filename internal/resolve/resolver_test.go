package resolve

import (
	"strings"
	"testing"

	"github.com/codegraph-dev/codegraph/internal/graph"
)

func fn(path, name string, line int) *graph.Node {
	return graph.NewNode(graph.NodeID(path, "function", name, line), name, graph.NodeFunction, path, line, "python")
}

func method(path, class, name string, line int) *graph.Node {
	return graph.NewNode(graph.MethodID(path, class, name, line), name, graph.NodeFunction, path, line, "python")
}

func buildResolver(t *testing.T, nodes ...*graph.Node) *Resolver {
	t.Helper()
	r := New()
	if err := r.BuildIndexes(nodes); err != nil {
		t.Fatalf("BuildIndexes() error: %v", err)
	}
	return r
}

func TestBuildIndexesPartitionsFunctionsAndMethods(t *testing.T) {
	r := buildResolver(t,
		fn("a.py", "foo", 1),
		fn("b.py", "bar", 2),
		method("c.py", "User", "save", 10),
		graph.NewNode("a.py:module:a:0", "a", graph.NodeModule, "a.py", 0, "python"),
		graph.NewNode("a.py:class:User:5", "User", graph.NodeClass, "a.py", 5, "python"),
	)

	if got := r.FunctionCount(); got != 2 {
		t.Errorf("FunctionCount() = %d, want 2", got)
	}
	if got := r.MethodCount(); got != 1 {
		t.Errorf("MethodCount() = %d, want 1", got)
	}
}

func TestResolveSimpleCallExact(t *testing.T) {
	target := fn("b.py", "bar", 7)
	r := buildResolver(t, fn("a.py", "foo", 1), target)

	edges := r.ResolveCalls([]graph.CallSite{
		{CallerID: "a.py:function:foo:1", CalledName: "bar", CallType: graph.SimpleCall, Line: 3},
	})

	if len(edges) != 1 {
		t.Fatalf("ResolveCalls() = %d edges, want 1", len(edges))
	}
	e := edges[0]
	if e.TargetID != target.ID {
		t.Errorf("TargetID = %q, want %q", e.TargetID, target.ID)
	}
	if e.SourceID != "a.py:function:foo:1" {
		t.Errorf("SourceID = %q", e.SourceID)
	}
	if e.Context != "line:3" {
		t.Errorf("Context = %q, want line:3", e.Context)
	}
}

func TestResolveSimpleCallFuzzy(t *testing.T) {
	target := fn("b.py", "calculate", 7)
	r := buildResolver(t, target)

	// One substitution away.
	edges := r.ResolveCalls([]graph.CallSite{
		{CallerID: graph.ModuleLevelCaller, CalledName: "calculte", CallType: graph.SimpleCall, Line: 9},
	})
	if len(edges) != 1 {
		t.Fatalf("ResolveCalls() = %d edges, want 1 fuzzy match", len(edges))
	}
	if edges[0].TargetID != target.ID {
		t.Errorf("TargetID = %q", edges[0].TargetID)
	}
	if !strings.HasPrefix(edges[0].Context, "fuzzy_match:") {
		t.Errorf("Context = %q, want fuzzy_match prefix", edges[0].Context)
	}
}

func TestResolveSimpleCallNoMatch(t *testing.T) {
	r := buildResolver(t, fn("b.py", "calculate", 7))

	// Distance 3 from "calculate"; beyond the fuzzy bound.
	edges := r.ResolveCalls([]graph.CallSite{
		{CallerID: graph.ModuleLevelCaller, CalledName: "calcxyz", CallType: graph.SimpleCall, Line: 9},
	})
	if len(edges) != 0 {
		t.Fatalf("ResolveCalls() = %v, want no edges", edges)
	}
}

func TestFuzzySkipsShortNames(t *testing.T) {
	r := buildResolver(t, fn("b.py", "run", 1))

	// "ran" is distance 1 from "run", but names of length <= 3 are excluded.
	edges := r.ResolveCalls([]graph.CallSite{
		{CallerID: graph.ModuleLevelCaller, CalledName: "ran", CallType: graph.SimpleCall, Line: 2},
	})
	if len(edges) != 0 {
		t.Fatalf("ResolveCalls() = %v, want no edges for short-name fuzzy", edges)
	}
}

func TestResolveMethodCall(t *testing.T) {
	target := method("models.py", "User", "save", 12)
	r := buildResolver(t, target, fn("models.py", "save_all", 40))

	edges := r.ResolveCalls([]graph.CallSite{
		{CallerID: graph.ModuleLevelCaller, CalledName: "user.save", CallType: graph.MethodCall, Line: 20},
	})
	if len(edges) != 1 {
		t.Fatalf("ResolveCalls() = %d edges, want 1", len(edges))
	}
	if edges[0].TargetID != target.ID {
		t.Errorf("TargetID = %q, want %q", edges[0].TargetID, target.ID)
	}
	if edges[0].Context != "method_call:line:20" {
		t.Errorf("Context = %q", edges[0].Context)
	}
}

func TestResolveAttributeCall(t *testing.T) {
	target := method("client.py", "HTTPClient", "request", 30)
	r := buildResolver(t, target)

	edges := r.ResolveCalls([]graph.CallSite{
		{CallerID: graph.ModuleLevelCaller, CalledName: "session.client.request", CallType: graph.AttributeCall, Line: 8},
	})
	if len(edges) != 1 {
		t.Fatalf("ResolveCalls() = %d edges, want 1", len(edges))
	}
	if edges[0].Context != "attribute_call:line:8" {
		t.Errorf("Context = %q", edges[0].Context)
	}
}

func TestResolveConstructorCallAlwaysLinks(t *testing.T) {
	r := buildResolver(t, fn("a.py", "helper", 1))

	edges := r.ResolveCalls([]graph.CallSite{
		{CallerID: graph.ModuleLevelCaller, CalledName: "Widget", CallType: graph.ConstructorCall, Line: 5},
	})
	if len(edges) != 1 {
		t.Fatalf("ResolveCalls() = %d edges, want 1 placeholder edge", len(edges))
	}
	if edges[0].TargetID != graph.ExternalClassID("Widget") {
		t.Errorf("TargetID = %q, want external placeholder", edges[0].TargetID)
	}
}

func TestResolveConstructorCallMatchesDefinition(t *testing.T) {
	target := fn("widget.py", "Widget", 3)
	r := buildResolver(t, target)

	edges := r.ResolveCalls([]graph.CallSite{
		{CallerID: graph.ModuleLevelCaller, CalledName: "Widget", CallType: graph.ConstructorCall, Line: 5},
	})
	if len(edges) != 1 {
		t.Fatalf("ResolveCalls() = %d edges, want 1", len(edges))
	}
	if edges[0].TargetID != target.ID {
		t.Errorf("TargetID = %q, want %q", edges[0].TargetID, target.ID)
	}
}

func TestResolveQualifiedCallDegradesToNothing(t *testing.T) {
	r := buildResolver(t, fn("utils.py", "parse", 2))

	// No import aliases exist, so module-qualified names cannot resolve.
	edges := r.ResolveCalls([]graph.CallSite{
		{CallerID: graph.ModuleLevelCaller, CalledName: "utils.parse", CallType: graph.QualifiedCall, Line: 4},
	})
	if len(edges) != 0 {
		t.Fatalf("ResolveCalls() = %v, want no edges", edges)
	}
}

func TestResolveDynamicCallYieldsNothing(t *testing.T) {
	r := buildResolver(t, fn("a.py", "handler", 1))

	edges := r.ResolveCalls([]graph.CallSite{
		{CallerID: graph.ModuleLevelCaller, CalledName: "getattr(obj, name)", CallType: graph.DynamicCall, Line: 6},
	})
	if len(edges) != 0 {
		t.Fatalf("ResolveCalls() = %v, want no edges", edges)
	}
}

func TestSelectBestCandidatePrefersExactName(t *testing.T) {
	site := &graph.CallSite{CalledName: "process", Line: 1}
	candidates := []FunctionEntry{
		{NodeID: "x", Name: "processor"},
		{NodeID: "y", Name: "process"},
	}
	if best := selectBestCandidate(candidates, site); best.NodeID != "y" {
		t.Errorf("selectBestCandidate() = %q, want exact-name candidate", best.NodeID)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"calculate", "calculte", 1},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
