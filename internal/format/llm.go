package format

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/codegraph-dev/codegraph/internal/graph"
)

// LLMText renders the graph as a markdown digest: entities grouped per file,
// followed by the resolved call relationships. The layout favors a language
// model reading it cold over byte economy.
type LLMText struct{}

func (f *LLMText) Name() string { return "llm" }

func (f *LLMText) Format(g *graph.Graph) ([]byte, error) {
	nodes := g.Nodes()

	byFile := make(map[string][]*graph.Node)
	for _, n := range nodes {
		if n.FilePath == "external" || n.FilePath == "" {
			continue
		}
		byFile[n.FilePath] = append(byFile[n.FilePath], n)
	}
	files := make([]string, 0, len(byFile))
	for path := range byFile {
		files = append(files, path)
	}
	sort.Strings(files)

	names := make(map[string]string, len(nodes))
	for _, n := range nodes {
		names[n.ID] = n.Name
	}

	var buf bytes.Buffer
	buf.WriteString("# Code Graph\n\n")
	fmt.Fprintf(&buf, "%d files, %d entities, %d relationships.\n", len(files), g.NodeCount(), g.EdgeCount())

	for _, path := range files {
		fileNodes := byFile[path]
		sort.Slice(fileNodes, func(i, j int) bool {
			if fileNodes[i].Line != fileNodes[j].Line {
				return fileNodes[i].Line < fileNodes[j].Line
			}
			return fileNodes[i].ID < fileNodes[j].ID
		})

		fmt.Fprintf(&buf, "\n## %s\n\n", path)
		for _, n := range fileNodes {
			if n.Type == graph.NodeModule {
				continue
			}
			fmt.Fprintf(&buf, "- %s `%s` (line %d)", n.Type, displayName(n), n.Line)
			if n.Signature != "" && n.Signature != n.Name {
				fmt.Fprintf(&buf, " `%s`", n.Signature)
			}
			if n.Docstring != "" {
				fmt.Fprintf(&buf, ": %s", firstLine(n.Docstring))
			}
			buf.WriteByte('\n')
		}
	}

	calls := edgesOfType(g, graph.EdgeCall)
	if len(calls) > 0 {
		buf.WriteString("\n## Calls\n\n")
		for _, e := range calls {
			fmt.Fprintf(&buf, "- %s -> %s\n", callerLabel(e.SourceID, names), names[e.TargetID])
		}
	}

	inherits := append(edgesOfType(g, graph.EdgeInheritance), edgesOfType(g, graph.EdgeImplements)...)
	if len(inherits) > 0 {
		buf.WriteString("\n## Type hierarchy\n\n")
		for _, e := range inherits {
			fmt.Fprintf(&buf, "- %s %s %s\n", names[e.SourceID], hierarchyVerb(e.Type), names[e.TargetID])
		}
	}

	return buf.Bytes(), nil
}

func edgesOfType(g *graph.Graph, typ graph.EdgeType) []graph.Edge {
	var out []graph.Edge
	for _, e := range g.Edges() {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SourceID != out[j].SourceID {
			return out[i].SourceID < out[j].SourceID
		}
		return out[i].TargetID < out[j].TargetID
	})
	return out
}

// displayName prefixes methods with their class so `Class.method` reads
// unambiguously in a flat list.
func displayName(n *graph.Node) string {
	if class, ok := graph.ClassFromID(n.ID); ok && n.Type == graph.NodeFunction {
		return class + "." + n.Name
	}
	return n.Name
}

func callerLabel(id string, names map[string]string) string {
	if id == graph.ModuleLevelCaller {
		return "(module level)"
	}
	if name, ok := names[id]; ok {
		return name
	}
	return id
}

func hierarchyVerb(typ graph.EdgeType) string {
	if typ == graph.EdgeImplements {
		return "implements"
	}
	return "inherits"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
