package format

import (
	"encoding/json"
	"sort"

	"github.com/codegraph-dev/codegraph/internal/graph"
)

// JSONCompact encodes the graph with a shared file table and index-based
// edges, keeping large graphs small enough to ship around.
type JSONCompact struct{}

type compactDoc struct {
	Files []string                `json:"files"`
	Nodes []compactNode           `json:"nodes"`
	Edges map[string][]compactRef `json:"edges"`
}

// compactNode references its file by position in the file table.
type compactNode struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	File      int    `json:"file"`
	Line      int    `json:"line"`
	Language  string `json:"lang,omitempty"`
	Signature string `json:"sig,omitempty"`
}

// compactRef is an edge as [source index, target index] into the node list,
// with an optional context string.
type compactRef struct {
	Source  int    `json:"s"`
	Target  int    `json:"t"`
	Context string `json:"ctx,omitempty"`
}

func (f *JSONCompact) Name() string { return "json" }

func (f *JSONCompact) Format(g *graph.Graph) ([]byte, error) {
	nodes := g.Nodes()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	fileIdx := make(map[string]int)
	var files []string
	fileOf := func(path string) int {
		if i, ok := fileIdx[path]; ok {
			return i
		}
		fileIdx[path] = len(files)
		files = append(files, path)
		return len(files) - 1
	}

	nodeIdx := make(map[string]int, len(nodes))
	compact := make([]compactNode, 0, len(nodes))
	for i, n := range nodes {
		nodeIdx[n.ID] = i
		compact = append(compact, compactNode{
			ID:        n.ID,
			Name:      n.Name,
			Type:      string(n.Type),
			File:      fileOf(n.FilePath),
			Line:      n.Line,
			Language:  n.Language,
			Signature: n.Signature,
		})
	}

	edges := make(map[string][]compactRef)
	for _, e := range g.Edges() {
		si, sok := nodeIdx[e.SourceID]
		ti, tok := nodeIdx[e.TargetID]
		if !sok || !tok {
			continue
		}
		key := string(e.Type)
		edges[key] = append(edges[key], compactRef{Source: si, Target: ti, Context: e.Context})
	}

	return json.MarshalIndent(compactDoc{Files: files, Nodes: compact, Edges: edges}, "", "  ")
}
