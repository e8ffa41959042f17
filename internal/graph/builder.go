package graph

// Builder accumulates nodes and edges during one analysis run and freezes
// them into an immutable Graph.
//
// Node storage is append-only; the ID index is last-write-wins. Re-adding an
// existing ID leaves the earlier node physically stored but unreachable
// through the index, so counts reflect storage, not the index.
type Builder struct {
	nodes   []*Node
	edges   []Edge
	nodeIdx map[string]int // ID -> index into nodes
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{nodeIdx: make(map[string]int)}
}

// AddNode stores a node and indexes it by ID. Last write wins in the index.
func (b *Builder) AddNode(node *Node) {
	b.nodes = append(b.nodes, node)
	b.nodeIdx[node.ID] = len(b.nodes) - 1
}

// HasNode reports whether an ID is currently indexed.
func (b *Builder) HasNode(id string) bool {
	_, ok := b.nodeIdx[id]
	return ok
}

// AddEdge inserts an edge if both endpoints are indexed. Returns false,
// without storing anything, when either endpoint is unknown.
func (b *Builder) AddEdge(edge Edge) bool {
	if _, ok := b.nodeIdx[edge.SourceID]; !ok {
		return false
	}
	if _, ok := b.nodeIdx[edge.TargetID]; !ok {
		return false
	}
	b.edges = append(b.edges, edge)
	return true
}

// NodeCount returns the number of stored nodes, duplicates included.
func (b *Builder) NodeCount() int {
	return len(b.nodes)
}

// Nodes returns the stored nodes in insertion order. The slice is a copy but
// the nodes are shared; callers must not mutate them.
func (b *Builder) Nodes() []*Node {
	out := make([]*Node, len(b.nodes))
	copy(out, b.nodes)
	return out
}

// Build consumes the builder and returns the immutable graph. The builder
// must not be used afterward.
func (b *Builder) Build() *Graph {
	g := &Graph{nodes: b.nodes, edges: b.edges, nodeIdx: b.nodeIdx}
	b.nodes = nil
	b.edges = nil
	b.nodeIdx = nil
	return g
}

// Graph is the finalized dependency graph. Consumers iterate nodes and edges
// through accessors only; the underlying storage is never handed out mutable.
type Graph struct {
	nodes   []*Node
	edges   []Edge
	nodeIdx map[string]int
}

// Nodes returns all stored nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// NodeByID returns the indexed node for an ID, or nil.
func (g *Graph) NodeByID(id string) *Node {
	idx, ok := g.nodeIdx[id]
	if !ok {
		return nil
	}
	return g.nodes[idx]
}

// NodeCount returns the number of stored nodes, duplicates included.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }
