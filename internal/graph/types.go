// Package graph defines the dependency graph data model: typed nodes and
// edges, call sites awaiting resolution, and an incremental builder that
// freezes into an immutable Graph.
package graph

import (
	"fmt"
	"strings"
)

// NodeType classifies a code entity.
type NodeType string

const (
	NodeModule    NodeType = "module"
	NodeClass     NodeType = "class"
	NodeFunction  NodeType = "function"
	NodeVariable  NodeType = "variable"
	NodeInterface NodeType = "interface"
	NodeEnum      NodeType = "enum"
)

// EdgeType classifies a relationship between two entities.
type EdgeType string

const (
	EdgeImport      EdgeType = "import"
	EdgeCall        EdgeType = "call"
	EdgeInheritance EdgeType = "inheritance"
	EdgeImplements  EdgeType = "implements"
	EdgeUses        EdgeType = "uses"
	EdgeContains    EdgeType = "contains"
)

// CallType classifies the shape of a call expression.
type CallType string

const (
	SimpleCall      CallType = "simple"
	MethodCall      CallType = "method"
	QualifiedCall   CallType = "qualified"
	AttributeCall   CallType = "attribute"
	DynamicCall     CallType = "dynamic"
	ConstructorCall CallType = "constructor"
)

// Node is a code entity in the dependency graph.
// ID format: `filepath:type:name:line` with path separators flattened to '_'.
type Node struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Type       NodeType `json:"type"`
	FilePath   string   `json:"file_path"`
	Line       int      `json:"line"`
	Language   string   `json:"language"`
	Signature  string   `json:"signature,omitempty"`
	Docstring  string   `json:"docstring,omitempty"`
	Visibility string   `json:"visibility,omitempty"`
}

// NewNode creates a Node with the required fields; optional fields are set
// through the With* methods.
func NewNode(id, name string, typ NodeType, filePath string, line int, language string) *Node {
	return &Node{
		ID:       id,
		Name:     name,
		Type:     typ,
		FilePath: filePath,
		Line:     line,
		Language: language,
	}
}

// WithSignature sets the signature and returns the node for chaining.
func (n *Node) WithSignature(sig string) *Node {
	n.Signature = sig
	return n
}

// WithDocstring sets the docstring and returns the node for chaining.
func (n *Node) WithDocstring(doc string) *Node {
	n.Docstring = doc
	return n
}

// WithVisibility sets the visibility and returns the node for chaining.
func (n *Node) WithVisibility(vis string) *Node {
	n.Visibility = vis
	return n
}

// Edge is a typed relationship between two nodes, referenced by ID.
type Edge struct {
	Type     EdgeType `json:"type"`
	SourceID string   `json:"source_id"`
	TargetID string   `json:"target_id"`
	Context  string   `json:"context,omitempty"`
}

// NewEdge creates an Edge without context.
func NewEdge(typ EdgeType, sourceID, targetID string) Edge {
	return Edge{Type: typ, SourceID: sourceID, TargetID: targetID}
}

// WithContext sets the context and returns the edge.
func (e Edge) WithContext(ctx string) Edge {
	e.Context = ctx
	return e
}

// ModuleLevelCaller is the caller ID used for call sites outside any
// tracked function.
const ModuleLevelCaller = "module_level"

// CallSite is a detected call expression awaiting resolution.
type CallSite struct {
	CallerID   string   `json:"caller_id"`
	CalledName string   `json:"called_name"`
	CallType   CallType `json:"call_type"`
	Context    string   `json:"context,omitempty"`
	Line       int      `json:"line"`
}

// NodeID builds the canonical node ID `filepath:kind:name:line`.
// Path separators are flattened so the ID stays a single ':'-delimited token
// stream regardless of platform. The kind token is usually a NodeType but
// imports use the literal token "import".
func NodeID(filePath, kind, name string, line int) string {
	return fmt.Sprintf("%s:%s:%s:%d", FlattenPath(filePath), kind, name, line)
}

// ExternalClassID builds the placeholder ID used when a constructor call
// cannot be resolved to a known node: `external:class:<Name>:0`.
func ExternalClassID(name string) string {
	return fmt.Sprintf("external:%s:%s:0", NodeClass, name)
}

// FlattenPath replaces path separators with underscores for use inside IDs.
func FlattenPath(p string) string {
	p = strings.ReplaceAll(p, "/", "_")
	return strings.ReplaceAll(p, "\\", "_")
}

// ClassFromID extracts the enclosing class name from a node ID, if the ID
// encodes one. Method nodes carry IDs like `file:class:Rect.area:42`; the
// class is the segment before the last dot in the name token.
func ClassFromID(id string) (string, bool) {
	parts := strings.Split(id, ":")
	if len(parts) < 3 || parts[1] != string(NodeClass) {
		return "", false
	}
	name := parts[2]
	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return "", false
	}
	return name[:idx], true
}

// MethodID builds the node ID for a method, encoding the enclosing class so
// the resolver can partition methods from free functions:
// `filepath:class:<Class>.<method>:line`.
func MethodID(filePath, className, methodName string, line int) string {
	return fmt.Sprintf("%s:%s:%s.%s:%d", FlattenPath(filePath), NodeClass, className, methodName, line)
}
