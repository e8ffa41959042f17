package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/lang"
	"github.com/codegraph-dev/codegraph/internal/parser"
)

// treeSitterExtractor is the table-driven extractor shared by all languages.
// The lang.Spec tables name the node kinds; the few genuinely grammar-shaped
// cases (Go type specs, Python docstrings, heritage clauses) get language
// switches.
type treeSitterExtractor struct {
	spec *lang.Spec
}

func newTreeSitterExtractor(spec *lang.Spec) *treeSitterExtractor {
	return &treeSitterExtractor{spec: spec}
}

func (e *treeSitterExtractor) Language() lang.Language {
	return e.spec.Language
}

func (e *treeSitterExtractor) ParseFile(path string) (*Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	tree, err := parser.Parse(e.spec.Language, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	st := &fileState{
		spec:     e.spec,
		path:     path,
		source:   source,
		seen:     make(map[string]bool),
		classIDs: make(map[string]string),
	}
	root := tree.RootNode()

	st.addFileModule()
	st.collectClassNames(root)
	st.walk(root, "")

	sites := NewCallSiteExtractor().Extract(root, source, path)

	return &Result{Nodes: st.nodes, Edges: st.edges, CallSites: sites}, nil
}

// fileState accumulates nodes and edges for one file. Fresh per ParseFile.
type fileState struct {
	spec   *lang.Spec
	path   string
	source []byte

	nodes []*graph.Node
	edges []graph.Edge

	moduleID string
	seen     map[string]bool   // node IDs already emitted (placeholders)
	classIDs map[string]string // class name -> node ID, for inheritance
}

func (st *fileState) langName() string {
	return string(st.spec.Language)
}

// addFileModule emits the per-file module node that anchors import edges.
func (st *fileState) addFileModule() {
	stem := strings.TrimSuffix(filepath.Base(st.path), filepath.Ext(st.path))
	st.moduleID = graph.NodeID(st.path, string(graph.NodeModule), stem, 0)
	st.addNode(graph.NewNode(st.moduleID, stem, graph.NodeModule, st.path, 0, st.langName()))
}

// collectClassNames records every class name before the main walk so
// inheritance edges can resolve to classes declared later in the file.
func (st *fileState) collectClassNames(root *tree_sitter.Node) {
	parser.Walk(root, func(node *tree_sitter.Node) bool {
		if !slices.Contains(st.spec.ClassNodeTypes, node.Kind()) {
			return true
		}
		if name := st.declName(node); name != "" {
			st.classIDs[name] = graph.NodeID(st.path, string(graph.NodeClass), name, parser.Line(node))
		}
		return true
	})
}

func (st *fileState) walk(node *tree_sitter.Node, parentFuncID string) {
	kind := node.Kind()

	switch {
	case slices.Contains(st.spec.ImportNodeTypes, kind):
		st.addImport(node)
		return
	case slices.Contains(st.spec.ClassNodeTypes, kind):
		st.addClass(node)
		return
	case slices.Contains(st.spec.InterfaceNodeTypes, kind):
		st.addSimpleDecl(node, graph.NodeInterface)
		return
	case slices.Contains(st.spec.EnumNodeTypes, kind):
		st.addSimpleDecl(node, graph.NodeEnum)
		return
	case slices.Contains(st.spec.FunctionNodeTypes, kind):
		if id := st.addFunction(node, parentFuncID, ""); id != "" {
			parentFuncID = id
		}
	case slices.Contains(st.spec.VariableNodeTypes, kind) && st.isModuleLevel(node):
		st.addVariable(node)
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			st.walk(child, parentFuncID)
		}
	}
}

func (st *fileState) addNode(n *graph.Node) {
	st.nodes = append(st.nodes, n)
}

func (st *fileState) addImport(node *tree_sitter.Node) {
	text := parser.NodeText(node, st.source)
	line := parser.Line(node)
	id := graph.NodeID(st.path, "import", text, line)
	st.addNode(graph.NewNode(id, text, graph.NodeModule, st.path, line, st.langName()))
	st.edges = append(st.edges, graph.NewEdge(graph.EdgeImport, st.moduleID, id))
}

// addSimpleDecl emits a node for interface and enum declarations.
func (st *fileState) addSimpleDecl(node *tree_sitter.Node, typ graph.NodeType) {
	name := st.declName(node)
	if name == "" {
		return
	}
	line := parser.Line(node)
	id := graph.NodeID(st.path, string(typ), name, line)
	st.addNode(graph.NewNode(id, name, typ, st.path, line, st.langName()))
}

func (st *fileState) addClass(node *tree_sitter.Node) {
	// Go hides struct vs interface inside type_spec children.
	if st.spec.Language == lang.Go && node.Kind() == "type_declaration" {
		st.addGoTypeDecl(node)
		return
	}

	name := st.declName(node)
	if name == "" {
		return
	}
	line := parser.Line(node)
	id := graph.NodeID(st.path, string(graph.NodeClass), name, line)

	classNode := graph.NewNode(id, name, graph.NodeClass, st.path, line, st.langName())
	if doc := st.docstring(node); doc != "" {
		classNode.WithDocstring(doc)
	}
	st.addNode(classNode)

	st.addInheritance(node, id)
	st.addDecorators(node, id)
	st.addClassMethods(node, id, name)
}

// addGoTypeDecl splits a Go type_declaration into its type_spec entries and
// classifies each by the declared type shape.
func (st *fileState) addGoTypeDecl(node *tree_sitter.Node) {
	for i := uint(0); i < node.ChildCount(); i++ {
		spec := node.Child(i)
		if spec == nil || spec.Kind() != "type_spec" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := parser.NodeText(nameNode, st.source)
		line := parser.Line(spec)

		typ := graph.NodeClass
		if t := spec.ChildByFieldName("type"); t != nil && t.Kind() == "interface_type" {
			typ = graph.NodeInterface
		}
		id := graph.NodeID(st.path, string(typ), name, line)
		n := graph.NewNode(id, name, typ, st.path, line, st.langName())
		if unicode.IsUpper([]rune(name)[0]) {
			n.WithVisibility("public")
		} else {
			n.WithVisibility("private")
		}
		st.addNode(n)
	}
}

// addClassMethods emits Function nodes for members of a class body, with IDs
// that encode the enclosing class and a Contains edge from the class.
func (st *fileState) addClassMethods(node *tree_sitter.Node, classID, className string) {
	body := node.ChildByFieldName("body")
	if body == nil && st.spec.BodyNodeType != "" {
		body = parser.FindChildByKind(node, st.spec.BodyNodeType)
	}
	if body == nil {
		return
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		member := child
		// Python wraps decorated methods.
		if member.Kind() == "decorated_definition" {
			if def := member.ChildByFieldName("definition"); def != nil {
				member = def
			}
		}
		if slices.Contains(st.spec.FunctionNodeTypes, member.Kind()) {
			st.addFunction(member, classID, className)
		}
	}
}

// addFunction emits a Function node. className is non-empty for methods;
// parentID is the enclosing class or function for Contains edges.
func (st *fileState) addFunction(node *tree_sitter.Node, parentID, className string) string {
	name := st.declName(node)
	if name == "" {
		return ""
	}
	line := parser.Line(node)

	var id string
	if className != "" {
		id = graph.MethodID(st.path, className, name, line)
	} else {
		id = graph.NodeID(st.path, string(graph.NodeFunction), name, line)
	}

	fn := graph.NewNode(id, name, graph.NodeFunction, st.path, line, st.langName()).
		WithSignature(st.signature(node, name))
	if vis := st.visibility(name); vis != "" {
		fn.WithVisibility(vis)
	}
	if doc := st.docstring(node); doc != "" {
		fn.WithDocstring(doc)
	}
	st.addNode(fn)
	st.addDecorators(node, id)

	if parentID != "" {
		st.edges = append(st.edges, graph.NewEdge(graph.EdgeContains, parentID, id))
	}
	return id
}

func (st *fileState) addVariable(node *tree_sitter.Node) {
	name := firstIdentifier(node, st.source)
	if name == "" {
		return
	}
	line := parser.Line(node)
	id := graph.NodeID(st.path, string(graph.NodeVariable), name, line)
	st.addNode(graph.NewNode(id, name, graph.NodeVariable, st.path, line, st.langName()))
}

// addInheritance emits Inheritance/Implements edges for a class declaration.
// Locally declared parents resolve to their node IDs; unknown parents get an
// external placeholder node so the edge survives graph assembly.
func (st *fileState) addInheritance(node *tree_sitter.Node, classID string) {
	switch st.spec.Language {
	case lang.Python:
		if args := parser.FindChildByKind(node, "argument_list"); args != nil {
			for i := uint(0); i < args.ChildCount(); i++ {
				child := args.Child(i)
				if child == nil {
					continue
				}
				switch child.Kind() {
				case "identifier", "attribute":
					st.addParentEdge(classID, parser.NodeText(child, st.source), graph.EdgeInheritance)
				}
			}
		}

	case lang.JavaScript, lang.TypeScript:
		if heritage := parser.FindChildByKind(node, "class_heritage"); heritage != nil {
			st.addHeritageClause(heritage, classID)
		}

	case lang.Java:
		if sup := node.ChildByFieldName("superclass"); sup != nil {
			if t := parser.FindChildByKind(sup, "type_identifier", "generic_type"); t != nil {
				st.addParentEdge(classID, parser.NodeText(t, st.source), graph.EdgeInheritance)
			}
		}
		if ifaces := node.ChildByFieldName("interfaces"); ifaces != nil {
			parser.Walk(ifaces, func(n *tree_sitter.Node) bool {
				if n.Kind() == "type_identifier" {
					st.addParentEdge(classID, parser.NodeText(n, st.source), graph.EdgeImplements)
				}
				return true
			})
		}

	case lang.CPP:
		if base := parser.FindChildByKind(node, "base_class_clause"); base != nil {
			parser.Walk(base, func(n *tree_sitter.Node) bool {
				if n.Kind() == "type_identifier" || n.Kind() == "qualified_identifier" {
					st.addParentEdge(classID, parser.NodeText(n, st.source), graph.EdgeInheritance)
					return false
				}
				return true
			})
		}
	}
}

// addHeritageClause handles JS "extends X" and TS extends/implements clauses.
func (st *fileState) addHeritageClause(heritage *tree_sitter.Node, classID string) {
	for i := uint(0); i < heritage.ChildCount(); i++ {
		child := heritage.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier", "member_expression":
			st.addParentEdge(classID, parser.NodeText(child, st.source), graph.EdgeInheritance)
		case "extends_clause":
			parser.Walk(child, func(n *tree_sitter.Node) bool {
				if n.Kind() == "identifier" || n.Kind() == "type_identifier" {
					st.addParentEdge(classID, parser.NodeText(n, st.source), graph.EdgeInheritance)
					return false
				}
				return true
			})
		case "implements_clause":
			parser.Walk(child, func(n *tree_sitter.Node) bool {
				if n.Kind() == "type_identifier" {
					st.addParentEdge(classID, parser.NodeText(n, st.source), graph.EdgeImplements)
				}
				return true
			})
		}
	}
}

func (st *fileState) addParentEdge(classID, parentName string, edgeType graph.EdgeType) {
	if parentName == "" {
		return
	}
	parentID, ok := st.classIDs[parentName]
	if !ok {
		parentID = graph.ExternalClassID(parentName)
		if !st.seen[parentID] {
			st.seen[parentID] = true
			placeholder := graph.NewNode(parentID, parentName, graph.NodeClass, st.path, 0, st.langName()).
				WithVisibility("external")
			st.addNode(placeholder)
		}
	}
	st.edges = append(st.edges, graph.NewEdge(edgeType, classID, parentID))
}

// addDecorators emits Uses edges for Python decorators, with placeholder
// nodes so the edges attach.
func (st *fileState) addDecorators(node *tree_sitter.Node, targetID string) {
	if st.spec.Language != lang.Python {
		return
	}
	parent := node.Parent()
	if parent == nil || parent.Kind() != "decorated_definition" {
		return
	}
	for i := uint(0); i < parent.ChildCount(); i++ {
		child := parent.Child(i)
		if child == nil || child.Kind() != "decorator" {
			continue
		}
		name := strings.TrimPrefix(parser.NodeText(child, st.source), "@")
		if idx := strings.Index(name, "("); idx >= 0 {
			name = name[:idx]
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		decID := fmt.Sprintf("external:decorator:%s:0", name)
		if !st.seen[decID] {
			st.seen[decID] = true
			st.addNode(graph.NewNode(decID, name, graph.NodeFunction, st.path, 0, st.langName()).
				WithVisibility("external"))
		}
		st.edges = append(st.edges, graph.NewEdge(graph.EdgeUses, targetID, decID))
	}
}

// declName resolves the declared name of a definition node.
func (st *fileState) declName(node *tree_sitter.Node) string {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return parser.NodeText(nameNode, st.source)
	}
	if child := parser.FindChildByKind(node, "identifier", "type_identifier", "property_identifier", "field_identifier"); child != nil {
		return parser.NodeText(child, st.source)
	}
	// C++ free functions hide the name inside the declarator.
	if decl := parser.FindChildByKind(node, "function_declarator"); decl != nil {
		if inner := parser.FindChildByKind(decl, "identifier", "qualified_identifier", "field_identifier"); inner != nil {
			return parser.NodeText(inner, st.source)
		}
	}
	return ""
}

// signature renders `name(params)` from the declaration's parameter list.
func (st *fileState) signature(node *tree_sitter.Node, name string) string {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		params = parser.FindChildByKind(node, "parameters", "formal_parameters", "parameter_list")
	}
	if params == nil {
		if decl := parser.FindChildByKind(node, "function_declarator"); decl != nil {
			params = parser.FindChildByKind(decl, "parameter_list")
		}
	}
	if params == nil {
		return name
	}
	return name + parser.NodeText(params, st.source)
}

// visibility applies per-language naming conventions.
func (st *fileState) visibility(name string) string {
	if name == "" {
		return ""
	}
	switch st.spec.Language {
	case lang.Python:
		switch {
		case strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__"):
			return "dunder"
		case strings.HasPrefix(name, "__"):
			return "private"
		case strings.HasPrefix(name, "_"):
			return "protected"
		default:
			return "public"
		}
	case lang.Go:
		if unicode.IsUpper([]rune(name)[0]) {
			return "public"
		}
		return "private"
	}
	return ""
}

// docstring extracts a Python docstring: the first statement of the body when
// it is a triple-quoted string.
func (st *fileState) docstring(node *tree_sitter.Node) string {
	if st.spec.Language != lang.Python {
		return ""
	}
	body := node.ChildByFieldName("body")
	if body == nil {
		body = parser.FindChildByKind(node, "block")
	}
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first == nil || first.Kind() != "expression_statement" {
		return ""
	}
	strNode := first.NamedChild(0)
	if strNode == nil || strNode.Kind() != "string" {
		return ""
	}
	text := parser.NodeText(strNode, st.source)
	if !strings.HasPrefix(text, `"""`) && !strings.HasPrefix(text, "'''") {
		return ""
	}
	return strings.Trim(text, `"'`)
}

// isModuleLevel reports whether a variable declaration sits at file scope.
func (st *fileState) isModuleLevel(node *tree_sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}
	if parent.Kind() == "expression_statement" {
		parent = parent.Parent()
		if parent == nil {
			return false
		}
	}
	switch parent.Kind() {
	case "module", "program", "source_file", "translation_unit", "compilation_unit":
		return true
	}
	return false
}

// firstIdentifier returns the first identifier found depth-first.
func firstIdentifier(node *tree_sitter.Node, source []byte) string {
	name := ""
	parser.Walk(node, func(n *tree_sitter.Node) bool {
		if name != "" {
			return false
		}
		if n.Kind() == "identifier" {
			name = parser.NodeText(n, source)
			return false
		}
		return true
	})
	return name
}
