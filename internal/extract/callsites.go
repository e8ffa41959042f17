package extract

import (
	"strings"
	"unicode"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/parser"
)

// functionNodeKinds are the grammar-agnostic node kinds treated as
// "function-like" when tracking the enclosing caller.
var functionNodeKinds = map[string]bool{
	"function_definition":            true, // Python, C++
	"function_declaration":           true, // JavaScript, TypeScript, Go
	"generator_function_declaration": true, // JavaScript, TypeScript
	"method_definition":              true, // JavaScript, TypeScript
	"method_declaration":             true, // Go, Java, C#
	"constructor_declaration":        true, // Java, C#
	"destructor_declaration":         true, // C++
	"local_function_statement":       true, // C#
	"function_item":                  true, // Rust
}

// classNodeKinds are the node kinds that establish a class context for
// enclosed methods, so caller IDs line up with the extractors' method IDs.
var classNodeKinds = map[string]bool{
	"class_definition":           true, // Python
	"class_declaration":          true, // JavaScript, TypeScript, Java, C#
	"abstract_class_declaration": true, // TypeScript
	"class_specifier":            true, // C++
	"struct_declaration":         true, // C#
}

// callNodeKinds are the node kinds treated as call expressions.
var callNodeKinds = map[string]bool{
	"call":                       true, // Python
	"call_expression":            true, // JavaScript, TypeScript, Go, Rust, C++
	"new_expression":             true, // C++, JavaScript, TypeScript
	"constructor_call":           true,
	"macro_invocation":           true, // Rust
	"method_invocation":          true, // Java
	"invocation_expression":      true, // C#
	"object_creation_expression": true, // Java, C#
}

// CallSiteExtractor walks one parsed syntax tree and produces a flat list of
// call sites, tracking the enclosing function as it descends. State is reset
// on every Extract call, so one instance is reusable per file but never
// concurrently.
type CallSiteExtractor struct {
	sites           []graph.CallSite
	currentFunc     string
	currentFuncLine int
	currentClass    string
	currentFile     string
}

// NewCallSiteExtractor creates a fresh extractor.
func NewCallSiteExtractor() *CallSiteExtractor {
	return &CallSiteExtractor{}
}

// Extract walks the tree and returns every detected call site.
func (x *CallSiteExtractor) Extract(root *tree_sitter.Node, source []byte, filePath string) []graph.CallSite {
	x.sites = nil
	x.currentFunc = ""
	x.currentFuncLine = 0
	x.currentClass = ""
	x.currentFile = graph.FlattenPath(filePath)
	x.walk(root, source)
	return x.sites
}

func (x *CallSiteExtractor) walk(node *tree_sitter.Node, source []byte) {
	isClass := classNodeKinds[node.Kind()]
	if isClass {
		if name := classNameOf(node, source); name != "" {
			x.currentClass = name
		}
	}

	isFunc := functionNodeKinds[node.Kind()]
	if isFunc {
		if name, line, ok := functionInfo(node, source); ok {
			x.currentFunc = name
			x.currentFuncLine = line
		}
	}

	if callNodeKinds[node.Kind()] {
		if site, ok := x.callSite(node, source); ok {
			x.sites = append(x.sites, site)
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			x.walk(child, source)
		}
	}

	// Leaving a function-like node drops the caller context.
	if isFunc {
		x.currentFunc = ""
		x.currentFuncLine = 0
	}
	if isClass {
		x.currentClass = ""
	}
}

// classNameOf resolves the declared name of a class-like node.
func classNameOf(node *tree_sitter.Node, source []byte) string {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return parser.NodeText(nameNode, source)
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && (child.Kind() == "identifier" || child.Kind() == "type_identifier") {
			return parser.NodeText(child, source)
		}
	}
	return ""
}

// functionInfo extracts the name and 1-based line of a function-like node.
func functionInfo(node *tree_sitter.Node, source []byte) (string, int, bool) {
	line := parser.Line(node)

	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		name := parser.NodeText(nameNode, source)
		if name != "" {
			return name, line, true
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier", "property_identifier", "field_identifier":
			return parser.NodeText(child, source), line, true
		case "function_declarator":
			// C++: the declarator wraps the function name.
			for j := uint(0); j < child.ChildCount(); j++ {
				inner := child.Child(j)
				if inner != nil && (inner.Kind() == "identifier" || inner.Kind() == "qualified_identifier") {
					return parser.NodeText(inner, source), line, true
				}
			}
		}
	}
	return "", 0, false
}

func (x *CallSiteExtractor) callSite(node *tree_sitter.Node, source []byte) (graph.CallSite, bool) {
	name, callType, ok := calledInfo(node, source)
	if !ok || name == "" {
		return graph.CallSite{}, false
	}

	// Caller ID matches the node ID format the extractors emit for functions
	// and methods, so resolved edges attach to real graph nodes.
	callerID := graph.ModuleLevelCaller
	if x.currentFunc != "" {
		if x.currentClass != "" {
			callerID = graph.MethodID(x.currentFile, x.currentClass, x.currentFunc, x.currentFuncLine)
		} else {
			callerID = graph.NodeID(x.currentFile, string(graph.NodeFunction), x.currentFunc, x.currentFuncLine)
		}
	}

	return graph.CallSite{
		CallerID:   callerID,
		CalledName: name,
		CallType:   callType,
		Context:    "ast_node:" + node.Kind(),
		Line:       parser.Line(node),
	}, true
}

// calledInfo resolves the callee display name and call-type classification
// for one call-like node.
func calledInfo(node *tree_sitter.Node, source []byte) (string, graph.CallType, bool) {
	switch node.Kind() {
	case "call", "call_expression", "method_invocation", "invocation_expression":
		fn := node.ChildByFieldName("function")
		if fn == nil {
			fn = node.Child(0)
		}
		if fn == nil {
			return "", "", false
		}
		// Java puts the receiver in "object" and the callee in "name".
		if node.Kind() == "method_invocation" {
			return memberCallee(node, source)
		}
		name := calleeName(fn, source)
		return name, classifyCallee(name, fn, source), true

	case "macro_invocation":
		// Rust macros like println! resolve by plain name.
		if child := node.Child(0); child != nil {
			return parser.NodeText(child, source), graph.SimpleCall, true
		}
		return "", "", false

	case "new_expression":
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "type_identifier", "identifier", "qualified_identifier":
				return parser.NodeText(child, source), graph.ConstructorCall, true
			}
		}
		return "", "", false

	case "object_creation_expression":
		if typ := node.ChildByFieldName("type"); typ != nil {
			return parser.NodeText(typ, source), graph.ConstructorCall, true
		}
		return "", "", false

	case "constructor_call":
		if child := node.Child(0); child != nil {
			return parser.NodeText(child, source), graph.ConstructorCall, true
		}
		return "", "", false
	}
	return "", "", false
}

// memberCallee handles Java-style receiver/name call shapes.
func memberCallee(node *tree_sitter.Node, source []byte) (string, graph.CallType, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return "", "", false
	}
	name := parser.NodeText(nameNode, source)
	obj := node.ChildByFieldName("object")
	if obj == nil {
		return name, classifyIdentifier(name), true
	}
	receiver := parser.NodeText(obj, source)
	if strings.Contains(receiver, ".") {
		// Chained access like cfg.server.start(): keep the full chain so the
		// resolver can split on dots.
		return receiver + "." + name, graph.AttributeCall, true
	}
	return name, graph.MethodCall, true
}

// calleeName resolves the display name for the function part of a call.
func calleeName(fn *tree_sitter.Node, source []byte) string {
	switch fn.Kind() {
	case "identifier":
		return parser.NodeText(fn, source)

	case "attribute":
		// Python obj.method / self.method / super().method.
		full := parser.NodeText(fn, source)
		for _, prefix := range []string{"self.", "cls.", "super()."} {
			if strings.HasPrefix(full, prefix) {
				return full[len(prefix):]
			}
		}
		if attr := fn.ChildByFieldName("attribute"); attr != nil {
			if name := parser.NodeText(attr, source); name != "" {
				return name
			}
		}
		return full

	case "field_expression", "member_expression", "selector_expression", "member_access_expression", "navigation_expression":
		if name := trailingName(fn, source); name != "" {
			return name
		}
		return parser.NodeText(fn, source)

	case "qualified_identifier", "scoped_identifier":
		return parser.NodeText(fn, source)

	case "generic_function":
		if inner := fn.ChildByFieldName("function"); inner != nil {
			return calleeName(inner, source)
		}
		return parser.NodeText(fn, source)

	case "call":
		// Nested call, e.g. super().__init__().
		full := parser.NodeText(fn, source)
		if strings.Contains(full, "super()") {
			return full
		}
		if inner := fn.Child(0); inner != nil {
			return calleeName(inner, source)
		}
		return full

	default:
		return parser.NodeText(fn, source)
	}
}

// trailingName returns the rightmost identifier-like child, i.e. the method
// name in a member access chain.
func trailingName(fn *tree_sitter.Node, source []byte) string {
	name := ""
	for i := uint(0); i < fn.ChildCount(); i++ {
		child := fn.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "field_identifier", "property_identifier", "identifier", "name":
			name = parser.NodeText(child, source)
		}
	}
	return name
}

// classifyCallee maps the callee node shape and extracted name onto a call type.
func classifyCallee(name string, fn *tree_sitter.Node, source []byte) graph.CallType {
	switch fn.Kind() {
	case "attribute":
		if strings.Contains(name, "super()") {
			return graph.MethodCall
		}
		if strings.Contains(name, ".") {
			return graph.QualifiedCall
		}
		return graph.MethodCall

	case "field_expression", "member_expression", "selector_expression", "member_access_expression", "navigation_expression":
		if strings.Count(parser.NodeText(fn, source), ".") > 1 {
			return graph.AttributeCall
		}
		return graph.MethodCall

	case "qualified_identifier", "scoped_identifier", "generic_function":
		return graph.QualifiedCall

	case "identifier":
		return classifyIdentifier(name)

	case "call":
		if strings.Contains(name, "super()") {
			return graph.MethodCall
		}
		return graph.DynamicCall

	default:
		// Function pointers, subscripts, computed names.
		return graph.DynamicCall
	}
}

// classifyIdentifier applies the plain-identifier rules: a leading-uppercase
// name without underscores looks like a type and is treated as a constructor.
func classifyIdentifier(name string) graph.CallType {
	if name == "" {
		return graph.DynamicCall
	}
	first := []rune(name)[0]
	if unicode.IsUpper(first) && !strings.Contains(name, "_") {
		return graph.ConstructorCall
	}
	if strings.Contains(name, "::") {
		return graph.QualifiedCall
	}
	if strings.Contains(name, ".") {
		return graph.MethodCall
	}
	return graph.SimpleCall
}
