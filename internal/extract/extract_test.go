package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/lang"
)

func parseSource(t *testing.T, l lang.Language, name, code string) *Result {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}
	ex, err := NewRegistry().Get(l)
	if err != nil {
		t.Fatal(err)
	}
	res, err := ex.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}
	return res
}

func findNode(res *Result, typ graph.NodeType, name string) *graph.Node {
	for _, n := range res.Nodes {
		if n.Type == typ && n.Name == name {
			return n
		}
	}
	return nil
}

func findSite(res *Result, calledName string) *graph.CallSite {
	for i := range res.CallSites {
		if res.CallSites[i].CalledName == calledName {
			return &res.CallSites[i]
		}
	}
	return nil
}

func TestPythonFunctionsAndCalls(t *testing.T) {
	code := `import os

def helper(x):
    """Doubles a value."""
    return x * 2

def main():
    value = helper(21)
    print(value)
`
	res := parseSource(t, lang.Python, "app.py", code)

	fn := findNode(res, graph.NodeFunction, "helper")
	if fn == nil {
		t.Fatal("helper function not extracted")
	}
	if fn.Docstring != "Doubles a value." {
		t.Errorf("Docstring = %q", fn.Docstring)
	}
	if findNode(res, graph.NodeFunction, "main") == nil {
		t.Fatal("main function not extracted")
	}

	site := findSite(res, "helper")
	if site == nil {
		t.Fatal("helper call site not extracted")
	}
	if site.CallType != graph.SimpleCall {
		t.Errorf("CallType = %q, want simple", site.CallType)
	}
	mainNode := findNode(res, graph.NodeFunction, "main")
	if site.CallerID != mainNode.ID {
		t.Errorf("CallerID = %q, want %q", site.CallerID, mainNode.ID)
	}
}

func TestPythonClassAndMethods(t *testing.T) {
	code := `class User:
    def __init__(self, name):
        self.name = name

    def save(self):
        self.validate()

    def validate(self):
        pass
`
	res := parseSource(t, lang.Python, "models.py", code)

	class := findNode(res, graph.NodeClass, "User")
	if class == nil {
		t.Fatal("User class not extracted")
	}

	save := findNode(res, graph.NodeFunction, "save")
	if save == nil {
		t.Fatal("save method not extracted")
	}
	if got, _ := graph.ClassFromID(save.ID); got != "User" {
		t.Errorf("method ID %q does not encode class User", save.ID)
	}

	// self.validate() inside save is an attribute call with self stripped,
	// and the caller ID must be the class-encoded method ID.
	site := findSite(res, "validate")
	if site == nil {
		t.Fatal("validate call site not extracted")
	}
	if site.CallType != graph.MethodCall && site.CallType != graph.AttributeCall {
		t.Errorf("CallType = %q", site.CallType)
	}
	if site.CallerID != save.ID {
		t.Errorf("CallerID = %q, want %q", site.CallerID, save.ID)
	}
}

func TestPythonConstructorClassification(t *testing.T) {
	code := `def build():
    w = Widget()
    c = my_factory()
`
	res := parseSource(t, lang.Python, "f.py", code)

	widget := findSite(res, "Widget")
	if widget == nil {
		t.Fatal("Widget call site missing")
	}
	if widget.CallType != graph.ConstructorCall {
		t.Errorf("Widget CallType = %q, want constructor", widget.CallType)
	}

	factory := findSite(res, "my_factory")
	if factory == nil {
		t.Fatal("my_factory call site missing")
	}
	if factory.CallType != graph.SimpleCall {
		t.Errorf("my_factory CallType = %q, want simple", factory.CallType)
	}
}

func TestPythonModuleLevelCall(t *testing.T) {
	code := `setup()
`
	res := parseSource(t, lang.Python, "conf.py", code)
	site := findSite(res, "setup")
	if site == nil {
		t.Fatal("setup call site missing")
	}
	if site.CallerID != graph.ModuleLevelCaller {
		t.Errorf("CallerID = %q, want module_level", site.CallerID)
	}
}

func TestPythonInheritance(t *testing.T) {
	code := `class Base:
    pass

class Child(Base):
    pass
`
	res := parseSource(t, lang.Python, "h.py", code)

	base := findNode(res, graph.NodeClass, "Base")
	child := findNode(res, graph.NodeClass, "Child")
	if base == nil || child == nil {
		t.Fatal("classes not extracted")
	}

	found := false
	for _, e := range res.Edges {
		if e.Type == graph.EdgeInheritance && e.SourceID == child.ID && e.TargetID == base.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("inheritance edge Child -> Base missing; edges: %+v", res.Edges)
	}
}

func TestGoFunctionsAndMethods(t *testing.T) {
	code := `package demo

import "fmt"

type Server struct{}

func (s *Server) Start() {
	fmt.Println("up")
	s.listen()
}

func (s *Server) listen() {}

func NewServer() *Server {
	return &Server{}
}
`
	res := parseSource(t, lang.Go, "server.go", code)

	if findNode(res, graph.NodeClass, "Server") == nil {
		t.Fatal("Server struct not extracted as class")
	}
	start := findNode(res, graph.NodeFunction, "Start")
	if start == nil {
		t.Fatal("Start method not extracted")
	}
	if start.Visibility != "public" {
		t.Errorf("Start visibility = %q", start.Visibility)
	}
	listen := findNode(res, graph.NodeFunction, "listen")
	if listen == nil {
		t.Fatal("listen method not extracted")
	}
	if listen.Visibility != "private" {
		t.Errorf("listen visibility = %q", listen.Visibility)
	}

	// Member calls keep only the trailing method name.
	site := findSite(res, "Println")
	if site == nil {
		t.Fatal("fmt.Println call site missing")
	}
	if site.CallType != graph.MethodCall {
		t.Errorf("Println CallType = %q", site.CallType)
	}
	if listenSite := findSite(res, "listen"); listenSite == nil {
		t.Error("s.listen() call site missing")
	}
}

func TestJavaScriptClass(t *testing.T) {
	code := `class Cart {
  total() {
    return this.items.reduce((a, b) => a + b.price, 0);
  }
}

function checkout(cart) {
  return cart.total();
}
`
	res := parseSource(t, lang.JavaScript, "cart.js", code)

	if findNode(res, graph.NodeClass, "Cart") == nil {
		t.Fatal("Cart class not extracted")
	}
	if findNode(res, graph.NodeFunction, "total") == nil {
		t.Fatal("total method not extracted")
	}
	if findNode(res, graph.NodeFunction, "checkout") == nil {
		t.Fatal("checkout function not extracted")
	}
}

func TestRegistryUnsupportedLanguage(t *testing.T) {
	if _, err := NewRegistry().Get(lang.Language("cobol")); err == nil {
		t.Error("Get() accepted an unsupported language")
	}
}

func TestClassifyIdentifier(t *testing.T) {
	tests := []struct {
		name string
		want graph.CallType
	}{
		{"Widget", graph.ConstructorCall},
		{"MY_CONST", graph.SimpleCall}, // underscore blocks constructor rule
		{"helper", graph.SimpleCall},
		{"ns::run", graph.QualifiedCall},
		{"obj.run", graph.MethodCall},
	}
	for _, tt := range tests {
		if got := classifyIdentifier(tt.name); got != tt.want {
			t.Errorf("classifyIdentifier(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
