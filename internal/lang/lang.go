package lang

// Language identifies a supported programming language.
type Language string

const (
	Python     Language = "python"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Go         Language = "go"
	Rust       Language = "rust"
	Java       Language = "java"
	CPP        Language = "cpp"
	CSharp     Language = "csharp"
)

// AllLanguages returns every supported language.
func AllLanguages() []Language {
	return []Language{Python, JavaScript, TypeScript, Go, Rust, Java, CPP, CSharp}
}

// Normalize maps user-facing aliases ("c++", "c#") onto canonical names.
func Normalize(name string) (Language, bool) {
	switch name {
	case "python", "py":
		return Python, true
	case "javascript", "js":
		return JavaScript, true
	case "typescript", "ts":
		return TypeScript, true
	case "go", "golang":
		return Go, true
	case "rust", "rs":
		return Rust, true
	case "java":
		return Java, true
	case "cpp", "c++", "cxx":
		return CPP, true
	case "csharp", "c#", "cs":
		return CSharp, true
	}
	return "", false
}

// Spec defines the tree-sitter node kinds an extractor needs for a language.
type Spec struct {
	Language       Language
	FileExtensions []string

	// Declaration node kinds.
	FunctionNodeTypes  []string
	ClassNodeTypes     []string
	InterfaceNodeTypes []string
	EnumNodeTypes      []string
	VariableNodeTypes  []string
	ImportNodeTypes    []string

	// Call-expression node kinds consumed by the call-site walker.
	CallNodeTypes []string

	// BodyNodeType is the node kind holding a class body ("block",
	// "class_body", ...). Used when descending into members.
	BodyNodeType string
}

// registry maps file extensions (with leading dot) to specs.
var registry = map[string]*Spec{}

// Register adds a Spec to the global registry. Called from per-language init().
func Register(spec *Spec) {
	for _, ext := range spec.FileExtensions {
		registry[ext] = spec
	}
}

// ForExtension returns the Spec for a file extension (e.g. ".py"), or nil.
func ForExtension(ext string) *Spec {
	return registry[ext]
}

// ForLanguage returns the Spec for a language, or nil.
func ForLanguage(l Language) *Spec {
	for _, spec := range registry {
		if spec.Language == l {
			return spec
		}
	}
	return nil
}

// Extensions returns extension -> language for the given languages.
func Extensions(languages []Language) map[string]Language {
	out := make(map[string]Language, len(languages)*2)
	for _, l := range languages {
		for ext, spec := range registry {
			if spec.Language == l {
				out[ext] = l
			}
		}
	}
	return out
}
