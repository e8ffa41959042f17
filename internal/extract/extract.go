// Package extract turns parsed source files into the flat ParseResult
// contract consumed by the analyzer: declared nodes, structural edges, and
// call sites awaiting resolution.
package extract

import (
	"errors"
	"fmt"

	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/lang"
)

// Result is the per-file parse contract. The core pipeline never inspects
// grammar-specific node kinds; it consumes only this structured result.
type Result struct {
	Nodes     []*graph.Node    `json:"nodes"`
	Edges     []graph.Edge     `json:"edges"`
	CallSites []graph.CallSite `json:"call_sites,omitempty"`
}

// Extractor is the per-language parser collaborator.
type Extractor interface {
	ParseFile(path string) (*Result, error)
	Language() lang.Language
}

// ErrUnsupportedLanguage is returned when no extractor is registered for a
// requested language.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Registry selects extractors by language at runtime.
type Registry struct {
	extractors map[lang.Language]Extractor
}

// NewRegistry builds a registry with one tree-sitter extractor per supported
// language.
func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[lang.Language]Extractor)}
	for _, l := range lang.AllLanguages() {
		if spec := lang.ForLanguage(l); spec != nil {
			r.extractors[l] = newTreeSitterExtractor(spec)
		}
	}
	return r
}

// Get returns the extractor for a language.
func (r *Registry) Get(l lang.Language) (Extractor, error) {
	ex, ok := r.extractors[l]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, l)
	}
	return ex, nil
}
