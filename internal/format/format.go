// Package format renders an analyzed graph for consumption: a compact JSON
// encoding for tooling and a markdown digest for language models.
package format

import (
	"fmt"

	"github.com/codegraph-dev/codegraph/internal/graph"
)

// Formatter renders a graph into bytes.
type Formatter interface {
	Format(g *graph.Graph) ([]byte, error)
	// Name is the identifier used on the command line.
	Name() string
}

// ForName returns the formatter registered under name.
func ForName(name string) (Formatter, error) {
	switch name {
	case "json":
		return &JSONCompact{}, nil
	case "llm":
		return &LLMText{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json or llm)", name)
	}
}
