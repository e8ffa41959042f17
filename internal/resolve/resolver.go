// Package resolve maps call sites onto function definitions. It builds
// hashed name indexes over the accumulated node set once per run, then
// resolves every call site independently against those read-only indexes,
// with heuristic scoring and a Levenshtein fallback for near-miss names.
package resolve

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/codegraph-dev/codegraph/internal/graph"
)

// FunctionEntry is the index record for a free function.
type FunctionEntry struct {
	NodeID        string
	Name          string
	FilePath      string
	Line          int
	Signature     string
	ClassContext  string // empty for free functions
	ModuleContext string
}

// MethodEntry is the index record for a function whose node ID encodes an
// enclosing class.
type MethodEntry struct {
	NodeID    string
	Name      string
	ClassName string
	FilePath  string
	Line      int
	Signature string
}

// fuzzyMaxDistance bounds the edit distance accepted by the fuzzy fallback.
const fuzzyMaxDistance = 2

// fuzzyMinNameLen excludes very short names from fuzzy matching, where a
// distance of 2 would match nearly anything.
const fuzzyMinNameLen = 3

// Resolver holds the hashed lookup indexes. BuildIndexes must run before
// ResolveCalls; afterwards the resolver is read-only and safe for concurrent
// resolution.
type Resolver struct {
	functionIndex map[uint64][]FunctionEntry
	methodIndex   map[uint64][]MethodEntry
	importAliases map[string]string
}

// New creates an empty resolver.
func New() *Resolver {
	return &Resolver{
		functionIndex: make(map[uint64][]FunctionEntry),
		methodIndex:   make(map[uint64][]MethodEntry),
		importAliases: make(map[string]string),
	}
}

// nameHash is the stable hash keying both indexes. Collisions are possible;
// ties are broken later by scoring, not by hash equality alone.
func nameHash(name string) uint64 {
	return xxh3.HashString(name)
}

// BuildIndexes rebuilds both indexes from scratch over the given node set.
// Partitioning Function nodes into free functions and methods is
// data-parallel; the maps are populated from the shard results afterwards.
func (r *Resolver) BuildIndexes(nodes []*graph.Node) error {
	r.functionIndex = make(map[uint64][]FunctionEntry, len(nodes)/4)
	r.methodIndex = make(map[uint64][]MethodEntry, len(nodes)/4)
	r.importAliases = make(map[string]string)

	shards := runtime.NumCPU()
	if shards > len(nodes) {
		shards = 1
	}

	type partition struct {
		functions []FunctionEntry
		methods   []MethodEntry
	}
	parts := make([]partition, shards)

	g := new(errgroup.Group)
	chunk := (len(nodes) + shards - 1) / shards
	for s := 0; s < shards; s++ {
		lo := s * chunk
		hi := min(lo+chunk, len(nodes))
		if lo >= hi {
			continue
		}
		s := s
		slice := nodes[lo:hi]
		g.Go(func() error {
			var p partition
			for _, node := range slice {
				if node.Type != graph.NodeFunction {
					continue
				}
				if class, ok := graph.ClassFromID(node.ID); ok {
					p.methods = append(p.methods, MethodEntry{
						NodeID:    node.ID,
						Name:      node.Name,
						ClassName: class,
						FilePath:  node.FilePath,
						Line:      node.Line,
						Signature: node.Signature,
					})
				} else {
					p.functions = append(p.functions, FunctionEntry{
						NodeID:        node.ID,
						Name:          node.Name,
						FilePath:      node.FilePath,
						Line:          node.Line,
						Signature:     node.Signature,
						ModuleContext: moduleContext(node.FilePath),
					})
				}
			}
			parts[s] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, p := range parts {
		for _, fn := range p.functions {
			h := nameHash(fn.Name)
			r.functionIndex[h] = append(r.functionIndex[h], fn)
		}
		for _, m := range p.methods {
			h := nameHash(m.Name)
			r.methodIndex[h] = append(r.methodIndex[h], m)
		}
	}

	r.buildImportAliases(nodes)
	return nil
}

// ResolveCalls resolves every call site against the built indexes. Each site
// is independent, so the batch is sharded across workers; a site that cannot
// be resolved yields no edge, never an error.
func (r *Resolver) ResolveCalls(sites []graph.CallSite) []graph.Edge {
	if len(sites) == 0 {
		return nil
	}

	shards := runtime.NumCPU()
	if shards > len(sites) {
		shards = 1
	}
	results := make([][]graph.Edge, shards)

	var wg sync.WaitGroup
	chunk := (len(sites) + shards - 1) / shards
	for s := 0; s < shards; s++ {
		lo := s * chunk
		hi := min(lo+chunk, len(sites))
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(s int, slice []graph.CallSite) {
			defer wg.Done()
			var edges []graph.Edge
			for i := range slice {
				if edge, ok := r.resolveOne(&slice[i]); ok {
					edges = append(edges, edge)
				}
			}
			results[s] = edges
		}(s, sites[lo:hi])
	}
	wg.Wait()

	var out []graph.Edge
	for _, edges := range results {
		out = append(out, edges...)
	}
	return out
}

// resolveOne dispatches on the call-type classification.
func (r *Resolver) resolveOne(site *graph.CallSite) (graph.Edge, bool) {
	switch site.CallType {
	case graph.SimpleCall:
		return r.resolveSimpleCall(site)
	case graph.MethodCall:
		return r.resolveMethodCall(site)
	case graph.QualifiedCall:
		return r.resolveQualifiedCall(site)
	case graph.AttributeCall:
		return r.resolveAttributeCall(site)
	case graph.DynamicCall:
		return r.resolveDynamicCall(site)
	case graph.ConstructorCall:
		return r.resolveConstructorCall(site)
	}
	return graph.Edge{}, false
}

func (r *Resolver) resolveSimpleCall(site *graph.CallSite) (graph.Edge, bool) {
	candidates := r.functionIndex[nameHash(site.CalledName)]
	if len(candidates) > 0 {
		best := selectBestCandidate(candidates, site)
		edge := graph.NewEdge(graph.EdgeCall, site.CallerID, best.NodeID).
			WithContext(lineContext("line", site.Line))
		return edge, true
	}
	return r.fuzzyResolveFunction(site)
}

func (r *Resolver) resolveMethodCall(site *graph.CallSite) (graph.Edge, bool) {
	name := trailingSegment(site.CalledName)
	candidates := r.methodIndex[nameHash(name)]
	if len(candidates) == 0 {
		return graph.Edge{}, false
	}
	// Class-context inference is not implemented; taking the first candidate
	// is a known simplification.
	best := candidates[0]
	edge := graph.NewEdge(graph.EdgeCall, site.CallerID, best.NodeID).
		WithContext(lineContext("method_call:line", site.Line))
	return edge, true
}

// resolveQualifiedCall handles module.function style names. The alias and
// module resolution paths are no-ops until real import parsing exists.
func (r *Resolver) resolveQualifiedCall(site *graph.CallSite) (graph.Edge, bool) {
	parts := strings.Split(site.CalledName, ".")
	if len(parts) < 2 {
		return r.resolveSimpleCall(site)
	}
	moduleName := strings.Join(parts[:len(parts)-1], ".")
	functionName := parts[len(parts)-1]

	if resolved, ok := r.importAliases[moduleName]; ok {
		return r.resolveByFullName(resolved+"."+functionName, site)
	}
	return r.resolveByModuleAndFunction(moduleName, functionName, site)
}

func (r *Resolver) resolveAttributeCall(site *graph.CallSite) (graph.Edge, bool) {
	name := trailingSegment(site.CalledName)
	candidates := r.methodIndex[nameHash(name)]
	if len(candidates) == 0 {
		return graph.Edge{}, false
	}
	best := candidates[0]
	edge := graph.NewEdge(graph.EdgeCall, site.CallerID, best.NodeID).
		WithContext(lineContext("attribute_call:line", site.Line))
	return edge, true
}

func (r *Resolver) resolveDynamicCall(site *graph.CallSite) (graph.Edge, bool) {
	// Recognizable reflection-style shapes first, then whatever the call
	// context offers. Both are conservative and usually yield nothing.
	if strings.Contains(site.CalledName, "getattr") || strings.Contains(site.CalledName, "__call__") {
		return r.resolveDynamicPatterns(site)
	}
	if site.Context != "" {
		return r.resolveWithContext(site)
	}
	return graph.Edge{}, false
}

// resolveConstructorCall links constructor calls either to a matching
// definition or to an external placeholder, so the call is never lost.
func (r *Resolver) resolveConstructorCall(site *graph.CallSite) (graph.Edge, bool) {
	className := site.CalledName

	for _, candidate := range r.functionIndex[nameHash(className)] {
		if candidate.Name == className ||
			candidate.Name == "__init__" ||
			candidate.Name == "constructor" ||
			(candidate.ClassContext != "" && candidate.ClassContext == className) {
			return graph.NewEdge(graph.EdgeCall, site.CallerID, candidate.NodeID), true
		}
	}

	return graph.NewEdge(graph.EdgeCall, site.CallerID, graph.ExternalClassID(className)), true
}

// selectBestCandidate scores candidates when the hash bucket holds more than
// one entry. Exact name match dominates so hash collisions cannot win.
func selectBestCandidate(candidates []FunctionEntry, site *graph.CallSite) *FunctionEntry {
	if len(candidates) == 1 {
		return &candidates[0]
	}

	best := &candidates[0]
	bestScore := 0
	for i := range candidates {
		candidate := &candidates[i]
		score := 0
		if site.Context != "" {
			if strings.Contains(site.Context, candidate.FilePath) {
				score += 100
			}
			if candidate.ModuleContext != "" && strings.Contains(site.Context, candidate.ModuleContext) {
				score += 50
			}
		}
		if candidate.ClassContext == "" {
			score += 25
		}
		if candidate.Name == site.CalledName {
			score += 200
		}
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	return best
}

// fuzzyResolveFunction scans every indexed function name for a close
// Levenshtein match. Linear in the index size; only reached when exact
// lookup fails.
func (r *Resolver) fuzzyResolveFunction(site *graph.CallSite) (graph.Edge, bool) {
	target := strings.ToLower(site.CalledName)

	var best *FunctionEntry
	bestDistance := 0
	for _, candidates := range r.functionIndex {
		for i := range candidates {
			candidate := &candidates[i]
			if len(candidate.Name) <= fuzzyMinNameLen {
				continue
			}
			distance := levenshtein(target, strings.ToLower(candidate.Name))
			if distance > fuzzyMaxDistance {
				continue
			}
			if best == nil || distance < bestDistance {
				best = candidate
				bestDistance = distance
			}
		}
	}

	if best == nil {
		return graph.Edge{}, false
	}
	edge := graph.NewEdge(graph.EdgeCall, site.CallerID, best.NodeID).
		WithContext(lineContext("fuzzy_match:line", site.Line))
	return edge, true
}

// buildImportAliases scans Module nodes for import statements. Statement
// parsing is language-specific and not implemented yet, so the alias table
// stays empty; resolveQualifiedCall degrades accordingly.
func (r *Resolver) buildImportAliases(nodes []*graph.Node) {
	for _, node := range nodes {
		if node.Type != graph.NodeModule {
			continue
		}
		if strings.Contains(node.Name, "import") {
			for alias, original := range parseImportStatement(node.Name) {
				r.importAliases[alias] = original
			}
		}
	}
}

// parseImportStatement would map local aliases to module names.
// TODO: parse "from X import Y as Z" and friends per language.
func parseImportStatement(string) map[string]string {
	return nil
}

// resolveByFullName would look up a fully qualified module.function name.
// Stub until the alias table is populated.
func (r *Resolver) resolveByFullName(string, *graph.CallSite) (graph.Edge, bool) {
	return graph.Edge{}, false
}

// resolveByModuleAndFunction would match a module path against indexed
// module contexts. Stub until the alias table is populated.
func (r *Resolver) resolveByModuleAndFunction(string, string, *graph.CallSite) (graph.Edge, bool) {
	return graph.Edge{}, false
}

func (r *Resolver) resolveDynamicPatterns(*graph.CallSite) (graph.Edge, bool) {
	return graph.Edge{}, false
}

func (r *Resolver) resolveWithContext(*graph.CallSite) (graph.Edge, bool) {
	return graph.Edge{}, false
}

// FunctionCount returns the number of indexed free functions.
func (r *Resolver) FunctionCount() int {
	n := 0
	for _, entries := range r.functionIndex {
		n += len(entries)
	}
	return n
}

// MethodCount returns the number of indexed methods.
func (r *Resolver) MethodCount() int {
	n := 0
	for _, entries := range r.methodIndex {
		n += len(entries)
	}
	return n
}

// trailingSegment extracts the last dot-separated segment.
func trailingSegment(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// moduleContext derives the module name from a file path (its stem).
func moduleContext(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return "unknown"
	}
	return stem
}

// lineContext renders the edge context string "<prefix>:<line>".
func lineContext(prefix string, line int) string {
	return prefix + ":" + strconv.Itoa(line)
}
