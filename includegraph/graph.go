// Package includegraph builds the include relationships between indexed
// header files.
package includegraph

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"

	graphlib "github.com/dominikbraun/graph"

	"github.com/LegacyCodeHQ/includesense/headerindex"
	"github.com/LegacyCodeHQ/includesense/includes"
)

// Graph is a directed graph of headers keyed by absolute path. An edge from A
// to B means A includes B.
type Graph struct {
	g     graphlib.Graph[string, string]
	names map[string]string
	// Errors holds headers that could not be read or parsed.
	Errors []error
}

// Build parses every header in the snapshot and links it to the indexed
// headers its include directives resolve to. A header that fails to parse
// stays in the graph without edges.
func Build(snap *headerindex.Snapshot, reader includes.ContentReader) (*Graph, error) {
	out := &Graph{
		g:     graphlib.New(graphlib.StringHash, graphlib.Directed()),
		names: displayNames(snap.Entries),
	}

	paths := make([]string, 0, len(out.names))
	for p := range out.names {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if err := out.g.AddVertex(p); err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
			return nil, err
		}
	}

	resolver := includes.NewResolver(snap.Entries)
	for _, p := range paths {
		incs, err := includes.ParseFile(p, reader)
		if err != nil {
			out.Errors = append(out.Errors, err)
			continue
		}
		for _, inc := range incs {
			for _, target := range resolver.Resolve(p, inc) {
				if target == p {
					continue
				}
				if err := out.g.AddEdge(p, target); err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
					return nil, err
				}
			}
		}
	}

	return out, nil
}

// displayNames assigns every header path a unique display name. With more
// than one workspace root, names inside a root are prefixed with the root's
// base name. Names that still collide fall back to the absolute path.
func displayNames(entries []headerindex.Entry) map[string]string {
	roots := make(map[string]bool)
	for _, e := range entries {
		roots[e.Root] = true
	}

	names := make(map[string]string)
	for _, e := range entries {
		if _, ok := names[e.Path]; ok {
			continue
		}
		name := displayName(e)
		if len(roots) > 1 && name != filepath.ToSlash(e.Path) {
			name = filepath.Base(e.Root) + "/" + name
		}
		names[e.Path] = name
	}

	owners := make(map[string]int)
	for _, name := range names {
		owners[name]++
	}
	for p, name := range names {
		if owners[name] > 1 {
			names[p] = filepath.ToSlash(p)
		}
	}
	return names
}

// displayName is the header path relative to its workspace root, or the
// absolute path for headers outside the root.
func displayName(e headerindex.Entry) string {
	rel, err := filepath.Rel(e.Root, e.Path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(e.Path)
	}
	return filepath.ToSlash(rel)
}

// Name returns the display name of a header path.
func (g *Graph) Name(path string) string {
	return g.names[path]
}

// Nodes returns every header path, sorted.
func (g *Graph) Nodes() []string {
	nodes := make([]string, 0, len(g.names))
	for p := range g.names {
		nodes = append(nodes, p)
	}
	sort.Strings(nodes)
	return nodes
}

// Edge is one include relationship.
type Edge struct {
	From string
	To   string
}

// Edges returns every edge sorted by source then target.
func (g *Graph) Edges() ([]Edge, error) {
	adjacency, err := g.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}

	var edges []Edge
	for from, targets := range adjacency {
		for to := range targets {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges, nil
}

// Cycles returns the groups of headers that include each other, directly or
// transitively. Each group and the list of groups are sorted.
func (g *Graph) Cycles() ([][]string, error) {
	components, err := graphlib.StronglyConnectedComponents(g.g)
	if err != nil {
		return nil, err
	}

	var cycles [][]string
	for _, component := range components {
		if len(component) < 2 {
			continue
		}
		sort.Strings(component)
		cycles = append(cycles, component)
	}
	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i][0] < cycles[j][0]
	})
	return cycles, nil
}
