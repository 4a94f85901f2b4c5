package includes

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/LegacyCodeHQ/includesense/headerindex"
)

// Resolver maps include directives onto the headers of an index snapshot.
type Resolver struct {
	byLabel map[string][]headerindex.Entry
	indexed map[string]bool
	roots   []string
}

// NewResolver builds a resolver over the given index entries.
func NewResolver(entries []headerindex.Entry) *Resolver {
	r := &Resolver{
		byLabel: make(map[string][]headerindex.Entry),
		indexed: make(map[string]bool),
	}
	seenRoots := make(map[string]bool)
	for _, e := range entries {
		r.byLabel[e.Label] = append(r.byLabel[e.Label], e)
		r.indexed[filepath.Clean(e.Path)] = true
		if !seenRoots[e.Root] {
			seenRoots[e.Root] = true
			r.roots = append(r.roots, e.Root)
		}
	}
	return r
}

// Resolve returns the indexed headers an include in sourceFile can refer to.
// Quoted includes are tried next to the including file first, and that match
// stays first. Search directory matches follow in sorted order. When
// sourceFile lies inside a workspace root, only headers indexed for that root
// are considered.
func (r *Resolver) Resolve(sourceFile string, inc Include) []string {
	var sibling string
	if inc.Kind == Local {
		candidate := filepath.Join(filepath.Dir(sourceFile), filepath.FromSlash(inc.Path))
		if r.indexed[candidate] {
			sibling = candidate
		}
	}

	root, scoped := r.rootOf(sourceFile)
	var matches []string
	seen := map[string]bool{sibling: true}
	for _, e := range r.byLabel[path.Clean(inc.Path)] {
		if scoped && e.Root != root {
			continue
		}
		if !seen[e.Path] {
			seen[e.Path] = true
			matches = append(matches, e.Path)
		}
	}
	sort.Strings(matches)

	if sibling == "" {
		return matches
	}
	return append([]string{sibling}, matches...)
}

// rootOf returns the innermost workspace root containing file.
func (r *Resolver) rootOf(file string) (string, bool) {
	best := ""
	for _, root := range r.roots {
		rel, err := filepath.Rel(root, file)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if len(root) > len(best) {
			best = root
		}
	}
	return best, best != ""
}

// Result is the outcome of checking one include directive.
type Result struct {
	Include  Include
	Resolved []string
}

// Found reports whether the include refers to an existing header.
func (res Result) Found() bool {
	return len(res.Resolved) > 0
}

// Check resolves every include of sourceFile. Quoted includes that name a
// file next to sourceFile count as found even when that file is not indexed.
func (r *Resolver) Check(sourceFile string, incs []Include) []Result {
	results := make([]Result, 0, len(incs))
	for _, inc := range incs {
		resolved := r.Resolve(sourceFile, inc)
		if len(resolved) == 0 && inc.Kind == Local {
			sibling := filepath.Join(filepath.Dir(sourceFile), filepath.FromSlash(inc.Path))
			if info, err := os.Stat(sibling); err == nil && !info.IsDir() {
				resolved = []string{sibling}
			}
		}
		results = append(results, Result{Include: inc, Resolved: resolved})
	}
	return results
}
