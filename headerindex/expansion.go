package headerindex

import (
	"path/filepath"
	"strings"
)

// WorkspacePlaceholders are the tokens substituted with the workspace root.
var WorkspacePlaceholders = []string{"${workspaceRoot}", "${workspaceFolder}"}

// HasWorkspacePlaceholder reports whether a search path template refers to
// the workspace root.
func HasWorkspacePlaceholder(template string) bool {
	for _, p := range WorkspacePlaceholders {
		if strings.Contains(template, p) {
			return true
		}
	}
	return false
}

// ExpandSearchPaths substitutes the workspace root into each template and
// normalizes the result. With onlyWorkspaceHeaders set, templates that do not
// mention the workspace root are dropped; the check runs on the raw template.
func ExpandSearchPaths(templates []string, root string, onlyWorkspaceHeaders bool) []string {
	dirs := make([]string, 0, len(templates))
	for _, template := range templates {
		if strings.TrimSpace(template) == "" {
			continue
		}
		if onlyWorkspaceHeaders && !HasWorkspacePlaceholder(template) {
			continue
		}
		dirs = append(dirs, expandSearchPath(template, root))
	}
	return dirs
}

func expandSearchPath(template, root string) string {
	p := template
	for _, placeholder := range WorkspacePlaceholders {
		p = strings.ReplaceAll(p, placeholder, root)
	}
	p = trimRecursiveMarker(p)

	cleaned := filepath.Clean(filepath.FromSlash(p))
	if !filepath.IsAbs(cleaned) && !startsWithSeparator(cleaned) {
		cleaned = filepath.Join(root, cleaned)
	}
	return cleaned
}

// trimRecursiveMarker drops a trailing "/**" or "/*", which the editor uses to
// mark recursive search paths. Enumeration is always recursive.
func trimRecursiveMarker(p string) string {
	for _, marker := range []string{"/**", `\**`, "/*", `\*`} {
		if strings.HasSuffix(p, marker) {
			return strings.TrimSuffix(p, marker)
		}
	}
	return p
}

func startsWithSeparator(p string) bool {
	return strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`)
}
