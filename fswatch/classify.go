// Package fswatch turns file system activity under workspace roots into
// header index reload triggers.
package fswatch

import (
	"path/filepath"
	"strings"

	"github.com/LegacyCodeHQ/includesense/headerindex"
)

// Change is the kind of file system change observed for a path.
type Change int

const (
	Created Change = iota + 1
	Changed
	Deleted
)

func (c Change) String() string {
	switch c {
	case Created:
		return "created"
	case Changed:
		return "changed"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Classifier decides which changes require a reload.
type Classifier struct {
	extensions map[string]bool
}

// NewClassifier returns a Classifier for the given header extensions, or for
// headerindex.DefaultHeaderExtensions when none are given.
func NewClassifier(extensions []string) Classifier {
	if len(extensions) == 0 {
		extensions = headerindex.DefaultHeaderExtensions
	}
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}
	return Classifier{extensions: exts}
}

// ShouldReload reports whether a change to path invalidates the index. Any
// change to a configuration file does; headers only matter when they appear
// or disappear, since their content is never indexed.
func (c Classifier) ShouldReload(path string, change Change) bool {
	if filepath.Base(path) == headerindex.ConfigFileName {
		return true
	}
	if !c.extensions[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	return change == Created || change == Deleted
}
