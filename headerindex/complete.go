package headerindex

import "strings"

const includeDirective = "#include"

// IsIncludeContext reports whether the text of line before the cursor at
// character contains an include directive. A negative character means the
// whole line.
func IsIncludeContext(line string, character int) bool {
	prefix := line
	if character >= 0 {
		runes := []rune(line)
		if character < len(runes) {
			prefix = string(runes[:character])
		}
	}
	return strings.Contains(prefix, includeDirective)
}

// Complete returns the indexed header labels when the cursor sits in an
// include directive, and nil otherwise.
func (idx *Indexer) Complete(line string, character int) []string {
	if !IsIncludeContext(line, character) {
		return nil
	}
	return idx.Headers()
}
