package includes

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

// Kind distinguishes between quoted and angle-bracket includes.
type Kind int

const (
	Local Kind = iota
	System
)

func (k Kind) String() string {
	if k == System {
		return "system"
	}
	return "local"
}

// Language selects the tree-sitter grammar used to parse a source file.
type Language int

const (
	C Language = iota
	Cpp
)

// Include is one #include directive.
type Include struct {
	Path string
	Kind Kind
	// Line is 1-based.
	Line int
}

// LanguageForPath picks the grammar for a file. Plain C sources use the C
// grammar; everything else, headers included, is parsed as C++ since the C++
// grammar accepts C headers.
func LanguageForPath(path string) Language {
	if strings.ToLower(filepath.Ext(path)) == ".c" {
		return C
	}
	return Cpp
}

// ParseFile reads a source file and extracts its includes.
func ParseFile(path string, reader ContentReader) ([]Include, error) {
	content, err := reader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	includes, err := Parse(content, LanguageForPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse includes in %s: %w", path, err)
	}
	return includes, nil
}

// Parse extracts the include directives from source code.
func Parse(sourceCode []byte, lang Language) ([]Include, error) {
	parser := sitter.NewParser()

	switch lang {
	case C:
		parser.SetLanguage(c.GetLanguage())
	default:
		parser.SetLanguage(cpp.GetLanguage())
	}

	tree, err := parser.ParseCtx(context.Background(), nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}
	defer tree.Close()

	return extractIncludes(tree.RootNode(), sourceCode), nil
}

func extractIncludes(rootNode *sitter.Node, sourceCode []byte) []Include {
	var includes []Include

	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}

		if n.Type() == "preproc_include" {
			if inc := includeFromNode(n, sourceCode); inc.Path != "" {
				includes = append(includes, inc)
			}
			return
		}

		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}

	walk(rootNode)
	return includes
}

func includeFromNode(node *sitter.Node, sourceCode []byte) Include {
	line := int(node.StartPoint().Row) + 1
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "string_literal":
			return Include{Path: strings.Trim(child.Content(sourceCode), "\"' "), Kind: Local, Line: line}
		case "system_lib_string":
			return Include{Path: trimAngleBrackets(child.Content(sourceCode)), Kind: System, Line: line}
		}
	}

	return Include{}
}

func trimAngleBrackets(raw string) string {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "<")
	trimmed = strings.TrimSuffix(trimmed, ">")
	return strings.TrimSpace(trimmed)
}
