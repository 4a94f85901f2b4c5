// Package testws builds throwaway C/C++ workspaces for command tests.
package testws

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// PropertiesFile is where editors keep c_cpp_properties.json.
const PropertiesFile = ".vscode/c_cpp_properties.json"

// Write creates files under a new temporary directory and returns it. Keys
// are slash-separated paths relative to the directory.
func Write(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("os.MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("os.WriteFile() error = %v", err)
		}
	}
	return root
}

// Properties returns a c_cpp_properties.json document with Linux, Mac and
// Win32 configurations that share includePath, so selection does not depend
// on the host platform.
func Properties(t *testing.T, includePath ...string) string {
	t.Helper()

	type configuration struct {
		Name        string   `json:"name"`
		IncludePath []string `json:"includePath"`
	}
	doc := struct {
		Configurations []configuration `json:"configurations"`
	}{}
	for _, name := range []string{"Linux", "Mac", "Win32"} {
		doc.Configurations = append(doc.Configurations, configuration{Name: name, IncludePath: includePath})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("json.MarshalIndent() error = %v", err)
	}
	return string(data)
}

// Sample is a small workspace with headers under two search directories.
func Sample(t *testing.T) string {
	t.Helper()

	return Write(t, map[string]string{
		PropertiesFile: Properties(t,
			"${workspaceFolder}/include",
			"${workspaceRoot}/third_party/**",
		),
		"include/app.h":             "#pragma once\n#include \"net/socket.hpp\"\n",
		"include/net/socket.hpp":    "#pragma once\n#include <json.hh>\n",
		"include/.hidden.h":         "",
		"include/readme.txt":        "",
		"third_party/json.hh":       "#pragma once\n",
		"third_party/detail/impl.h": "#include \"../json.hh\"\n",
		"src/main.cpp":              "#include \"app.h\"\n#include <missing.h>\n#include <vector>\n",
	})
}
