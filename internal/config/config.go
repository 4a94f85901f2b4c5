package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/LegacyCodeHQ/includesense/headerindex"
)

// DefaultFileName is looked up in the working directory when no config path
// is given.
const DefaultFileName = ".includesense.yaml"

// File is the in-memory representation of .includesense.yaml.
type File struct {
	SelectConfigIndex    *int     `yaml:"selectConfigIndex,omitempty"`
	OnlyWorkspaceHeaders bool     `yaml:"onlyWorkspaceHeaders,omitempty"`
	WorkspaceRoots       []string `yaml:"workspaceRoots,omitempty"`
	HeaderExtensions     []string `yaml:"headerExtensions,omitempty"`
	LogLevel             string   `yaml:"logLevel,omitempty"`
	LogFormat            string   `yaml:"logFormat,omitempty"`

	// dir is the directory relative workspace roots are resolved against.
	dir string
}

// Load reads the config file at path. An empty path means DefaultFileName in
// the working directory, and a missing default file yields an empty config.
func Load(path string) (*File, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve config path %s: %w", path, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &File{dir: filepath.Dir(absPath)}, nil
		}
		return nil, fmt.Errorf("cannot read config %s: %w", absPath, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", absPath, err)
	}
	cfg.dir = filepath.Dir(absPath)
	return cfg, nil
}

// Parse decodes YAML config content. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	cfg := &File{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// Settings converts the file into indexer settings. Relative and ~-prefixed
// workspace roots are expanded; with no roots configured, fallbackRoot is used.
func (f *File) Settings(fallbackRoot string) (headerindex.Settings, error) {
	settings := headerindex.Settings{
		SelectConfigIndex:    f.SelectConfigIndex,
		OnlyWorkspaceHeaders: f.OnlyWorkspaceHeaders,
		HeaderExtensions:     f.HeaderExtensions,
	}

	for _, root := range f.WorkspaceRoots {
		expanded, err := ExpandPath(root)
		if err != nil {
			return headerindex.Settings{}, err
		}
		if !filepath.IsAbs(expanded) && f.dir != "" {
			expanded = filepath.Join(f.dir, expanded)
		}
		settings.WorkspaceRoots = append(settings.WorkspaceRoots, filepath.Clean(expanded))
	}

	if len(settings.WorkspaceRoots) == 0 && fallbackRoot != "" {
		settings.WorkspaceRoots = []string{fallbackRoot}
	}

	return settings, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}
