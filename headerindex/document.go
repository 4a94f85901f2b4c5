package headerindex

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// ConfigFileName is the name of the per-workspace include configuration file.
const ConfigFileName = "c_cpp_properties.json"

// Document is a parsed c_cpp_properties.json file.
type Document struct {
	Configurations []Configuration
}

// Configuration is one named build target and its include search paths.
type Configuration struct {
	Name        string
	IncludePath []string
}

type rawDocument struct {
	Configurations *[]rawConfiguration `json:"configurations"`
}

type rawConfiguration struct {
	Name        *string   `json:"name"`
	IncludePath *[]string `json:"includePath"`
}

// ReadDocument reads and parses the configuration file at path.
func ReadDocument(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &DiscoveryError{Path: path, Err: err}
	}
	return ParseDocument(path, content)
}

// ParseDocument parses configuration content that may contain comments and
// trailing commas. Every failure is returned as a *ParseError.
func ParseDocument(path string, content []byte) (*Document, error) {
	standard, err := hujson.Standardize(content)
	if err != nil {
		return nil, &ParseError{File: path, Err: err}
	}

	var raw rawDocument
	decoder := json.NewDecoder(bytes.NewReader(standard))
	if err := decoder.Decode(&raw); err != nil {
		return nil, &ParseError{File: path, Err: err}
	}

	if raw.Configurations == nil {
		return nil, &ParseError{File: path, Err: errors.New(`missing "configurations"`)}
	}

	doc := &Document{Configurations: make([]Configuration, 0, len(*raw.Configurations))}
	for i, rc := range *raw.Configurations {
		if rc.Name == nil {
			return nil, &ParseError{File: path, Err: fmt.Errorf(`configurations[%d]: missing "name"`, i)}
		}
		if rc.IncludePath == nil {
			return nil, &ParseError{File: path, Err: fmt.Errorf(`configurations[%d]: missing "includePath"`, i)}
		}
		doc.Configurations = append(doc.Configurations, Configuration{
			Name:        *rc.Name,
			IncludePath: append([]string(nil), (*rc.IncludePath)...),
		})
	}

	return doc, nil
}
