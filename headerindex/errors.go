package headerindex

import (
	"errors"
	"fmt"
)

// ErrStopped is returned by Load after Stop has been called.
var ErrStopped = errors.New("header indexer stopped")

// DiscoveryError reports an I/O failure while walking a workspace root for
// configuration files or a search directory for headers.
type DiscoveryError struct {
	Path string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("failed to scan %s: %v", e.Path, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// ParseError reports a configuration file that is malformed or does not have
// the expected shape.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConfigSelectionMiss reports a configuration file with no usable entry.
type ConfigSelectionMiss struct {
	File string
}

func (e *ConfigSelectionMiss) Error() string {
	return fmt.Sprintf("no usable configuration in %s", e.File)
}
