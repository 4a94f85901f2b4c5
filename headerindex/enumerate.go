package headerindex

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultHeaderExtensions are the file extensions offered as completions.
var DefaultHeaderExtensions = []string{".h", ".hpp", ".hh"}

// ListHeaders recursively lists header files under dir and returns their
// slash-separated paths relative to dir.
//
// A missing directory yields no headers. On windows a directory that starts
// with a separator has no drive letter, usually because substitution produced
// a degenerate path, and is never scanned. Unreadable subdirectories are
// skipped. Only a failure to read dir itself is returned as an error.
func ListHeaders(ctx context.Context, dir, goos string, extensions []string) ([]string, error) {
	if goos == "windows" && startsWithSeparator(dir) {
		return []string{}, nil
	}

	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, &DiscoveryError{Path: dir, Err: err}
	}
	if !info.IsDir() {
		return []string{}, nil
	}

	exts := extensionSet(extensions)
	headers := []string{}
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == dir {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || (!d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0) {
			return nil
		}
		if !exts[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return nil
		}
		headers = append(headers, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &DiscoveryError{Path: dir, Err: err}
	}

	return headers, nil
}

func extensionSet(extensions []string) map[string]bool {
	if len(extensions) == 0 {
		extensions = DefaultHeaderExtensions
	}
	set := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}
