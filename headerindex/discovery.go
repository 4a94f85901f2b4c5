package headerindex

import (
	"context"
	"io/fs"
	"path/filepath"
)

var skippedConfigDirs = map[string]bool{
	".git": true,
	".hg":  true,
	".svn": true,
	"CVS":  true,
}

// DiscoverConfigFiles returns every c_cpp_properties.json file under root.
// Finding none is not an error. Walk failures are reported as a
// *DiscoveryError for the root.
func DiscoverConfigFiles(ctx context.Context, root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != root && skippedConfigDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == ConfigFileName {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &DiscoveryError{Path: root, Err: err}
	}
	return files, nil
}
