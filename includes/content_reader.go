package includes

import "os"

// ContentReader reads file content given a file path, so callers can decide
// where sources come from.
type ContentReader func(filePath string) ([]byte, error)

// FilesystemContentReader reads files from disk.
func FilesystemContentReader() ContentReader {
	return os.ReadFile
}
