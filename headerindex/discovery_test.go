package headerindex

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverConfigFiles(t *testing.T) {
	root := t.TempDir()
	first := writeFile(t, root, ".vscode/c_cpp_properties.json", "{}")
	second := writeFile(t, root, "sub/project/.vscode/c_cpp_properties.json", "{}")
	writeFile(t, root, ".git/c_cpp_properties.json", "{}")
	writeFile(t, root, "other.json", "{}")

	files, err := DiscoverConfigFiles(context.Background(), root)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{first, second}, files)
}

func TestDiscoverConfigFiles_NoneFound(t *testing.T) {
	files, err := DiscoverConfigFiles(context.Background(), t.TempDir())

	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverConfigFiles_MissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")

	_, err := DiscoverConfigFiles(context.Background(), root)

	var discoveryErr *DiscoveryError
	require.True(t, errors.As(err, &discoveryErr))
	assert.Equal(t, root, discoveryErr.Path)
}
