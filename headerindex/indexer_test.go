package headerindex

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const linuxConfig = `{
    "configurations": [
        {
            "name": "Linux",
            "includePath": ["${workspaceRoot}/inc"],
        },
    ],
}`

func newTestIndexer() *Indexer {
	return New(
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithPlatform("linux"),
	)
}

func TestIndexer_EndToEnd(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".vscode/c_cpp_properties.json", linuxConfig)
	writeFile(t, root, "inc/foo.h", "")

	idx := newTestIndexer()
	require.NoError(t, idx.Start(context.Background(), Settings{WorkspaceRoots: []string{root}}))

	assert.Contains(t, idx.Complete(`#include "`, -1), "foo.h")

	snap := idx.Snapshot()
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, filepath.Join(root, "inc", "foo.h"), snap.Entries[0].Path)
	assert.Equal(t, filepath.Join(root, "inc"), snap.Entries[0].Dir)
	assert.Equal(t, root, snap.Entries[0].Root)
	assert.NoError(t, snap.Report.Err())
}

func TestIndexer_NonIncludeLineReturnsNothing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".vscode/c_cpp_properties.json", linuxConfig)
	writeFile(t, root, "inc/foo.h", "")

	idx := newTestIndexer()
	require.NoError(t, idx.Start(context.Background(), Settings{WorkspaceRoots: []string{root}}))

	assert.Nil(t, idx.Complete("int main() {", -1))
	assert.Nil(t, idx.Complete(`  "#include`, 3))
}

func TestIndexer_LoadIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".vscode/c_cpp_properties.json", `{
        "configurations": [
            {"name": "Linux", "includePath": ["${workspaceRoot}/inc", "${workspaceRoot}/lib"]}
        ]
    }`)
	writeFile(t, root, "inc/a.h", "")
	writeFile(t, root, "inc/sub/b.hpp", "")
	writeFile(t, root, "lib/c.hh", "")
	writeFile(t, root, "nested/.vscode/c_cpp_properties.json", linuxConfig)
	writeFile(t, root, "inc/d.h", "")

	idx := newTestIndexer()
	settings := Settings{WorkspaceRoots: []string{root}}

	first, err := idx.Load(context.Background(), settings)
	require.NoError(t, err)
	second, err := idx.Load(context.Background(), settings)
	require.NoError(t, err)

	sortEntries := cmpopts.SortSlices(func(a, b Entry) bool { return a.Path < b.Path })
	if diff := cmp.Diff(first.Entries, second.Entries, sortEntries); diff != "" {
		t.Fatalf("entries differ between loads (-first +second):\n%s", diff)
	}
	assert.Greater(t, second.ID, first.ID)
}

func TestIndexer_ErrorsAreIsolated(t *testing.T) {
	good := t.TempDir()
	writeFile(t, good, ".vscode/c_cpp_properties.json", linuxConfig)
	writeFile(t, good, "inc/good.h", "")
	writeFile(t, good, "broken/c_cpp_properties.json", `{"configurations": [`)
	writeFile(t, good, "empty/c_cpp_properties.json", `{"configurations": []}`)

	missingRoot := filepath.Join(t.TempDir(), "missing")

	idx := newTestIndexer()
	snap, err := idx.Load(context.Background(), Settings{WorkspaceRoots: []string{good, missingRoot}})

	require.NoError(t, err)
	assert.Equal(t, []string{"good.h"}, snap.Labels())
	assert.Equal(t, 2, snap.Report.Roots)
	assert.Equal(t, 3, snap.Report.ConfigFiles)
	require.Len(t, snap.Report.Errors, 3)

	var parseErr *ParseError
	var missErr *ConfigSelectionMiss
	var discoveryErr *DiscoveryError
	joined := snap.Report.Err()
	assert.True(t, errors.As(joined, &parseErr))
	assert.True(t, errors.As(joined, &missErr))
	assert.True(t, errors.As(joined, &discoveryErr))
	assert.Equal(t, missingRoot, discoveryErr.Path)
}

func TestIndexer_SettingsAreApplied(t *testing.T) {
	root := t.TempDir()
	external := t.TempDir()
	writeFile(t, external, "sys.h", "")
	writeFile(t, root, "win/win.h", "")
	writeFile(t, root, "linux/linux.h", "")
	writeFile(t, root, ".vscode/c_cpp_properties.json", `{
        "configurations": [
            {"name": "Win32", "includePath": ["${workspaceFolder}/win"]},
            {"name": "Linux", "includePath": ["${workspaceFolder}/linux", "`+filepath.ToSlash(external)+`"]}
        ]
    }`)

	idx := newTestIndexer()

	snap, err := idx.Load(context.Background(), Settings{WorkspaceRoots: []string{root}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"linux.h", "sys.h"}, snap.Labels())

	snap, err = idx.Load(context.Background(), Settings{WorkspaceRoots: []string{root}, OnlyWorkspaceHeaders: true})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"linux.h"}, snap.Labels())

	snap, err = idx.Load(context.Background(), Settings{WorkspaceRoots: []string{root}, SelectConfigIndex: intPtr(0)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"win.h"}, snap.Labels())

	snap, err = idx.Load(context.Background(), Settings{WorkspaceRoots: []string{root}, HeaderExtensions: []string{".hpp"}})
	require.NoError(t, err)
	assert.Empty(t, snap.Labels())
}

func TestIndexer_MultipleRoots(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, first, ".vscode/c_cpp_properties.json", linuxConfig)
	writeFile(t, first, "inc/one.h", "")
	writeFile(t, second, ".vscode/c_cpp_properties.json", linuxConfig)
	writeFile(t, second, "inc/two.h", "")

	idx := newTestIndexer()
	snap, err := idx.Load(context.Background(), Settings{WorkspaceRoots: []string{first, second}})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"one.h", "two.h"}, snap.Labels())
}

func TestIndexer_CanceledLoadDoesNotPublish(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".vscode/c_cpp_properties.json", linuxConfig)
	writeFile(t, root, "inc/foo.h", "")

	idx := newTestIndexer()
	before, err := idx.Load(context.Background(), Settings{WorkspaceRoots: []string{root}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = idx.Load(ctx, Settings{WorkspaceRoots: []string{root}})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Same(t, before, idx.Snapshot())
}

func TestIndexer_CanceledLoadLogsNoUnitFailures(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".vscode/c_cpp_properties.json", linuxConfig)
	writeFile(t, root, "inc/foo.h", "")

	var logs bytes.Buffer
	idx := New(
		WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
		WithPlatform("linux"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := idx.Load(ctx, Settings{WorkspaceRoots: []string{root}})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, logs.String(), "unit failed")
}

func TestIndexer_StopDropsSnapshotAndRejectsLoads(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".vscode/c_cpp_properties.json", linuxConfig)
	writeFile(t, root, "inc/foo.h", "")

	idx := newTestIndexer()
	require.NoError(t, idx.Start(context.Background(), Settings{WorkspaceRoots: []string{root}}))
	require.NotEmpty(t, idx.Headers())

	idx.Stop()

	assert.Empty(t, idx.Headers())
	_, err := idx.Load(context.Background(), Settings{WorkspaceRoots: []string{root}})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestIndexer_ConcurrentLoadsPublishCompleteSnapshots(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".vscode/c_cpp_properties.json", linuxConfig)
	for _, name := range []string{"a.h", "b.h", "c.h", "d/e.h"} {
		writeFile(t, root, filepath.Join("inc", name), "")
	}

	idx := newTestIndexer()
	settings := Settings{WorkspaceRoots: []string{root}}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = idx.Load(context.Background(), settings)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			if n := len(idx.Headers()); n != 0 && n != 4 {
				t.Errorf("observed partial snapshot with %d headers", n)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, idx.Headers(), 4)
	assert.EqualValues(t, 8, idx.Snapshot().ID)
}

func TestIndexer_EmptyIndexBeforeLoad(t *testing.T) {
	idx := New()

	assert.Empty(t, idx.Headers())
	assert.Empty(t, idx.Complete("#include <", -1))
	assert.Equal(t, runtime.GOOS, idx.goos)
}
