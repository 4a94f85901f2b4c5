package includes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LegacyCodeHQ/includesense/headerindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntries() []headerindex.Entry {
	return []headerindex.Entry{
		{Label: "lib.h", Path: "/project/include/lib.h", Dir: "/project/include", Root: "/project"},
		{Label: "net/socket.h", Path: "/project/include/net/socket.h", Dir: "/project/include", Root: "/project"},
		{Label: "socket.h", Path: "/project/include/net/socket.h", Dir: "/project/include/net", Root: "/project"},
		{Label: "lib.h", Path: "/project/vendor/lib.h", Dir: "/project/vendor", Root: "/project"},
	}
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(testEntries())

	assert.Equal(t,
		[]string{"/project/include/lib.h", "/project/vendor/lib.h"},
		r.Resolve("/project/src/main.c", Include{Path: "lib.h", Kind: System}))

	assert.Equal(t,
		[]string{"/project/include/net/socket.h"},
		r.Resolve("/project/src/main.c", Include{Path: "net/socket.h", Kind: Local}))

	assert.Equal(t,
		[]string{"/project/include/net/socket.h"},
		r.Resolve("/project/include/net/conn.h", Include{Path: "socket.h", Kind: Local}))

	assert.Empty(t, r.Resolve("/project/src/main.c", Include{Path: "missing.h", Kind: Local}))
}

func TestResolver_CheckFindsSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "main.cpp")
	sibling := filepath.Join(dir, "local.h")
	require.NoError(t, os.WriteFile(sibling, nil, 0o644))

	r := NewResolver(testEntries())
	results := r.Check(source, []Include{
		{Path: "local.h", Kind: Local, Line: 1},
		{Path: "local.h", Kind: System, Line: 2},
		{Path: "lib.h", Kind: System, Line: 3},
	})

	require.Len(t, results, 3)
	assert.True(t, results[0].Found())
	assert.Equal(t, []string{sibling}, results[0].Resolved)
	assert.False(t, results[1].Found())
	assert.True(t, results[2].Found())
}

func TestResolver_SiblingStaysFirst(t *testing.T) {
	r := NewResolver([]headerindex.Entry{
		{Label: "b.h", Path: "/ws/zz/inc/b.h", Dir: "/ws/zz/inc", Root: "/ws"},
		{Label: "b.h", Path: "/ws/aa/inc/b.h", Dir: "/ws/aa/inc", Root: "/ws"},
		{Label: "b.h", Path: "/ws/mm/b.h", Dir: "/ws/mm", Root: "/ws"},
	})

	assert.Equal(t,
		[]string{"/ws/zz/inc/b.h", "/ws/aa/inc/b.h", "/ws/mm/b.h"},
		r.Resolve("/ws/zz/inc/a.c", Include{Path: "b.h", Kind: Local}))

	results := r.Check("/ws/zz/inc/a.c", []Include{{Path: "b.h", Kind: Local, Line: 1}})
	require.Len(t, results, 1)
	assert.Equal(t, "/ws/zz/inc/b.h", results[0].Resolved[0])

	assert.Equal(t,
		[]string{"/ws/aa/inc/b.h", "/ws/mm/b.h", "/ws/zz/inc/b.h"},
		r.Resolve("/ws/zz/inc/a.c", Include{Path: "b.h", Kind: System}))
}

func TestResolver_ScopesMatchesToSourceRoot(t *testing.T) {
	r := NewResolver([]headerindex.Entry{
		{Label: "b.h", Path: "/one/inc/b.h", Dir: "/one/inc", Root: "/one"},
		{Label: "b.h", Path: "/two/inc/b.h", Dir: "/two/inc", Root: "/two"},
		{Label: "stdio.h", Path: "/usr/include/stdio.h", Dir: "/usr/include", Root: "/two"},
	})

	assert.Equal(t, []string{"/one/inc/b.h"}, r.Resolve("/one/src/a.c", Include{Path: "b.h", Kind: Local}))
	assert.Equal(t, []string{"/two/inc/b.h"}, r.Resolve("/two/src/a.c", Include{Path: "b.h", Kind: System}))
	assert.Equal(t, []string{"/usr/include/stdio.h"}, r.Resolve("/two/src/a.c", Include{Path: "stdio.h", Kind: System}))
	assert.Empty(t, r.Resolve("/one/src/a.c", Include{Path: "stdio.h", Kind: System}))

	assert.Equal(t,
		[]string{"/one/inc/b.h", "/two/inc/b.h"},
		r.Resolve("/elsewhere/a.c", Include{Path: "b.h", Kind: System}))
}
