package fswatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_ShouldReload(t *testing.T) {
	t.Parallel()

	c := NewClassifier(nil)

	tests := []struct {
		name   string
		path   string
		change Change
		want   bool
	}{
		{name: "config created", path: "/p/.vscode/c_cpp_properties.json", change: Created, want: true},
		{name: "config changed", path: "/p/.vscode/c_cpp_properties.json", change: Changed, want: true},
		{name: "config deleted", path: "/p/.vscode/c_cpp_properties.json", change: Deleted, want: true},
		{name: "header created", path: "/p/inc/foo.h", change: Created, want: true},
		{name: "header deleted", path: "/p/inc/foo.hpp", change: Deleted, want: true},
		{name: "header content changed", path: "/p/inc/foo.hh", change: Changed, want: false},
		{name: "upper case extension", path: "/p/inc/FOO.H", change: Created, want: true},
		{name: "source file", path: "/p/src/main.cpp", change: Created, want: false},
		{name: "other json", path: "/p/.vscode/settings.json", change: Changed, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, c.ShouldReload(tc.path, tc.change))
		})
	}
}

func TestClassifier_CustomExtensions(t *testing.T) {
	c := NewClassifier([]string{"hxx"})

	assert.True(t, c.ShouldReload("/p/a.hxx", Created))
	assert.False(t, c.ShouldReload("/p/a.h", Created))
}

func TestChangeString(t *testing.T) {
	assert.Equal(t, "created", Created.String())
	assert.Equal(t, "changed", Changed.String())
	assert.Equal(t, "deleted", Deleted.String())
	assert.Equal(t, "unknown", Change(0).String())
}
