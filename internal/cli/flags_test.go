package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runResolve executes a throwaway command carrying the persistent flags and
// returns the environment its RunE resolved.
func runResolve(t *testing.T, args ...string) (*Env, error) {
	t.Helper()

	var env *Env
	root := &cobra.Command{Use: "includesense", SilenceUsage: true, SilenceErrors: true}
	AddPersistentFlags(root)
	sub := &cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			env, err = Resolve(cmd)
			return err
		},
	}
	root.AddCommand(sub)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"probe"}, args...))

	err := root.Execute()
	return env, err
}

func TestResolve_DefaultsToWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	env, err := runResolve(t)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, []string{cwd}, env.Settings.WorkspaceRoots)
	assert.Nil(t, env.Settings.SelectConfigIndex)
	assert.False(t, env.Settings.OnlyWorkspaceHeaders)
	assert.NotNil(t, env.Logger)
}

func TestResolve_FlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".includesense.yaml"), []byte(`
selectConfigIndex: 0
onlyWorkspaceHeaders: true
workspaceRoots: [proj]
headerExtensions: [.h]
`), 0o644))

	env, err := runResolve(t)
	require.NoError(t, err)
	cwd, _ := os.Getwd()
	assert.Equal(t, []string{filepath.Join(cwd, "proj")}, env.Settings.WorkspaceRoots)
	require.NotNil(t, env.Settings.SelectConfigIndex)
	assert.Equal(t, 0, *env.Settings.SelectConfigIndex)
	assert.True(t, env.Settings.OnlyWorkspaceHeaders)
	assert.Equal(t, []string{".h"}, env.Settings.HeaderExtensions)

	other := t.TempDir()
	env, err = runResolve(t, "--root", other, "--config-index", "2", "--only-workspace-headers=false")
	require.NoError(t, err)
	assert.Equal(t, []string{other}, env.Settings.WorkspaceRoots)
	require.NotNil(t, env.Settings.SelectConfigIndex)
	assert.Equal(t, 2, *env.Settings.SelectConfigIndex)
	assert.False(t, env.Settings.OnlyWorkspaceHeaders)
}

func TestResolve_RepeatedRoots(t *testing.T) {
	t.Chdir(t.TempDir())
	a, b := t.TempDir(), t.TempDir()

	env, err := runResolve(t, "--root", a, "--root", b)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, env.Settings.WorkspaceRoots)
}

func TestResolve_MissingExplicitConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := runResolve(t, "--config", "nope.yaml")
	assert.Error(t, err)
}

func TestResolve_InvalidLogLevel(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := runResolve(t, "--log-level", "loud")
	assert.ErrorContains(t, err, "unknown log level")
}

func TestResolve_WithoutPersistentFlags(t *testing.T) {
	t.Chdir(t.TempDir())

	var env *Env
	cmd := &cobra.Command{
		Use: "standalone",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			env, err = Resolve(cmd)
			return err
		},
	}
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Len(t, env.Settings.WorkspaceRoots, 1)
}

func TestNewLogger(t *testing.T) {
	var out bytes.Buffer
	logger, err := NewLogger("warn", "json", &out)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), `"msg":"shown"`)

	_, err = NewLogger("info", "xml", &out)
	assert.ErrorContains(t, err, "unknown log format")
}
