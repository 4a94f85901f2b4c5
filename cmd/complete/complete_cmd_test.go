package complete

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LegacyCodeHQ/includesense/internal/testws"
)

func runCompleteCommand(t *testing.T, args ...string) string {
	t.Helper()

	cmd := NewCommand()
	cmd.SetArgs(args)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)

	require.NoError(t, cmd.Execute())
	return stdout.String()
}

func TestCompleteCommand(t *testing.T) {
	t.Chdir(testws.Sample(t))

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "include line",
			args: []string{"--line", "#include <"},
			want: []string{"app.h", "detail/impl.h", "json.hh", "net/socket.hpp"},
		},
		{
			name: "quoted include",
			args: []string{"--line", `  #include "`},
			want: []string{"app.h", "detail/impl.h", "json.hh", "net/socket.hpp"},
		},
		{
			name: "plain code",
			args: []string{"--line", "int main() {"},
			want: nil,
		},
		{
			name: "cursor before directive",
			args: []string{"--line", `#include "`, "--column", "3"},
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			output := runCompleteCommand(t, tc.args...)

			var got []string
			for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
				if line != "" {
					got = append(got, line)
				}
			}
			assert.ElementsMatch(t, tc.want, got)
		})
	}
}

func TestCompleteCommand_RequiresLine(t *testing.T) {
	cmd := NewCommand()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.Error(t, cmd.Execute())
}
