package serve

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/LegacyCodeHQ/includesense/internal/cli"
	"github.com/LegacyCodeHQ/includesense/internal/lsp"
)

type serveOptions struct {
	noWatch bool
}

// Cmd represents the serve command.
var Cmd = NewCommand()

// NewCommand returns a new serve command instance.
func NewCommand() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the language server on stdio",
		Long: `Run a Language Server Protocol server on stdin/stdout that completes
#include paths from the header index. Workspace roots and settings sent by the
editor take precedence over flags and the config file.

Editor settings live under the "includesense" key:
  selectConfigIndex, onlyWorkspaceHeaders, headerExtensions`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.noWatch, "no-watch", false, "Rely on the editor's file events instead of watching the workspace")

	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	env, err := cli.Resolve(cmd)
	if err != nil {
		return err
	}

	commonlog.Configure(commonlogVerbosity(env.LogLevel), nil)

	server := lsp.New(env.NewIndexer(), lsp.Options{
		Settings: env.Settings,
		Watch:    !opts.noWatch,
		Version:  cmd.Root().Version,
		Logger:   env.Logger,
	})
	if err := server.RunStdio(); err != nil {
		return fmt.Errorf("language server stopped: %w", err)
	}
	return nil
}

// commonlogVerbosity maps a slog level name onto glsp's logger verbosity.
func commonlogVerbosity(level string) int {
	switch level {
	case "debug":
		return 2
	case "info", "":
		return 1
	default:
		return 0
	}
}
