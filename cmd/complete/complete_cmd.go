package complete

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/includesense/internal/cli"
)

type completeOptions struct {
	line   string
	column int
}

// Cmd represents the complete command.
var Cmd = NewCommand()

// NewCommand returns a new complete command instance.
func NewCommand() *cobra.Command {
	opts := &completeOptions{column: -1}

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Print header suggestions for a line of source",
		Long: `Print the header labels an editor would offer for the given line. Nothing is
printed unless the text before the cursor contains #include.

Examples:
  includesense complete --line '#include <'
  includesense complete --line 'int x; #include "' --column 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runComplete(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.line, "line", "l", "", "Text of the current line")
	cmd.Flags().IntVarP(&opts.column, "column", "c", opts.column, "Cursor position in characters (default: end of line)")
	_ = cmd.MarkFlagRequired("line")

	return cmd
}

func runComplete(cmd *cobra.Command, opts *completeOptions) error {
	env, err := cli.Resolve(cmd)
	if err != nil {
		return err
	}

	indexer := env.NewIndexer()
	if err := indexer.Start(cmd.Context(), env.Settings); err != nil {
		return fmt.Errorf("failed to load header index: %w", err)
	}
	defer indexer.Stop()

	for _, label := range indexer.Complete(opts.line, opts.column) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), label); err != nil {
			return err
		}
	}
	return nil
}
