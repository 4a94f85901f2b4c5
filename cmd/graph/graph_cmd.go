package graph

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/includesense/includegraph"
	"github.com/LegacyCodeHQ/includesense/includes"
	"github.com/LegacyCodeHQ/includesense/internal/cli"
)

type graphOptions struct {
	format      string
	generateURL bool
}

// Cmd represents the graph command.
var Cmd = NewCommand()

// NewCommand returns a new graph command instance.
func NewCommand() *cobra.Command {
	opts := &graphOptions{format: "dot"}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Generate the include graph of the indexed headers",
		Long: `Parse every indexed header and draw the #include edges between them.
Headers that include each other in a cycle are highlighted.

Output formats:
  - dot: Graphviz DOT format for visualization (default)
  - json: nodes, edges and cycles

Examples:
  includesense graph
  includesense graph --url
  includesense graph --format=json --root ~/src/engine`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGraph(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "Output format (dot, json)")
	cmd.Flags().BoolVarP(&opts.generateURL, "url", "u", false, "Generate GraphvizOnline URL for visualization")

	return cmd
}

func runGraph(cmd *cobra.Command, opts *graphOptions) error {
	if opts.format != "dot" && opts.format != "json" {
		return fmt.Errorf("unknown output format: %s (valid options: dot, json)", opts.format)
	}

	env, err := cli.Resolve(cmd)
	if err != nil {
		return err
	}

	snap, err := env.NewIndexer().Load(cmd.Context(), env.Settings)
	if err != nil {
		return fmt.Errorf("failed to load header index: %w", err)
	}

	g, err := includegraph.Build(snap, includes.FilesystemContentReader())
	if err != nil {
		return fmt.Errorf("failed to build include graph: %w", err)
	}
	for _, parseErr := range g.Errors {
		env.Logger.Warn("header skipped", "error", parseErr)
	}

	out := cmd.OutOrStdout()
	switch opts.format {
	case "json":
		data, err := g.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to generate JSON: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err

	default:
		dot, err := g.ToDOT()
		if err != nil {
			return fmt.Errorf("failed to generate DOT: %w", err)
		}
		if opts.generateURL {
			_, err = fmt.Fprintln(out, graphvizOnlineURL(dot))
			return err
		}
		_, err = fmt.Fprint(out, dot)
		return err
	}
}

// graphvizOnlineURL creates a GraphvizOnline URL with the DOT graph embedded
// in the fragment.
func graphvizOnlineURL(dotGraph string) string {
	// Spaces must become %20, not +.
	encoded := url.PathEscape(dotGraph)
	return fmt.Sprintf("https://dreampuf.github.io/GraphvizOnline/?engine=dot#%s", encoded)
}
