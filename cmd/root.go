package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/includesense/cmd/check"
	"github.com/LegacyCodeHQ/includesense/cmd/complete"
	"github.com/LegacyCodeHQ/includesense/cmd/graph"
	"github.com/LegacyCodeHQ/includesense/cmd/index"
	"github.com/LegacyCodeHQ/includesense/cmd/serve"
	"github.com/LegacyCodeHQ/includesense/cmd/watch"
	"github.com/LegacyCodeHQ/includesense/internal/cli"
)

// version is set via build-time ldflags
var version = "dev"

// buildDate is set via build-time ldflags
var buildDate = "unknown"

// commit is set via build-time ldflags
var commit = "unknown"

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "includesense",
		Short: "Complete C/C++ #include paths from c_cpp_properties.json",
		Long: `includesense discovers c_cpp_properties.json files in your workspace, expands
the include paths of the configuration that fits your platform and indexes
the headers they contain, so editors can complete #include directives.

Use 'includesense --help' to see all available commands, or
'includesense <command> --help' for detailed information about a specific command.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cli.AddPersistentFlags(cmd)

	cmd.AddCommand(index.NewCommand())
	cmd.AddCommand(complete.NewCommand())
	cmd.AddCommand(check.NewCommand())
	cmd.AddCommand(graph.NewCommand())
	cmd.AddCommand(watch.NewCommand())
	cmd.AddCommand(serve.NewCommand())

	// Initialize annotations for version template
	if cmd.Annotations == nil {
		cmd.Annotations = make(map[string]string)
	}
	cmd.Annotations["buildDate"] = buildDate
	cmd.Annotations["commit"] = commit

	// Customize version template to show additional build info
	cmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build date: {{printf "%s" (index .Annotations "buildDate")}}
Commit: {{printf "%s" (index .Annotations "commit")}}
`)

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
