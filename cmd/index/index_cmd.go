package index

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/includesense/headerindex"
	"github.com/LegacyCodeHQ/includesense/internal/cli"
)

type indexOptions struct {
	format string
}

// Cmd represents the index command.
var Cmd = NewCommand()

// NewCommand returns a new index command instance.
func NewCommand() *cobra.Command {
	opts := &indexOptions{format: "text"}

	cmd := &cobra.Command{
		Use:   "index",
		Short: "List the headers available for #include completion",
		Long: `Discover every c_cpp_properties.json under the workspace roots, expand the
include paths of the selected configuration and list the headers found.

Output formats:
  - text: one header label per line, sorted (default)
  - json: entries with their search directory and a load report

Examples:
  includesense index
  includesense index --root ~/src/engine --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIndex(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "Output format (text, json)")

	return cmd
}

func runIndex(cmd *cobra.Command, opts *indexOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown output format: %s (valid options: text, json)", opts.format)
	}

	env, err := cli.Resolve(cmd)
	if err != nil {
		return err
	}

	snap, err := env.NewIndexer().Load(cmd.Context(), env.Settings)
	if err != nil {
		return fmt.Errorf("failed to load header index: %w", err)
	}

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		data, err := json.MarshalIndent(newIndexOutput(snap), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to generate JSON: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	for _, label := range snap.SortedLabels() {
		if _, err := fmt.Fprintln(out, label); err != nil {
			return err
		}
	}
	return nil
}

type indexOutput struct {
	Headers []headerindex.Entry `json:"headers"`
	Report  headerindex.Report  `json:"report"`
	Errors  []string            `json:"errors"`
}

func newIndexOutput(snap *headerindex.Snapshot) indexOutput {
	entries := append([]headerindex.Entry(nil), snap.Entries...)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Label != entries[j].Label {
			return entries[i].Label < entries[j].Label
		}
		return entries[i].Path < entries[j].Path
	})
	if entries == nil {
		entries = []headerindex.Entry{}
	}

	errs := make([]string, 0, len(snap.Report.Errors))
	for _, err := range snap.Report.Errors {
		errs = append(errs, err.Error())
	}
	sort.Strings(errs)

	return indexOutput{Headers: entries, Report: snap.Report, Errors: errs}
}
