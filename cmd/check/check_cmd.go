package check

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/includesense/includes"
	"github.com/LegacyCodeHQ/includesense/internal/cli"
)

type checkOptions struct {
	format        string
	failOnMissing bool
}

// Cmd represents the check command.
var Cmd = NewCommand()

// NewCommand returns a new check command instance.
func NewCommand() *cobra.Command {
	opts := &checkOptions{format: "text"}

	cmd := &cobra.Command{
		Use:   "check <files...>",
		Short: "Report which #include directives resolve against the header index",
		Long: `Parse C and C++ sources and resolve each #include against the header index.
Quoted includes are looked up next to the including file first.

Examples:
  includesense check src/main.cpp
  includesense check --fail-on-missing --format json src/*.c`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "Output format (text, json)")
	cmd.Flags().BoolVar(&opts.failOnMissing, "fail-on-missing", false, "Exit with an error when an include does not resolve")

	return cmd
}

type fileReport struct {
	File     string          `json:"file"`
	Includes []includeReport `json:"includes"`
}

type includeReport struct {
	Path     string   `json:"path"`
	Kind     string   `json:"kind"`
	Line     int      `json:"line"`
	Resolved []string `json:"resolved"`
}

func runCheck(cmd *cobra.Command, opts *checkOptions, files []string) error {
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
	resolver := includes.NewResolver(snap.Entries)
	reader := includes.FilesystemContentReader()

	reports := make([]fileReport, 0, len(files))
	missing := 0
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", file, err)
		}
		incs, err := includes.ParseFile(abs, reader)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", file, err)
		}

		report := fileReport{File: file, Includes: []includeReport{}}
		for _, res := range resolver.Check(abs, incs) {
			if !res.Found() {
				missing++
			}
			resolved := res.Resolved
			if resolved == nil {
				resolved = []string{}
			}
			report.Includes = append(report.Includes, includeReport{
				Path:     res.Include.Path,
				Kind:     res.Include.Kind.String(),
				Line:     res.Include.Line,
				Resolved: resolved,
			})
		}
		reports = append(reports, report)
	}

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to generate JSON: %w", err)
		}
		if _, err := fmt.Fprintln(out, string(data)); err != nil {
			return err
		}
	} else {
		for _, report := range reports {
			for _, inc := range report.Includes {
				status := "missing"
				if len(inc.Resolved) > 0 {
					status = inc.Resolved[0]
				}
				if _, err := fmt.Fprintf(out, "%s:%d: %s -> %s\n", report.File, inc.Line, quoteInclude(inc), status); err != nil {
					return err
				}
			}
		}
	}

	if opts.failOnMissing && missing > 0 {
		return fmt.Errorf("%d unresolved includes", missing)
	}
	return nil
}

func quoteInclude(inc includeReport) string {
	if inc.Kind == includes.System.String() {
		return "<" + inc.Path + ">"
	}
	return `"` + inc.Path + `"`
}
