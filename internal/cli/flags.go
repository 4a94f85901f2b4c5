// Package cli holds the state shared by every includesense subcommand: the
// persistent flags, the optional config file and the logger built from them.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/includesense/headerindex"
	"github.com/LegacyCodeHQ/includesense/internal/config"
)

// Persistent flag names.
const (
	FlagConfig               = "config"
	FlagLogLevel             = "log-level"
	FlagLogFormat            = "log-format"
	FlagRoot                 = "root"
	FlagConfigIndex          = "config-index"
	FlagOnlyWorkspaceHeaders = "only-workspace-headers"
)

// AddPersistentFlags registers the shared flags on cmd.
func AddPersistentFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String(FlagConfig, "", "Config file (default: "+config.DefaultFileName+" in the working directory)")
	flags.String(FlagLogLevel, "info", "Log level (debug, info, warn, error)")
	flags.String(FlagLogFormat, "text", "Log format (text, json)")
	flags.StringArray(FlagRoot, nil, "Workspace root to index (repeatable, default: current directory)")
	flags.Int(FlagConfigIndex, -1, "Force the configuration entry at this index")
	flags.Bool(FlagOnlyWorkspaceHeaders, false, "Only index search paths inside the workspace")
}

// Env is what a subcommand needs to run the indexer.
type Env struct {
	Settings headerindex.Settings
	Logger   *slog.Logger
	// LogLevel is the resolved level name, for libraries with their own logging.
	LogLevel string
}

// NewIndexer returns an indexer wired to the environment's logger.
func (e *Env) NewIndexer() *headerindex.Indexer {
	return headerindex.New(headerindex.WithLogger(e.Logger))
}

// Resolve builds the environment for cmd. Values come from the config file
// and are overridden by flags the user set explicitly. Flags that cmd does not
// define are treated as unset, so subcommands also run on their own.
func Resolve(cmd *cobra.Command) (*Env, error) {
	flags := cmd.Flags()

	configPath, err := stringFlag(cmd, FlagConfig)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	settings, err := cfg.Settings(cwd)
	if err != nil {
		return nil, err
	}

	if changed(cmd, FlagRoot) {
		roots, err := flags.GetStringArray(FlagRoot)
		if err != nil {
			return nil, err
		}
		settings.WorkspaceRoots = nil
		for _, root := range roots {
			expanded, err := config.ExpandPath(root)
			if err != nil {
				return nil, err
			}
			abs, err := filepath.Abs(expanded)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
			}
			settings.WorkspaceRoots = append(settings.WorkspaceRoots, abs)
		}
	}
	if changed(cmd, FlagConfigIndex) {
		index, err := flags.GetInt(FlagConfigIndex)
		if err != nil {
			return nil, err
		}
		settings.SelectConfigIndex = &index
	}
	if changed(cmd, FlagOnlyWorkspaceHeaders) {
		only, err := flags.GetBool(FlagOnlyWorkspaceHeaders)
		if err != nil {
			return nil, err
		}
		settings.OnlyWorkspaceHeaders = only
	}

	level := cfg.LogLevel
	if level == "" || changed(cmd, FlagLogLevel) {
		if level, err = stringFlag(cmd, FlagLogLevel); err != nil {
			return nil, err
		}
	}
	format := cfg.LogFormat
	if format == "" || changed(cmd, FlagLogFormat) {
		if format, err = stringFlag(cmd, FlagLogFormat); err != nil {
			return nil, err
		}
	}

	logger, err := NewLogger(level, format, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	return &Env{Settings: settings, Logger: logger, LogLevel: level}, nil
}

func changed(cmd *cobra.Command, name string) bool {
	flag := cmd.Flags().Lookup(name)
	return flag != nil && flag.Changed
}

func stringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	return cmd.Flags().GetString(name)
}
