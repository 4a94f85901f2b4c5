package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/LegacyCodeHQ/includesense/internal/mcplogdlog"
)

// NewLogger creates a logger writing to w. Empty level and format mean info
// and text. Logs never go to stdout, which carries command output and LSP
// traffic.
func NewLogger(levelStr, formatStr string, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level: %s (valid options: debug, info, warn, error)", levelStr)
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch formatStr {
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	case "text", "":
		handler = slog.NewTextHandler(w, handlerOpts)
	default:
		return nil, fmt.Errorf("unknown log format: %s (valid options: text, json)", formatStr)
	}

	return slog.New(mcplogdlog.NewHandler(handler)), nil
}
