package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/includesense/fswatch"
	"github.com/LegacyCodeHQ/includesense/headerindex"
	"github.com/LegacyCodeHQ/includesense/internal/cli"
)

type watchOptions struct {
	port     int
	debounce time.Duration
}

// Cmd represents the watch command.
var Cmd = NewCommand()

// NewCommand returns a new watch command instance.
func NewCommand() *cobra.Command {
	opts := &watchOptions{
		port:     4900,
		debounce: 300 * time.Millisecond,
	}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch workspace roots and serve a live header index",
		Long: `Watch the workspace roots for configuration and header changes, rebuild the
header index and serve it at localhost.

Endpoints:
  /          live header list
  /headers   current header labels as JSON
  /complete  suggestions for ?line=<text>&column=<n>
  /events    server-sent "index" events after every reload`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.port, "port", "P", opts.port, "HTTP server port")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", opts.debounce, "Quiet period before a reload after file changes")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *watchOptions) error {
	env, err := cli.Resolve(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	indexer := env.NewIndexer()
	defer indexer.Stop()

	b := newBroker()
	srv := newServer(b, indexer, opts.port)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", opts.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", opts.port, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			env.Logger.Error("http server stopped", "error", err)
		}
	}()
	defer srv.Close()

	reload := newReloader(ctx, indexer, env.Settings, b, env.Logger)
	reload("initial load")

	out := cmd.OutOrStdout()
	for _, root := range env.Settings.WorkspaceRoots {
		fmt.Fprintf(out, "Watching %s\n", root)
	}
	fmt.Fprintf(out, "Serving at http://localhost:%d\n", ln.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(out, "Press Ctrl+C to stop\n")

	w := fswatch.New(env.Settings.WorkspaceRoots,
		fswatch.NewClassifier(env.Settings.HeaderExtensions),
		fswatch.WithDebounce(opts.debounce),
		fswatch.WithLogger(env.Logger))
	return w.Run(ctx, reload)
}

// newReloader returns the callback that rebuilds the index and broadcasts the
// result. A canceled load publishes nothing.
func newReloader(ctx context.Context, indexer *headerindex.Indexer, settings headerindex.Settings, b *broker, logger *slog.Logger) func(reason string) {
	return func(reason string) {
		snap, err := indexer.Load(ctx, settings)
		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, headerindex.ErrStopped) {
				logger.Warn("header index reload failed", "reason", reason, "error", err)
			}
			return
		}
		logger.Info("header index reloaded", "reason", reason, "headers", len(snap.Entries), "errors", len(snap.Report.Errors))
		if err := b.publishSnapshot(snap, reason); err != nil {
			logger.Warn("failed to publish index event", "error", err)
		}
	}
}
