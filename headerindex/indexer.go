package headerindex

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Indexer builds the header completion index and publishes it as immutable
// snapshots. Reads never block on a running load.
type Indexer struct {
	logger *slog.Logger
	goos   string
	now    func() time.Time

	// loadMu serializes Load runs so a slower, older run cannot replace the
	// snapshot of a newer one.
	loadMu  sync.Mutex
	current atomic.Pointer[Snapshot]
	nextID  atomic.Uint64
	stopped atomic.Bool

	cancelMu sync.Mutex
	cancel   context.CancelFunc
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets the logger used for unit failures and load summaries.
func WithLogger(logger *slog.Logger) Option {
	return func(idx *Indexer) {
		if logger != nil {
			idx.logger = logger
		}
	}
}

// WithPlatform overrides the GOOS value used for configuration selection and
// the rootless path guard.
func WithPlatform(goos string) Option {
	return func(idx *Indexer) {
		idx.goos = goos
	}
}

// New returns an Indexer with an empty snapshot.
func New(opts ...Option) *Indexer {
	idx := &Indexer{
		logger: slog.Default(),
		goos:   runtime.GOOS,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(idx)
	}
	idx.current.Store(emptySnapshot)
	return idx
}

// Start performs the initial load.
func (idx *Indexer) Start(ctx context.Context, settings Settings) error {
	_, err := idx.Load(ctx, settings)
	return err
}

// Stop cancels any running load, drops the current snapshot and makes every
// later Load return ErrStopped.
func (idx *Indexer) Stop() {
	idx.stopped.Store(true)

	idx.cancelMu.Lock()
	if idx.cancel != nil {
		idx.cancel()
	}
	idx.cancelMu.Unlock()

	idx.loadMu.Lock()
	idx.current.Store(emptySnapshot)
	idx.loadMu.Unlock()
}

// Snapshot returns the most recently published snapshot.
func (idx *Indexer) Snapshot() *Snapshot {
	return idx.current.Load()
}

// Headers returns the completion labels of the current snapshot.
func (idx *Indexer) Headers() []string {
	return idx.current.Load().Labels()
}

// Load rebuilds the index for settings and publishes it. Failures scoped to a
// root, configuration file or directory are recorded in the snapshot report
// and never abort sibling work. Load only fails when ctx is done or the
// indexer has been stopped, and in that case nothing is published.
func (idx *Indexer) Load(ctx context.Context, settings Settings) (*Snapshot, error) {
	if idx.stopped.Load() {
		return nil, ErrStopped
	}

	idx.loadMu.Lock()
	defer idx.loadMu.Unlock()

	if idx.stopped.Load() {
		return nil, ErrStopped
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	idx.setCancel(cancel)
	defer idx.setCancel(nil)

	started := idx.now()
	col := &collector{logger: idx.logger}

	var g errgroup.Group
	for _, root := range settings.WorkspaceRoots {
		g.Go(func() error {
			idx.loadRoot(ctx, root, settings, col)
			return nil
		})
	}
	_ = g.Wait()

	if idx.stopped.Load() {
		return nil, ErrStopped
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := col.entries
	if entries == nil {
		entries = []Entry{}
	}
	snap := &Snapshot{
		ID:       idx.nextID.Add(1),
		LoadedAt: idx.now(),
		Entries:  entries,
		Report: Report{
			Roots:       len(settings.WorkspaceRoots),
			ConfigFiles: col.configFiles,
			Directories: col.directories,
			Errors:      col.errors,
		},
	}
	idx.current.Store(snap)

	idx.logger.Debug("header index loaded",
		"id", snap.ID,
		"headers", len(snap.Entries),
		"config_files", snap.Report.ConfigFiles,
		"directories", snap.Report.Directories,
		"errors", len(snap.Report.Errors),
		"duration", idx.now().Sub(started))

	return snap, nil
}

func (idx *Indexer) setCancel(cancel context.CancelFunc) {
	idx.cancelMu.Lock()
	idx.cancel = cancel
	idx.cancelMu.Unlock()
}

func (idx *Indexer) loadRoot(ctx context.Context, root string, settings Settings, col *collector) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		col.fail(&DiscoveryError{Path: root, Err: err})
		return
	}

	files, err := DiscoverConfigFiles(ctx, absRoot)
	if err != nil {
		if !isCancellation(err) {
			col.fail(err)
		}
		return
	}

	var g errgroup.Group
	for _, file := range files {
		g.Go(func() error {
			idx.loadConfigFile(ctx, absRoot, file, settings, col)
			return nil
		})
	}
	_ = g.Wait()
}

func (idx *Indexer) loadConfigFile(ctx context.Context, root, file string, settings Settings, col *collector) {
	col.countConfigFile()

	doc, err := ReadDocument(file)
	if err != nil {
		col.fail(err)
		return
	}

	i := SelectConfigIndex(doc.Configurations, settings.configOverride(), idx.goos)
	if i < 0 {
		col.fail(&ConfigSelectionMiss{File: file})
		return
	}
	config := doc.Configurations[i]

	exts := settings.headerExtensions()
	for _, dir := range ExpandSearchPaths(config.IncludePath, root, settings.OnlyWorkspaceHeaders) {
		if ctx.Err() != nil {
			return
		}
		col.countDirectory()

		headers, err := ListHeaders(ctx, dir, idx.goos, exts)
		if err != nil {
			if !isCancellation(err) {
				col.fail(err)
			}
			continue
		}

		entries := make([]Entry, 0, len(headers))
		for _, h := range headers {
			entries = append(entries, Entry{
				Label: h,
				Path:  filepath.Join(dir, filepath.FromSlash(h)),
				Dir:   dir,
				Root:  root,
			})
		}
		col.add(entries)
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// collector gathers the output of concurrent pipeline units.
type collector struct {
	logger *slog.Logger

	mu          sync.Mutex
	entries     []Entry
	errors      []error
	configFiles int
	directories int
}

func (c *collector) add(entries []Entry) {
	c.mu.Lock()
	c.entries = append(c.entries, entries...)
	c.mu.Unlock()
}

func (c *collector) fail(err error) {
	c.logger.Warn("header index unit failed", "error", err)
	c.mu.Lock()
	c.errors = append(c.errors, err)
	c.mu.Unlock()
}

func (c *collector) countConfigFile() {
	c.mu.Lock()
	c.configFiles++
	c.mu.Unlock()
}

func (c *collector) countDirectory() {
	c.mu.Lock()
	c.directories++
	c.mu.Unlock()
}
