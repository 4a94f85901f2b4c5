package fswatch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 300 * time.Millisecond

var skippedDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
}

// Watcher watches workspace roots recursively and calls a reload function,
// debounced, whenever a relevant change is observed.
type Watcher struct {
	roots      []string
	classifier Classifier
	debounce   time.Duration
	logger     *slog.Logger

	// ready is called once every root is registered.
	ready func()
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period after the last relevant event before a
// reload fires.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithLogger sets the logger for watcher errors.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New returns a Watcher for roots that uses classifier to filter events.
func New(roots []string, classifier Classifier, opts ...Option) *Watcher {
	w := &Watcher{
		roots:      roots,
		classifier: classifier,
		debounce:   defaultDebounce,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is done, calling reload after bursts of relevant
// changes. reload is never called concurrently with itself.
func (w *Watcher) Run(ctx context.Context, reload func(reason string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, root := range w.roots {
		if err := addWatchDirs(watcher, root); err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
	}

	if w.ready != nil {
		w.ready()
	}

	var (
		reloadMu      sync.Mutex
		debounceTimer *time.Timer
	)
	fire := func(reason string) {
		reloadMu.Lock()
		defer reloadMu.Unlock()
		reload(reason)
	}

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// Headers written into a new directory before it is watched
			// are only picked up by a reload.
			newDir := event.Has(fsnotify.Create) && addIfDirectory(watcher, event.Name)

			change, ok := changeFromEvent(event)
			if !ok || (!newDir && !w.classifier.ShouldReload(event.Name, change)) {
				continue
			}

			reason := fmt.Sprintf("%s %s", event.Name, change)
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				fire(reason)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func changeFromEvent(event fsnotify.Event) (Change, bool) {
	switch {
	case event.Has(fsnotify.Create):
		return Created, true
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return Deleted, true
	case event.Has(fsnotify.Write):
		return Changed, true
	default:
		return 0, false
	}
}

func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return addWatchDirsWithAdder(root, watcher.Add)
}

// addWatchDirsWithAdder registers root and every directory below it. Paths
// that vanish during the walk are ignored.
func addWatchDirsWithAdder(root string, add func(string) error) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			if path != root && d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skippedDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := add(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	})
}

func addIfDirectory(watcher *fsnotify.Watcher, path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	if skippedDirs[info.Name()] {
		return false
	}
	_ = addWatchDirs(watcher, path)
	return true
}
