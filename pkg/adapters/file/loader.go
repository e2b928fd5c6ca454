package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/letluck/internal/logging"
	"github.com/aretw0/letluck/pkg/adapters/memory"
	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
	"github.com/aretw0/letluck/pkg/tree"
)

// DefaultDebounce coalesces the burst of events editors produce on save.
const DefaultDebounce = 200 * time.Millisecond

// Loader serves a category tree read from a YAML or JSON file.
type Loader struct {
	path     string
	logger   *slog.Logger
	debounce time.Duration
	inner    *memory.Loader

	watchOnce sync.Once
	watchErr  error
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger configures a logger for reload messages.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.debounce = d
	}
}

// NewLoader reads path and returns a loader serving its tree.
func NewLoader(path string, opts ...LoaderOption) (*Loader, error) {
	l := &Loader{
		path:     path,
		logger:   logging.NewNop(),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(l)
	}
	t, err := l.read()
	if err != nil {
		return nil, err
	}
	l.inner = memory.NewLoader(t)
	return l, nil
}

func (l *Loader) read() (*tree.Tree, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree file: %w", err)
	}
	t, err := tree.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", l.path, err)
	}
	for _, issue := range tree.Validate(t) {
		l.logger.Warn("Tree issue", "path", l.path, "issue", issue.String())
	}
	return t, nil
}

// Reload re-reads the file. On error the previous tree keeps being served.
func (l *Loader) Reload() error {
	t, err := l.read()
	if err != nil {
		return err
	}
	l.inner.Swap(t)
	l.logger.Info("Tree reloaded", "path", l.path, "nodes", t.Size())
	return nil
}

// Tree returns the tree being served.
func (l *Loader) Tree() *tree.Tree {
	return l.inner.Tree()
}

// Categories returns the categories of the current tree.
func (l *Loader) Categories() []domain.Category {
	return l.inner.Categories()
}

// GetNode looks a node up in the current tree.
func (l *Loader) GetNode(categoryID, nodeID string) (domain.Node, bool) {
	return l.inner.GetNode(categoryID, nodeID)
}

// RootID returns the root node id of a category.
func (l *Loader) RootID(categoryID string) string {
	return l.inner.RootID(categoryID)
}

// Watch signals after every successful reload until ctx is done. The file
// watcher starts on the first call and lives until that call's ctx ends.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	l.watchOnce.Do(func() {
		l.watchErr = l.startWatcher(ctx)
	})
	if l.watchErr != nil {
		return nil, l.watchErr
	}
	return l.inner.Watch(ctx)
}

func (l *Loader) startWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Editors often replace the file, so watch the directory.
	dir := filepath.Dir(l.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	l.logger.Info("Watching tree file", "path", l.path)
	go l.watchLoop(ctx, watcher)
	return nil
}

func (l *Loader) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	target := filepath.Clean(l.path)
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(l.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			if err := l.Reload(); err != nil {
				l.logger.Error("Failed to reload tree", "path", l.path, "err", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			l.logger.Error("File watcher error", "err", err)

		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

var (
	_ ports.TreeLoader = (*Loader)(nil)
	_ ports.Watchable  = (*Loader)(nil)
)
