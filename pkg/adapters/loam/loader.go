// Package loam reads a category tree from a Loam repository: one Markdown
// (or JSON/YAML) document per node.
package loam

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/letluck/internal/logging"
	"github.com/aretw0/letluck/pkg/adapters/memory"
	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
	"github.com/aretw0/letluck/pkg/tree"
)

// WatchPattern selects the documents that trigger a reload.
const WatchPattern = "**/*.{md,json,yaml,yml}"

// Loader adapts a Loam repository to ports.TreeLoader.
type Loader struct {
	Repo   *loam.TypedRepository[NodeMetadata]
	logger *slog.Logger
	inner  *memory.Loader
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger configures a logger for reload messages.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a Loam adapter and reads the tree once.
func New(ctx context.Context, repo *loam.TypedRepository[NodeMetadata], opts ...Option) (*Loader, error) {
	l := &Loader{
		Repo:   repo,
		logger: logging.NewNop(),
		inner:  memory.NewLoader(nil),
	}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.Reload(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// Open initializes a read-only repository at dir and loads it.
func Open(ctx context.Context, dir string, opts ...Option) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve content path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init loam repo: %w", err)
	}
	return New(ctx, loam.NewTypedRepository[NodeMetadata](repo), opts...)
}

// Reload rebuilds the tree from the repository. On error the previous tree is kept.
func (l *Loader) Reload(ctx context.Context) error {
	t, err := l.build(ctx)
	if err != nil {
		return err
	}
	for _, issue := range tree.Validate(t) {
		l.logger.Warn("Tree issue", "issue", issue.String())
	}
	l.inner.Swap(t)
	return nil
}

type categoryDocs struct {
	label string
	nodes []domain.Node
}

func (l *Loader) build(ctx context.Context) (*tree.Tree, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	byCategory := make(map[string]*categoryDocs)
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := filepath.Base(trimExtension(rawID))

		categoryID := doc.Data.Category
		if categoryID == "" {
			categoryID = topDir(doc.ID)
		}
		if categoryID == "" {
			return nil, fmt.Errorf("document %q has no category", doc.ID)
		}

		key := categoryID + "/" + id
		if existing, ok := seen[key]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", key, existing, doc.ID)
		}
		seen[key] = doc.ID

		var pool []domain.Item
		if err := tree.Decode(doc.Data.Pool, &pool); err != nil {
			return nil, fmt.Errorf("invalid pool in %s: %w", doc.ID, err)
		}
		label := doc.Data.Label
		if label == "" {
			label = firstLine(doc.Content)
		}
		if label == "" {
			label = id
		}

		c, ok := byCategory[categoryID]
		if !ok {
			c = &categoryDocs{}
			byCategory[categoryID] = c
		}
		if doc.Data.CategoryLabel != "" {
			c.label = doc.Data.CategoryLabel
		}
		c.nodes = append(c.nodes, domain.ClassifyNode(id, label, doc.Data.Children, pool))
	}

	ids := make([]string, 0, len(byCategory))
	for id := range byCategory {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	t := tree.New()
	for _, id := range ids {
		c := byCategory[id]
		if err := t.AddCategory(domain.Category{ID: id, Label: c.label}, c.nodes...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Categories returns the categories sorted by id.
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

// Tree returns the tree being served.
func (l *Loader) Tree() *tree.Tree {
	return l.inner.Tree()
}

// Watch implements ports.Watchable: every document change reloads the tree
// and signals the returned channel.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.Repo.Watch(ctx, WatchPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}
	out, err := l.inner.Watch(ctx)
	if err != nil {
		return nil, err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				// Loam debounces on its side.
				if err := l.Reload(ctx); err != nil {
					l.logger.Error("Failed to reload tree", "document", evt.ID, "err", err)
				}
			}
		}
	}()
	return out, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

func topDir(docID string) string {
	parts := strings.Split(filepath.ToSlash(docID), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

func firstLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line != "" {
			return line
		}
	}
	return ""
}

var (
	_ ports.TreeLoader = (*Loader)(nil)
	_ ports.Watchable  = (*Loader)(nil)
)
