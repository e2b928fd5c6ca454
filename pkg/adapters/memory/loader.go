package memory

import (
	"context"
	"sync"

	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
	"github.com/aretw0/letluck/pkg/tree"
)

// Loader serves a tree from memory and lets the owner swap it atomically.
// Watchers are signalled on every swap.
type Loader struct {
	mu       sync.RWMutex
	tree     *tree.Tree
	watchers []chan struct{}
}

// NewLoader creates a Loader over t. A nil tree is treated as empty.
func NewLoader(t *tree.Tree) *Loader {
	if t == nil {
		t = tree.New()
	}
	return &Loader{tree: t}
}

// NewFromNodes builds a single-category loader, handy in tests.
func NewFromNodes(category domain.Category, nodes ...domain.Node) (*Loader, error) {
	t := tree.New()
	if err := t.AddCategory(category, nodes...); err != nil {
		return nil, err
	}
	return NewLoader(t), nil
}

// Tree returns the current tree.
func (l *Loader) Tree() *tree.Tree {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tree
}

// Swap replaces the served tree and notifies watchers.
func (l *Loader) Swap(t *tree.Tree) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tree = t
	for _, ch := range l.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Categories returns the categories of the current tree.
func (l *Loader) Categories() []domain.Category {
	return l.Tree().Categories()
}

// GetNode looks a node up in the current tree.
func (l *Loader) GetNode(categoryID, nodeID string) (domain.Node, bool) {
	return l.Tree().GetNode(categoryID, nodeID)
}

// RootID returns the root node id of a category.
func (l *Loader) RootID(categoryID string) string {
	return l.Tree().RootID(categoryID)
}

// Watch signals after every Swap until ctx is done.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	l.mu.Lock()
	l.watchers = append(l.watchers, ch)
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, w := range l.watchers {
			if w == ch {
				l.watchers = append(l.watchers[:i], l.watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

var (
	_ ports.TreeLoader = (*Loader)(nil)
	_ ports.Watchable  = (*Loader)(nil)
)
