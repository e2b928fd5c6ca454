package dsl

import (
	"fmt"

	"github.com/aretw0/letluck/pkg/adapters/memory"
	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/tree"
)

// Builder collects categories in declaration order.
type Builder struct {
	categories []*CategoryBuilder
	byID       map[string]*CategoryBuilder
}

// New creates an empty tree builder.
func New() *Builder {
	return &Builder{byID: make(map[string]*CategoryBuilder)}
}

// Category declares a category. Declaring the same id again returns the existing builder.
func (b *Builder) Category(id, label string) *CategoryBuilder {
	if cb, ok := b.byID[id]; ok {
		return cb
	}
	cb := &CategoryBuilder{
		category: domain.Category{ID: id, Label: label},
		byID:     make(map[string]*NodeBuilder),
	}
	b.categories = append(b.categories, cb)
	b.byID[id] = cb
	return cb
}

// Build compiles the declared categories into a Tree.
// It fails when a node has both children and items, or on tree.AddCategory errors.
// Structural problems like dangling children are left to tree.Validate.
func (b *Builder) Build() (*tree.Tree, error) {
	t := tree.New()
	for _, cb := range b.categories {
		nodes := make([]domain.Node, 0, len(cb.nodes))
		for _, nb := range cb.nodes {
			n, err := nb.Build()
			if err != nil {
				return nil, fmt.Errorf("category %s: %w", cb.category.ID, err)
			}
			nodes = append(nodes, n)
		}
		if err := t.AddCategory(cb.category, nodes...); err != nil {
			return nil, fmt.Errorf("failed to build tree: %w", err)
		}
	}
	return t, nil
}

// Loader builds the tree and serves it from memory.
func (b *Builder) Loader() (*memory.Loader, error) {
	t, err := b.Build()
	if err != nil {
		return nil, err
	}
	return memory.NewLoader(t), nil
}

// CategoryBuilder collects the nodes of one category.
type CategoryBuilder struct {
	category domain.Category
	nodes    []*NodeBuilder
	byID     map[string]*NodeBuilder
}

// Root adds (or returns) the category root, labeled like the category.
func (c *CategoryBuilder) Root() *NodeBuilder {
	return c.Add(domain.RootID(c.category.ID), c.category.Label)
}

// Add creates a node. If the node already exists, it returns the existing builder.
func (c *CategoryBuilder) Add(id, label string) *NodeBuilder {
	if nb, ok := c.byID[id]; ok {
		return nb
	}
	nb := &NodeBuilder{id: id, label: label}
	c.nodes = append(c.nodes, nb)
	c.byID[id] = nb
	return nb
}
