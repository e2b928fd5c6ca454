/*
Package tree holds the in-memory category tree.

A Tree is built once (from YAML, Loam documents or code) and then only read.
It satisfies ports.TreeLoader so every adapter can hand one to the decision core.
*/
package tree

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
)

var (
	// ErrDuplicateCategory is returned when a category id is declared twice.
	ErrDuplicateCategory = errors.New("duplicate category")
	// ErrDuplicateNode is returned when a node id is declared twice in one category.
	ErrDuplicateNode = errors.New("duplicate node")
)

// Tree maps category id to node id to Node. Categories keep their declared order.
type Tree struct {
	categories []domain.Category
	nodes      map[string]map[string]domain.Node
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{nodes: make(map[string]map[string]domain.Node)}
}

// AddCategory declares a category and its nodes.
func (t *Tree) AddCategory(c domain.Category, nodes ...domain.Node) error {
	if c.ID == "" {
		return fmt.Errorf("category id cannot be empty")
	}
	if _, exists := t.nodes[c.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCategory, c.ID)
	}
	byID := make(map[string]domain.Node, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			return fmt.Errorf("category %s: node id cannot be empty", c.ID)
		}
		if _, exists := byID[n.ID]; exists {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateNode, c.ID, n.ID)
		}
		byID[n.ID] = n
	}
	if c.Label == "" {
		if root, ok := byID[domain.RootID(c.ID)]; ok {
			c.Label = root.Label
		} else {
			c.Label = c.ID
		}
	}
	t.categories = append(t.categories, c)
	t.nodes[c.ID] = byID
	return nil
}

// MustAddCategory is AddCategory for static trees in tests and examples.
func (t *Tree) MustAddCategory(c domain.Category, nodes ...domain.Node) *Tree {
	if err := t.AddCategory(c, nodes...); err != nil {
		panic(err)
	}
	return t
}

// Categories returns a copy of the declared categories.
func (t *Tree) Categories() []domain.Category {
	return append([]domain.Category(nil), t.categories...)
}

// GetNode looks a node up inside a category.
func (t *Tree) GetNode(categoryID, nodeID string) (domain.Node, bool) {
	byID, ok := t.nodes[categoryID]
	if !ok {
		return domain.Node{}, false
	}
	n, ok := byID[nodeID]
	return n, ok
}

// RootID returns the root node id of a category.
func (t *Tree) RootID(categoryID string) string {
	return domain.RootID(categoryID)
}

// Nodes returns every node of a category sorted by id.
func (t *Tree) Nodes(categoryID string) []domain.Node {
	byID := t.nodes[categoryID]
	out := make([]domain.Node, 0, len(byID))
	for _, n := range byID {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Size returns the total number of nodes.
func (t *Tree) Size() int {
	total := 0
	for _, byID := range t.nodes {
		total += len(byID)
	}
	return total
}

var _ ports.TreeLoader = (*Tree)(nil)
