package dsl

import (
	"fmt"

	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/tree"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	id       string
	label    string
	children []string
	pool     []domain.Item
}

// Children appends child node ids, making the node a branch.
func (n *NodeBuilder) Children(ids ...string) *NodeBuilder {
	n.children = append(n.children, ids...)
	return n
}

// Item appends one pool item, making the node a leaf.
func (n *NodeBuilder) Item(id, label string) *NodeBuilder {
	n.pool = append(n.pool, domain.Item{ID: id, Label: label})
	return n
}

// Items appends pool items whose ids are slugs of their labels.
func (n *NodeBuilder) Items(labels ...string) *NodeBuilder {
	for _, l := range labels {
		n.Item(tree.Slug(l), l)
	}
	return n
}

// Build returns the domain.Node. A node with neither children nor items is a dead end.
func (n *NodeBuilder) Build() (domain.Node, error) {
	switch {
	case len(n.children) > 0 && len(n.pool) > 0:
		return domain.Node{}, fmt.Errorf("node %s has both children and items", n.id)
	case len(n.pool) > 0:
		return domain.NewLeaf(n.id, n.label, n.pool...), nil
	default:
		return domain.NewBranch(n.id, n.label, n.children...), nil
	}
}
