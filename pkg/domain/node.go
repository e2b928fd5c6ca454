package domain

// NodeKind tags the shape of a Node.
type NodeKind string

const (
	// KindBranch nodes have children and no pool.
	KindBranch NodeKind = "branch"
	// KindLeaf nodes have a pool of items and no children.
	KindLeaf NodeKind = "leaf"
	// KindDeadEnd nodes have neither. They only exist in malformed content.
	KindDeadEnd NodeKind = "dead_end"
)

// Item is an immutable entry of a leaf pool.
// ID is unique within the pool that owns it.
type Item struct {
	ID    string `json:"id" yaml:"id" mapstructure:"id"`
	Label string `json:"label" yaml:"label" mapstructure:"label"`
}

// Node represents a point in a category tree.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Label    string   `json:"label" yaml:"label"`
	Kind     NodeKind `json:"kind" yaml:"kind"`
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`
	Pool     []Item   `json:"pool,omitempty" yaml:"pool,omitempty"`
}

// NewBranch creates a branch node. With no children it degrades to a dead end.
func NewBranch(id, label string, children ...string) Node {
	n := Node{ID: id, Label: label, Kind: KindBranch, Children: children}
	if len(children) == 0 {
		n.Kind = KindDeadEnd
	}
	return n
}

// NewLeaf creates a leaf node. With an empty pool it degrades to a dead end.
func NewLeaf(id, label string, pool ...Item) Node {
	n := Node{ID: id, Label: label, Kind: KindLeaf, Pool: pool}
	if len(pool) == 0 {
		n.Kind = KindDeadEnd
	}
	return n
}

// ClassifyNode derives the kind from raw children and pool, as read from content files.
// A node declaring both is treated as a leaf: the pool is what can be decided.
func ClassifyNode(id, label string, children []string, pool []Item) Node {
	switch {
	case len(pool) > 0:
		return Node{ID: id, Label: label, Kind: KindLeaf, Pool: pool}
	case len(children) > 0:
		return Node{ID: id, Label: label, Kind: KindBranch, Children: children}
	default:
		return Node{ID: id, Label: label, Kind: KindDeadEnd}
	}
}

// IsLeaf reports whether the node has a non-empty pool.
func (n Node) IsLeaf() bool {
	return n.Kind == KindLeaf && len(n.Pool) > 0
}

// IsBranch reports whether the node has children to descend into.
func (n Node) IsBranch() bool {
	return n.Kind == KindBranch && len(n.Children) > 0
}

// IsDeadEnd reports whether traversal has nowhere to go from this node.
func (n Node) IsDeadEnd() bool {
	return !n.IsLeaf() && !n.IsBranch()
}

// FindItem returns the pool position of the item with the given id, or -1.
func (n Node) FindItem(itemID string) int {
	for i, it := range n.Pool {
		if it.ID == itemID {
			return i
		}
	}
	return -1
}

// HasChild reports whether childID is one of the node's children.
func (n Node) HasChild(childID string) bool {
	for _, c := range n.Children {
		if c == childID {
			return true
		}
	}
	return false
}

// Category describes a top-level entry of the content tree.
type Category struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// RootID returns the root node id of a category.
func RootID(categoryID string) string {
	return categoryID + "_root"
}
