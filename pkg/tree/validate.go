package tree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/letluck/pkg/ports"
)

// ErrInvalidTree wraps the issues found by Validate.
var ErrInvalidTree = errors.New("invalid category tree")

// IssueKind classifies a structural problem.
type IssueKind string

const (
	IssueMissingRoot   IssueKind = "missing_root"
	IssueDeadEnd       IssueKind = "dead_end"
	IssueDanglingChild IssueKind = "dangling_child"
	IssueCycle         IssueKind = "cycle"
	IssueDuplicateItem IssueKind = "duplicate_item"
)

// Issue is a problem found in one node.
type Issue struct {
	Kind       IssueKind
	CategoryID string
	NodeID     string
	Detail     string
}

func (i Issue) String() string {
	s := fmt.Sprintf("%s/%s: %s", i.CategoryID, i.NodeID, i.Kind)
	if i.Detail != "" {
		s += " (" + i.Detail + ")"
	}
	return s
}

// Issues is the result of Validate.
type Issues []Issue

// Err returns nil when there are no issues.
func (is Issues) Err() error {
	if len(is) == 0 {
		return nil
	}
	lines := make([]string, len(is))
	for i, issue := range is {
		lines[i] = issue.String()
	}
	return fmt.Errorf("%w: %s", ErrInvalidTree, strings.Join(lines, "; "))
}

// Validate walks every category from its root and reports nodes a decision could
// get stuck on. Nodes unreachable from the root are not inspected.
func Validate(loader ports.TreeLoader) Issues {
	var issues Issues
	for _, c := range loader.Categories() {
		rootID := loader.RootID(c.ID)
		if _, ok := loader.GetNode(c.ID, rootID); !ok {
			issues = append(issues, Issue{Kind: IssueMissingRoot, CategoryID: c.ID, NodeID: rootID})
			continue
		}
		v := &validator{loader: loader, categoryID: c.ID, state: make(map[string]int)}
		v.visit(rootID, "")
		issues = append(issues, v.issues...)
	}
	return issues
}

const (
	visiting = 1
	visited  = 2
)

type validator struct {
	loader     ports.TreeLoader
	categoryID string
	state      map[string]int
	issues     Issues
}

func (v *validator) report(kind IssueKind, nodeID, detail string) {
	v.issues = append(v.issues, Issue{Kind: kind, CategoryID: v.categoryID, NodeID: nodeID, Detail: detail})
}

func (v *validator) visit(nodeID, parentID string) {
	switch v.state[nodeID] {
	case visiting:
		v.report(IssueCycle, parentID, "back to "+nodeID)
		return
	case visited:
		return
	}

	n, ok := v.loader.GetNode(v.categoryID, nodeID)
	if !ok {
		v.report(IssueDanglingChild, parentID, "unknown child "+nodeID)
		return
	}

	v.state[nodeID] = visiting
	defer func() { v.state[nodeID] = visited }()

	switch {
	case n.IsLeaf():
		seen := make(map[string]bool, len(n.Pool))
		for _, it := range n.Pool {
			if seen[it.ID] {
				v.report(IssueDuplicateItem, nodeID, it.ID)
			}
			seen[it.ID] = true
		}
	case n.IsBranch():
		for _, child := range n.Children {
			v.visit(child, nodeID)
		}
	default:
		v.report(IssueDeadEnd, nodeID, "")
	}
}

// Depth returns the longest root-to-node path length in a category, counting nodes.
// Cycles are cut at the first revisit.
func Depth(loader ports.TreeLoader, categoryID string) int {
	var walk func(id string, onPath map[string]bool) int
	walk = func(id string, onPath map[string]bool) int {
		if onPath[id] {
			return 0
		}
		n, ok := loader.GetNode(categoryID, id)
		if !ok {
			return 0
		}
		onPath[id] = true
		defer delete(onPath, id)
		best := 0
		if n.IsBranch() {
			for _, c := range n.Children {
				if d := walk(c, onPath); d > best {
					best = d
				}
			}
		}
		return best + 1
	}
	return walk(loader.RootID(categoryID), make(map[string]bool))
}
