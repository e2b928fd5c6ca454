package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
)

// GraphOverlay contains session state to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// OverlayFromState highlights the breadcrumb path of a session.
func OverlayFromState(state *domain.NavigationState) *GraphOverlay {
	if state == nil || state.AtHome() {
		return nil
	}
	o := &GraphOverlay{CurrentNode: state.NodeID}
	for _, c := range state.Path {
		o.VisitedNodes = append(o.VisitedNodes, c.NodeID)
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of one category.
// It applies semantic styling:
// - Root: ((Circle))
// - Leaf: [/Parallelogram/] with its pool size
// - Dead end: {{Hexagon}}
// - Branch: [Rectangle]
// Children that are not declared are drawn with a dotted edge.
func GenerateMermaid(rootID string, nodes []domain.Node, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	declared := make(map[string]bool, len(nodes))
	for _, node := range nodes {
		declared[node.ID] = true
	}

	deadEnds := []string{}
	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.ID)
		label := escapeLabel(node.Label)

		opener, closer := "[", "]"
		switch {
		case node.ID == rootID:
			opener, closer = "((", "))"
		case node.IsLeaf():
			opener, closer = "[/", "/]"
		case node.IsDeadEnd():
			opener, closer = "{{", "}}"
		}
		if node.IsLeaf() {
			label = fmt.Sprintf("%s <br/> %d items", label, len(node.Pool))
		}
		if node.IsDeadEnd() {
			deadEnds = append(deadEnds, safeID)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		for _, childID := range node.Children {
			arrow := "-->"
			if !declared[childID] {
				arrow = "-.->"
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, sanitizeMermaidID(childID)))
		}
	}

	if len(deadEnds) > 0 {
		sb.WriteString("\n    classDef deadend fill:#ffebee,stroke:#c62828,stroke-dasharray:4 2,color:#000;\n")
		for _, id := range deadEnds {
			sb.WriteString(fmt.Sprintf("    class %s deadend;\n", id))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast on either theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" && id != overlay.CurrentNode {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}
		if overlay.CurrentNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode)))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// Reachable walks a category breadth-first from its root and returns every
// node it finds, in visit order.
func Reachable(loader ports.TreeLoader, categoryID string) []domain.Node {
	rootID := loader.RootID(categoryID)
	if rootID == "" {
		return nil
	}
	var nodes []domain.Node
	seen := map[string]bool{rootID: true}
	queue := []string{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		node, ok := loader.GetNode(categoryID, id)
		if !ok {
			continue
		}
		nodes = append(nodes, node)
		for _, child := range node.Children {
			if !seen[child] {
				seen[child] = true
				queue = append(queue, child)
			}
		}
	}
	return nodes
}
