package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/letluck/internal/presentation/graph"
	"github.com/aretw0/letluck/pkg/adapters/memory"
	"github.com/aretw0/letluck/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	nodes := []domain.Node{
		domain.NewBranch("food_root", "Food", "pasta", "bar-food", "ghost"),
		domain.NewLeaf("pasta", "Pasta \"fresca\"", domain.Item{ID: "pesto"}, domain.Item{ID: "ragu"}),
		domain.NewBranch("bar-food", "Bar food"),
	}

	tests := []struct {
		name     string
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "Shapes",
			contains: []string{
				`food_root(("Food"))`,
				`pasta[/"Pasta 'fresca' <br/> 2 items"/]`,
				`bar_food{{"Bar food"}}`,
				"class bar_food deadend;",
			},
		},
		{
			name: "Edges",
			contains: []string{
				"food_root --> pasta",
				"food_root --> bar_food",
				"food_root -.-> ghost",
			},
		},
		{
			name: "Overlay",
			overlay: graph.OverlayFromState(&domain.NavigationState{
				CategoryID: "food",
				NodeID:     "pasta",
				Path:       []domain.Crumb{{NodeID: "food_root"}, {NodeID: "pasta"}},
			}),
			contains: []string{
				"class food_root visited;",
				"class pasta current;",
			},
			excludes: []string{"class pasta visited;"},
		},
		{
			name:     "No Overlay",
			excludes: []string{"Overlay Styles"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid("food_root", nodes, tt.overlay)
			if !strings.HasPrefix(got, "graph TD\n") {
				t.Errorf("missing header:\n%s", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("expected output not to contain %q, got:\n%s", unwanted, got)
				}
			}
		})
	}
}

func TestOverlayFromState_Home(t *testing.T) {
	if graph.OverlayFromState(domain.NewNavigationState()) != nil {
		t.Error("home state should have no overlay")
	}
}

func TestReachable(t *testing.T) {
	loader, err := memory.NewFromNodes(domain.Category{ID: "food", Label: "Food"},
		domain.NewBranch("food_root", "Food", "italian", "ghost"),
		domain.NewBranch("italian", "Italian", "pasta", "food_root"),
		domain.NewLeaf("pasta", "Pasta", domain.Item{ID: "pesto", Label: "Pesto"}),
		domain.NewLeaf("orphan", "Orphan", domain.Item{ID: "x", Label: "X"}),
	)
	if err != nil {
		t.Fatal(err)
	}

	var ids []string
	for _, n := range graph.Reachable(loader, "food") {
		ids = append(ids, n.ID)
	}
	if got, want := strings.Join(ids, ","), "food_root,italian,pasta"; got != want {
		t.Errorf("Reachable = %s, want %s", got, want)
	}
	if graph.Reachable(loader, "missing") != nil {
		t.Error("unknown category should yield nil")
	}
}
