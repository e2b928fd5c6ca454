package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/letluck/pkg/domain"
)

func newTestRenderer(buf *bytes.Buffer, width int) *Renderer {
	return NewRenderer(buf, WithWidth(width), WithPlain(), WithMarkdown(PlainMarkdown))
}

func sampleView() domain.View {
	return domain.View{
		Title:       "Pasta",
		Breadcrumbs: []domain.Crumb{{NodeID: "food_root", Label: "Food"}, {NodeID: "pasta", Label: "Pasta"}},
		Tiles: []domain.Tile{
			{Kind: domain.TileItem, ID: "pesto", Label: "Pesto"},
			{Kind: domain.TileItem, ID: "ragu", Label: "Ragù"},
			{Kind: domain.TileItem, ID: "carbonara", Label: "Carbonara"},
		},
		Result:   &domain.ResultCard{ItemID: "pesto", Label: "Pesto"},
		Controls: domain.Controls{CanBack: true, ShowHome: true, ShowReplay: true, CanDecide: true},
	}
}

func TestRenderer_Render(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRenderer(&buf, 80)
	r.Render(sampleView())

	out := buf.String()
	assert.Contains(t, out, "Pasta")
	assert.Contains(t, out, "0:Food › 1:Pasta")
	assert.Contains(t, out, "[1] Pesto")
	assert.Contains(t, out, "[3] Carbonara")
	assert.Contains(t, out, "**Pesto**")
	assert.Contains(t, out, "r replay")
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderer_GridWraps(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRenderer(&buf, 20)
	grid := r.grid(sampleView().Tiles)
	assert.Equal(t, 3, strings.Count(grid, "\n"))

	r = newTestRenderer(&buf, 200)
	grid = r.grid(sampleView().Tiles)
	assert.Equal(t, 1, strings.Count(grid, "\n"))
}

func TestRenderer_EmptyGrid(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRenderer(&buf, 80)
	r.Render(domain.View{Title: "Nothing"})
	assert.Contains(t, buf.String(), "(nothing here)")
	assert.NotContains(t, buf.String(), "d decide")
}

func TestRenderer_HighlightAndCollapse(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRenderer(&buf, 80)
	r.Render(sampleView())
	buf.Reset()

	r.Highlight("ragu")
	r.ClearHighlight()
	r.Collapse("pesto")
	r.Highlight("unknown")

	out := buf.String()
	assert.Contains(t, out, "▶ Ragù")
	assert.Contains(t, out, "🎲 Pesto")
	assert.Contains(t, out, "▶ unknown")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "v1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
}
