package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/muesli/termenv"

	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
)

const (
	tileGap      = 2
	minTileWidth = 14
	highlightHex = "#fbbf24"
	winnerHex    = "#34d399"
)

// Renderer draws views as a numbered tile grid and animates reveals on a
// single status line. It is safe for concurrent use.
type Renderer struct {
	mu       sync.Mutex
	w        io.Writer
	out      *termenv.Output
	width    int
	tty      bool
	markdown MarkdownFunc
	view     domain.View
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithWidth overrides the detected width.
func WithWidth(width int) Option {
	return func(r *Renderer) {
		r.width = width
	}
}

// WithMarkdown overrides the result card renderer.
func WithMarkdown(fn MarkdownFunc) Option {
	return func(r *Renderer) {
		r.markdown = fn
	}
}

// WithPlain disables colours and cursor control.
func WithPlain() Option {
	return func(r *Renderer) {
		r.tty = false
	}
}

// NewRenderer creates a Renderer writing to w.
func NewRenderer(w io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		w:     w,
		width: Width(w),
		tty:   IsTerminal(w),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.tty {
		r.out = termenv.NewOutput(w)
	} else {
		r.out = termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	}
	if r.markdown == nil {
		r.markdown = NewMarkdown(r.tty, r.width)
	}
	return r
}

// View returns the last rendered view.
func (r *Renderer) View() domain.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// Render draws the whole screen for v.
func (r *Renderer) Render(v domain.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view = v

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(r.out.String(v.Title).Bold().String())
	sb.WriteString("\n")
	if len(v.Breadcrumbs) > 0 {
		labels := make([]string, len(v.Breadcrumbs))
		for i, c := range v.Breadcrumbs {
			labels[i] = fmt.Sprintf("%d:%s", i, c.Label)
		}
		sb.WriteString(r.out.String(strings.Join(labels, " › ")).Faint().String())
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(r.grid(v.Tiles))

	if v.Result != nil {
		card, err := r.markdown(fmt.Sprintf("## Luck chose\n\n**%s**\n", v.Result.Label))
		if err != nil {
			card = "Luck chose: " + v.Result.Label + "\n"
		}
		sb.WriteString("\n")
		sb.WriteString(card)
	}
	sb.WriteString("\n")
	sb.WriteString(r.out.String(controlsHint(v)).Faint().String())
	sb.WriteString("\n")
	fmt.Fprint(r.w, sb.String())
}

// grid lays tiles out in as many columns as the width allows.
func (r *Renderer) grid(tiles []domain.Tile) string {
	if len(tiles) == 0 {
		return r.out.String("  (nothing here)").Faint().String() + "\n"
	}
	cells := make([]string, len(tiles))
	cellWidth := minTileWidth
	for i, t := range tiles {
		cells[i] = fmt.Sprintf("[%d] %s", i+1, t.Label)
		if n := utf8.RuneCountInString(cells[i]); n > cellWidth {
			cellWidth = n
		}
	}
	cols := (r.width + tileGap) / (cellWidth + tileGap)
	if cols < 1 {
		cols = 1
	}

	var sb strings.Builder
	for i, cell := range cells {
		sb.WriteString(cell)
		if (i+1)%cols == 0 || i == len(cells)-1 {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(strings.Repeat(" ", cellWidth-utf8.RuneCountInString(cell)+tileGap))
	}
	return sb.String()
}

func controlsHint(v domain.View) string {
	hints := []string{"<n> open"}
	if v.Controls.CanDecide {
		hints = append(hints, "d decide")
	}
	if v.Controls.ShowReplay {
		hints = append(hints, "r replay", "p <n> pick")
	}
	if v.Controls.CanBack {
		hints = append(hints, "b back", "j <n> jump")
	}
	if v.Controls.ShowHome {
		hints = append(hints, "h home")
	}
	hints = append(hints, "q quit")
	return strings.Join(hints, " · ")
}

func (r *Renderer) label(id string) string {
	for _, t := range r.view.Tiles {
		if t.ID == id {
			return t.Label
		}
	}
	return id
}

// Highlight shows the reveal cursor on one tile.
func (r *Renderer) Highlight(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	text := "  ▶ " + r.label(id)
	if r.tty {
		r.out.ClearLine()
		fmt.Fprint(r.w, "\r"+r.out.String(text).Foreground(r.out.Color(highlightHex)).Bold().String())
		return
	}
	fmt.Fprintln(r.w, text)
}

// ClearHighlight removes the reveal cursor.
func (r *Renderer) ClearHighlight() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tty {
		r.out.ClearLine()
		fmt.Fprint(r.w, "\r")
	}
}

// Collapse announces the winner once the grid has settled on it.
func (r *Renderer) Collapse(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	text := "🎲 " + r.label(id)
	fmt.Fprintln(r.w, r.out.String(text).Foreground(r.out.Color(winnerHex)).Bold())
}

// Transition dims the grid while it is being replaced.
func (r *Renderer) Transition(phase, style string) {
	if phase != "exit" || !r.tty {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, r.out.String("  ·  ·  ·").Faint())
}

var (
	_ ports.Renderer           = (*Renderer)(nil)
	_ ports.TransitionObserver = (*Renderer)(nil)
)
