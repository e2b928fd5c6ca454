package tui

import (
	"github.com/charmbracelet/glamour"
)

// MarkdownFunc renders markdown to terminal text.
type MarkdownFunc func(string) (string, error)

// NewMarkdown returns a glamour-backed MarkdownFunc. Without a terminal it uses
// the "notty" style so piped output stays free of escape codes.
func NewMarkdown(tty bool, width int) MarkdownFunc {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if tty {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return PlainMarkdown
	}
	return r.Render
}

// PlainMarkdown returns the source unchanged.
func PlainMarkdown(md string) (string, error) {
	return md, nil
}
