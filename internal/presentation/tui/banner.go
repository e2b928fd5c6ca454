package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the letluck ASCII art banner with the version underneath.
func PrintBanner(w io.Writer, version string) {
	o := termenv.NewOutput(w)
	lines := []struct{ text, color string }{
		{" _      _   _            _   ", "#34d399"},
		{"| | ___| |_| |_   _  ___| | __", "#2dd4bf"},
		{"| |/ _ \\ __| | | | |/ __| |/ /", "#22d3ee"},
		{"| |  __/ |_| | |_| | (__|   < ", "#38bdf8"},
		{"|_|\\___|\\__|_|\\__,_|\\___|_|\\_\\", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, o.String(l.text).Foreground(o.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, o.String("  "+version).Faint())
	}
	fmt.Fprintln(w)
}
