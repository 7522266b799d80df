package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the stepwise banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"      _                      _          ", "#34d399"},
		{"  ___| |_ ___ _ ____      __(_)___  ___ ", "#2dd4bf"},
		{" / __| __/ _ \\ '_ \\ \\ /\\ / /| / __|/ _ \\", "#22d3ee"},
		{" \\__ \\ ||  __/ |_) \\ V  V / | \\__ \\  __/", "#38bdf8"},
		{" |___/\\__\\___| .__/ \\_/\\_/  |_|___/\\___|", "#60a5fa"},
		{"             |_|                        ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
