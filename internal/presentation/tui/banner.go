package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Trendline ASCII banner.
// Colors degrade to plain text when the output does not support them.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{" _____                    _ _ _            ", "#34d399"},
		{"|_   _| __ ___ _ __   __| | (_)_ __   ___ ", "#2dd4bf"},
		{"  | || '__/ _ \\ '_ \\ / _` | | | '_ \\ / _ \\", "#22d3ee"},
		{"  | || | |  __/ | | | (_| | | | | | |  __/", "#38bdf8"},
		{"  |_||_|  \\___|_| |_|\\__,_|_|_|_| |_|\\___|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Status formats a one-line status message, green for success and red for failure.
func Status(w io.Writer, ok bool, msg string) string {
	out := termenv.NewOutput(w)
	color := "#22c55e"
	if !ok {
		color = "#ef4444"
	}
	return out.String(msg).Foreground(out.Color(color)).String()
}
