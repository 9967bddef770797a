package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return nil, err
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// RendererFor returns the markdown renderer when f is a terminal, nil otherwise,
// so piped output stays plain markdown.
func RendererFor(f *os.File) func(string) (string, error) {
	if !IsTerminal(f) {
		return nil
	}
	render, err := NewRenderer()
	if err != nil {
		return nil
	}
	return render
}
