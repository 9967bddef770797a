package tui_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/aretw0/trendline/internal/presentation/tui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_   _|")
	assert.NotContains(t, buf.String(), "\x1b[", "no colors for a non-terminal writer")
}

func TestStatus(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, "done", tui.Status(&buf, true, "done"))
}

func TestNewRenderer(t *testing.T) {
	render, err := tui.NewRenderer()
	require.NoError(t, err)

	out, err := render("## Title\n\n- [a/b](https://github.com/a/b)")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
}

func TestRendererFor_NotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, tui.IsTerminal(f))
	assert.Nil(t, tui.RendererFor(f))
}
