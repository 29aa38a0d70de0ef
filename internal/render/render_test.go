package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminal_Render(t *testing.T) {
	term, err := NewTerminal(80)
	require.NoError(t, err)

	out := term.Render([]byte("# The problem\n\nSort the widgets.\n"))

	assert.Contains(t, out, "The problem")
	assert.Contains(t, out, "Sort the widgets")
}

func TestTerminal_RenderDefaultWidth(t *testing.T) {
	term, err := NewTerminal(0)
	require.NoError(t, err)

	out := term.Render([]byte("plain text"))
	assert.Contains(t, out, "plain text")
}

func TestHTML_Render(t *testing.T) {
	h := NewHTML()

	out, err := h.Render([]byte("# Title\n\nA | B\n---|---\n1 | 2\n"), nil)
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "Title")
	assert.Contains(t, html, "<table>")
}

func TestHTML_RewritesDestinations(t *testing.T) {
	h := NewHTML()

	rewrite := func(dest string) string {
		if strings.HasSuffix(dest, ".md") {
			return "/lessons/widget-sorting/" + strings.TrimSuffix(dest, ".md")
		}
		return dest
	}

	out, err := h.Render([]byte("Go to [step one](step-01.md) or [docs](https://example.com).\n\n![chart](chart.png)\n"), rewrite)
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `href="/lessons/widget-sorting/step-01"`)
	assert.Contains(t, html, `href="https://example.com"`)
	assert.Contains(t, html, `src="chart.png"`)
}
