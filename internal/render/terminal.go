// Package render turns lesson markdown into terminal and HTML output.
package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// DefaultWrapWidth is used when the terminal width cannot be determined.
const DefaultWrapWidth = 100

// Terminal renders markdown for interactive reading.
type Terminal struct {
	tr *glamour.TermRenderer
}

// NewTerminal creates a renderer that wraps output at the given width.
// A non-positive width falls back to DefaultWrapWidth.
func NewTerminal(width int) (*Terminal, error) {
	if width <= 0 {
		width = DefaultWrapWidth
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return &Terminal{tr: tr}, nil
}

// Render returns styled terminal output for the given markdown. If styling
// fails the raw markdown is returned so the content is still readable.
func (t *Terminal) Render(source []byte) string {
	out, err := t.tr.Render(string(source))
	if err != nil {
		return string(source)
	}
	return out
}
