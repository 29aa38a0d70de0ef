package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// HTML renders lesson markdown to HTML fragments for the preview server.
type HTML struct {
	md goldmark.Markdown
}

// NewHTML creates an HTML renderer with GitHub-flavored markdown enabled.
// Raw HTML in lessons is passed through: the content is trusted local files.
func NewHTML() *HTML {
	return &HTML{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
	)}
}

// Render converts markdown to an HTML fragment. rewrite, when non-nil, maps
// link and image destinations to their serving URLs so relative references
// between lesson files resolve to routes instead of raw paths.
func (h *HTML) Render(source []byte, rewrite func(dest string) string) ([]byte, error) {
	doc := h.md.Parser().Parse(text.NewReader(source))
	if rewrite != nil {
		rewriteDestinations(doc, rewrite)
	}

	var buf bytes.Buffer
	if err := h.md.Renderer().Render(&buf, source, doc); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

func rewriteDestinations(doc ast.Node, rewrite func(string) string) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			node.Destination = []byte(rewrite(string(node.Destination)))
		case *ast.Image:
			node.Destination = []byte(rewrite(string(node.Destination)))
		}
		return ast.WalkContinue, nil
	})
}
