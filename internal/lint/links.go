package lint

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Link is a link or image reference extracted from a markdown document.
type Link struct {
	Dest  string // Raw destination as written
	Line  int    // 1-based line of the enclosing block
	Image bool
}

// ExtractLinks parses source and returns every link and image destination.
// Autolinks (bare URLs) are not included; they are always external.
func ExtractLinks(source []byte) []Link {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var links []Link
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := n.(type) {
		case *ast.Link:
			links = append(links, Link{Dest: string(v.Destination), Line: nodeLine(source, n)})
		case *ast.Image:
			links = append(links, Link{Dest: string(v.Destination), Line: nodeLine(source, n), Image: true})
		}
		return ast.WalkContinue, nil
	})

	return links
}

// nodeLine returns the 1-based line number of the block enclosing n.
// Inline nodes carry no position, so we climb to the nearest block that
// records source segments and count newlines up to its start.
func nodeLine(source []byte, n ast.Node) int {
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Type() != ast.TypeBlock {
			continue
		}
		lines := cur.Lines()
		if lines == nil || lines.Len() == 0 {
			continue
		}
		start := lines.At(0).Start
		if start > len(source) {
			break
		}
		return 1 + bytes.Count(source[:start], []byte("\n"))
	}
	return 0
}

// IsExternal reports whether a destination points outside the content tree:
// absolute URLs, protocol-relative URLs, mailto links and pure fragments.
func IsExternal(dest string) bool {
	if dest == "" {
		return true
	}
	if strings.HasPrefix(dest, "#") {
		return true
	}
	if strings.HasPrefix(dest, "//") {
		return true
	}
	if i := strings.Index(dest, ":"); i >= 0 {
		// A scheme like http:, https:, mailto: before any slash
		slash := strings.Index(dest, "/")
		if slash == -1 || i < slash {
			return true
		}
	}
	return false
}

// TargetPath strips the fragment and query from a relative destination,
// returning the file path portion.
func TargetPath(dest string) string {
	if i := strings.IndexAny(dest, "#?"); i >= 0 {
		dest = dest[:i]
	}
	return dest
}
