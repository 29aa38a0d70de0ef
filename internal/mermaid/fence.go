package mermaid

import (
	"regexp"
	"strings"
)

// Fence is a single ```mermaid code fence found in a markdown document.
// Start and End are 1-based line numbers of the opening and closing fence
// markers. Body holds the lines between them, without the markers.
type Fence struct {
	Kind   Kind
	Start  int
	End    int
	Body   []string
	Indent string // Leading whitespace of the opening marker, preserved on rewrite
	Closed bool   // False if the document ended before the closing marker
}

var openPattern = regexp.MustCompile("^(\\s*)(`{3,})\\s*mermaid\\s*$")

// ScanLines finds all mermaid fences in a document split into lines.
// Goldmark's AST does not expose the byte range of fence markers, so rewriting
// fences in place needs this line-based scan; lint reuses it for line numbers.
//
// A fence closes at the first line holding only backticks (at least as many as
// the opener). An unterminated fence runs to the end of the document.
func ScanLines(lines []string) []Fence {
	var fences []Fence

	for i := 0; i < len(lines); i++ {
		m := openPattern.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		indent, marker := m[1], m[2]

		fence := Fence{
			Start:  i + 1,
			Indent: indent,
		}

		for j := i + 1; j < len(lines); j++ {
			trimmed := strings.TrimSpace(lines[j])
			if len(trimmed) >= len(marker) && strings.Count(trimmed, "`") == len(trimmed) {
				fence.End = j + 1
				fence.Closed = true
				i = j
				break
			}
			fence.Body = append(fence.Body, lines[j])
		}
		if !fence.Closed {
			fence.End = len(lines)
			i = len(lines)
		}

		fence.Kind = DetectKind(fence.Body)
		fences = append(fences, fence)
	}

	return fences
}

// Scan splits source into lines and finds all mermaid fences.
func Scan(source []byte) []Fence {
	return ScanLines(splitLines(source))
}

// splitLines splits on \n, tolerating \r\n line endings.
func splitLines(source []byte) []string {
	lines := strings.Split(string(source), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
