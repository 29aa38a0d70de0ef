// Package mermaid finds mermaid code fences in lesson markdown and classifies
// them against the set of diagram kinds the rendering pipeline supports.
// Unsupported kinds with a tabular structure (state transitions, gantt tasks,
// timelines, entity relationships) can be converted into plain GFM tables so
// the content stays readable everywhere.
package mermaid

import "strings"

// Kind identifies a mermaid diagram type, taken from the first word of the
// fence body (e.g. "flowchart", "sequenceDiagram", "stateDiagram-v2").
type Kind string

const (
	KindFlowchart    Kind = "flowchart"
	KindGraph        Kind = "graph"
	KindSequence     Kind = "sequenceDiagram"
	KindPie          Kind = "pie"
	KindState        Kind = "stateDiagram"
	KindStateV2      Kind = "stateDiagram-v2"
	KindGantt        Kind = "gantt"
	KindTimeline     Kind = "timeline"
	KindERDiagram    Kind = "erDiagram"
	KindUnrecognized Kind = ""
)

// Supported reports whether the rendering pipeline can display this diagram
// kind as-is.
func (k Kind) Supported() bool {
	switch k {
	case KindFlowchart, KindGraph, KindSequence, KindPie:
		return true
	}
	return false
}

// Convertible reports whether an unsupported kind can be rewritten as a
// markdown table without losing its structure.
func (k Kind) Convertible() bool {
	switch k {
	case KindState, KindStateV2, KindGantt, KindTimeline, KindERDiagram:
		return true
	}
	return false
}

// DetectKind returns the diagram kind declared by the fence body: the first
// word of the first non-empty line.
func DetectKind(body []string) Kind {
	for _, line := range body {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		word := trimmed
		if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
			word = trimmed[:i]
		}
		return Kind(word)
	}
	return KindUnrecognized
}
