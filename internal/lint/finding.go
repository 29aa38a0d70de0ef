// Package lint validates the structural conventions of a content tree: every
// lesson has its sequence files, every sequence file links to its successor,
// relative links resolve, metadata parses, and diagrams are renderable.
// Findings are collected rather than aborting on the first problem so one
// broken lesson cannot hide the rest.
package lint

import (
	"fmt"
	"sort"
)

// Severity classifies a finding. Errors fail the lint run; warnings fail it
// only under --strict.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule names, stable so they can be grepped and ignored deliberately.
const (
	RuleMetadata           = "metadata"
	RuleSlugMismatch       = "slug-mismatch"
	RuleMissingProblem     = "missing-problem"
	RuleMissingSolution    = "missing-solution"
	RuleStepName           = "step-name"
	RuleStepGap            = "step-gap"
	RuleSequenceLink       = "sequence-link"
	RuleBrokenLink         = "broken-link"
	RuleEmptyFile          = "empty-file"
	RuleUnsupportedDiagram = "unsupported-diagram"
	RuleLabManifest        = "lab-manifest"
)

// Finding is a single problem found in the content tree.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Path     string   `json:"path"` // Relative to the content root
	Line     int      `json:"line,omitempty"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d %s %s: %s", f.Path, f.Line, f.Severity, f.Rule, f.Message)
	}
	return fmt.Sprintf("%s %s %s: %s", f.Path, f.Severity, f.Rule, f.Message)
}

// Report is the outcome of one lint run.
type Report struct {
	Findings []Finding
	Lessons  int // Lessons examined
}

func (r *Report) add(f Finding) {
	r.Findings = append(r.Findings, f)
}

func (r *Report) errorf(rule, path string, line int, format string, a ...any) {
	r.add(Finding{Rule: rule, Severity: SeverityError, Path: path, Line: line, Message: fmt.Sprintf(format, a...)})
}

func (r *Report) warnf(rule, path string, line int, format string, a ...any) {
	r.add(Finding{Rule: rule, Severity: SeverityWarning, Path: path, Line: line, Message: fmt.Sprintf(format, a...)})
}

// Errors returns the number of error findings.
func (r *Report) Errors() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Warnings returns the number of warning findings.
func (r *Report) Warnings() int {
	return len(r.Findings) - r.Errors()
}

// Failed reports whether the run should exit non-zero.
func (r *Report) Failed(strict bool) bool {
	if strict {
		return len(r.Findings) > 0
	}
	return r.Errors() > 0
}

// Sort orders findings by path, then line, then rule for stable output.
func (r *Report) Sort() {
	sort.Slice(r.Findings, func(i, j int) bool {
		a, b := r.Findings[i], r.Findings[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Rule < b.Rule
	})
}
