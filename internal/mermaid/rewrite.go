package mermaid

import "strings"

// Action records what Process decided for one fence.
type Action string

const (
	// ActionKept means the diagram kind is supported and was left alone.
	ActionKept Action = "kept"

	// ActionConverted means the fence was replaced with a markdown table.
	ActionConverted Action = "converted"

	// ActionSkipped means the fence is unsupported but could not be converted.
	ActionSkipped Action = "skipped"
)

// FenceReport describes the outcome for a single fence.
type FenceReport struct {
	Kind   Kind
	Line   int // 1-based line of the opening marker
	Action Action
	Reason string // Populated for skipped fences
}

// Result is the outcome of processing one document.
type Result struct {
	Output  []byte // Document with convertible fences replaced
	Reports []FenceReport
	Changed bool
}

// Converted returns the number of fences replaced with tables.
func (r *Result) Converted() int {
	return r.count(ActionConverted)
}

// Skipped returns the number of unsupported fences left in place.
func (r *Result) Skipped() int {
	return r.count(ActionSkipped)
}

func (r *Result) count(a Action) int {
	n := 0
	for _, rep := range r.Reports {
		if rep.Action == a {
			n++
		}
	}
	return n
}

// Process replaces every convertible mermaid fence in source with a GFM table
// and reports what happened to each fence. Supported diagrams are untouched;
// unsupported diagrams that cannot be converted are left in place so they can
// be fixed by hand. Processing is idempotent: converted output contains no
// remaining convertible fences.
func Process(source []byte) Result {
	lines := splitLines(source)
	fences := ScanLines(lines)

	result := Result{}
	if len(fences) == 0 {
		result.Output = source
		return result
	}

	var out []string
	next := 0 // index into lines of the next unconsumed line

	for _, f := range fences {
		report := FenceReport{Kind: f.Kind, Line: f.Start}

		switch {
		case f.Kind.Supported():
			report.Action = ActionKept
		case !f.Closed:
			report.Action = ActionSkipped
			report.Reason = "fence is not closed"
		case !f.Kind.Convertible():
			report.Action = ActionSkipped
			report.Reason = "no table conversion for this diagram kind"
		default:
			tableLines, err := Convert(f)
			if err != nil {
				report.Action = ActionSkipped
				report.Reason = err.Error()
			} else {
				// Copy everything before the fence, then the table in its place
				out = append(out, lines[next:f.Start-1]...)
				for _, tl := range tableLines {
					out = append(out, f.Indent+tl)
				}
				next = f.End
				report.Action = ActionConverted
				result.Changed = true
			}
		}

		result.Reports = append(result.Reports, report)
	}

	if !result.Changed {
		result.Output = source
		return result
	}

	out = append(out, lines[next:]...)
	result.Output = []byte(strings.Join(out, "\n"))
	return result
}
