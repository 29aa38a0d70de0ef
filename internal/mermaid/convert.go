package mermaid

import (
	"fmt"
	"regexp"
	"strings"
)

// Convert rewrites a convertible fence body into GFM table lines.
// Returns an error if the body yields no rows (nothing worth replacing the
// diagram with), in which case the fence should be left alone and reported.
func Convert(f Fence) ([]string, error) {
	switch f.Kind {
	case KindState, KindStateV2:
		return convertState(f.Body)
	case KindGantt:
		return convertGantt(f.Body)
	case KindTimeline:
		return convertTimeline(f.Body)
	case KindERDiagram:
		return convertER(f.Body)
	default:
		return nil, fmt.Errorf("diagram kind %q cannot be converted to a table", f.Kind)
	}
}

var stateTransition = regexp.MustCompile(`^(.+?)\s*-->\s*([^:]+?)(?:\s*:\s*(.+))?$`)

func convertState(body []string) ([]string, error) {
	rows := [][]string{}
	inNote := false

	for _, raw := range body {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		// Skip multi-line note blocks
		if inNote {
			if line == "end note" {
				inNote = false
			}
			continue
		}
		if strings.HasPrefix(line, "note ") {
			if !strings.Contains(line, ":") {
				inNote = true
			}
			continue
		}

		m := stateTransition.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		from := stateName(m[1])
		to := stateName(m[2])
		trigger := strings.TrimSpace(m[3])
		rows = append(rows, []string{from, to, trigger})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no state transitions found")
	}
	return table([]string{"From", "To", "Trigger"}, rows), nil
}

// stateName maps the mermaid start/end marker to readable table text.
func stateName(s string) string {
	s = strings.TrimSpace(s)
	if s == "[*]" {
		return "(start/end)"
	}
	return s
}

var (
	ganttDate     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	ganttAfter    = regexp.MustCompile(`^(after|until)\s+\S+`)
	ganttDuration = regexp.MustCompile(`^\d+(\.\d+)?(ms|s|m|h|d|w)$`)
	ganttSkip     = regexp.MustCompile(`^(title|dateFormat|axisFormat|excludes|includes|todayMarker|tickInterval|weekday|inclusiveEndDates|topAxis)\b`)
	ganttTags     = map[string]bool{"crit": true, "active": true, "done": true, "milestone": true}
)

func convertGantt(body []string) ([]string, error) {
	rows := [][]string{}
	section := ""

	for _, raw := range body {
		line := strings.TrimSpace(raw)
		if line == "" || line == string(KindGantt) || ganttSkip.MatchString(line) {
			continue
		}

		if rest, ok := strings.CutPrefix(line, "section "); ok {
			section = strings.TrimSpace(rest)
			continue
		}

		name, spec, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)

		// The field list after the colon mixes tags, an optional id, a start
		// (date or "after <id>") and a duration or end date. Classify each.
		var start, duration string
		for _, field := range strings.Split(spec, ",") {
			field = strings.TrimSpace(field)
			switch {
			case field == "" || ganttTags[field]:
				// tag, ignored
			case start == "" && (ganttDate.MatchString(field) || ganttAfter.MatchString(field)):
				start = field
			case ganttDuration.MatchString(field):
				duration = field
			case duration == "" && ganttDate.MatchString(field):
				// second date is an end date
				duration = "until " + field
			}
		}

		rows = append(rows, []string{section, name, start, duration})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no gantt tasks found")
	}
	return table([]string{"Section", "Task", "Start", "Duration"}, rows), nil
}

func convertTimeline(body []string) ([]string, error) {
	rows := [][]string{}
	period := ""

	for _, raw := range body {
		line := strings.TrimSpace(raw)
		if line == "" || line == string(KindTimeline) {
			continue
		}
		if strings.HasPrefix(line, "title ") || strings.HasPrefix(line, "section ") {
			continue
		}

		parts := strings.Split(line, ":")
		if len(parts) < 2 {
			continue
		}

		// An empty left side continues the previous period
		if p := strings.TrimSpace(parts[0]); p != "" {
			period = p
		}
		for _, event := range parts[1:] {
			event = strings.TrimSpace(event)
			if event != "" {
				rows = append(rows, []string{period, event})
			}
		}
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no timeline entries found")
	}
	return table([]string{"Period", "Event"}, rows), nil
}

var erRelation = regexp.MustCompile(`^(\S+)\s+(\S*?(?:--|\.\.)\S*?)\s+(\S+)\s*:\s*(.+)$`)

// Crow's foot symbols on each side of the connector.
var erCardinality = map[string]string{
	"||": "exactly one",
	"|o": "zero or one",
	"o|": "zero or one",
	"}o": "zero or more",
	"o{": "zero or more",
	"}|": "one or more",
	"|{": "one or more",
}

func convertER(body []string) ([]string, error) {
	rows := [][]string{}
	depth := 0

	for _, raw := range body {
		line := strings.TrimSpace(raw)
		if line == "" || line == string(KindERDiagram) {
			continue
		}

		// Skip attribute blocks: ENTITY { ... }
		if depth > 0 {
			if line == "}" {
				depth--
			}
			continue
		}
		if strings.HasSuffix(line, "{") && !strings.Contains(line, "--") && !strings.Contains(line, "..") {
			depth++
			continue
		}

		m := erRelation.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		label := strings.TrimSpace(m[4])
		label = strings.Trim(label, `"`)
		rows = append(rows, []string{m[1], label, m[3], decodeCardinality(m[2])})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no entity relationships found")
	}
	return table([]string{"Entity", "Relationship", "Entity", "Cardinality"}, rows), nil
}

// decodeCardinality turns a connector like "||--o{" into readable text.
// Unrecognized symbols fall back to the raw connector.
func decodeCardinality(connector string) string {
	sep := "--"
	if !strings.Contains(connector, sep) {
		sep = ".."
	}
	left, right, ok := strings.Cut(connector, sep)
	if !ok {
		return connector
	}

	leftText, lok := erCardinality[left]
	rightText, rok := erCardinality[right]
	if !lok || !rok {
		return connector
	}
	return leftText + " to " + rightText
}

// table renders a header and rows as GFM table lines.
func table(header []string, rows [][]string) []string {
	lines := []string{tableRow(header), tableSeparator(len(header))}
	for _, row := range rows {
		lines = append(lines, tableRow(row))
	}
	return lines
}

func tableRow(cells []string) string {
	escaped := make([]string, len(cells))
	for i, cell := range cells {
		escaped[i] = strings.ReplaceAll(cell, "|", `\|`)
	}
	return "| " + strings.Join(escaped, " | ") + " |"
}

func tableSeparator(cols int) string {
	parts := make([]string, cols)
	for i := range parts {
		parts[i] = "---"
	}
	return "| " + strings.Join(parts, " | ") + " |"
}
