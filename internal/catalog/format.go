package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dyluth/lore/internal/lesson"
)

// OutputFormat specifies how to format the lesson list output.
type OutputFormat string

const (
	// OutputFormatDefault uses a table format with truncated titles
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs complete lesson records as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// Record is the JSON shape of a lesson in list and API output.
type Record struct {
	Ref        string    `json:"ref"`
	Level      string    `json:"level"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	Difficulty int       `json:"difficulty"`
	Tags       []string  `json:"tags,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Lab        bool      `json:"lab"`
	Deprecated bool      `json:"deprecated,omitempty"`
	Files      []string  `json:"files,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToRecord converts a loaded lesson into its JSON record. The file sequence is
// only populated when detail is true (single-lesson output).
func ToRecord(l *lesson.Lesson, detail bool) Record {
	r := Record{
		Ref:        l.Ref(),
		Level:      string(l.Level),
		Slug:       l.Slug,
		Title:      l.Meta.Title,
		Category:   l.Meta.Category,
		Difficulty: l.Meta.Difficulty,
		Tags:       l.Meta.Tags,
		Summary:    l.Meta.Summary,
		Lab:        l.HasLab,
		Deprecated: l.Meta.Deprecated,
		UpdatedAt:  l.UpdatedAt,
	}
	if detail {
		r.Files = l.Sequence()
	}
	return r
}

// FormatTable writes lessons as a formatted table to the provided writer.
// Columns: REF, TITLE, CATEGORY, DIFF, LAB, STATUS, UPDATED. progress maps a
// lesson ref to its journal status; refs without an entry show as "new".
// Returns the number of lessons formatted.
func FormatTable(w io.Writer, lessons []*lesson.Lesson, progress map[string]string) int {
	if len(lessons) == 0 {
		fmt.Fprintf(w, "No lessons found\n")
		return 0
	}

	// Print header row
	fmt.Fprintf(w, "%-36s %-34s %-14s %-6s %-4s %-16s %s\n",
		"REF", "TITLE", "CATEGORY", "DIFF", "LAB", "STATUS", "UPDATED")
	fmt.Fprintf(w, "%-36s %-34s %-14s %-6s %-4s %-16s %s\n",
		"------------------------------------", "----------------------------------", "--------------", "------", "----", "----------------", "--------")

	// Print data rows
	for _, l := range lessons {
		status := progress[l.Ref()]
		if status == "" {
			status = "new"
		}
		fmt.Fprintf(w, "%-36s %-34s %-14s %-6s %-4s %-16s %s\n",
			formatRef(l.Ref()),
			formatTitle(l.Meta.Title),
			formatCategory(l.Meta.Category),
			formatDifficulty(l.Meta.Difficulty),
			formatLab(l.HasLab),
			status,
			formatUpdated(l.UpdatedAt),
		)
	}

	// Print count
	countMsg := "lesson"
	if len(lessons) != 1 {
		countMsg = "lessons"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(lessons), countMsg)

	return len(lessons)
}

// FormatJSONL writes lessons as line-delimited JSON (JSONL) to the provided writer.
// Each lesson is written as a single JSON object on its own line.
// This format is ideal for processing with tools like jq.
func FormatJSONL(w io.Writer, lessons []*lesson.Lesson) error {
	for _, l := range lessons {
		data, err := json.Marshal(ToRecord(l, false))
		if err != nil {
			return fmt.Errorf("failed to marshal lesson to JSON: %w", err)
		}

		// Write as single line
		if _, err := fmt.Fprintf(w, "%s\n", string(data)); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}

	return nil
}

// FormatSingleJSON writes a single lesson as pretty-printed JSON to the
// provided writer, including the file sequence.
func FormatSingleJSON(w io.Writer, l *lesson.Lesson) error {
	data, err := json.MarshalIndent(ToRecord(l, true), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal lesson to JSON: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}

	// MarshalIndent has no trailing newline.
	fmt.Fprintln(w)

	return nil
}

// formatRef truncates a "level/slug" reference for table display.
func formatRef(ref string) string {
	if len(ref) > 36 {
		return ref[:33] + "..."
	}
	return ref
}

// formatTitle truncates long titles for table display.
func formatTitle(title string) string {
	if title == "" {
		return "-"
	}
	if len(title) > 34 {
		return title[:31] + "..."
	}
	return title
}

func formatCategory(category string) string {
	if category == "" {
		return "-"
	}
	if len(category) > 14 {
		return category[:11] + "..."
	}
	return category
}

// formatDifficulty renders the 1-5 rating as filled and empty dots (●●○○○).
func formatDifficulty(d int) string {
	if d < lesson.MinDifficulty || d > lesson.MaxDifficulty {
		return "-"
	}
	return strings.Repeat("●", d) + strings.Repeat("○", lesson.MaxDifficulty-d)
}

func formatLab(hasLab bool) string {
	if hasLab {
		return "yes"
	}
	return "-"
}

// formatUpdated formats a modification time as relative age ("2m ago", "3d ago").
func formatUpdated(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	diff := time.Since(t)

	if diff < time.Minute {
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
}
