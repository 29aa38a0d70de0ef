package catalog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/lore/internal/lesson"
)

func TestFormatDifficulty(t *testing.T) {
	tests := []struct {
		name       string
		difficulty int
		expected   string
	}{
		{name: "minimum", difficulty: 1, expected: "●○○○○"},
		{name: "middle", difficulty: 3, expected: "●●●○○"},
		{name: "maximum", difficulty: 5, expected: "●●●●●"},
		{name: "unset", difficulty: 0, expected: "-"},
		{name: "out of range", difficulty: 7, expected: "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDifficulty(tt.difficulty))
		})
	}
}

func TestFormatTitle(t *testing.T) {
	assert.Equal(t, "-", formatTitle(""))
	assert.Equal(t, "Short title", formatTitle("Short title"))

	long := strings.Repeat("a", 40)
	got := formatTitle(long)
	assert.Len(t, got, 34)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestFormatUpdated(t *testing.T) {
	assert.Equal(t, "-", formatUpdated(time.Time{}))
	assert.Equal(t, "30s ago", formatUpdated(time.Now().Add(-30*time.Second)))
	assert.Equal(t, "5m ago", formatUpdated(time.Now().Add(-5*time.Minute)))
	assert.Equal(t, "3h ago", formatUpdated(time.Now().Add(-3*time.Hour)))
	assert.Equal(t, "2d ago", formatUpdated(time.Now().Add(-49*time.Hour)))
}

func TestFormatTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	count := FormatTable(&buf, nil, nil)
	assert.Equal(t, 0, count)
	assert.Contains(t, buf.String(), "No lessons found")
}

func TestFormatTable_Rows(t *testing.T) {
	lessons := []*lesson.Lesson{
		makeLesson(lesson.LevelBasic, "pods", "workloads", 1),
		makeLesson(lesson.LevelIntermediate, "redis-eviction", "caching", 3, withLab()),
	}
	progress := map[string]string{"intermediate/redis-eviction": "in-progress 1/3"}

	var buf bytes.Buffer
	count := FormatTable(&buf, lessons, progress)
	assert.Equal(t, 2, count)

	out := buf.String()
	assert.Contains(t, out, "REF")
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "basic/pods")
	assert.Contains(t, out, "intermediate/redis-eviction")
	assert.Contains(t, out, "●●●○○")
	assert.Contains(t, out, "yes")
	assert.Contains(t, out, "new")
	assert.Contains(t, out, "in-progress 1/3")
	assert.Contains(t, out, "2 lessons found")
}

func TestFormatJSONL(t *testing.T) {
	lessons := []*lesson.Lesson{
		makeLesson(lesson.LevelBasic, "pods", "workloads", 1),
		makeLesson(lesson.LevelBasic, "services", "networking", 2),
	}

	var buf bytes.Buffer
	require.NoError(t, FormatJSONL(&buf, lessons))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	// Each line is a standalone JSON object
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "basic/pods", rec.Ref)
	assert.Equal(t, "workloads", rec.Category)
	assert.Empty(t, rec.Files)
}

func TestFormatSingleJSON_IncludesSequence(t *testing.T) {
	l := makeLesson(lesson.LevelBasic, "pods", "workloads", 1)
	l.Markdown = []string{"problem.md", "solution.md", "step-01.md"}

	var buf bytes.Buffer
	require.NoError(t, FormatSingleJSON(&buf, l))

	var rec Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, []string{"problem.md", "step-01.md", "solution.md"}, rec.Files)
}
