package lesson

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeLesson creates a lesson directory under root with the given files.
func writeLesson(t *testing.T, root string, level, slug string, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(root, level, slug)
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

const validMeta = `slug: crashloop-backoff
title: Debugging CrashLoopBackOff
category: debugging
difficulty: 3
tags:
  - kubernetes
`

func TestLoad_ValidLesson(t *testing.T) {
	root := t.TempDir()
	writeLesson(t, root, "basic", "crashloop-backoff", map[string]string{
		"lesson.yml":  validMeta,
		"problem.md":  "# Problem\n\nSee [step 1](step-01.md).\n",
		"step-01.md":  "# Step 1\n",
		"step-02.md":  "# Step 2\n",
		"solution.md": "# Solution\n",
	})

	l, err := Load(root, LevelBasic, "crashloop-backoff")
	require.NoError(t, err)
	assert.Equal(t, "basic/crashloop-backoff", l.Ref())
	assert.Equal(t, "Debugging CrashLoopBackOff", l.Meta.Title)
	assert.Equal(t, []string{"problem.md", "solution.md", "step-01.md", "step-02.md"}, l.Markdown)
	assert.False(t, l.HasLab)
	assert.False(t, l.UpdatedAt.IsZero())
}

func TestLoad_LessonWithLab(t *testing.T) {
	root := t.TempDir()
	writeLesson(t, root, "intermediate", "redis-eviction", map[string]string{
		"lesson.yml": `slug: redis-eviction
title: Redis eviction policies
category: caching
difficulty: 2
`,
		"problem.md":  "# Problem\n",
		"solution.md": "# Solution\n",
		"lab.yml":     "version: \"1\"\nservices: {}\n",
	})

	l, err := Load(root, LevelIntermediate, "redis-eviction")
	require.NoError(t, err)
	assert.True(t, l.HasLab)
}

func TestLoad_MissingDirectory(t *testing.T) {
	root := t.TempDir()
	_, err := Load(root, LevelBasic, "nonexistent")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoad_MissingMetadata(t *testing.T) {
	root := t.TempDir()
	writeLesson(t, root, "basic", "no-meta", map[string]string{
		"problem.md": "# Problem\n",
	})

	_, err := Load(root, LevelBasic, "no-meta")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "metadata not found")
}

func TestLoad_InvalidLevel(t *testing.T) {
	root := t.TempDir()
	_, err := Load(root, Level("expert"), "anything")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown level")
}

func TestReadMetadata_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lesson.yml")
	require.NoError(t, os.WriteFile(path, []byte("slug: [unclosed"), 0644))

	_, err := ReadMetadata(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestReadMetadata_FailsValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lesson.yml")
	require.NoError(t, os.WriteFile(path, []byte("slug: ok\ntitle: T\ncategory: c\ndifficulty: 9\n"), 0644))

	_, err := ReadMetadata(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid difficulty")
}

func TestLesson_Sequence(t *testing.T) {
	l := &Lesson{
		Markdown: []string{"problem.md", "solution.md", "step-01.md", "step-02.md", "step-10.md"},
	}
	assert.Equal(t, []string{"problem.md", "step-01.md", "step-02.md", "step-10.md", "solution.md"}, l.Sequence())
}

func TestLesson_Sequence_NoSteps(t *testing.T) {
	l := &Lesson{Markdown: []string{"problem.md", "solution.md"}}
	assert.Equal(t, []string{"problem.md", "solution.md"}, l.Sequence())
}

func TestLesson_NextAfter(t *testing.T) {
	l := &Lesson{Markdown: []string{"problem.md", "solution.md", "step-01.md"}}

	next, ok := l.NextAfter("problem.md")
	assert.True(t, ok)
	assert.Equal(t, "step-01.md", next)

	next, ok = l.NextAfter("step-01.md")
	assert.True(t, ok)
	assert.Equal(t, "solution.md", next)

	_, ok = l.NextAfter("solution.md")
	assert.False(t, ok)

	_, ok = l.NextAfter("notes.md")
	assert.False(t, ok)
}
