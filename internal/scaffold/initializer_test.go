package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/lore/internal/config"
	"github.com/dyluth/lore/internal/lab"
	"github.com/dyluth/lore/internal/lesson"
	"github.com/dyluth/lore/internal/lint"
)

func TestInitRepo(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, InitRepo(dir, false))

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "1", cfg.Version)
	assert.Equal(t, ":8420", cfg.Serve.Addr)
	assert.Equal(t, [2]int{15400, 15499}, cfg.Lab.PortRange)

	for _, level := range lesson.Levels() {
		info, err := os.Stat(filepath.Join(dir, string(level)))
		require.NoError(t, err, "level directory %s should exist", level)
		assert.True(t, info.IsDir())

		_, err = os.Stat(filepath.Join(dir, string(level), ".gitkeep"))
		assert.NoError(t, err)
	}
}

func TestInitRepo_AlreadyInitialized(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitRepo(dir, false))

	err := InitRepo(dir, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitRepo_Force(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitRepo(dir, false))

	// a lesson must survive re-initialization
	_, err := CreateLesson(dir, LessonParams{Level: lesson.LevelBasic, Slug: "widget-sorting"})
	require.NoError(t, err)

	require.NoError(t, InitRepo(dir, true))

	_, err = lesson.Load(dir, lesson.LevelBasic, "widget-sorting")
	assert.NoError(t, err)
}

func TestCreateLesson(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitRepo(dir, false))

	lessonDir, err := CreateLesson(dir, LessonParams{
		Level:      lesson.LevelBasic,
		Slug:       "widget-sorting",
		Title:      "Sorting widgets at scale",
		Category:   "algorithms",
		Difficulty: 3,
		Steps:      1,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "basic", "widget-sorting"), lessonDir)

	l, err := lesson.Load(dir, lesson.LevelBasic, "widget-sorting")
	require.NoError(t, err)
	assert.Equal(t, "Sorting widgets at scale", l.Meta.Title)
	assert.Equal(t, "algorithms", l.Meta.Category)
	assert.Equal(t, 3, l.Meta.Difficulty)
	assert.False(t, l.HasLab)

	problem, err := os.ReadFile(filepath.Join(lessonDir, lesson.ProblemFile))
	require.NoError(t, err)
	assert.Contains(t, string(problem), "Sorting widgets at scale")
	assert.Contains(t, string(problem), "step-01.md")
}

// Without steps the problem links straight to the solution.
func TestCreateLesson_Defaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitRepo(dir, false))

	lessonDir, err := CreateLesson(dir, LessonParams{Level: lesson.LevelIntermediate, Slug: "rate-limiting"})
	require.NoError(t, err)

	l, err := lesson.Load(dir, lesson.LevelIntermediate, "rate-limiting")
	require.NoError(t, err)
	assert.Equal(t, "Rate limiting", l.Meta.Title)
	assert.Equal(t, "general", l.Meta.Category)
	assert.Equal(t, 1, l.Meta.Difficulty)
	assert.Equal(t, []string{lesson.ProblemFile, lesson.SolutionFile}, l.Sequence())

	problem, err := os.ReadFile(filepath.Join(lessonDir, lesson.ProblemFile))
	require.NoError(t, err)
	assert.Contains(t, string(problem), "solution.md")
}

func TestCreateLesson_MultiStep(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitRepo(dir, false))

	lessonDir, err := CreateLesson(dir, LessonParams{
		Level: lesson.LevelAdvanced,
		Slug:  "lease-fencing",
		Steps: 3,
	})
	require.NoError(t, err)

	l, err := lesson.Load(dir, lesson.LevelAdvanced, "lease-fencing")
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"problem.md", "step-01.md", "step-02.md", "step-03.md", "solution.md"},
		l.Sequence())

	// Each step links to its successor
	step1, err := os.ReadFile(filepath.Join(lessonDir, "step-01.md"))
	require.NoError(t, err)
	assert.Contains(t, string(step1), "step-02.md")

	step3, err := os.ReadFile(filepath.Join(lessonDir, "step-03.md"))
	require.NoError(t, err)
	assert.Contains(t, string(step3), "solution.md")
}

func TestCreateLesson_NegativeSteps(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitRepo(dir, false))

	_, err := CreateLesson(dir, LessonParams{Level: lesson.LevelBasic, Slug: "caching", Steps: -1})
	require.Error(t, err)
}

func TestCreateLesson_WithLab(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitRepo(dir, false))

	lessonDir, err := CreateLesson(dir, LessonParams{
		Level:   lesson.LevelBasic,
		Slug:    "caching",
		WithLab: true,
	})
	require.NoError(t, err)

	manifest, err := lab.ReadManifest(filepath.Join(lessonDir, lesson.LabFile))
	require.NoError(t, err)
	assert.Contains(t, manifest.Services, "redis")

	info, err := os.Stat(filepath.Join(lessonDir, "lab"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateLesson_AlreadyExists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitRepo(dir, false))

	_, err := CreateLesson(dir, LessonParams{Level: lesson.LevelBasic, Slug: "caching"})
	require.NoError(t, err)

	_, err = CreateLesson(dir, LessonParams{Level: lesson.LevelBasic, Slug: "caching"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreateLesson_InvalidSlug(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitRepo(dir, false))

	_, err := CreateLesson(dir, LessonParams{Level: lesson.LevelBasic, Slug: "Bad_Slug"})
	require.Error(t, err)
}

// Scaffolded lessons must come out lint-clean, or `lore new` would hand
// every author a broken starting point.
func TestScaffoldedLessonPassesLint(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitRepo(dir, false))

	_, err := CreateLesson(dir, LessonParams{Level: lesson.LevelBasic, Slug: "widget-sorting", Steps: 2, WithLab: true})
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)

	report, err := lint.New(cfg).Run()
	require.NoError(t, err)
	assert.Empty(t, report.Findings, "scaffolded lesson should have no findings: %v", report.Findings)
}

func TestTitleFromSlug(t *testing.T) {
	testCases := []struct {
		slug     string
		expected string
	}{
		{"widget-sorting", "Widget sorting"},
		{"caching", "Caching"},
		{"rate-limiting-with-redis", "Rate limiting with redis"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, titleFromSlug(tc.slug))
	}
}
