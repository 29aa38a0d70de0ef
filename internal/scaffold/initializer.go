package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/dyluth/lore/internal/config"
	"github.com/dyluth/lore/internal/lesson"
)

//go:embed templates/*
var templatesFS embed.FS

// FileInfo represents a file to be created during scaffolding
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// InitRepo creates the content repository skeleton in dir: lore.yml plus one
// directory per level. Existing lessons are never touched; force only allows
// overwriting lore.yml.
func InitRepo(dir string, force bool) error {
	cfgPath := filepath.Join(dir, config.FileName)

	if _, err := os.Stat(cfgPath); err == nil {
		if !force {
			return fmt.Errorf("%s already exists", config.FileName)
		}
		fmt.Printf("⚠️  Overwriting existing %s...\n", config.FileName)
	}

	content, err := renderTemplate("lore.yml.tmpl", nil)
	if err != nil {
		return err
	}

	files := []FileInfo{
		{Path: cfgPath, Content: content, Permissions: 0o644},
	}

	for _, level := range lesson.Levels() {
		levelDir := filepath.Join(dir, string(level))
		if err := os.MkdirAll(levelDir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", levelDir, err)
		}
		// .gitkeep so empty level directories survive in git
		files = append(files, FileInfo{
			Path:        filepath.Join(levelDir, ".gitkeep"),
			Content:     []byte{},
			Permissions: 0o644,
		})
	}

	if err := writeFiles(files); err != nil {
		return err
	}

	// The generated config must load cleanly
	if _, err := config.Load(cfgPath); err != nil {
		return fmt.Errorf("generated %s is invalid: %w", config.FileName, err)
	}

	return nil
}

// LessonParams describes the lesson to scaffold. Slug and Level are
// required; the rest have sensible defaults.
type LessonParams struct {
	Level      lesson.Level
	Slug       string
	Title      string
	Category   string
	Difficulty int
	Steps      int // Number of guided step files; 0 links problem straight to solution
	WithLab    bool
}

// sequenceData is the template context for problem and step files. NextFile
// and NextLabel pre-wire the link to the file's successor so a fresh lesson
// lints clean.
type sequenceData struct {
	LessonParams
	N         int
	NextFile  string
	NextLabel string
}

// CreateLesson scaffolds a lesson directory under the content root and
// returns its path. The directory must not already exist.
func CreateLesson(root string, p LessonParams) (string, error) {
	if err := p.Level.Validate(); err != nil {
		return "", err
	}
	if err := lesson.ValidateSlug(p.Slug); err != nil {
		return "", err
	}
	if p.Steps < 0 {
		return "", fmt.Errorf("steps must be zero or more (got %d)", p.Steps)
	}

	if p.Title == "" {
		p.Title = titleFromSlug(p.Slug)
	}
	if p.Category == "" {
		p.Category = "general"
	}
	if p.Difficulty == 0 {
		p.Difficulty = 1
	}

	dir := filepath.Join(root, string(p.Level), p.Slug)
	if _, err := os.Stat(dir); err == nil {
		return "", fmt.Errorf("lesson directory %s/%s already exists", p.Level, p.Slug)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create lesson directory: %w", err)
	}

	var files []FileInfo
	add := func(tmplName, fileName string, data any) error {
		content, err := renderTemplate(tmplName, data)
		if err != nil {
			return err
		}
		files = append(files, FileInfo{
			Path:        filepath.Join(dir, fileName),
			Content:     content,
			Permissions: 0o644,
		})
		return nil
	}

	// successor returns the file after step i (0 = problem) in the sequence
	successor := func(i int) (string, string) {
		if i < p.Steps {
			return lesson.StepName(i + 1), fmt.Sprintf("step %d", i+1)
		}
		return lesson.SolutionFile, "the solution"
	}

	if err := add("lesson.yml.tmpl", lesson.MetaFile, p); err != nil {
		return "", err
	}

	nextFile, nextLabel := successor(0)
	if err := add("problem.md.tmpl", lesson.ProblemFile, sequenceData{LessonParams: p, NextFile: nextFile, NextLabel: nextLabel}); err != nil {
		return "", err
	}
	for i := 1; i <= p.Steps; i++ {
		nextFile, nextLabel := successor(i)
		if err := add("step.md.tmpl", lesson.StepName(i), sequenceData{LessonParams: p, N: i, NextFile: nextFile, NextLabel: nextLabel}); err != nil {
			return "", err
		}
	}
	if err := add("solution.md.tmpl", lesson.SolutionFile, p); err != nil {
		return "", err
	}

	if p.WithLab {
		if err := add("lab.yml.tmpl", lesson.LabFile, p); err != nil {
			return "", err
		}
	}

	if err := writeFiles(files); err != nil {
		return "", err
	}

	if p.WithLab {
		if err := os.MkdirAll(filepath.Join(dir, lesson.LabDir), 0o755); err != nil {
			return "", fmt.Errorf("failed to create lab directory: %w", err)
		}
	}

	// The scaffolded lesson must load cleanly
	if _, err := lesson.Load(root, p.Level, p.Slug); err != nil {
		return "", fmt.Errorf("scaffolded lesson is invalid: %w", err)
	}

	return dir, nil
}

// titleFromSlug turns "widget-sorting" into "Widget sorting".
func titleFromSlug(slug string) string {
	title := strings.ReplaceAll(slug, "-", " ")
	if title == "" {
		return title
	}
	return strings.ToUpper(title[:1]) + title[1:]
}

func renderTemplate(name string, data any) ([]byte, error) {
	raw, err := templatesFS.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", name, err)
	}

	tmpl, err := template.New(name).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// writeFiles writes scaffolded files to disk
func writeFiles(files []FileInfo) error {
	for _, file := range files {
		if err := os.WriteFile(file.Path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}
	return nil
}
