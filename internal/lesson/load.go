package lesson

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Lesson represents a loaded lesson directory.
type Lesson struct {
	Level     Level     // Level directory the lesson lives under
	Slug      string    // Directory name (canonical identifier)
	Dir       string    // Absolute path to the lesson directory
	Meta      Metadata  // Parsed lesson.yml
	Markdown  []string  // All markdown file names in the directory, sorted
	HasLab    bool      // True if the lesson ships a lab.yml
	UpdatedAt time.Time // Most recent modification time across the lesson's files
}

// Ref returns the lesson's canonical reference: "level/slug".
func (l *Lesson) Ref() string {
	return fmt.Sprintf("%s/%s", l.Level, l.Slug)
}

// Path returns the absolute path of a file inside the lesson directory.
func (l *Lesson) Path(name string) string {
	return filepath.Join(l.Dir, name)
}

// Steps returns the lesson's step file names in ascending order.
func (l *Lesson) Steps() []string {
	var steps []string
	for _, name := range l.Markdown {
		if _, ok := StepNumber(name); ok {
			steps = append(steps, name)
		}
	}
	sort.Slice(steps, func(i, j int) bool {
		a, _ := StepNumber(steps[i])
		b, _ := StepNumber(steps[j])
		return a < b
	})
	return steps
}

// Sequence returns the lesson's reading order: problem.md, then each step in
// ascending order, then solution.md. Only files that actually exist are included.
func (l *Lesson) Sequence() []string {
	var seq []string
	if l.has(ProblemFile) {
		seq = append(seq, ProblemFile)
	}
	seq = append(seq, l.Steps()...)
	if l.has(SolutionFile) {
		seq = append(seq, SolutionFile)
	}
	return seq
}

// NextAfter returns the file that follows name in the reading sequence.
// Returns false if name is the last file or not part of the sequence.
func (l *Lesson) NextAfter(name string) (string, bool) {
	seq := l.Sequence()
	for i, f := range seq {
		if f == name && i+1 < len(seq) {
			return seq[i+1], true
		}
	}
	return "", false
}

func (l *Lesson) has(name string) bool {
	for _, f := range l.Markdown {
		if f == name {
			return true
		}
	}
	return false
}

// ReadMetadata parses a lesson.yml file. The metadata is validated before
// being returned.
func ReadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("lesson metadata not found at %s", path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("invalid metadata in %s: %w", path, err)
	}

	return &meta, nil
}

// Load reads a lesson directory: parses lesson.yml, enumerates markdown files
// and computes the most recent modification time. Returns an error if the
// directory does not exist or its metadata is missing or invalid.
func Load(contentRoot string, level Level, slug string) (*Lesson, error) {
	if err := level.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}

	dir := filepath.Join(contentRoot, string(level), slug)
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("lesson directory %s/%s does not exist", level, slug)
		}
		return nil, fmt.Errorf("failed to stat lesson directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	meta, err := ReadMetadata(filepath.Join(dir, MetaFile))
	if err != nil {
		return nil, err
	}

	l := &Lesson{
		Level: level,
		Slug:  slug,
		Dir:   dir,
		Meta:  *meta,
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read lesson directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		if fi.ModTime().After(l.UpdatedAt) {
			l.UpdatedAt = fi.ModTime()
		}
		switch {
		case strings.HasSuffix(name, ".md"):
			l.Markdown = append(l.Markdown, name)
		case name == LabFile:
			l.HasLab = true
		}
	}
	sort.Strings(l.Markdown)

	return l, nil
}
