// Package lesson provides the type definitions and parsing rules for a single
// lesson directory. A lesson is a slug-named directory under a level directory
// (basic/, intermediate/, advanced/, real-world/) containing an ordered sequence
// of markdown files (problem.md, step-NN.md, solution.md), a lesson.yml
// metadata file, and optionally a runnable lab environment.
//
// Everything that walks the content tree (catalog, lint, serve, scaffold) builds
// on the names and invariants defined here.
package lesson

import (
	"fmt"
	"regexp"
)

// Well-known file names inside a lesson directory.
const (
	// MetaFile holds the lesson's metadata (slug, title, category, difficulty).
	MetaFile = "lesson.yml"

	// ProblemFile is the entry point of the lesson sequence.
	ProblemFile = "problem.md"

	// SolutionFile is the final file of the lesson sequence.
	SolutionFile = "solution.md"

	// LabFile describes the lesson's runnable lab environment, if any.
	LabFile = "lab.yml"

	// LabDir holds lab support files, bind-mounted into services that ask for it.
	LabDir = "lab"

	// ComposeFile is the human-facing compose definition kept alongside lab.yml.
	ComposeFile = "docker-compose.yml"

	// MaxSlugLength is the maximum length for a lesson slug (DNS-compatible,
	// slugs become Docker container name components when a lab is started).
	MaxSlugLength = 63

	// MinDifficulty and MaxDifficulty bound the lesson.yml difficulty rating.
	MinDifficulty = 1
	MaxDifficulty = 5
)

var (
	// SlugPattern accepts lowercase alphanumerics with interior hyphens,
	// the same shape DNS labels allow. Slugs end up in container names.
	SlugPattern = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

	// stepPattern matches step file names: step-01.md, step-02.md, ...
	stepPattern = regexp.MustCompile(`^step-(\d{2})\.md$`)
)

// Level identifies which difficulty tier a lesson lives under. Levels are the
// fixed top-level directories of the content tree.
type Level string

const (
	// LevelBasic holds introductory lessons.
	LevelBasic Level = "basic"

	// LevelIntermediate holds lessons that assume the basics.
	LevelIntermediate Level = "intermediate"

	// LevelAdvanced holds deep-dive lessons.
	LevelAdvanced Level = "advanced"

	// LevelRealWorld holds incident-style scenarios drawn from production systems.
	LevelRealWorld Level = "real-world"
)

// Levels returns all levels in their canonical display order.
func Levels() []Level {
	return []Level{LevelBasic, LevelIntermediate, LevelAdvanced, LevelRealWorld}
}

// Validate checks if the Level is a valid enum value.
func (l Level) Validate() error {
	switch l {
	case LevelBasic, LevelIntermediate, LevelAdvanced, LevelRealWorld:
		return nil
	default:
		return fmt.Errorf("unknown level: %q", l)
	}
}

// Order returns the level's position in the canonical order, for sorting.
// Unknown levels sort last.
func (l Level) Order() int {
	for i, known := range Levels() {
		if l == known {
			return i
		}
	}
	return len(Levels())
}

// ParseLevel converts a string into a Level, validating it.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if err := l.Validate(); err != nil {
		return "", err
	}
	return l, nil
}

// Metadata represents the contents of a lesson.yml file.
type Metadata struct {
	Slug       string   `yaml:"slug"`                 // Must match the directory name
	Title      string   `yaml:"title"`                // Human-readable lesson title
	Category   string   `yaml:"category"`             // Topic grouping (e.g. "networking", "debugging")
	Difficulty int      `yaml:"difficulty"`           // 1 (easiest) to 5 (hardest)
	Tags       []string `yaml:"tags,omitempty"`       // Free-form search tags
	Summary    string   `yaml:"summary,omitempty"`    // One-paragraph description
	Deprecated bool     `yaml:"deprecated,omitempty"` // Hidden from default listings when true
}

// Validate checks if the Metadata has valid field values.
func (m *Metadata) Validate() error {
	if err := ValidateSlug(m.Slug); err != nil {
		return fmt.Errorf("invalid slug: %w", err)
	}

	if m.Title == "" {
		return fmt.Errorf("title cannot be empty")
	}

	if m.Category == "" {
		return fmt.Errorf("category cannot be empty")
	}

	if !SlugPattern.MatchString(m.Category) {
		return fmt.Errorf("invalid category '%s': must be lowercase alphanumeric with hyphens", m.Category)
	}

	if m.Difficulty < MinDifficulty || m.Difficulty > MaxDifficulty {
		return fmt.Errorf("invalid difficulty: must be between %d and %d, got %d", MinDifficulty, MaxDifficulty, m.Difficulty)
	}

	for i, tag := range m.Tags {
		if !SlugPattern.MatchString(tag) {
			return fmt.Errorf("invalid tag at index %d: %q must be lowercase alphanumeric with hyphens", i, tag)
		}
	}

	return nil
}

// ValidateSlug checks if a lesson slug is valid according to DNS naming rules.
// Slugs become container name components when a lab is started, so they follow
// the same rules Docker enforces for names.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("lesson slug cannot be empty")
	}

	if len(slug) > MaxSlugLength {
		return fmt.Errorf("lesson slug too long: %d characters (max: %d)", len(slug), MaxSlugLength)
	}

	if !SlugPattern.MatchString(slug) {
		return fmt.Errorf("invalid lesson slug '%s': must be lowercase alphanumeric with hyphens (not at start/end)", slug)
	}

	return nil
}

// StepNumber extracts the step number from a step file name.
// Returns false if the name is not a step file.
func StepNumber(name string) (int, bool) {
	m := stepPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n := 0
	for _, c := range m[1] {
		n = n*10 + int(c-'0')
	}
	return n, true
}

// StepName returns the canonical file name for step n (step-01.md, step-02.md, ...).
func StepName(n int) string {
	return fmt.Sprintf("step-%02d.md", n)
}

// IsSequenceFile reports whether name is part of the lesson reading sequence
// (problem.md, step-NN.md or solution.md).
func IsSequenceFile(name string) bool {
	if name == ProblemFile || name == SolutionFile {
		return true
	}
	_, ok := StepNumber(name)
	return ok
}
