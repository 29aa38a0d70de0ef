package catalog

import (
	"path/filepath"
	"time"

	"github.com/dyluth/lore/internal/lesson"
)

// FilterCriteria narrows a catalog for the list command. A lesson must
// satisfy every populated field to be kept.
type FilterCriteria struct {
	Level             lesson.Level // Restrict to one level, empty = no filter
	Category          string       // Exact match on category, empty = no filter
	Tag               string       // Lesson must carry this tag, empty = no filter
	MaxDifficulty     int          // Inclusive upper bound, 0 = no filter
	MinDifficulty     int          // Inclusive lower bound, 0 = no filter
	SlugGlob          string       // Glob pattern for the slug, empty = no filter
	UpdatedSince      time.Time    // Lesson files modified at or after, zero = no filter
	UpdatedUntil      time.Time    // Lesson files modified at or before, zero = no filter
	WithLab           bool         // Only lessons that ship a lab
	IncludeDeprecated bool         // Include lessons marked deprecated in lesson.yml
}

// matchesFilter returns true if the lesson matches all filter criteria.
func (fc *FilterCriteria) matchesFilter(l *lesson.Lesson) bool {
	if l.Meta.Deprecated && !fc.IncludeDeprecated {
		return false
	}

	if fc.Level != "" && l.Level != fc.Level {
		return false
	}

	if fc.Category != "" && l.Meta.Category != fc.Category {
		return false
	}

	if fc.Tag != "" {
		found := false
		for _, tag := range l.Meta.Tags {
			if tag == fc.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if fc.MinDifficulty > 0 && l.Meta.Difficulty < fc.MinDifficulty {
		return false
	}
	if fc.MaxDifficulty > 0 && l.Meta.Difficulty > fc.MaxDifficulty {
		return false
	}

	// Slug filtering - glob pattern matching
	if fc.SlugGlob != "" {
		matched, err := filepath.Match(fc.SlugGlob, l.Slug)
		if err != nil || !matched {
			return false
		}
	}

	// Time filtering over the lesson's most recent file modification
	if !fc.UpdatedSince.IsZero() && l.UpdatedAt.Before(fc.UpdatedSince) {
		return false
	}
	if !fc.UpdatedUntil.IsZero() && l.UpdatedAt.After(fc.UpdatedUntil) {
		return false
	}

	if fc.WithLab && !l.HasLab {
		return false
	}

	return true
}

// Apply returns the lessons matching all criteria, preserving catalog order.
func (fc *FilterCriteria) Apply(lessons []*lesson.Lesson) []*lesson.Lesson {
	var out []*lesson.Lesson
	for _, l := range lessons {
		if fc.matchesFilter(l) {
			out = append(out, l)
		}
	}
	return out
}
