// Package catalog discovers and queries the lessons in a content tree.
// It is the read path behind `lore list`, slug resolution for view/lab
// commands, and the serve API.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dyluth/lore/internal/config"
	"github.com/dyluth/lore/internal/lesson"
)

// Catalog holds every lesson discovered under a content root, sorted by
// level order and then slug.
type Catalog struct {
	Root    string
	Lessons []*lesson.Lesson
}

// Scan walks the configured level directories and loads every lesson found.
// A directory that fails to load (missing or invalid lesson.yml) is skipped
// with a warning to stderr; scan keeps going so one broken lesson cannot hide
// the rest of the catalog. Strict per-lesson validation belongs to lint.
func Scan(cfg *config.Config) (*Catalog, error) {
	cat := &Catalog{Root: cfg.Root}

	for _, level := range cfg.LevelDirs() {
		levelDir := filepath.Join(cfg.Root, string(level))
		entries, err := os.ReadDir(levelDir)
		if err != nil {
			if os.IsNotExist(err) {
				// Level directories are created on demand
				continue
			}
			return nil, fmt.Errorf("failed to read level directory %s: %w", levelDir, err)
		}

		for _, entry := range entries {
			if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}

			l, err := lesson.Load(cfg.Root, level, entry.Name())
			if err != nil {
				fmt.Fprintf(os.Stderr, "⚠️  Skipping %s/%s: %v\n", level, entry.Name(), err)
				continue
			}
			cat.Lessons = append(cat.Lessons, l)
		}
	}

	sort.Slice(cat.Lessons, func(i, j int) bool {
		a, b := cat.Lessons[i], cat.Lessons[j]
		if a.Level != b.Level {
			return a.Level.Order() < b.Level.Order()
		}
		return a.Slug < b.Slug
	})

	return cat, nil
}

// ByRef returns the lesson with the exact "level/slug" reference.
func (c *Catalog) ByRef(ref string) (*lesson.Lesson, bool) {
	for _, l := range c.Lessons {
		if l.Ref() == ref {
			return l, true
		}
	}
	return nil, false
}

// Categories returns the distinct categories in the catalog, sorted.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	for _, l := range c.Lessons {
		seen[l.Meta.Category] = true
	}
	cats := make([]string, 0, len(seen))
	for cat := range seen {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return cats
}
