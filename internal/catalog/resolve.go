package catalog

import (
	"fmt"
	"strings"

	"github.com/dyluth/lore/internal/lesson"
)

// Resolve turns a user-supplied lesson reference into a unique lesson.
// Returns the lesson if exactly one match is found.
// Returns an error if zero or multiple matches are found.
//
// The query is matched in order of precision:
//  1. Exact "level/slug" reference
//  2. Exact slug (unique across levels)
//  3. Slug prefix
//  4. Slug substring
//
// The first tier that produces at least one match decides the outcome, so a
// lesson whose slug is a prefix of another's can still be addressed exactly.
func Resolve(c *Catalog, query string) (*lesson.Lesson, error) {
	if query == "" {
		return nil, fmt.Errorf("lesson reference cannot be empty")
	}

	// Exact level/slug reference
	if strings.Contains(query, "/") {
		if l, ok := c.ByRef(query); ok {
			return l, nil
		}
		return nil, &NotFoundError{Query: query}
	}

	var exact, prefix, substring []*lesson.Lesson
	for _, l := range c.Lessons {
		switch {
		case l.Slug == query:
			exact = append(exact, l)
		case strings.HasPrefix(l.Slug, query):
			prefix = append(prefix, l)
		case strings.Contains(l.Slug, query):
			substring = append(substring, l)
		}
	}

	for _, matches := range [][]*lesson.Lesson{exact, prefix, substring} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return nil, &AmbiguousError{Query: query, Matches: refs(matches)}
		}
	}

	return nil, &NotFoundError{Query: query}
}

func refs(lessons []*lesson.Lesson) []string {
	out := make([]string, len(lessons))
	for i, l := range lessons {
		out[i] = l.Ref()
	}
	return out
}

// NotFoundError indicates no lesson matched the query.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no lesson found matching '%s'", e.Query)
}

// AmbiguousError indicates multiple lessons matched the query.
type AmbiguousError struct {
	Query   string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous lesson reference '%s' matches %d lessons", e.Query, len(e.Matches))
}

// FormatAmbiguousError creates a user-friendly error message for ambiguous references.
// Lists all matching lessons (up to 10, then "...and N more").
func FormatAmbiguousError(err *AmbiguousError) string {
	msg := fmt.Sprintf("Error: ambiguous lesson reference '%s' matches %d lessons:\n", err.Query, len(err.Matches))

	// List up to 10 matches
	displayCount := len(err.Matches)
	if displayCount > 10 {
		displayCount = 10
	}

	for i := 0; i < displayCount; i++ {
		msg += fmt.Sprintf("  %s\n", err.Matches[i])
	}

	if len(err.Matches) > 10 {
		msg += fmt.Sprintf("  ...and %d more\n", len(err.Matches)-10)
	}

	msg += "\nUse the full level/slug reference to uniquely identify the lesson."
	return msg
}

// IsNotFoundError reports whether err is a NotFoundError.
func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// IsAmbiguousError reports whether err is an AmbiguousError.
func IsAmbiguousError(err error) bool {
	_, ok := err.(*AmbiguousError)
	return ok
}
