package printer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Error and ErrorWithContext print their rich output to stderr; the returned
// error carries only the title, which is what cobra reports as the exit cause.

func TestError(t *testing.T) {
	t.Run("returns error with title", func(t *testing.T) {
		err := Error("lesson not found", "No lesson matches the query.", []string{})
		require.Error(t, err)
		require.Equal(t, "lesson not found", err.Error())
	})

	t.Run("returns error with title when including suggestions", func(t *testing.T) {
		err := Error("lesson not found", "No lesson matches the query.", []string{"List lessons:\n  lore list"})
		require.Error(t, err)
		require.Equal(t, "lesson not found", err.Error())
	})

	t.Run("returns error with title for multiple suggestions", func(t *testing.T) {
		err := Error("lesson not found", "No lesson matches the query.", []string{
			"List lessons:\n  lore list",
			"Create one:\n  lore new basic/my-lesson",
		})
		require.Error(t, err)
		require.Equal(t, "lesson not found", err.Error())
	})
}

func TestErrorWithContext(t *testing.T) {
	t.Run("returns error with title", func(t *testing.T) {
		context := map[string]string{
			"lesson": "basic/widget-sorting",
			"file":   "step-02.md",
		}
		err := ErrorWithContext("broken sequence", "A step links nowhere.", context, []string{})
		require.Error(t, err)
		require.Equal(t, "broken sequence", err.Error())
	})

	t.Run("returns error with title when including suggestions", func(t *testing.T) {
		context := map[string]string{"dirty": "basic/widget-sorting/problem.md"}
		err := ErrorWithContext("workspace has uncommitted changes", "Commit first.", context, []string{"git stash"})
		require.Error(t, err)
		require.Equal(t, "workspace has uncommitted changes", err.Error())
	})
}
