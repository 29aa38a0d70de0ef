// Package testutil builds throwaway content repositories for command tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dyluth/lore/internal/config"
)

// Repo is a temporary content repository rooted in a test temp directory.
type Repo struct {
	Root string
}

// NewRepo creates an isolated content repository with a minimal lore.yml.
// The directory is cleaned up when the test finishes.
func NewRepo(t *testing.T) *Repo {
	t.Helper()
	r := &Repo{Root: t.TempDir()}
	r.WriteFile(t, "lore.yml", "version: \"1\"\n")
	return r
}

// WriteFile writes a file below the repository root, creating parent
// directories as needed. rel uses forward slashes.
func (r *Repo) WriteFile(t *testing.T, rel, content string) {
	t.Helper()
	full := filepath.Join(r.Root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

// ReadFile returns the content of a file below the repository root.
func (r *Repo) ReadFile(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.Root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

// AddLesson creates a complete lesson that passes every lint rule: metadata,
// problem, one step and solution, with the sequence links wired.
func (r *Repo) AddLesson(t *testing.T, level, slug string) {
	t.Helper()
	dir := level + "/" + slug
	r.WriteFile(t, dir+"/lesson.yml",
		"slug: "+slug+"\ntitle: Lesson "+slug+"\ncategory: algorithms\ndifficulty: 2\n")
	r.WriteFile(t, dir+"/problem.md",
		"# "+slug+"\n\nStart with [step one](step-01.md).\n")
	r.WriteFile(t, dir+"/step-01.md",
		"# Step one\n\nFinish with the [solution](solution.md).\n")
	r.WriteFile(t, dir+"/solution.md",
		"# Solution\n\nDone.\n")
}

// AddLab gives an existing lesson a single-service lab manifest.
func (r *Repo) AddLab(t *testing.T, level, slug string) {
	t.Helper()
	r.WriteFile(t, level+"/"+slug+"/lab.yml",
		"version: \"1\"\nservices:\n  redis:\n    image: redis:7-alpine\n    port: 6379\n")
}

// Config loads and validates the repository's lore.yml.
func (r *Repo) Config(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join(r.Root, config.FileName))
	require.NoError(t, err)
	return cfg
}

// Chdir moves the working directory into the repository for the duration of
// the test. Commands locate lore.yml by walking up from the working directory.
func (r *Repo) Chdir(t *testing.T) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(r.Root))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

// InitGit turns the repository into a git repository with everything
// committed, for commands that refuse to rewrite uncommitted work. Skips the
// test when git is not installed.
func (r *Repo) InitGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	r.git(t, "init")
	r.git(t, "config", "user.email", "test@lore.local")
	r.git(t, "config", "user.name", "Lore Test")
	r.Commit(t, "initial content")
}

// Commit stages and commits every pending change.
func (r *Repo) Commit(t *testing.T, msg string) {
	t.Helper()
	r.git(t, "add", ".")
	r.git(t, "commit", "-m", msg, "--allow-empty")
}

func (r *Repo) git(t *testing.T, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Root
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, output)
}
