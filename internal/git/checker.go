// Package git shells out to the git CLI for the small number of repository
// checks lore needs: detecting whether a content tree is versioned, and
// refusing to rewrite files on top of uncommitted changes.
package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// Checker provides Git repository validation for a content tree
type Checker struct {
	// Dir is the directory the git commands run in (the content root).
	Dir string
}

// NewChecker creates a Git checker scoped to dir
func NewChecker(dir string) *Checker {
	return &Checker{Dir: dir}
}

func (c *Checker) command(args ...string) *exec.Cmd {
	cmd := exec.Command("git", args...)
	cmd.Dir = c.Dir
	return cmd
}

// IsGitRepository checks if the content root is within a Git repository
func (c *Checker) IsGitRepository() (bool, error) {
	err := c.command("rev-parse", "--git-dir").Run()
	if err != nil {
		// exec.Error means git itself is missing, not that we are outside a repo.
		if _, ok := err.(*exec.Error); ok {
			return false, fmt.Errorf("git not found in PATH\nInstall Git: https://git-scm.com/downloads")
		}
		return false, nil
	}
	return true, nil
}

// GetGitRoot resolves the top-level directory of the repository containing Dir.
func (c *Checker) GetGitRoot() (string, error) {
	out, err := c.command("rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get Git root: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// IsWorkspaceClean reports whether the working tree has nothing to commit.
// Staged, unstaged and untracked files all count as dirty.
func (c *Checker) IsWorkspaceClean() (bool, error) {
	out, err := c.command("status", "--porcelain").Output()
	if err != nil {
		return false, fmt.Errorf("failed to check Git status: %w", err)
	}
	return strings.TrimSpace(string(out)) == "", nil
}

// GetDirtyFiles renders `git status --porcelain` as a short human-readable
// summary, grouping tracked modifications apart from untracked files. A clean
// tree yields the empty string.
func (c *Checker) GetDirtyFiles() (string, error) {
	out, err := c.command("status", "--porcelain").Output()
	if err != nil {
		return "", fmt.Errorf("failed to check Git status: %w", err)
	}

	var changed, stray []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if len(line) < 3 {
			continue
		}
		name := strings.TrimSpace(line[2:])
		if strings.HasPrefix(line, "??") {
			stray = append(stray, name)
		} else {
			changed = append(changed, name)
		}
	}
	if len(changed) == 0 && len(stray) == 0 {
		return "", nil
	}

	var b strings.Builder
	if len(changed) > 0 {
		b.WriteString("Uncommitted changes:")
		for _, name := range changed {
			b.WriteString("\n M " + name)
		}
	}
	if len(stray) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Untracked files:")
		for _, name := range stray {
			b.WriteString("\n?? " + name)
		}
	}
	return b.String(), nil
}
