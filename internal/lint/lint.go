package lint

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dyluth/lore/internal/config"
	"github.com/dyluth/lore/internal/lab"
	"github.com/dyluth/lore/internal/lesson"
	"github.com/dyluth/lore/internal/mermaid"
)

// Runner walks a content tree and collects findings.
type Runner struct {
	cfg *config.Config
}

// New creates a lint runner for the given configuration.
func New(cfg *config.Config) *Runner {
	return &Runner{cfg: cfg}
}

// Run lints every lesson under the configured level directories.
func (r *Runner) Run() (*Report, error) {
	report := &Report{}

	for _, level := range r.cfg.LevelDirs() {
		levelDir := filepath.Join(r.cfg.Root, string(level))
		entries, err := os.ReadDir(levelDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read level directory %s: %w", levelDir, err)
		}

		for _, entry := range entries {
			if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			if r.ignored(path.Join(string(level), entry.Name())) {
				continue
			}
			report.Lessons++
			r.lintLesson(report, level, entry.Name())
		}
	}

	report.Sort()
	return report, nil
}

// lintLesson applies every rule to a single lesson directory.
func (r *Runner) lintLesson(report *Report, level lesson.Level, slug string) {
	rel := path.Join(string(level), slug)
	dir := filepath.Join(r.cfg.Root, string(level), slug)

	if err := lesson.ValidateSlug(slug); err != nil {
		report.errorf(RuleSlugMismatch, rel, 0, "directory name is not a valid slug: %v", err)
	}

	// Metadata
	meta, err := lesson.ReadMetadata(filepath.Join(dir, lesson.MetaFile))
	if err != nil {
		report.errorf(RuleMetadata, path.Join(rel, lesson.MetaFile), 0, "%v", err)
	} else if meta.Slug != slug {
		report.errorf(RuleSlugMismatch, path.Join(rel, lesson.MetaFile), 0,
			"slug %q does not match directory name %q", meta.Slug, slug)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		report.errorf(RuleMetadata, rel, 0, "failed to read lesson directory: %v", err)
		return
	}

	var stepNums []int
	present := make(map[string]bool)
	var mdFiles []string
	hasLab := false
	hasLabDir := false

	for _, entry := range entries {
		if entry.IsDir() {
			if entry.Name() == lesson.LabDir {
				hasLabDir = true
			}
			continue
		}
		name := entry.Name()
		switch {
		case name == lesson.LabFile:
			hasLab = true
		case strings.HasSuffix(name, ".md"):
			mdFiles = append(mdFiles, name)
			present[name] = true
			if n, ok := lesson.StepNumber(name); ok {
				stepNums = append(stepNums, n)
			} else if strings.HasPrefix(strings.ToLower(name), "step") {
				report.errorf(RuleStepName, path.Join(rel, name), 0,
					"step files must be named step-NN.md (two digits, e.g. %s)", lesson.StepName(1))
			}
		}
	}
	sort.Strings(mdFiles)
	sort.Ints(stepNums)

	if !present[lesson.ProblemFile] {
		report.errorf(RuleMissingProblem, rel, 0, "lesson has no %s", lesson.ProblemFile)
	}
	if !present[lesson.SolutionFile] {
		report.warnf(RuleMissingSolution, rel, 0, "lesson has no %s", lesson.SolutionFile)
	}

	// Steps must be contiguous starting at 1
	for i, n := range stepNums {
		if n != i+1 {
			report.errorf(RuleStepGap, rel, 0,
				"steps are not contiguous: expected %s but found %s", lesson.StepName(i+1), lesson.StepName(n))
			break
		}
	}

	// Reading order actually present in the directory
	var seq []string
	if present[lesson.ProblemFile] {
		seq = append(seq, lesson.ProblemFile)
	}
	for _, n := range stepNums {
		seq = append(seq, lesson.StepName(n))
	}
	if present[lesson.SolutionFile] {
		seq = append(seq, lesson.SolutionFile)
	}
	successor := make(map[string]string)
	for i := 0; i+1 < len(seq); i++ {
		successor[seq[i]] = seq[i+1]
	}

	for _, name := range mdFiles {
		relFile := path.Join(rel, name)
		if r.ignored(relFile) {
			continue
		}
		r.lintMarkdown(report, dir, relFile, name, successor[name])
	}

	if hasLab {
		if _, err := lab.ReadManifest(filepath.Join(dir, lesson.LabFile)); err != nil {
			report.errorf(RuleLabManifest, path.Join(rel, lesson.LabFile), 0, "%v", err)
		}
	} else if hasLabDir {
		report.warnf(RuleLabManifest, path.Join(rel, lesson.LabDir), 0,
			"lab/ directory without a lab.yml manifest; nothing mounts it")
	}
}

// lintMarkdown checks one markdown file: emptiness, link integrity,
// sequence links and diagram support.
func (r *Runner) lintMarkdown(report *Report, dir, relFile, name, next string) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		report.errorf(RuleBrokenLink, relFile, 0, "failed to read file: %v", err)
		return
	}

	if len(bytes.TrimSpace(data)) == 0 {
		report.warnf(RuleEmptyFile, relFile, 0, "file is empty")
		return
	}

	linksToNext := false
	for _, link := range ExtractLinks(data) {
		if IsExternal(link.Dest) {
			continue
		}
		target := TargetPath(link.Dest)
		if target == "" {
			continue
		}

		if strings.HasPrefix(target, "/") {
			report.errorf(RuleBrokenLink, relFile, link.Line,
				"links to absolute path %s; use a relative path", target)
			continue
		}

		if path.Clean(target) == next {
			linksToNext = true
		}

		resolved := filepath.Join(dir, filepath.FromSlash(target))
		if _, err := os.Stat(resolved); err != nil {
			report.errorf(RuleBrokenLink, relFile, link.Line,
				"links to %s which does not exist", target)
		}
	}

	if next != "" && !linksToNext {
		report.errorf(RuleSequenceLink, relFile, 0,
			"does not link to the next file in the sequence (%s)", next)
	}

	for _, fence := range mermaid.Scan(data) {
		switch {
		case !fence.Closed:
			report.errorf(RuleUnsupportedDiagram, relFile, fence.Start, "mermaid fence is not closed")
		case fence.Kind.Supported():
			// fine
		case fence.Kind.Convertible():
			report.warnf(RuleUnsupportedDiagram, relFile, fence.Start,
				"mermaid %s diagram is not supported by the renderer; run 'lore fix mermaid' to convert it to a table", fence.Kind)
		default:
			report.warnf(RuleUnsupportedDiagram, relFile, fence.Start,
				"mermaid %s diagram is not supported by the renderer and has no automatic conversion", fence.Kind)
		}
	}
}

// ignored reports whether a root-relative path matches any lint.ignore glob.
// Patterns match the full relative path, the base name, or any path suffix
// when the pattern starts with "**/".
func (r *Runner) ignored(rel string) bool {
	for _, pattern := range r.cfg.Lint.Ignore {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, path.Base(rel)); ok {
			return true
		}
		if rest, found := strings.CutPrefix(pattern, "**/"); found {
			parts := strings.Split(rel, "/")
			for i := range parts {
				if ok, _ := path.Match(rest, path.Join(parts[i:]...)); ok {
					return true
				}
			}
		}
	}
	return false
}
