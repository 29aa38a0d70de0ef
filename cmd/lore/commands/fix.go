package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/catalog"
	"github.com/dyluth/lore/internal/config"
	"github.com/dyluth/lore/internal/git"
	"github.com/dyluth/lore/internal/lesson"
	"github.com/dyluth/lore/internal/mermaid"
	"github.com/dyluth/lore/internal/printer"
)

var (
	fixWrite bool
	fixForce bool
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Apply automated content repairs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var fixMermaidCmd = &cobra.Command{
	Use:   "mermaid [lessons...]",
	Short: "Convert unrenderable mermaid diagrams to markdown tables",
	Long: `Convert mermaid diagrams the published renderer cannot display into
equivalent markdown tables.

Flowcharts, sequence diagrams and pie charts render fine and are left
alone. State diagrams, gantt charts, timelines and ER diagrams become
tables. Anything else is reported so it can be redrawn by hand.

The default is a dry run that reports what would change. Pass --write to
modify the files; with uncommitted changes in the workspace this is
refused unless --force is also given, so a conversion can always be
reviewed as its own diff.`,
	RunE: runFixMermaid,
}

func init() {
	fixMermaidCmd.Flags().BoolVar(&fixWrite, "write", false, "Write converted files in place")
	fixMermaidCmd.Flags().BoolVar(&fixForce, "force", false, "Write even when the workspace has uncommitted changes")
	fixCmd.AddCommand(fixMermaidCmd)
	rootCmd.AddCommand(fixCmd)
}

func runFixMermaid(cmd *cobra.Command, args []string) error {
	cfg, err := locateConfig()
	if err != nil {
		return err
	}

	if fixWrite && !fixForce {
		if err := requireCleanWorkspace(cfg.Root); err != nil {
			return err
		}
	}

	lessons, err := targetLessons(cfg, args)
	if err != nil {
		return err
	}

	var converted, skipped, filesChanged int
	for _, l := range lessons {
		for _, name := range l.Markdown {
			data, err := os.ReadFile(l.Path(name))
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", l.Path(name), err)
			}

			result := mermaid.Process(data)
			rel := l.Ref() + "/" + name
			for _, rep := range result.Reports {
				switch rep.Action {
				case mermaid.ActionConverted:
					printer.Step("%s:%d converting %s diagram to a table\n", rel, rep.Line, rep.Kind)
				case mermaid.ActionSkipped:
					printer.Warning("%s:%d %s diagram left in place: %s\n", rel, rep.Line, rep.Kind, rep.Reason)
				}
			}
			converted += result.Converted()
			skipped += result.Skipped()

			if result.Changed {
				filesChanged++
				if fixWrite {
					if err := os.WriteFile(l.Path(name), result.Output, 0o644); err != nil {
						return fmt.Errorf("failed to write %s: %w", l.Path(name), err)
					}
				}
			}
		}
	}

	switch {
	case converted == 0 && skipped == 0:
		printer.Success("No diagrams need fixing\n")
	case fixWrite:
		printer.Success("Converted %d diagram(s) in %d file(s)\n", converted, filesChanged)
		if skipped > 0 {
			printer.Printf("%d diagram(s) need manual attention\n", skipped)
		}
	default:
		printer.Printf("\nDry run: %d diagram(s) in %d file(s) would be converted", converted, filesChanged)
		if skipped > 0 {
			printer.Printf(", %d need manual attention", skipped)
		}
		printer.Printf("\nRe-run with --write to apply\n")
	}

	return nil
}

// requireCleanWorkspace refuses to proceed when the content tree is inside a
// dirty git repository. Outside version control there is nothing to check.
func requireCleanWorkspace(dir string) error {
	checker := git.NewChecker(dir)

	isRepo, err := checker.IsGitRepository()
	if err != nil || !isRepo {
		return nil
	}

	clean, err := checker.IsWorkspaceClean()
	if err != nil {
		return fmt.Errorf("failed to check workspace state: %w", err)
	}
	if clean {
		return nil
	}

	dirty, _ := checker.GetDirtyFiles()
	return printer.ErrorWithContext(
		"workspace has uncommitted changes",
		"Converting diagrams would mix generated edits with your own.",
		map[string]string{"dirty": dirty},
		[]string{
			"Commit or stash your changes first",
			"Or pass --force to write anyway",
		},
	)
}

// targetLessons returns every lesson, or just the ones named.
func targetLessons(cfg *config.Config, queries []string) ([]*lesson.Lesson, error) {
	if len(queries) == 0 {
		cat, err := catalog.Scan(cfg)
		if err != nil {
			return nil, err
		}
		return cat.Lessons, nil
	}

	lessons := make([]*lesson.Lesson, 0, len(queries))
	for _, q := range queries {
		l, err := resolveLesson(cfg, q)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, nil
}
