package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/lesson"
	"github.com/dyluth/lore/internal/printer"
	"github.com/dyluth/lore/internal/scaffold"
)

var (
	newTitle      string
	newCategory   string
	newDifficulty int
	newSteps      int
	newWithLab    bool
)

var newCmd = &cobra.Command{
	Use:   "new <level>/<slug>",
	Short: "Scaffold a new lesson",
	Long: `Scaffold a lesson directory with pre-wired sequence files.

The argument is the lesson reference: a level (basic, intermediate,
advanced or real-world) and a slug, e.g.:

  lore new basic/widget-sorting
  lore new intermediate/redis-eviction --steps 3 --lab

Generated files link to each other (problem → step-01 → ... → solution)
so a fresh lesson passes 'lore lint' immediately.`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func init() {
	newCmd.Flags().StringVar(&newTitle, "title", "", "Lesson title (defaults to the slug, title-cased)")
	newCmd.Flags().StringVar(&newCategory, "category", "", "Lesson category (default \"general\")")
	newCmd.Flags().IntVar(&newDifficulty, "difficulty", 0, "Difficulty 1-5 (default 1)")
	newCmd.Flags().IntVar(&newSteps, "steps", 1, "Number of guided step files")
	newCmd.Flags().BoolVar(&newWithLab, "lab", false, "Include a lab environment (lab.yml + lab/)")
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	cfg, err := locateConfig()
	if err != nil {
		return err
	}

	levelName, slug, found := strings.Cut(args[0], "/")
	if !found {
		return printer.Error(
			fmt.Sprintf("invalid lesson reference '%s'", args[0]),
			"A lesson reference is <level>/<slug>.",
			[]string{"Example:\n  lore new basic/widget-sorting"},
		)
	}

	level, err := lesson.ParseLevel(levelName)
	if err != nil {
		return err
	}

	dir, err := scaffold.CreateLesson(cfg.Root, scaffold.LessonParams{
		Level:      level,
		Slug:       slug,
		Title:      newTitle,
		Category:   newCategory,
		Difficulty: newDifficulty,
		Steps:      newSteps,
		WithLab:    newWithLab,
	})
	if err != nil {
		return err
	}

	printer.Success("Created lesson %s/%s\n", level, slug)
	printer.Printf("\n  %s\n", dir)
	printer.Printf("\nNext steps:\n")
	printer.Printf("  1. Describe the problem:   %s/problem.md\n", dir)
	printer.Printf("  2. Check the sequence:     lore lint %s\n", slug)
	printer.Printf("  3. Read it back:           lore view %s\n", slug)

	return nil
}
