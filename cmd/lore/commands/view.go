package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/journal"
	"github.com/dyluth/lore/internal/lesson"
	"github.com/dyluth/lore/internal/printer"
	"github.com/dyluth/lore/internal/render"
)

var (
	viewNext  bool
	viewRaw   bool
	viewWidth int
)

var viewCmd = &cobra.Command{
	Use:   "view <lesson> [file]",
	Short: "Render a lesson file in the terminal",
	Long: `Render a lesson's markdown in the terminal.

Without a file argument the problem statement is shown. Name a file
("step-02" or "step-02.md") to read a specific part of the sequence,
or use --next to jump to the first file you have not finished yet.

Examples:
  lore view widget-sorting
  lore view widget-sorting step-02
  lore view widget-sorting --next
  lore view widget-sorting solution --raw | wc -l`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runView,
}

func init() {
	viewCmd.Flags().BoolVar(&viewNext, "next", false, "Show the first unfinished sequence file")
	viewCmd.Flags().BoolVar(&viewRaw, "raw", false, "Print the raw markdown without styling")
	viewCmd.Flags().IntVar(&viewWidth, "width", 0, "Wrap width (0 = default)")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := locateConfig()
	if err != nil {
		return err
	}

	l, err := resolveLesson(cfg, args[0])
	if err != nil {
		return err
	}

	var file string
	switch {
	case len(args) == 2:
		file = args[1]
		if !strings.HasSuffix(file, ".md") {
			file += ".md"
		}
	case viewNext:
		file = nextUnfinished(l)
	default:
		file = lesson.ProblemFile
	}

	data, err := os.ReadFile(l.Path(file))
	if err != nil {
		if os.IsNotExist(err) {
			return printer.Error(
				fmt.Sprintf("%s has no file %s", l.Ref(), file),
				fmt.Sprintf("The lesson's sequence is: %s", strings.Join(l.Sequence(), ", ")),
				nil,
			)
		}
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	if viewRaw {
		_, err := os.Stdout.Write(data)
		return err
	}

	t, err := render.NewTerminal(viewWidth)
	if err != nil {
		return err
	}
	fmt.Print(t.Render(data))
	return nil
}

// nextUnfinished returns the first sequence file the journal has not seen
// done. Without a session this is the problem statement; with everything
// done it is the solution.
func nextUnfinished(l *lesson.Lesson) string {
	j, err := journal.Open()
	if err != nil {
		return lesson.ProblemFile
	}
	defer j.Close()

	s, found, err := j.Get(l.Ref())
	if err != nil || !found {
		return lesson.ProblemFile
	}

	for _, f := range l.Sequence() {
		if !s.Done(f) {
			return f
		}
	}
	return lesson.SolutionFile
}
