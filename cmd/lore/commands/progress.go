package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/journal"
	"github.com/dyluth/lore/internal/lesson"
	"github.com/dyluth/lore/internal/printer"
)

var (
	startReset bool
	doneStep   string
)

var startCmd = &cobra.Command{
	Use:   "start <lesson>",
	Short: "Start (or resume) working through a lesson",
	Long: `Start a session for the lesson in your progress journal.

Starting an unfinished lesson resumes it; progress is kept. Starting a
completed lesson begins a fresh run. Use --reset to discard recorded
progress and start over.`,
	Args: cobra.ExactArgs(1),
	RunE: runStart,
}

var doneCmd = &cobra.Command{
	Use:   "done <lesson>",
	Short: "Mark the current sequence file as done",
	Long: `Record progress through the lesson's reading sequence.

Without --step, the first file you have not finished is marked done.
When the last file is marked, the session completes.

Examples:
  lore done widget-sorting
  lore done widget-sorting --step step-02.md`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

func init() {
	startCmd.Flags().BoolVar(&startReset, "reset", false, "Discard recorded progress first")
	doneCmd.Flags().StringVar(&doneStep, "step", "", "Sequence file to mark done (default: first unfinished)")
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(doneCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := locateConfig()
	if err != nil {
		return err
	}

	l, err := resolveLesson(cfg, args[0])
	if err != nil {
		return err
	}

	j, err := journal.Open()
	if err != nil {
		return err
	}
	defer j.Close()

	if startReset {
		if err := j.Reset(l.Ref()); err != nil {
			return err
		}
	}

	s, resumed, err := j.Start(l.Ref())
	if err != nil {
		return err
	}

	if resumed {
		printer.Printf("Resuming %s (%d/%d done)\n", l.Ref(), len(s.StepsDone), len(l.Sequence()))
	} else {
		printer.Success("Started %s\n", l.Ref())
	}
	printer.Printf("\nPick up where you left off:\n  lore view %s --next\n", l.Slug)
	return nil
}

func runDone(cmd *cobra.Command, args []string) error {
	cfg, err := locateConfig()
	if err != nil {
		return err
	}

	l, err := resolveLesson(cfg, args[0])
	if err != nil {
		return err
	}

	j, err := journal.Open()
	if err != nil {
		return err
	}
	defer j.Close()

	file, err := fileToMark(j, l)
	if err != nil {
		return err
	}

	s, err := j.MarkStep(l.Ref(), file)
	if err != nil {
		if errors.Is(err, journal.ErrNoSession) {
			return printer.Error(
				fmt.Sprintf("no active session for %s", l.Ref()),
				"Progress is recorded against a started lesson.",
				[]string{fmt.Sprintf("Start the lesson first:\n  lore start %s", l.Slug)},
			)
		}
		return err
	}

	seq := l.Sequence()
	done := 0
	for _, f := range seq {
		if s.Done(f) {
			done++
		}
	}

	if done >= len(seq) {
		if _, err := j.Complete(l.Ref()); err != nil {
			return err
		}
		printer.Success("%s complete\n", l.Ref())
		printer.Printf("\nFind your next lesson:\n  lore list\n")
		return nil
	}

	printer.Success("Marked %s done (%d/%d)\n", file, done, len(seq))
	printer.Printf("\nKeep going:\n  lore view %s --next\n", l.Slug)
	return nil
}

// fileToMark picks the sequence file to record: the --step flag when given,
// otherwise the first file the active session has not seen done.
func fileToMark(j *journal.Journal, l *lesson.Lesson) (string, error) {
	seq := l.Sequence()

	if doneStep != "" {
		file := doneStep
		if !strings.HasSuffix(file, ".md") {
			file += ".md"
		}
		for _, f := range seq {
			if f == file {
				return file, nil
			}
		}
		return "", printer.Error(
			fmt.Sprintf("%s is not part of %s", file, l.Ref()),
			fmt.Sprintf("The lesson's sequence is: %s", strings.Join(seq, ", ")),
			nil,
		)
	}

	s, found, err := j.Get(l.Ref())
	if err != nil {
		return "", err
	}
	if found && !s.Completed() {
		for _, f := range seq {
			if !s.Done(f) {
				return f, nil
			}
		}
	}
	if len(seq) == 0 {
		return "", fmt.Errorf("lesson %s has no sequence files", l.Ref())
	}
	return seq[0], nil
}
