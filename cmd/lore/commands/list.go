package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/catalog"
	"github.com/dyluth/lore/internal/journal"
	"github.com/dyluth/lore/internal/lesson"
	"github.com/dyluth/lore/internal/printer"
	"github.com/dyluth/lore/internal/timespec"
)

var (
	listLevel         string
	listCategory      string
	listTag           string
	listMaxDifficulty int
	listMinDifficulty int
	listSlugGlob      string
	listUpdatedSince  string
	listUpdatedUntil  string
	listWithLab       bool
	listDeprecated    bool
	listJSON          bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List lessons in the content repository",
	Long: `List lessons, with optional filtering.

For each lesson, displays:
  • Reference (level/slug) and title
  • Category and difficulty
  • Whether it ships a lab
  • Your progress (new / in-progress 2/5 / done)
  • When its files last changed

Filters are ANDed together. --updated-since and --updated-until accept a
relative duration ("36h", "30m") or an absolute RFC3339 timestamp.

Use --json for machine-readable JSONL output (one lesson per line).`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listLevel, "level", "", "Only lessons at this level")
	listCmd.Flags().StringVar(&listCategory, "category", "", "Only lessons in this category")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Only lessons carrying this tag")
	listCmd.Flags().IntVar(&listMaxDifficulty, "max-difficulty", 0, "Only lessons at or below this difficulty")
	listCmd.Flags().IntVar(&listMinDifficulty, "min-difficulty", 0, "Only lessons at or above this difficulty")
	listCmd.Flags().StringVar(&listSlugGlob, "slug", "", "Only lessons whose slug matches this glob")
	listCmd.Flags().StringVar(&listUpdatedSince, "updated-since", "", "Only lessons updated since (duration or RFC3339)")
	listCmd.Flags().StringVar(&listUpdatedUntil, "updated-until", "", "Only lessons updated until (duration or RFC3339)")
	listCmd.Flags().BoolVar(&listWithLab, "lab", false, "Only lessons that ship a lab")
	listCmd.Flags().BoolVar(&listDeprecated, "deprecated", false, "Include deprecated lessons")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSONL format")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := locateConfig()
	if err != nil {
		return err
	}

	criteria := catalog.FilterCriteria{
		Category:          listCategory,
		Tag:               listTag,
		MaxDifficulty:     listMaxDifficulty,
		MinDifficulty:     listMinDifficulty,
		SlugGlob:          listSlugGlob,
		WithLab:           listWithLab,
		IncludeDeprecated: listDeprecated,
	}

	if listLevel != "" {
		level, err := lesson.ParseLevel(listLevel)
		if err != nil {
			return err
		}
		criteria.Level = level
	}

	since, until, err := timespec.ParseRange(listUpdatedSince, listUpdatedUntil)
	if err != nil {
		return err
	}
	criteria.UpdatedSince = since
	criteria.UpdatedUntil = until

	cat, err := catalog.Scan(cfg)
	if err != nil {
		return err
	}
	lessons := criteria.Apply(cat.Lessons)

	if listJSON {
		return catalog.FormatJSONL(os.Stdout, lessons)
	}

	if catalog.FormatTable(os.Stdout, lessons, progressStatuses(lessons)) == 0 {
		printer.Printf("\nCreate a lesson with 'lore new <level>/<slug>'\n")
	}
	return nil
}

// progressStatuses maps lesson refs to a STATUS cell derived from the
// journal. The journal is optional context here: if it cannot be read,
// listing proceeds without progress data.
func progressStatuses(lessons []*lesson.Lesson) map[string]string {
	j, err := journal.Open()
	if err != nil {
		return nil
	}
	defer j.Close()

	sessions, err := j.All()
	if err != nil {
		return nil
	}

	seqLen := make(map[string]int, len(lessons))
	for _, l := range lessons {
		seqLen[l.Ref()] = len(l.Sequence())
	}

	progress := make(map[string]string, len(sessions))
	for _, s := range sessions {
		switch {
		case s.Completed():
			progress[s.Ref] = "done"
		case seqLen[s.Ref] > 0:
			progress[s.Ref] = fmt.Sprintf("in-progress %d/%d", len(s.StepsDone), seqLen[s.Ref])
		default:
			progress[s.Ref] = "in-progress"
		}
	}
	return progress
}
