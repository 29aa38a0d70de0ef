package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/catalog"
)

var infoCmd = &cobra.Command{
	Use:   "info <lesson>",
	Short: "Print a lesson's full record as JSON",
	Long: `Print the complete record of a single lesson as pretty-printed JSON,
including its metadata and file sequence. Use this for scripting or to
inspect a lesson without opening its files.

Examples:
  lore info widget-sorting
  lore info advanced/cache-stampede | jq .files
  lore info widget-sorting | jq -r .category`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := locateConfig()
	if err != nil {
		return err
	}

	l, err := resolveLesson(cfg, args[0])
	if err != nil {
		return err
	}

	return catalog.FormatSingleJSON(os.Stdout, l)
}
