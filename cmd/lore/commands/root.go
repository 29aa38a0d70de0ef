package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/catalog"
	"github.com/dyluth/lore/internal/config"
	"github.com/dyluth/lore/internal/lesson"
	"github.com/dyluth/lore/internal/printer"
)

var (
	version string
	commit  string
	date    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lore",
	Short: "Lore - toolchain for learning-materials repositories",
	Long: `Lore maintains repositories of hands-on lessons: markdown sequences
that walk a learner from a problem statement to a solution, with
optional Docker lab environments to experiment in.

It scaffolds lessons, lints the content tree, runs labs, tracks your
progress, and previews everything in a terminal or browser.`,
	Version: version,
	// A bare "lore --strict" must error rather than appear to work, so the
	// root command shows help and rejects flags meant for subcommands.
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// The printer package already writes rich errors to stderr, so cobra's
	// own error and usage output would duplicate them.
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo records the build-time version details shown by --version.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

// locateConfig finds lore.yml from the current directory upward. Every
// command that operates on a content tree goes through this.
func locateConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.Locate(wd)
	if err != nil {
		return nil, printer.Error(
			"not inside a content repository",
			fmt.Sprintf("No %s found in %s or any parent directory.", config.FileName, wd),
			[]string{
				"Initialize a repository here:\n  lore init",
				"Or change into an existing content repository",
			},
		)
	}
	return cfg, nil
}

// resolveLesson scans the catalog and resolves a lesson query (exact ref,
// slug, or unique prefix) to a single lesson, with remediation on failure.
func resolveLesson(cfg *config.Config, query string) (*lesson.Lesson, error) {
	cat, err := catalog.Scan(cfg)
	if err != nil {
		return nil, err
	}

	l, err := catalog.Resolve(cat, query)
	if err != nil {
		if catalog.IsAmbiguousError(err) {
			ambiguous := err.(*catalog.AmbiguousError)
			fmt.Fprint(os.Stderr, catalog.FormatAmbiguousError(ambiguous))
			return nil, fmt.Errorf("ambiguous lesson '%s'", query)
		}
		if catalog.IsNotFoundError(err) {
			return nil, printer.Error(
				fmt.Sprintf("no lesson matches '%s'", query),
				"The query did not match any lesson slug or level/slug reference.",
				[]string{"List available lessons:\n  lore list"},
			)
		}
		return nil, err
	}
	return l, nil
}
