package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/git"
	"github.com/dyluth/lore/internal/printer"
	"github.com/dyluth/lore/internal/scaffold"
)

var (
	forceInit bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new content repository",
	Long: `Initialize a content repository in the current directory.

Creates:
  • lore.yml - repository configuration file
  • basic/, intermediate/, advanced/, real-world/ - level directories

Lessons live one directory deep under a level, e.g. basic/widget-sorting/.

Use --force to rewrite lore.yml in an already-initialized repository
(existing lessons are left untouched).`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Rewrite existing lore.yml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	// Content repositories are normally version controlled; warn but proceed
	// when they are not.
	if isRepo, err := git.NewChecker(dir).IsGitRepository(); err == nil && !isRepo {
		printer.Warning("not a git repository; consider 'git init' so lesson history is tracked\n")
	}

	// Refuse to clobber an existing repository unless --force is given.
	if !forceInit {
		if err := scaffold.CheckExisting(dir); err != nil {
			return err
		}
	}

	// Initialize the repository
	if err := scaffold.InitRepo(dir, forceInit); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	printer.Success("Content repository initialized\n")
	printer.Printf("\nNext steps:\n")
	printer.Printf("  1. Create your first lesson:  lore new basic/my-first-lesson\n")
	printer.Printf("  2. Check the tree:            lore lint\n")
	printer.Printf("  3. Preview in the browser:    lore serve\n")

	return nil
}
