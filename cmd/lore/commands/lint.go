package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/config"
	"github.com/dyluth/lore/internal/lint"
	"github.com/dyluth/lore/internal/printer"
)

var (
	lintFormat string
	lintStrict bool
	lintWatch  bool
)

var lintCmd = &cobra.Command{
	Use:   "lint [lessons...]",
	Short: "Check the content tree for structural problems",
	Long: `Check every lesson for structural problems: missing sequence files,
broken or missing links, step numbering gaps, invalid metadata, diagrams
the renderer cannot display, and invalid lab manifests.

Name lessons to restrict the check, e.g. 'lore lint widget-sorting'.

Exits non-zero when any error-severity finding exists. Warnings do not
fail the run unless --strict (or lint.strict in lore.yml) is set.

Use --watch to re-lint whenever content files change.`,
	RunE: runLint,
}

func init() {
	lintCmd.Flags().StringVar(&lintFormat, "format", "table", "Output format: table or json")
	lintCmd.Flags().BoolVar(&lintStrict, "strict", false, "Treat warnings as errors")
	lintCmd.Flags().BoolVar(&lintWatch, "watch", false, "Re-lint on content changes until interrupted")
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	cfg, err := locateConfig()
	if err != nil {
		return err
	}

	if lintFormat != "table" && lintFormat != "json" {
		return fmt.Errorf("unknown format '%s' (expected: table or json)", lintFormat)
	}

	strict := lintStrict || cfg.Lint.Strict

	refs, err := resolveRefs(cfg, args)
	if err != nil {
		return err
	}

	runOnce := func() (*lint.Report, error) {
		report, err := lint.New(cfg).Run()
		if err != nil {
			return nil, err
		}
		if len(refs) > 0 {
			report = filterReport(report, refs)
		}
		return report, nil
	}

	if lintWatch {
		return watchLint(cfg, runOnce, strict)
	}

	report, err := runOnce()
	if err != nil {
		return err
	}
	if err := printReport(report, strict); err != nil {
		return err
	}
	if report.Failed(strict) {
		return fmt.Errorf("lint failed: %d error(s), %d warning(s)", report.Errors(), report.Warnings())
	}
	return nil
}

// watchLint re-lints on every content change until interrupted. Failures do
// not abort the watch; the next save gets another chance.
func watchLint(cfg *config.Config, runOnce func() (*lint.Report, error), strict bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relint := func() {
		report, err := runOnce()
		if err != nil {
			printer.Warning("lint run failed: %v\n", err)
			return
		}
		if err := printReport(report, strict); err != nil {
			printer.Warning("failed to print report: %v\n", err)
		}
	}

	watcher, err := lint.NewWatcher(cfg, relint)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Stop()

	relint()
	printer.Printf("\nWatching for changes (Ctrl-C to stop)...\n")

	<-ctx.Done()
	return nil
}

func printReport(report *lint.Report, strict bool) error {
	if lintFormat == "json" {
		out := struct {
			Findings []lint.Finding `json:"findings"`
			Lessons  int            `json:"lessons"`
			Errors   int            `json:"errors"`
			Warnings int            `json:"warnings"`
			Failed   bool           `json:"failed"`
		}{
			Findings: report.Findings,
			Lessons:  report.Lessons,
			Errors:   report.Errors(),
			Warnings: report.Warnings(),
			Failed:   report.Failed(strict),
		}
		if out.Findings == nil {
			out.Findings = []lint.Finding{}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, f := range report.Findings {
		printer.Finding(f.Path, f.Line, string(f.Severity), f.Rule, f.Message)
	}

	if len(report.Findings) == 0 {
		printer.Success("%d lesson(s) checked, no problems found\n", report.Lessons)
	} else {
		printer.Printf("\n%d lesson(s) checked: %d error(s), %d warning(s)\n",
			report.Lessons, report.Errors(), report.Warnings())
	}
	return nil
}

// resolveRefs resolves each query to a full level/slug reference.
func resolveRefs(cfg *config.Config, queries []string) ([]string, error) {
	if len(queries) == 0 {
		return nil, nil
	}
	refs := make([]string, 0, len(queries))
	for _, q := range queries {
		l, err := resolveLesson(cfg, q)
		if err != nil {
			return nil, err
		}
		refs = append(refs, l.Ref())
	}
	return refs, nil
}

// filterReport keeps findings belonging to the named lessons. Findings carry
// root-relative paths, so a lesson owns its own directory path and anything
// beneath it.
func filterReport(report *lint.Report, refs []string) *lint.Report {
	out := &lint.Report{Lessons: len(refs)}
	for _, f := range report.Findings {
		for _, ref := range refs {
			if f.Path == ref || strings.HasPrefix(f.Path, ref+"/") {
				out.Findings = append(out.Findings, f)
				break
			}
		}
	}
	return out
}
