package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/docker/docker/client"
	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/config"
	dockerpkg "github.com/dyluth/lore/internal/docker"
	"github.com/dyluth/lore/internal/lab"
	"github.com/dyluth/lore/internal/lesson"
	"github.com/dyluth/lore/internal/printer"
)

var (
	labWaitTimeout time.Duration
	labDownAll     bool
	labListJSON    bool
)

var labCmd = &cobra.Command{
	Use:   "lab",
	Short: "Manage lesson lab environments",
	Long: `Manage the Docker environments lessons ship for hands-on work.

A lab is described by the lesson's lab.yml: one or more services
(redis, postgres, an HTTP app) that are started on a shared network,
published on localhost ports, and probed until ready.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var labUpCmd = &cobra.Command{
	Use:   "up <lesson>",
	Short: "Start a lesson's lab environment",
	Long: `Start the lesson's lab: create the shared network, start each service
container, publish ports on localhost and wait for readiness probes.

If any service fails to become ready, everything created is rolled back.

Interactive services (the lab's experiment clients) are not started here;
run them with 'lore lab run <lesson> <service>'.`,
	Args: cobra.ExactArgs(1),
	RunE: runLabUp,
}

var labDownCmd = &cobra.Command{
	Use:   "down [lesson]",
	Short: "Stop a lab environment",
	Long: `Stop and remove a lab's containers.

With no argument, the lab is inferred when exactly one is running.
Use --all to remove every lab and the shared network.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLabDown,
}

var labStatusCmd = &cobra.Command{
	Use:   "status [lesson]",
	Short: "Show live lab state",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLabStatus,
}

var labListCmd = &cobra.Command{
	Use:   "list",
	Short: "List running labs",
	RunE:  runLabList,
}

var labRunCmd = &cobra.Command{
	Use:   "run <lesson> <service> [command...]",
	Short: "Run a lab service interactively",
	Long: `Run a service of the lesson's lab with your terminal attached.

Interactive services (interactive: true in lab.yml) start in a fresh
container on the lab's network and are removed when they exit. For
long-running services the command is executed inside the running
container instead, so a command is required:

  lore lab run redis-eviction client
  lore lab run redis-eviction redis redis-cli INFO memory`,
	Args: cobra.MinimumNArgs(2),
	RunE: runLabRun,
}

func init() {
	labUpCmd.Flags().DurationVar(&labWaitTimeout, "wait-timeout", lab.ReadyTimeout, "How long to wait for each readiness probe")
	labDownCmd.Flags().BoolVar(&labDownAll, "all", false, "Remove every lab and the shared network")
	labListCmd.Flags().BoolVar(&labListJSON, "json", false, "Output in JSON format")

	labCmd.AddCommand(labUpCmd)
	labCmd.AddCommand(labDownCmd)
	labCmd.AddCommand(labStatusCmd)
	labCmd.AddCommand(labListCmd)
	labCmd.AddCommand(labRunCmd)
	rootCmd.AddCommand(labCmd)
}

func runLabUp(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := locateConfig()
	if err != nil {
		return err
	}

	l, err := resolveLesson(cfg, args[0])
	if err != nil {
		return err
	}
	if !l.HasLab {
		return printer.Error(
			fmt.Sprintf("lesson %s has no lab", l.Ref()),
			fmt.Sprintf("No %s found in the lesson directory.", lesson.LabFile),
			[]string{"List lessons that ship a lab:\n  lore list --lab"},
		)
	}

	cli, err := dockerpkg.NewClient(ctx)
	if err != nil {
		return err
	}
	defer cli.Close()

	manager := lab.NewManager(cli, cfg)
	manager.WaitTimeout = labWaitTimeout

	info, err := manager.Up(ctx, l)
	if err != nil {
		return err
	}

	printer.Success("\nLab for %s is up\n", l.Ref())
	printServices(info)
	printer.Printf("\nStop it with 'lore lab down %s'\n", l.Slug)
	return nil
}

func runLabDown(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := locateConfig()
	if err != nil {
		return err
	}

	cli, err := dockerpkg.NewClient(ctx)
	if err != nil {
		return err
	}
	defer cli.Close()

	manager := lab.NewManager(cli, cfg)

	if labDownAll {
		n, err := manager.DownAll(ctx)
		if err != nil {
			return err
		}
		printer.Success("Removed %d lab(s)\n", n)
		return nil
	}

	slug, err := targetLabSlug(ctx, cfg, cli, args)
	if err != nil {
		return err
	}
	return manager.Down(ctx, slug)
}

// targetLabSlug picks the lab to operate on: the named lesson, or the only
// running lab when none is named.
func targetLabSlug(ctx context.Context, cfg *config.Config, cli *client.Client, args []string) (string, error) {
	if len(args) == 1 {
		l, err := resolveLesson(cfg, args[0])
		if err != nil {
			return "", err
		}
		return l.Slug, nil
	}

	labs, err := lab.FindAll(ctx, cli)
	if err != nil {
		return "", err
	}
	switch len(labs) {
	case 0:
		return "", printer.Error(
			"no labs running",
			"There is no lab to stop.",
			[]string{"Start one first:\n  lore lab up <lesson>"},
		)
	case 1:
		return labs[0].Slug, nil
	default:
		refs := make([]string, len(labs))
		for i, l := range labs {
			refs[i] = l.Ref()
		}
		return "", printer.Error(
			"multiple labs running",
			fmt.Sprintf("Running labs: %s", strings.Join(refs, ", ")),
			[]string{
				"Name the one to stop:\n  lore lab down <lesson>",
				"Or remove them all:\n  lore lab down --all",
			},
		)
	}
}

func runLabStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := locateConfig()
	if err != nil {
		return err
	}

	cli, err := dockerpkg.NewClient(ctx)
	if err != nil {
		return err
	}
	defer cli.Close()

	var labs []lab.Info
	if len(args) == 1 {
		l, err := resolveLesson(cfg, args[0])
		if err != nil {
			return err
		}
		info, err := lab.Find(ctx, cli, l.Slug)
		if err != nil {
			return err
		}
		if info == nil {
			printer.Printf("No lab running for %s\n", l.Ref())
			printer.Printf("\nStart it with 'lore lab up %s'\n", l.Slug)
			return nil
		}
		labs = []lab.Info{*info}
	} else {
		labs, err = lab.FindAll(ctx, cli)
		if err != nil {
			return err
		}
		if len(labs) == 0 {
			printer.Printf("No labs running\n")
			return nil
		}
	}

	for i, info := range labs {
		if i > 0 {
			printer.Printf("\n")
		}
		printer.Printf("Lab for %s (%s, run %s)\n", info.Ref(), info.Status, shortRunID(info.RunID))
		printServices(&info)
	}
	return nil
}

func runLabList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cli, err := dockerpkg.NewClient(ctx)
	if err != nil {
		return err
	}
	defer cli.Close()

	labs, err := lab.FindAll(ctx, cli)
	if err != nil {
		return err
	}

	if labListJSON {
		if labs == nil {
			labs = []lab.Info{}
		}
		data, err := json.MarshalIndent(labs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal labs: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(labs) == 0 {
		printer.Printf("No labs running\n")
		printer.Printf("\nStart one with 'lore lab up <lesson>'\n")
		return nil
	}

	fmt.Printf("%-36s %-10s %s\n", "LESSON", "STATUS", "SERVICES")
	for _, info := range labs {
		names := make([]string, len(info.Services))
		for i, svc := range info.Services {
			names[i] = svc.Name
			if svc.HostPort != 0 {
				names[i] += ":" + strconv.Itoa(svc.HostPort)
			}
		}
		fmt.Printf("%-36s %-10s %s\n", info.Ref(), info.Status, strings.Join(names, ", "))
	}
	return nil
}

func runLabRun(cmd *cobra.Command, args []string) error {
	// Ctrl-C cancels the attach; container cleanup survives it.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := locateConfig()
	if err != nil {
		return err
	}

	l, err := resolveLesson(cfg, args[0])
	if err != nil {
		return err
	}

	cli, err := dockerpkg.NewClient(ctx)
	if err != nil {
		return err
	}
	defer cli.Close()

	manager := lab.NewManager(cli, cfg)
	code, err := manager.Run(ctx, l, args[1], args[2:], os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	if code != 0 {
		cli.Close()
		os.Exit(code)
	}
	return nil
}

func printServices(info *lab.Info) {
	for _, svc := range info.Services {
		if svc.HostPort != 0 {
			printer.Printf("  %-12s %-10s localhost:%d\n", svc.Name, svc.State, svc.HostPort)
		} else {
			printer.Printf("  %-12s %s\n", svc.Name, svc.State)
		}
	}
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
