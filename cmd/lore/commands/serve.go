package commands

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/printer"
	"github.com/dyluth/lore/internal/server"
)

var (
	serveAddr  string
	serveDebug bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Preview the content repository in a browser",
	Long: `Serve the content repository over HTTP for local preview.

Markdown is rendered to HTML with relative links rewritten, so the
sequence reads the same as it will wherever the lessons are published.
The tree is rescanned per request; edits show up on refresh.

Also exposes /api/lessons (catalog JSON), /healthz and /metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from lore.yml, \":8420\")")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Human-readable debug logging")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := locateConfig()
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, server.Options{Addr: serveAddr, Debug: serveDebug})
	if err != nil {
		return err
	}

	url := srv.Addr()
	if strings.HasPrefix(url, ":") {
		url = "http://localhost" + url
	}
	printer.Printf("Serving %s on %s (Ctrl-C to stop)\n", cfg.Root, url)
	return srv.Run(ctx)
}
