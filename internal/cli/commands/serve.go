package commands

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/internal/ui"
	"github.com/leapstack-labs/leapgrid/internal/ui/session"
)

// ServeOptions holds options for the serve command that are not part of
// the configuration file.
type ServeOptions struct {
	Dev  bool
	Open bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve [source]",
		Short: "Serve a source as a web dashboard",
		Long: `Start a local web server with an interactive grid over a source.

Every browser session gets its own search, sort, page and selection. When
the source is a local file it is watched, and open pages refresh when it
changes.`,
		Example: `  # Serve on the default port
  leapgrid serve members.csv

  # Serve on a custom port without watching
  leapgrid serve members.csv --port 3000 --watch=false

  # Keep sessions valid across restarts
  LEAPGRID_UI_SESSION_SECRET=change-me leapgrid serve members.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args, opts)
		},
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().Bool("watch", true, "Reload rows when the source file changes")
	cmd.Flags().String("session-secret", "", "Cookie signing secret (default: random per run)")
	cmd.Flags().String("title", "", "Page title (default: source file name)")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "Serve assets from disk and live-reload the page")
	cmd.Flags().BoolVar(&opts.Open, "open", false, "Open the dashboard in the default browser")

	return cmd
}

func runServe(cmd *cobra.Command, args []string, opts *ServeOptions) error {
	cc := NewCommandContext(cmd, args)
	cfg := cc.Cfg

	p, err := cc.LoadPipeline(cmd.Context())
	if err != nil {
		return err
	}

	registry := session.NewRegistry(session.Config{
		Rows:    p.Rows,
		Columns: p.Columns,
		Options: p.Options,
		Layout:  p.Layout,
		Logger:  cc.Logger,
	})

	server := ui.NewServer(ui.Config{
		Registry:      registry,
		Reload:        p.Reload,
		Port:          cfg.UI.Port,
		Watch:         cfg.UI.Watch && !strings.Contains(cfg.Source, "://"),
		WatchPath:     cfg.Source,
		SessionSecret: cfg.UI.SessionSecret,
		Title:         cc.Title(),
		Dev:           opts.Dev,
		Logger:        cc.Logger,
	})

	url := fmt.Sprintf("http://localhost:%d", cfg.UI.Port)
	if opts.Open {
		go openBrowser(url)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on %s\n", cc.Title(), url)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	return server.Serve(cmd.Context())
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
