package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skein/internal/web"
	"github.com/matzehuels/skein/pkg/ingest"
)

// serveCommand creates the serve command: the browser live view.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
		groupPause time.Duration
		flags      layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "serve [seedfile]",
		Short: "Serve the graph to a browser",
		Long: `Serve hosts the live graph over HTTP. The browser view streams layout
frames over server-sent events; nodes can be dragged to pin them and new
groups added through the form or the JSON API.

Without a seedfile the built-in podcast sample is replayed on startup.

Examples:
  skein serve                       # sample data on :7878
  skein serve podcasts.toml         # seed from a file
  skein serve --addr :9000          # custom listen address`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := LoadSettings(configPath)
			if err != nil {
				return err
			}
			flags.apply(cmd, &settings)
			if cmd.Flags().Changed("addr") {
				settings.Serve.Addr = addr
			}
			if cmd.Flags().Changed("group-pause") {
				settings.Ingest.GroupPause = duration{groupPause}
			}

			groups, source, err := loadSeedGroups(args)
			if err != nil {
				return err
			}
			c.Logger.Info("seed loaded", "source", source, "groups", len(groups))

			ctx := cmd.Context()
			sys, err := c.newSystem(settings, c.Logger)
			if err != nil {
				return err
			}
			stop := sys.start(ctx)
			defer stop()

			go func() {
				_ = sys.driver.Replay(ctx, groups)
			}()

			printInfo("serving on %s", StyleValue.Render("http://localhost"+settings.Serve.Addr))
			printDetail("ctrl+c to stop")

			srv := web.New(sys.store, sys.driver, sys.pub, c.Logger)
			return srv.ListenAndServe(ctx, settings.Serve.Addr)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a skein.toml settings file")
	cmd.Flags().StringVar(&addr, "addr", web.DefaultAddr, "listen address")
	cmd.Flags().DurationVar(&groupPause, "group-pause", ingest.DefaultGroupPause, "pause between replayed groups")
	addLayoutFlags(cmd, &flags)

	return cmd
}
