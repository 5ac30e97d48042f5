package cli

import (
	"context"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skein/pkg/ingest"
)

// runCommand creates the run command: the live terminal view.
func (c *CLI) runCommand() *cobra.Command {
	var (
		configPath string
		groupPause time.Duration
		flags      layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "run [seedfile]",
		Short: "Watch the graph lay itself out in the terminal",
		Long: `Run ingests seed groups into a live graph and opens a terminal view of the
force simulation as it converges.

Without a seedfile the built-in podcast sample is replayed. The view is
interactive: drag nodes with the mouse to pin them in place, press 'a' to
add a group on the fly, 'u' to release every pin, and 'r' to kick a fresh
layout run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := LoadSettings(configPath)
			if err != nil {
				return err
			}
			flags.apply(cmd, &settings)
			if cmd.Flags().Changed("group-pause") {
				settings.Ingest.GroupPause = duration{groupPause}
			}

			groups, source, err := loadSeedGroups(args)
			if err != nil {
				return err
			}
			c.Logger.Info("seed loaded", "source", source, "groups", len(groups))

			return c.runLive(cmd.Context(), groups, settings)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a skein.toml settings file")
	cmd.Flags().DurationVar(&groupPause, "group-pause", ingest.DefaultGroupPause, "pause between replayed groups")
	addLayoutFlags(cmd, &flags)

	return cmd
}

// runLive wires the system, replays the seed in the background, and hands
// the terminal to bubbletea until the user quits or ctx is cancelled.
func (c *CLI) runLive(ctx context.Context, groups []ingest.Group, settings Settings) error {
	// The engine and driver log nothing here: bubbletea owns the screen.
	sys, err := c.newSystem(settings, newLogger(io.Discard, LogInfo))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := sys.start(ctx)

	var replay sync.WaitGroup
	replay.Add(1)
	go func() {
		defer replay.Done()
		_ = sys.driver.Replay(ctx, groups)
	}()

	model, unsubscribe := newGraphView(ctx, sys)
	prog := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, runErr := prog.Run()
	interrupted := ctx.Err() != nil

	cancel()
	replay.Wait()
	stop()
	unsubscribe()

	if runErr != nil {
		if interrupted {
			return context.Canceled
		}
		return runErr
	}
	return nil
}
