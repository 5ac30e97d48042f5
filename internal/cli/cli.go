// Package cli implements the skein command-line interface.
//
// This package provides commands for watching a force-directed layout
// converge live in the terminal, serving the same view to a browser, and
// exporting a converged snapshot to DOT, SVG, PNG, or JSON. The CLI is
// built using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
// The main commands are:
//   - run: live terminal view with drag-to-pin editing
//   - serve: browser live view (SSE stream + mutation endpoints)
//   - render: one-shot converged export
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skein/pkg/buildinfo"
	"github.com/matzehuels/skein/pkg/graph"
	"github.com/matzehuels/skein/pkg/ingest"
	"github.com/matzehuels/skein/pkg/observability"
	"github.com/matzehuels/skein/pkg/physics"
	"github.com/matzehuels/skein/pkg/publish"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "skein"

	// eventBuffer sizes the store subscription feeding the publisher.
	// Frame events arrive once per iteration; the buffer rides out brief
	// render stalls before the oldest events are dropped.
	eventBuffer = 256
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "Skein lays out entity graphs with a live force simulation",
		Long:         `Skein ingests group/member records into an entity graph and lays it out with a force-directed simulation you can watch and edit live: in the terminal, in the browser, or as a one-shot export.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// Register all subcommands
	root.AddCommand(c.runCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// System Factory
// =============================================================================

// system wires a store, layout engine, runner, publisher and ingestion
// driver into one working unit shared by the run and serve commands.
type system struct {
	store  *graph.Store
	engine *physics.Engine
	runner *physics.Runner
	pub    *publish.Publisher
	driver *ingest.Driver
}

// newSystem assembles the core around the given settings and registers the
// layout hooks that keep the publisher's processing flag current. logger is
// taken separately from the CLI logger because the terminal view must keep
// the engine off stderr while bubbletea owns the screen.
func (c *CLI) newSystem(s Settings, logger *log.Logger) (*system, error) {
	cfg := s.physicsConfig(logger)
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	seed := s.Layout.Seed
	store := graph.New(cfg.Bounds(),
		graph.WithRand(rand.New(rand.NewPCG(seed, seed^0xdeadbeef))))

	engine, err := physics.NewEngine(store, cfg)
	if err != nil {
		return nil, err
	}
	runner := physics.NewRunner(engine, logger)

	pub := publish.New(store, eventBuffer)
	observability.SetLayoutHooks(&publishHooks{pub: pub})

	driver := ingest.NewDriver(store, runner, logger)
	driver.Pause = s.Ingest.GroupPause.Duration

	return &system{store: store, engine: engine, runner: runner, pub: pub, driver: driver}, nil
}

// start launches the background loops (publisher, layout supervisor) and
// returns a stop function that cancels them and waits for their exit.
func (sys *system) start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = sys.pub.Run(ctx) }()
	go func() { defer wg.Done(); _ = sys.runner.Run(ctx) }()

	return func() {
		cancel()
		wg.Wait()
	}
}

// publishHooks mirrors the engine lifecycle into the publisher's processing
// flag so every renderer can show layout activity.
type publishHooks struct {
	observability.NoopLayoutHooks
	pub *publish.Publisher
}

func (h *publishHooks) OnRunStart(ctx context.Context, generation uint64, nodeCount int) {
	h.pub.SetProcessing(true)
}

func (h *publishHooks) OnRunComplete(ctx context.Context, iterations int, duration time.Duration) {
	h.pub.SetProcessing(false)
}

func (h *publishHooks) OnRunAborted(ctx context.Context, reason error, duration time.Duration) {
	h.pub.SetProcessing(false)
}

// =============================================================================
// Seed Input
// =============================================================================

// loadSeedGroups resolves the optional seedfile argument: a path to a TOML
// or JSON group file, or the built-in podcast sample when absent. The second
// return value names the source for logging.
func loadSeedGroups(args []string) ([]ingest.Group, string, error) {
	if len(args) == 0 {
		return ingest.SampleGroups(), "built-in sample", nil
	}
	groups, err := ingest.LoadGroups(args[0])
	if err != nil {
		return nil, "", err
	}
	return groups, args[0], nil
}
