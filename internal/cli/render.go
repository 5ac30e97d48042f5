package cli

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skein/pkg/graph"
	"github.com/matzehuels/skein/pkg/ingest"
	"github.com/matzehuels/skein/pkg/physics"
	"github.com/matzehuels/skein/pkg/render"
)

// Output formats for the render command.
const (
	formatSVG  = "svg"
	formatPNG  = "png"
	formatDOT  = "dot"
	formatJSON = "json"
)

// validateFormat checks the --format flag value.
func validateFormat(f string) error {
	switch f {
	case formatSVG, formatPNG, formatDOT, formatJSON:
		return nil
	}
	return fmt.Errorf("invalid format: %s (must be 'svg', 'png', 'dot', or 'json')", f)
}

// renderCommand creates the render command: a one-shot converged export.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		configPath string
		format     string
		output     string
		flags      layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "render [seedfile]",
		Short: "Export a converged layout to SVG, PNG, DOT, or JSON",
		Long: `Render ingests the seed groups, runs the layout to convergence without
animating intermediate frames, and writes the result to a file.

Without a seedfile the built-in podcast sample is rendered. The output
path defaults to the seed file's name with the format's extension.

Examples:
  skein render                        # sample data to skein.svg
  skein render podcasts.toml          # podcasts.svg
  skein render podcasts.toml -f png   # podcasts.png
  skein render -f json -o graph.json  # positions as JSON`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			settings, err := LoadSettings(configPath)
			if err != nil {
				return err
			}
			flags.apply(cmd, &settings)

			groups, source, err := loadSeedGroups(args)
			if err != nil {
				return err
			}

			path := outputPath(output, args, format)
			return runRender(cmd.Context(), groups, source, settings, format, path)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a skein.toml settings file")
	cmd.Flags().StringVarP(&format, "format", "f", formatSVG, "output format: svg, png, dot, or json")
	cmd.Flags().StringVarP(&output, "out", "o", "", "output file (default derived from the seed file)")
	addLayoutFlags(cmd, &flags)

	return cmd
}

// outputPath picks the output file: an explicit --out wins, otherwise the
// seed file's name with the format's extension, or "skein.<ext>" when
// rendering the built-in sample.
func outputPath(output string, args []string, format string) string {
	if output != "" {
		return output
	}
	base := appName
	if len(args) > 0 {
		name := filepath.Base(args[0])
		base = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return base + "." + format
}

// runRender replays the groups into a fresh store, converges the layout
// synchronously, and writes the rendered snapshot to path.
func runRender(ctx context.Context, groups []ingest.Group, source string, settings Settings, format, path string) error {
	logger := loggerFromContext(ctx)
	timer := newProgress(logger)

	cfg := settings.physicsConfig(logger)
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return err
	}

	seed := settings.Layout.Seed
	store := graph.New(cfg.Bounds(),
		graph.WithRand(rand.New(rand.NewPCG(seed, seed^0xdeadbeef))))

	driver := ingest.NewDriver(store, nil, logger)
	driver.Pause = 0 // an export has no animation to pace

	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Ingesting %d groups from %s", len(groups), source))
	spin.Start()

	if err := driver.Replay(ctx, groups); err != nil {
		spin.StopWithError("ingest failed")
		return err
	}

	spin.SetMessage(fmt.Sprintf("Laying out (%d iterations)", cfg.Iterations))
	snap := store.Snapshot()
	final, err := physics.Converge(snap, cfg)
	if err != nil {
		spin.StopWithError("layout failed")
		return err
	}
	for i := range snap.Nodes {
		if p, ok := final[snap.Nodes[i].ID]; ok {
			snap.Nodes[i].Pos = p
		}
	}

	spin.SetMessage("Rendering " + format)
	data, err := renderSnapshot(snap, format, cfg)
	if err != nil {
		spin.StopWithError("render failed")
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		spin.StopWithError("write failed")
		return err
	}

	if spin.Cancelled() {
		printWarning("render cancelled")
		return ctx.Err()
	}
	spin.StopWithSuccess("Layout converged")

	pinned := 0
	for _, n := range snap.Nodes {
		if n.Pinned {
			pinned++
		}
	}
	printStats(len(snap.Nodes), len(snap.Edges), pinned)
	printFile(path)
	printDetail("seed %d · %d iterations", seed, cfg.Iterations)
	if source != "built-in sample" {
		printNextStep("Watch it live", "skein run "+source)
	} else {
		printNextStep("Watch it live", "skein run")
	}
	timer.done("render complete")

	return nil
}

// renderSnapshot serializes a converged snapshot in the requested format.
// SVG and PNG flip the y axis so Graphviz's y-up page matches the y-down
// layout frame.
func renderSnapshot(s graph.Snapshot, format string, cfg physics.Config) ([]byte, error) {
	opts := render.Options{FlipHeight: cfg.Height}
	switch format {
	case formatDOT:
		return []byte(render.ToDOT(s, opts)), nil
	case formatSVG:
		return render.RenderSVG(render.ToDOT(s, opts))
	case formatPNG:
		return render.RenderPNG(render.ToDOT(s, opts))
	case formatJSON:
		return graph.MarshalSnapshot(s)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}
