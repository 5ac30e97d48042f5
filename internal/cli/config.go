package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skein/internal/web"
	"github.com/matzehuels/skein/pkg/ingest"
	"github.com/matzehuels/skein/pkg/physics"
)

// duration wraps time.Duration so TOML settings can use strings like
// "500ms" or "2s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Settings is the skein.toml schema, shared by all commands. A settings
// file only needs the keys it changes; everything else keeps the package
// defaults.
type Settings struct {
	Layout LayoutSettings `toml:"layout"`
	Ingest IngestSettings `toml:"ingest"`
	Serve  ServeSettings  `toml:"serve"`
}

// LayoutSettings configures the force simulation.
type LayoutSettings struct {
	Iterations   int      `toml:"iterations"`
	Repulsion    float64  `toml:"repulsion"`
	Attraction   float64  `toml:"attraction"`
	MinDistance  float64  `toml:"min_distance"`
	Width        float64  `toml:"width"`
	Height       float64  `toml:"height"`
	MarginLeft   float64  `toml:"margin_left"`
	MarginRight  float64  `toml:"margin_right"`
	MarginTop    float64  `toml:"margin_top"`
	MarginBottom float64  `toml:"margin_bottom"`
	FramePause   duration `toml:"frame_pause"`
	Seed         uint64   `toml:"seed"`
}

// IngestSettings configures replay pacing.
type IngestSettings struct {
	GroupPause duration `toml:"group_pause"`
}

// ServeSettings configures the web view.
type ServeSettings struct {
	Addr string `toml:"addr"`
}

// DefaultSettings returns the package defaults as a settings value.
func DefaultSettings() Settings {
	return Settings{
		Layout: LayoutSettings{
			Iterations:   physics.DefaultIterations,
			Repulsion:    physics.DefaultRepulsionStrength,
			Attraction:   physics.DefaultAttractionStrength,
			MinDistance:  physics.DefaultMinDistance,
			Width:        physics.DefaultWidth,
			Height:       physics.DefaultHeight,
			MarginLeft:   physics.DefaultMarginLeft,
			MarginRight:  physics.DefaultMarginRight,
			MarginTop:    physics.DefaultMarginTop,
			MarginBottom: physics.DefaultMarginBottom,
			FramePause:   duration{physics.DefaultFramePause},
			Seed:         physics.DefaultSeed,
		},
		Ingest: IngestSettings{
			GroupPause: duration{ingest.DefaultGroupPause},
		},
		Serve: ServeSettings{
			Addr: web.DefaultAddr,
		},
	}
}

// LoadSettings reads a TOML settings file over the defaults. An empty path
// returns the defaults unchanged; a named file must exist and parse.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// physicsConfig converts layout settings into an engine config.
func (s Settings) physicsConfig(logger *log.Logger) physics.Config {
	return physics.Config{
		Iterations:         s.Layout.Iterations,
		RepulsionStrength:  s.Layout.Repulsion,
		AttractionStrength: s.Layout.Attraction,
		MinDistance:        s.Layout.MinDistance,
		Width:              s.Layout.Width,
		Height:             s.Layout.Height,
		MarginLeft:         s.Layout.MarginLeft,
		MarginRight:        s.Layout.MarginRight,
		MarginTop:          s.Layout.MarginTop,
		MarginBottom:       s.Layout.MarginBottom,
		FramePause:         s.Layout.FramePause.Duration,
		Logger:             logger,
	}
}

// =============================================================================
// Shared Flags
// =============================================================================

// layoutFlags carries the layout flags common to run, serve and render.
// A flag only overrides the settings file when the user actually set it,
// checked via cobra's Changed.
type layoutFlags struct {
	iterations int
	width      float64
	height     float64
	framePause time.Duration
	seed       uint64
}

func addLayoutFlags(cmd *cobra.Command, f *layoutFlags) {
	cmd.Flags().IntVar(&f.iterations, "iterations", physics.DefaultIterations, "iterations per layout run")
	cmd.Flags().Float64Var(&f.width, "width", physics.DefaultWidth, "frame width")
	cmd.Flags().Float64Var(&f.height, "height", physics.DefaultHeight, "frame height")
	cmd.Flags().DurationVar(&f.framePause, "frame-pause", physics.DefaultFramePause, "pause between layout frames")
	cmd.Flags().Uint64Var(&f.seed, "seed", physics.DefaultSeed, "random seed for initial placement")
}

func (f *layoutFlags) apply(cmd *cobra.Command, s *Settings) {
	flags := cmd.Flags()
	if flags.Changed("iterations") {
		s.Layout.Iterations = f.iterations
	}
	if flags.Changed("width") {
		s.Layout.Width = f.width
	}
	if flags.Changed("height") {
		s.Layout.Height = f.height
	}
	if flags.Changed("frame-pause") {
		s.Layout.FramePause = duration{f.framePause}
	}
	if flags.Changed("seed") {
		s.Layout.Seed = f.seed
	}
}
