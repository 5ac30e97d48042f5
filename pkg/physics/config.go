package physics

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skein/pkg/graph"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, Web, and Exports
// =============================================================================

const (
	// DefaultIterations is the fixed relaxation budget of one layout run.
	// Convergence is not detected; the run always performs the full budget.
	DefaultIterations = 200

	// DefaultRepulsionStrength scales the inverse-square push between node
	// pairs closer than the repulsion cutoff.
	DefaultRepulsionStrength = 4000.0

	// DefaultAttractionStrength is the Hooke spring constant applied along
	// every edge. With the default repulsion this gives an equilibrium
	// separation of about 43px for a connected pair.
	DefaultAttractionStrength = 0.05

	// DefaultMinDistance is the repulsion cutoff in pixels: pairs at or
	// beyond this distance do not repel, which keeps distant clusters from
	// drifting apart forever.
	DefaultMinDistance = 80.0

	// DefaultWidth is the layout frame width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the layout frame height in pixels.
	DefaultHeight = 600.0

	// DefaultMarginLeft is the left inset of the placement rectangle.
	DefaultMarginLeft = 50.0

	// DefaultMarginRight is the right inset of the placement rectangle.
	DefaultMarginRight = 50.0

	// DefaultMarginTop is the top inset. Larger than the other margins to
	// leave room for the header drawn above the graph.
	DefaultMarginTop = 100.0

	// DefaultMarginBottom is the bottom inset of the placement rectangle.
	DefaultMarginBottom = 50.0

	// DefaultFramePause is the delay between applied iterations. This is
	// what turns convergence into a visible animation instead of a jump to
	// the final positions.
	DefaultFramePause = 20 * time.Millisecond

	// DefaultSeed is the default random seed for reproducible initial
	// placement in exports and tests.
	DefaultSeed = uint64(42)
)

// =============================================================================
// Config - Layout Engine Configuration
// =============================================================================

// Config holds the parameters of the force model and the frame it runs in.
// The zero value is usable after [Config.ValidateAndSetDefaults]; zero
// fields take their Default* counterparts.
type Config struct {
	// Iterations is the number of relaxation iterations per run.
	Iterations int

	// RepulsionStrength scales pairwise repulsion (force = strength / d²).
	RepulsionStrength float64

	// AttractionStrength scales edge attraction (force = strength × d).
	AttractionStrength float64

	// MinDistance is the repulsion cutoff: only pairs closer than this
	// push each other apart.
	MinDistance float64

	// Width and Height are the layout frame dimensions in pixels.
	Width  float64
	Height float64

	// Margins inset the placement rectangle from the frame edges. Nodes
	// are clamped into the inset rectangle every iteration.
	MarginLeft   float64
	MarginRight  float64
	MarginTop    float64
	MarginBottom float64

	// FramePause throttles iteration application so intermediate frames
	// are observable.
	FramePause time.Duration

	// Logger receives run lifecycle output. Nil means silent.
	Logger *log.Logger

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks field ranges and applies defaults for zero
// fields. This method is idempotent - calling it multiple times has the
// same effect as calling it once.
func (c *Config) ValidateAndSetDefaults() error {
	if c.validated {
		return nil
	}
	if c.Iterations < 0 {
		return fmt.Errorf("invalid iterations: %d (must be non-negative)", c.Iterations)
	}
	if c.RepulsionStrength < 0 {
		return fmt.Errorf("invalid repulsion strength: %g (must be non-negative)", c.RepulsionStrength)
	}
	if c.AttractionStrength < 0 {
		return fmt.Errorf("invalid attraction strength: %g (must be non-negative)", c.AttractionStrength)
	}
	if c.MinDistance < 0 {
		return fmt.Errorf("invalid min distance: %g (must be non-negative)", c.MinDistance)
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("invalid frame: %gx%g (must be non-negative)", c.Width, c.Height)
	}
	if c.MarginLeft < 0 || c.MarginRight < 0 || c.MarginTop < 0 || c.MarginBottom < 0 {
		return fmt.Errorf("invalid margins: l=%g r=%g t=%g b=%g (must be non-negative)",
			c.MarginLeft, c.MarginRight, c.MarginTop, c.MarginBottom)
	}
	if c.FramePause < 0 {
		return fmt.Errorf("invalid frame pause: %v (must be non-negative)", c.FramePause)
	}

	if c.Iterations == 0 {
		c.Iterations = DefaultIterations
	}
	if c.RepulsionStrength == 0 {
		c.RepulsionStrength = DefaultRepulsionStrength
	}
	if c.AttractionStrength == 0 {
		c.AttractionStrength = DefaultAttractionStrength
	}
	if c.MinDistance == 0 {
		c.MinDistance = DefaultMinDistance
	}
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.MarginLeft == 0 {
		c.MarginLeft = DefaultMarginLeft
	}
	if c.MarginRight == 0 {
		c.MarginRight = DefaultMarginRight
	}
	if c.MarginTop == 0 {
		c.MarginTop = DefaultMarginTop
	}
	if c.MarginBottom == 0 {
		c.MarginBottom = DefaultMarginBottom
	}
	if c.FramePause == 0 {
		c.FramePause = DefaultFramePause
	}

	if b := c.Bounds(); b.Empty() {
		return fmt.Errorf("margins leave no layout area: %gx%g frame, margins l=%g r=%g t=%g b=%g",
			c.Width, c.Height, c.MarginLeft, c.MarginRight, c.MarginTop, c.MarginBottom)
	}
	c.validated = true
	return nil
}

// Bounds returns the placement rectangle: the frame inset by the margins.
// The same rectangle should be handed to [graph.New] so initial placement
// and per-iteration clamping agree.
func (c Config) Bounds() graph.Rect {
	return graph.Rect{
		MinX: c.MarginLeft,
		MinY: c.MarginTop,
		MaxX: c.Width - c.MarginRight,
		MaxY: c.Height - c.MarginBottom,
	}
}
