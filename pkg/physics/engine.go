package physics

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skein/pkg/graph"
	"github.com/matzehuels/skein/pkg/observability"
)

// Engine drives progressive layout runs against a live store. One run is a
// fixed budget of iterations, each computed from a fresh snapshot and
// written back through [graph.Store.ApplyFrame], so drags and pin changes
// take hold at the next iteration while structural mutations abort the run.
//
// Engine does not serialize runs; that is [Runner]'s job. Callers that
// bypass Runner must not start a second Run while one is in flight.
type Engine struct {
	store   *graph.Store
	cfg     Config
	logger  *log.Logger
	running atomic.Bool
}

// NewEngine validates cfg and returns an engine bound to store.
func NewEngine(store *graph.Store, cfg Config) (*Engine, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Engine{store: store, cfg: cfg, logger: cfg.Logger}, nil
}

// Config returns the engine's validated configuration.
func (e *Engine) Config() Config { return e.cfg }

// Running reports whether a run is currently executing.
func (e *Engine) Running() bool { return e.running.Load() }

// Run executes one layout run: Iterations relaxation steps paced by
// FramePause. It returns nil after a full run, [graph.ErrStaleRun] when a
// structural mutation superseded the run, or ctx.Err() when cancelled. The
// caller decides whether a superseded run warrants a fresh one.
func (e *Engine) Run(ctx context.Context) error {
	e.running.Store(true)
	defer e.running.Store(false)

	start := time.Now()
	hooks := observability.Layout()

	snap := e.store.Snapshot()
	gen := snap.Generation
	hooks.OnRunStart(ctx, gen, len(snap.Nodes))
	e.logger.Info("layout run starting",
		"generation", gen, "nodes", len(snap.Nodes), "iterations", e.cfg.Iterations)

	if len(snap.Nodes) == 0 {
		hooks.OnRunComplete(ctx, 0, time.Since(start))
		return nil
	}

	for i := 1; i <= e.cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			hooks.OnRunAborted(ctx, err, time.Since(start))
			e.logger.Info("layout run cancelled", "generation", gen, "iteration", i)
			return err
		}

		// A fresh snapshot per iteration picks up drags and pin changes;
		// positions otherwise carry over from the frame just applied.
		snap = e.store.Snapshot()
		if snap.Generation != gen {
			hooks.OnRunAborted(ctx, graph.ErrStaleRun, time.Since(start))
			e.logger.Info("layout run superseded", "generation", gen, "iteration", i)
			return graph.ErrStaleRun
		}
		frame := Step(snap.Nodes, snap.Edges, e.cfg)
		if err := e.store.ApplyFrame(gen, frame); err != nil {
			hooks.OnRunAborted(ctx, err, time.Since(start))
			e.logger.Info("layout run superseded", "generation", gen, "iteration", i)
			return err
		}
		hooks.OnIteration(ctx, i, e.cfg.Iterations)

		if e.cfg.FramePause > 0 && i < e.cfg.Iterations {
			select {
			case <-ctx.Done():
				hooks.OnRunAborted(ctx, ctx.Err(), time.Since(start))
				e.logger.Info("layout run cancelled", "generation", gen, "iteration", i)
				return ctx.Err()
			case <-time.After(e.cfg.FramePause):
			}
		}
	}

	hooks.OnRunComplete(ctx, e.cfg.Iterations, time.Since(start))
	e.logger.Info("layout run complete",
		"generation", gen, "iterations", e.cfg.Iterations, "duration", time.Since(start))
	return nil
}
