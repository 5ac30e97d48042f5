package physics

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skein/pkg/graph"
)

// Runner serializes layout runs: at most one [Engine.Run] is ever in
// flight. A kick while idle starts a run; a kick while running cancels the
// current run and starts a fresh one against the mutated graph; kicks
// arriving faster than runs can start coalesce into one.
type Runner struct {
	engine *Engine
	logger *log.Logger
	kicks  chan struct{}
}

// NewRunner returns a runner supervising engine. The runner is inert until
// [Runner.Run] is started.
func NewRunner(engine *Engine, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		engine: engine,
		logger: logger,
		kicks:  make(chan struct{}, 1),
	}
}

// Kick requests a layout run. It never blocks and is safe to call from any
// goroutine, including UI event handlers.
func (r *Runner) Kick() {
	select {
	case r.kicks <- struct{}{}:
	default:
	}
}

// Run supervises layout runs until ctx is cancelled, then returns ctx.Err().
func (r *Runner) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.kicks:
		}

		for again := true; again && ctx.Err() == nil; {
			again = r.runOnce(ctx)
		}
	}
}

// runOnce executes a single engine run and reports whether it should be
// immediately rerun: true when the run was kicked over or superseded by a
// mutation, false when it completed or the supervisor is shutting down.
func (r *Runner) runOnce(ctx context.Context) bool {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.engine.Run(runCtx) }()

	for {
		select {
		case <-ctx.Done():
			cancel()
			<-done
			return false
		case <-r.kicks:
			// Replace the in-flight run with one against the newest graph.
			cancel()
			<-done
			return true
		case err := <-done:
			switch {
			case err == nil:
				return false
			case errors.Is(err, graph.ErrStaleRun):
				return true
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return false
			default:
				r.logger.Error("layout run failed", "error", err)
				return false
			}
		}
	}
}
