// Package physics computes force-directed layout for skein's entity graph.
//
// # Overview
//
// The force model is a spring-electrical system with two terms: nearby node
// pairs repel with an inverse-square force (cut off beyond
// [Config.MinDistance]) and edges attract their endpoints with a linear
// spring. Displacements are applied directly, first order, with no velocity
// or damping state; stability comes from the forces being small at the
// working scale. A run is a fixed budget of iterations with no convergence
// detection, each frame written back to the store and paced by
// [Config.FramePause], so the graph visibly relaxes instead of jumping.
//
// # Basic Usage
//
// Construct an [Engine] over a [graph.Store] and supervise it with a
// [Runner]:
//
//	cfg := physics.Config{Logger: logger}
//	engine, err := physics.NewEngine(store, cfg)
//	if err != nil {
//	    return err
//	}
//	runner := physics.NewRunner(engine, logger)
//	go runner.Run(ctx)
//	runner.Kick() // request a layout run
//
// Ingesting or adding entities mutates the store and then kicks the runner;
// a kick during a run replaces it with one against the new graph.
//
// For one-shot exports, [Converge] runs the full budget synchronously over
// a snapshot and returns final positions without touching a store.
//
// # Interplay with Pinning
//
// Every iteration reads a fresh snapshot, so a node pinned mid-run stops
// moving at the next iteration and an unpinned node is reclaimed from
// wherever the drag left it. Pinned nodes still exert forces on others.
package physics
