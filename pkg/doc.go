// Package pkg provides the core libraries for skein's live entity graphs.
//
// # Overview
//
// Skein ingests group/member records (podcasts and their hosts), holds them
// in a mutable entity graph, and lays the graph out with a force-directed
// simulation that runs progressively, so every renderer can animate
// convergence and the graph stays editable while it settles.
//
// The typical data flow:
//
//	Seed file / interactive add
//	         ↓
//	    [ingest] (records → nodes, edges, dedup)
//	         ↓
//	    [graph] (mutable store + change events + run generation)
//	         ↓                          ↓
//	    [physics] (iterate, write   [publish] (fold events into a
//	     frames back to the store)   render copy, fan out updates)
//	         ↓                          ↓
//	    terminal view / browser view / [render] one-shot export
//
// # Main Packages
//
// [graph] - The entity store: group and member nodes, membership edges,
// positions, pinning, change events, and the run generation that lets the
// layout detect when it went stale.
//
// [physics] - The force model. [physics.Step] computes one relaxation
// iteration, [physics.Engine] runs iteration budgets against a live store,
// [physics.Runner] serializes and restarts runs, and [physics.Converge] is
// the synchronous form for exports.
//
// [ingest] - Feeds group records into the store: seed file loading (TOML or
// JSON), the built-in sample, paced replay, and interactive adds.
//
// [publish] - Folds store events into a render-ready copy and fans updates
// out to subscribers (the terminal view and every connected browser).
//
// [render] - Converts snapshots to Graphviz DOT and renders SVG or PNG with
// positions pinned to the simulated coordinates.
//
// [observability] - Process-wide hook registry for layout, ingest, and web
// instrumentation.
//
// [buildinfo] - Build metadata injected at link time.
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/skein/pkg/graph
// [physics]: https://pkg.go.dev/github.com/matzehuels/skein/pkg/physics
// [ingest]: https://pkg.go.dev/github.com/matzehuels/skein/pkg/ingest
// [publish]: https://pkg.go.dev/github.com/matzehuels/skein/pkg/publish
// [render]: https://pkg.go.dev/github.com/matzehuels/skein/pkg/render
// [observability]: https://pkg.go.dev/github.com/matzehuels/skein/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/skein/pkg/buildinfo
package pkg
