// Package graph provides the shared mutable store for skein's entity graph.
//
// # Overview
//
// Skein lays out a live graph of group entities (e.g. podcasts) and their
// member entities (e.g. hosts). This package owns that graph: the node and
// edge sets, their positions, and the pinned flags that exclude nodes from
// force updates. The store is the single shared resource written by three
// actors (the layout engine each iteration, the drag handler, the ingestion
// driver) and read by renderers, so every mutation happens under one lock
// and readers work on value-copy snapshots.
//
// # Basic Usage
//
// Create a store with [New], add nodes and edges through the creation
// funnel, and take [Store.Snapshot] copies for iteration:
//
//	s := graph.New(graph.Rect{MinX: 50, MinY: 100, MaxX: 750, MaxY: 550})
//	tgg, _ := s.AddGroupNode("TGG")
//	ben, _ := s.AddOrGetMemberNode("Ben")
//	s.AddEdge(tgg, ben)
//
// Member nodes are deduplicated by exact label: a second
// AddOrGetMemberNode("Ben") returns the existing node's ID. Group nodes are
// never deduplicated.
//
// # Events
//
// [Store.Subscribe] returns a channel of [Event] values describing each
// mutation ([NodeAdded], [EdgeAdded], [NodeMoved], [FrameApplied]). Events
// carry value copies; a NodeAdded always includes the node's initial
// position, so observers can never see an id without coordinates. Delivery
// is best-effort per subscriber: a consumer that falls behind loses
// intermediate events but never the newest one, and can resynchronize from
// [Store.Snapshot] at any time.
//
// # Generations
//
// Every structural mutation (node or edge creation) increments the store
// generation. A layout run captures the generation at start and hands it
// back to [Store.ApplyFrame]; a frame carrying a stale generation is
// rejected with [ErrStaleRun] so a superseded run can never overwrite
// positions computed against a newer graph.
//
// # Concurrency
//
// All Store methods are safe for concurrent use. Pinning and position
// overrides happen in a single critical section, so a layout read never
// observes a node that is pinned but not yet moved (or vice versa).
package graph
