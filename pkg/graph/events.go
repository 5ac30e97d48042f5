package graph

// Event describes one store mutation. Events are delivered to subscribers
// in mutation order and carry value copies only, never references into
// store state.
//
// Consumers that need the full current graph should treat events as change
// notifications and call [Store.Snapshot]; the snapshot taken after
// receiving an event always includes that event's mutation.
type Event interface {
	isEvent()
}

// NodeAdded reports a newly created node. The node is complete, including
// its randomized initial position, so an observer can never learn an id
// without coordinates.
type NodeAdded struct {
	Node Node
}

// EdgeAdded reports a newly created edge. Both endpoints were present in
// the store when the edge was created.
type EdgeAdded struct {
	Edge Edge
}

// NodeMoved reports an external position override ([Store.SetPosition]) or
// a pin-flag change ([Store.SetPinned]). Frame writes from the layout
// engine are reported as [FrameApplied] instead.
type NodeMoved struct {
	ID     NodeID
	Pos    Point
	Pinned bool
}

// FrameApplied reports one applied layout iteration. Positions holds the
// nodes actually written; nodes pinned at apply time are absent.
type FrameApplied struct {
	Positions map[NodeID]Point
}

func (NodeAdded) isEvent()    {}
func (EdgeAdded) isEvent()    {}
func (NodeMoved) isEvent()    {}
func (FrameApplied) isEvent() {}
