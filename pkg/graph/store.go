package graph

import (
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

var (
	// ErrInvalidReference is returned by [Store.AddEdge], [Store.SetPosition]
	// and [Store.SetPinned] when a node id is not present in the store. The
	// creation funnel makes this unreachable for well-behaved callers, but it
	// is guarded regardless.
	ErrInvalidReference = errors.New("unknown node id")

	// ErrInvalidLabel is returned by [Store.AddGroupNode] and
	// [Store.AddOrGetMemberNode] when the label is empty. All nodes carry a
	// non-empty display label.
	ErrInvalidLabel = errors.New("label must not be empty")

	// ErrStaleRun is returned by [Store.ApplyFrame] when the frame was
	// computed against a superseded generation. The frame is discarded in
	// full; the layout run should abort and restart against the new graph.
	ErrStaleRun = errors.New("layout run superseded by graph mutation")
)

// Store holds the live entity graph. It is the single shared mutable
// resource of the system: the ingestion driver and the drag handler write
// structure and positions, the layout engine writes one frame of positions
// per iteration, and renderers read snapshots. All methods are safe for
// concurrent use.
//
// The zero value is not usable; construct with [New].
type Store struct {
	mu      sync.Mutex
	bounds  Rect
	rng     *rand.Rand
	nodes   map[NodeID]*Node
	order   []NodeID          // insertion order, for deterministic snapshots
	edges   []Edge            // insertion order
	touched map[NodeID][]int  // node id -> indices into edges
	members map[string]NodeID // member label -> node id (dedup index)

	gen atomic.Uint64

	subs    map[int]chan Event
	nextSub int
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithRand injects the pseudo-random source used for initial node
// placement. Passing a seeded source makes placement deterministic:
//
//	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
//	s := graph.New(bounds, graph.WithRand(rng))
//
// The store serializes access to the source; it must not be shared with
// other goroutines.
func WithRand(rng *rand.Rand) Option {
	return func(s *Store) { s.rng = rng }
}

// New creates an empty store. New nodes receive a randomized initial
// position inside bounds, which should be the same rectangle the layout
// engine clamps into.
func New(bounds Rect, opts ...Option) *Store {
	s := &Store{
		bounds:  bounds,
		nodes:   make(map[NodeID]*Node),
		touched: make(map[NodeID][]int),
		members: make(map[string]NodeID),
		subs:    make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bounds returns the placement rectangle the store was created with.
func (s *Store) Bounds() Rect { return s.bounds }

// AddGroupNode creates a Group node at a randomized position inside the
// store bounds and returns its id. Group nodes are never deduplicated:
// every call creates a fresh node. Returns ErrInvalidLabel for an empty
// label.
func (s *Store) AddGroupNode(label string) (NodeID, error) {
	if label == "" {
		return "", ErrInvalidLabel
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addNode(label, CategoryGroup), nil
}

// AddOrGetMemberNode returns the id of the existing Member node with this
// exact label (case-sensitive match), or creates one at a randomized
// position. Only the creating call bumps the generation and emits an
// event. Returns ErrInvalidLabel for an empty label.
func (s *Store) AddOrGetMemberNode(label string) (NodeID, error) {
	if label == "" {
		return "", ErrInvalidLabel
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.members[label]; ok {
		return id, nil
	}
	id := s.addNode(label, CategoryMember)
	s.members[label] = id
	return id, nil
}

// addNode creates, indexes and announces a node. Callers hold s.mu.
func (s *Store) addNode(label string, cat Category) NodeID {
	n := &Node{
		ID:       NodeID(uuid.NewString()),
		Label:    label,
		Category: cat,
		Pos:      s.randomPoint(),
	}
	s.nodes[n.ID] = n
	s.order = append(s.order, n.ID)
	s.gen.Add(1)
	s.emit(NodeAdded{Node: *n})
	return n.ID
}

// AddEdge connects two existing nodes and returns the new edge's id.
// Returns ErrInvalidReference if either endpoint is absent. Parallel edges
// between the same pair are allowed.
func (s *Store) AddEdge(from, to NodeID) (EdgeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[from]; !ok {
		return "", ErrInvalidReference
	}
	if _, ok := s.nodes[to]; !ok {
		return "", ErrInvalidReference
	}
	e := Edge{ID: EdgeID(uuid.NewString()), From: from, To: to}
	idx := len(s.edges)
	s.edges = append(s.edges, e)
	s.touched[from] = append(s.touched[from], idx)
	if to != from {
		s.touched[to] = append(s.touched[to], idx)
	}
	s.gen.Add(1)
	s.emit(EdgeAdded{Edge: e})
	return e.ID, nil
}

// SetPosition overwrites a node's position unconditionally. With markPinned
// true the node is additionally pinned, excluding it from force updates
// until [Store.SetPinned] releases it; with markPinned false the current
// pin state is left untouched. Pin flag and position are written in one
// critical section, so the next layout read observes both or neither.
// Returns ErrInvalidReference if the id is absent.
//
// The position is taken as-is: a live drag is authoritative and may place
// a node outside the bounds until it is unpinned and the engine reclaims it.
func (s *Store) SetPosition(id NodeID, pt Point, markPinned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return ErrInvalidReference
	}
	if markPinned {
		n.Pinned = true
	}
	n.Pos = pt
	s.emit(NodeMoved{ID: id, Pos: pt, Pinned: n.Pinned})
	return nil
}

// SetPinned sets or clears a node's pinned flag without touching its
// position. Unpinning hands the node back to the layout engine on its next
// iteration. Returns ErrInvalidReference if the id is absent.
func (s *Store) SetPinned(id NodeID, pinned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return ErrInvalidReference
	}
	n.Pinned = pinned
	s.emit(NodeMoved{ID: id, Pos: n.Pos, Pinned: pinned})
	return nil
}

// UnpinAll clears the pinned flag on every node and returns how many were
// released.
func (s *Store) UnpinAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	released := 0
	for _, id := range s.order {
		n := s.nodes[id]
		if !n.Pinned {
			continue
		}
		n.Pinned = false
		released++
		s.emit(NodeMoved{ID: n.ID, Pos: n.Pos, Pinned: false})
	}
	return released
}

// Generation returns the structural generation counter. It increments on
// every node and edge creation; position writes leave it unchanged.
func (s *Store) Generation() uint64 { return s.gen.Load() }

// ApplyFrame writes one layout iteration's positions. The whole frame is
// rejected with ErrStaleRun if gen no longer matches the store generation,
// so a superseded run can never write against a newer graph. Within a
// current frame, nodes that are pinned or unknown at apply time are
// skipped; everything else is written atomically and announced as a single
// [FrameApplied] event.
func (s *Store) ApplyFrame(gen uint64, positions map[NodeID]Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen.Load() != gen {
		return ErrStaleRun
	}
	applied := make(map[NodeID]Point, len(positions))
	for id, pt := range positions {
		n, ok := s.nodes[id]
		if !ok || n.Pinned {
			continue
		}
		n.Pos = pt
		applied[id] = pt
	}
	s.emit(FrameApplied{Positions: applied})
	return nil
}

// Snapshot returns a read-consistent value copy of the graph. Nodes appear
// in insertion order. The copy shares no memory with store state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	nodes := make([]Node, 0, len(s.order))
	for _, id := range s.order {
		nodes = append(nodes, *s.nodes[id])
	}
	return Snapshot{
		Nodes:      nodes,
		Edges:      slices.Clone(s.edges),
		Generation: s.gen.Load(),
	}
}

// Node returns a value copy of the node with the given id.
func (s *Store) Node(id NodeID) (Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Counts returns the number of nodes and edges.
func (s *Store) Counts() (nodes, edges int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes), len(s.edges)
}

// Degree returns the number of edges touching the node.
func (s *Store) Degree(id NodeID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.touched[id])
}

// Subscribe registers an event channel with the given buffer capacity
// (minimum 1) and returns it together with its cancel function. Cancelling
// closes the channel. Delivery never blocks a mutation: when a subscriber's
// buffer is full the oldest pending event is dropped in favor of the newest.
func (s *Store) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, buffer)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// emit delivers ev to every subscriber without blocking. Callers hold s.mu,
// which also serializes delivery order across mutations.
func (s *Store) emit(ev Event) {
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			// Full buffer: sacrifice the oldest pending event. A lagging
			// consumer resynchronizes from Snapshot, so only freshness
			// matters.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// randomPoint picks a uniformly distributed point inside the store bounds.
// Callers hold s.mu, which serializes use of the injected source.
func (s *Store) randomPoint() Point {
	var u, v float64
	if s.rng != nil {
		u, v = s.rng.Float64(), s.rng.Float64()
	} else {
		u, v = rand.Float64(), rand.Float64()
	}
	return Point{
		X: s.bounds.MinX + u*(s.bounds.MaxX-s.bounds.MinX),
		Y: s.bounds.MinY + v*(s.bounds.MaxY-s.bounds.MinY),
	}
}
