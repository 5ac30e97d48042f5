// Package publish maintains the externally-visible copy of the entity graph.
//
// Renderers never read the store directly. A [Publisher] is the single
// consumer of the store's event stream: it folds every mutation into one
// render copy and fans complete [Update] values out to any number of
// subscribers (the TUI view, web clients). Subscriber channels hold one
// pending update and always keep the newest, so a slow renderer skips
// frames instead of applying them late, and no renderer can ever observe a
// half-applied mutation.
//
// The publisher also carries the processing flag: whether a layout run is
// in flight. It is set from the layout lifecycle hooks and travels inside
// every Update, which is what drives the animated activity indicators.
package publish

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/matzehuels/skein/pkg/graph"
)

// Update is one complete, self-consistent view of the graph. Slices are
// value copies owned by the receiver.
type Update struct {
	Nodes      []graph.Node `json:"nodes"`
	Edges      []graph.Edge `json:"edges"`
	Processing bool         `json:"processing"`
}

// Publisher folds store events into a render copy and fans updates out.
// Construct with [New] and drive with [Publisher.Run].
type Publisher struct {
	store  *graph.Store
	events <-chan graph.Event
	unsub  func()

	processing atomic.Bool

	mu      sync.Mutex
	nodes   []graph.Node
	index   map[graph.NodeID]int // node id -> index into nodes
	edges   []graph.Edge
	edgeIDs map[graph.EdgeID]struct{}
	subs    map[int]chan Update
	nextSub int
}

// New subscribes to store with the given event buffer and seeds the render
// copy from a snapshot. Events already in flight while seeding fold
// idempotently, so nothing is observed twice or lost.
func New(store *graph.Store, buffer int) *Publisher {
	events, unsub := store.Subscribe(buffer)
	p := &Publisher{
		store:   store,
		events:  events,
		unsub:   unsub,
		index:   make(map[graph.NodeID]int),
		edgeIDs: make(map[graph.EdgeID]struct{}),
		subs:    make(map[int]chan Update),
	}
	p.mu.Lock()
	p.resyncLocked()
	p.mu.Unlock()
	return p
}

// Run consumes store events until ctx is cancelled, then detaches from the
// store and returns ctx.Err().
func (p *Publisher) Run(ctx context.Context) error {
	defer p.unsub()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-p.events:
			if !ok {
				return nil
			}
			p.fold(ev)
		}
	}
}

// Subscribe registers an update channel and returns it with its cancel
// function. The current state is delivered immediately, so a new consumer
// paints without waiting for the next mutation. The channel holds one
// pending update; when the consumer lags, older pending updates are
// replaced by newer ones.
func (p *Publisher) Subscribe() (<-chan Update, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSub
	p.nextSub++
	ch := make(chan Update, 1)
	ch <- p.updateLocked()
	p.subs[id] = ch

	cancel := func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if sub, ok := p.subs[id]; ok {
			delete(p.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Current returns the present render copy.
func (p *Publisher) Current() Update {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updateLocked()
}

// SetProcessing records whether a layout run is in flight and pushes an
// update so activity indicators react without waiting for the next frame.
func (p *Publisher) SetProcessing(active bool) {
	p.processing.Store(active)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fanOutLocked()
}

// Processing reports whether a layout run is in flight.
func (p *Publisher) Processing() bool { return p.processing.Load() }

// fold applies one store event to the render copy and fans out.
func (p *Publisher) fold(ev graph.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch ev := ev.(type) {
	case graph.NodeAdded:
		if i, ok := p.index[ev.Node.ID]; ok {
			p.nodes[i] = ev.Node
		} else {
			p.index[ev.Node.ID] = len(p.nodes)
			p.nodes = append(p.nodes, ev.Node)
		}
	case graph.EdgeAdded:
		if _, ok := p.edgeIDs[ev.Edge.ID]; ok {
			break
		}
		_, fromKnown := p.index[ev.Edge.From]
		_, toKnown := p.index[ev.Edge.To]
		if !fromKnown || !toKnown {
			// We missed the endpoint's NodeAdded while lagging.
			p.resyncLocked()
			break
		}
		p.edgeIDs[ev.Edge.ID] = struct{}{}
		p.edges = append(p.edges, ev.Edge)
	case graph.NodeMoved:
		i, ok := p.index[ev.ID]
		if !ok {
			p.resyncLocked()
			break
		}
		p.nodes[i].Pos = ev.Pos
		p.nodes[i].Pinned = ev.Pinned
	case graph.FrameApplied:
		for id, pos := range ev.Positions {
			i, ok := p.index[id]
			if !ok {
				p.resyncLocked()
				break
			}
			p.nodes[i].Pos = pos
		}
	}

	p.fanOutLocked()
}

// resyncLocked rebuilds the render copy from a fresh snapshot. Callers hold
// p.mu. This is the recovery path for dropped events; in steady state it
// runs once, at construction.
func (p *Publisher) resyncLocked() {
	snap := p.store.Snapshot()
	p.nodes = snap.Nodes
	p.edges = snap.Edges
	p.index = make(map[graph.NodeID]int, len(snap.Nodes))
	for i, n := range snap.Nodes {
		p.index[n.ID] = i
	}
	p.edgeIDs = make(map[graph.EdgeID]struct{}, len(snap.Edges))
	for _, e := range snap.Edges {
		p.edgeIDs[e.ID] = struct{}{}
	}
}

// updateLocked builds a value-copy Update. Callers hold p.mu.
func (p *Publisher) updateLocked() Update {
	return Update{
		Nodes:      slices.Clone(p.nodes),
		Edges:      slices.Clone(p.edges),
		Processing: p.processing.Load(),
	}
}

// fanOutLocked delivers the current update to every subscriber without
// blocking, replacing any pending update. Callers hold p.mu.
func (p *Publisher) fanOutLocked() {
	if len(p.subs) == 0 {
		return
	}
	u := p.updateLocked()
	for _, ch := range p.subs {
		select {
		case ch <- u:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- u:
			default:
			}
		}
	}
}
