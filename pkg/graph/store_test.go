package graph

import (
	"errors"
	"math/rand/v2"
	"testing"
)

var testBounds = Rect{MinX: 50, MinY: 100, MaxX: 750, MaxY: 550}

func seededStore(seed uint64) *Store {
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	return New(testBounds, WithRand(rng))
}

func TestAddGroupNode(t *testing.T) {
	s := seededStore(1)

	id, err := s.AddGroupNode("The Greatest Generation")
	if err != nil {
		t.Fatalf("AddGroupNode() error = %v", err)
	}
	n, ok := s.Node(id)
	if !ok {
		t.Fatalf("Node(%q) not found after AddGroupNode", id)
	}
	if n.Category != CategoryGroup {
		t.Errorf("Category = %q, want %q", n.Category, CategoryGroup)
	}
	if n.Label != "The Greatest Generation" {
		t.Errorf("Label = %q, want %q", n.Label, "The Greatest Generation")
	}
	if !testBounds.Contains(n.Pos) {
		t.Errorf("initial position %+v outside bounds %+v", n.Pos, testBounds)
	}
	if n.Pinned {
		t.Error("new node should not be pinned")
	}
}

func TestAddGroupNodeNeverDeduplicates(t *testing.T) {
	s := seededStore(1)

	first, err := s.AddGroupNode("Friendly Fire")
	if err != nil {
		t.Fatalf("AddGroupNode() error = %v", err)
	}
	second, err := s.AddGroupNode("Friendly Fire")
	if err != nil {
		t.Fatalf("AddGroupNode() error = %v", err)
	}
	if first == second {
		t.Error("two groups with the same label should be distinct nodes")
	}
	if nodes, _ := s.Counts(); nodes != 2 {
		t.Errorf("node count = %d, want 2", nodes)
	}
}

func TestAddOrGetMemberNode(t *testing.T) {
	tests := []struct {
		name   string
		first  string
		second string
		same   bool
	}{
		{"exact label reuses node", "Ben", "Ben", true},
		{"different labels create nodes", "Ben", "Adam", false},
		{"match is case-sensitive", "Ben", "ben", false},
		{"match is whitespace-sensitive", "Ben", "Ben ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seededStore(7)
			a, err := s.AddOrGetMemberNode(tt.first)
			if err != nil {
				t.Fatalf("AddOrGetMemberNode(%q) error = %v", tt.first, err)
			}
			b, err := s.AddOrGetMemberNode(tt.second)
			if err != nil {
				t.Fatalf("AddOrGetMemberNode(%q) error = %v", tt.second, err)
			}
			if (a == b) != tt.same {
				t.Errorf("same id = %v, want %v", a == b, tt.same)
			}
		})
	}
}

func TestMemberDedupDoesNotCrossCategories(t *testing.T) {
	s := seededStore(1)

	group, _ := s.AddGroupNode("Rod")
	member, err := s.AddOrGetMemberNode("Rod")
	if err != nil {
		t.Fatalf("AddOrGetMemberNode() error = %v", err)
	}
	if group == member {
		t.Error("member dedup must not return a group node with the same label")
	}
}

func TestEmptyLabelRejected(t *testing.T) {
	s := seededStore(1)

	if _, err := s.AddGroupNode(""); !errors.Is(err, ErrInvalidLabel) {
		t.Errorf("AddGroupNode(\"\") error = %v, want ErrInvalidLabel", err)
	}
	if _, err := s.AddOrGetMemberNode(""); !errors.Is(err, ErrInvalidLabel) {
		t.Errorf("AddOrGetMemberNode(\"\") error = %v, want ErrInvalidLabel", err)
	}
	if nodes, _ := s.Counts(); nodes != 0 {
		t.Errorf("node count after rejected adds = %d, want 0", nodes)
	}
}

func TestAddEdge(t *testing.T) {
	s := seededStore(1)
	g, _ := s.AddGroupNode("Do By Friday")
	m, _ := s.AddOrGetMemberNode("Merlin")

	if _, err := s.AddEdge(g, m); err != nil {
		t.Fatalf("AddEdge() error = %v", err)
	}
	if got := s.Degree(g); got != 1 {
		t.Errorf("Degree(group) = %d, want 1", got)
	}
	if got := s.Degree(m); got != 1 {
		t.Errorf("Degree(member) = %d, want 1", got)
	}

	// Parallel edges are legal; the force model simply counts them twice.
	if _, err := s.AddEdge(g, m); err != nil {
		t.Fatalf("AddEdge() second error = %v", err)
	}
	if got := s.Degree(g); got != 2 {
		t.Errorf("Degree(group) after parallel edge = %d, want 2", got)
	}
}

func TestAddEdgeUnknownEndpoint(t *testing.T) {
	s := seededStore(1)
	g, _ := s.AddGroupNode("Back to Work")

	tests := []struct {
		name     string
		from, to NodeID
	}{
		{"unknown from", "nope", g},
		{"unknown to", g, "nope"},
		{"both unknown", "nope", "also nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.AddEdge(tt.from, tt.to); !errors.Is(err, ErrInvalidReference) {
				t.Errorf("AddEdge(%q, %q) error = %v, want ErrInvalidReference", tt.from, tt.to, err)
			}
		})
	}

	if _, edges := s.Counts(); edges != 0 {
		t.Errorf("edge count after rejected adds = %d, want 0", edges)
	}
}

func TestSetPosition(t *testing.T) {
	s := seededStore(1)
	id, _ := s.AddOrGetMemberNode("Alex")

	want := Point{X: 123, Y: 456}
	if err := s.SetPosition(id, want, true); err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}
	n, _ := s.Node(id)
	if n.Pos != want {
		t.Errorf("Pos = %+v, want %+v", n.Pos, want)
	}
	if !n.Pinned {
		t.Error("markPinned=true should pin the node")
	}

	// markPinned=false moves without releasing the pin.
	if err := s.SetPosition(id, Point{X: 1, Y: 2}, false); err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}
	n, _ = s.Node(id)
	if !n.Pinned {
		t.Error("markPinned=false must not clear an existing pin")
	}
	if n.Pos != (Point{X: 1, Y: 2}) {
		t.Errorf("Pos = %+v, want {1 2}", n.Pos)
	}

	if err := s.SetPosition("nope", want, true); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("SetPosition(unknown) error = %v, want ErrInvalidReference", err)
	}
}

func TestSetPositionAllowsOutOfBounds(t *testing.T) {
	s := seededStore(1)
	id, _ := s.AddOrGetMemberNode("Max")

	// A drag is authoritative even past the layout rectangle.
	out := Point{X: -500, Y: 9000}
	if err := s.SetPosition(id, out, true); err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}
	n, _ := s.Node(id)
	if n.Pos != out {
		t.Errorf("Pos = %+v, want %+v", n.Pos, out)
	}
}

func TestSetPinnedAndUnpinAll(t *testing.T) {
	s := seededStore(1)
	a, _ := s.AddOrGetMemberNode("Ben")
	b, _ := s.AddOrGetMemberNode("Adam")
	c, _ := s.AddOrGetMemberNode("Rod")

	if err := s.SetPinned(a, true); err != nil {
		t.Fatalf("SetPinned() error = %v", err)
	}
	if err := s.SetPinned(b, true); err != nil {
		t.Fatalf("SetPinned() error = %v", err)
	}
	if err := s.SetPinned("nope", true); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("SetPinned(unknown) error = %v, want ErrInvalidReference", err)
	}

	if got := s.UnpinAll(); got != 2 {
		t.Errorf("UnpinAll() = %d, want 2", got)
	}
	for _, id := range []NodeID{a, b, c} {
		if n, _ := s.Node(id); n.Pinned {
			t.Errorf("node %q still pinned after UnpinAll", n.Label)
		}
	}
	if got := s.UnpinAll(); got != 0 {
		t.Errorf("second UnpinAll() = %d, want 0", got)
	}
}

func TestGenerationCountsStructureOnly(t *testing.T) {
	s := seededStore(1)
	if got := s.Generation(); got != 0 {
		t.Fatalf("initial Generation() = %d, want 0", got)
	}

	g, _ := s.AddGroupNode("Roderick on the Line")
	m, _ := s.AddOrGetMemberNode("Rod")
	s.AddEdge(g, m)
	if got := s.Generation(); got != 3 {
		t.Errorf("Generation() after 2 nodes + 1 edge = %d, want 3", got)
	}

	// Dedup hits and position writes must not invalidate running layouts.
	s.AddOrGetMemberNode("Rod")
	s.SetPosition(m, Point{X: 1, Y: 1}, true)
	s.SetPinned(m, false)
	s.UnpinAll()
	if got := s.Generation(); got != 3 {
		t.Errorf("Generation() after non-structural writes = %d, want 3", got)
	}
}

func TestApplyFrame(t *testing.T) {
	s := seededStore(1)
	a, _ := s.AddOrGetMemberNode("Ben")
	b, _ := s.AddOrGetMemberNode("Adam")
	s.SetPinned(b, true)
	gen := s.Generation()

	frame := map[NodeID]Point{
		a:      {X: 200, Y: 200},
		b:      {X: 300, Y: 300},
		"nope": {X: 400, Y: 400},
	}
	if err := s.ApplyFrame(gen, frame); err != nil {
		t.Fatalf("ApplyFrame() error = %v", err)
	}

	na, _ := s.Node(a)
	if na.Pos != (Point{X: 200, Y: 200}) {
		t.Errorf("unpinned node Pos = %+v, want {200 200}", na.Pos)
	}
	nb, _ := s.Node(b)
	if nb.Pos == (Point{X: 300, Y: 300}) {
		t.Error("pinned node position must not be overwritten by a frame")
	}
}

func TestApplyFrameStaleGeneration(t *testing.T) {
	s := seededStore(1)
	a, _ := s.AddOrGetMemberNode("Ben")
	gen := s.Generation()
	before, _ := s.Node(a)

	// A structural mutation lands between compute and apply.
	s.AddOrGetMemberNode("Adam")

	err := s.ApplyFrame(gen, map[NodeID]Point{a: {X: 1, Y: 1}})
	if !errors.Is(err, ErrStaleRun) {
		t.Fatalf("ApplyFrame(stale) error = %v, want ErrStaleRun", err)
	}
	after, _ := s.Node(a)
	if after.Pos != before.Pos {
		t.Error("stale frame must be discarded in full")
	}
}

func TestSnapshotIsolationAndOrder(t *testing.T) {
	s := seededStore(1)
	g, _ := s.AddGroupNode("The Greatest Generation")
	ben, _ := s.AddOrGetMemberNode("Ben")
	adam, _ := s.AddOrGetMemberNode("Adam")
	s.AddEdge(g, ben)
	s.AddEdge(g, adam)

	snap := s.Snapshot()
	wantOrder := []NodeID{g, ben, adam}
	for i, id := range wantOrder {
		if snap.Nodes[i].ID != id {
			t.Errorf("Nodes[%d].ID = %q, want %q (insertion order)", i, snap.Nodes[i].ID, id)
		}
	}
	if snap.Generation != s.Generation() {
		t.Errorf("snapshot Generation = %d, want %d", snap.Generation, s.Generation())
	}

	// Writing through the snapshot must never reach the store.
	snap.Nodes[0].Pos = Point{X: -1, Y: -1}
	snap.Edges[0].From = "corrupted"
	if n, _ := s.Node(g); n.Pos == (Point{X: -1, Y: -1}) {
		t.Error("snapshot node mutation leaked into store")
	}
	if fresh := s.Snapshot(); fresh.Edges[0].From != g {
		t.Error("snapshot edge mutation leaked into store")
	}

	pos := snap.Positions()
	if len(pos) != 3 {
		t.Errorf("Positions() size = %d, want 3", len(pos))
	}
	if _, ok := pos[ben]; !ok {
		t.Error("Positions() missing a node")
	}
}

func TestSubscribeDeliversMutationsInOrder(t *testing.T) {
	s := seededStore(1)
	events, cancel := s.Subscribe(16)
	defer cancel()

	g, _ := s.AddGroupNode("Friendly Fire")
	m, _ := s.AddOrGetMemberNode("Rod")
	s.AddEdge(g, m)
	s.SetPosition(m, Point{X: 5, Y: 5}, true)
	s.ApplyFrame(s.Generation(), map[NodeID]Point{g: {X: 9, Y: 9}})

	added, ok := (<-events).(NodeAdded)
	if !ok || added.Node.ID != g {
		t.Fatalf("event 1 = %#v, want NodeAdded for group", added)
	}
	if !testBounds.Contains(added.Node.Pos) {
		t.Error("NodeAdded must carry the randomized initial position")
	}
	if _, ok := (<-events).(NodeAdded); !ok {
		t.Fatal("event 2 should be NodeAdded for member")
	}
	edge, ok := (<-events).(EdgeAdded)
	if !ok || edge.Edge.From != g || edge.Edge.To != m {
		t.Fatalf("event 3 = %#v, want EdgeAdded %q->%q", edge, g, m)
	}
	moved, ok := (<-events).(NodeMoved)
	if !ok || moved.ID != m || !moved.Pinned {
		t.Fatalf("event 4 = %#v, want pinned NodeMoved for member", moved)
	}
	frame, ok := (<-events).(FrameApplied)
	if !ok {
		t.Fatal("event 5 should be FrameApplied")
	}
	if got := frame.Positions[g]; got != (Point{X: 9, Y: 9}) {
		t.Errorf("FrameApplied position = %+v, want {9 9}", got)
	}
	if _, ok := frame.Positions[m]; ok {
		t.Error("FrameApplied must omit nodes pinned at apply time")
	}
}

func TestSubscribeDropsOldestWhenFull(t *testing.T) {
	s := seededStore(1)
	events, cancel := s.Subscribe(1)
	defer cancel()

	s.AddOrGetMemberNode("Ben")
	s.AddOrGetMemberNode("Adam")
	last, _ := s.AddOrGetMemberNode("Rod")

	ev, ok := (<-events).(NodeAdded)
	if !ok {
		t.Fatal("expected a NodeAdded event")
	}
	if ev.Node.ID != last {
		t.Errorf("surviving event is for %q, want newest node %q", ev.Node.ID, last)
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	s := seededStore(1)
	events, cancel := s.Subscribe(1)
	cancel()
	cancel() // idempotent

	if _, open := <-events; open {
		t.Error("channel should be closed after cancel")
	}

	// Mutations after cancel must not panic on the closed channel.
	s.AddOrGetMemberNode("Ben")
}

func TestWithRandPlacementIsDeterministic(t *testing.T) {
	build := func() []Point {
		s := seededStore(42)
		s.AddGroupNode("The Greatest Generation")
		s.AddOrGetMemberNode("Ben")
		s.AddOrGetMemberNode("Adam")
		var pts []Point
		for _, n := range s.Snapshot().Nodes {
			pts = append(pts, n.Pos)
		}
		return pts
	}

	a, b := build(), build()
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("node %d placed at %+v and %+v with the same seed", i, a[i], b[i])
		}
	}
}

// TestPodcastScenario mirrors the canonical two-group ingest: a shared
// member set must collapse onto the same nodes while groups stay distinct.
func TestPodcastScenario(t *testing.T) {
	s := seededStore(1)

	addGroup := func(label string, members ...string) {
		g, err := s.AddGroupNode(label)
		if err != nil {
			t.Fatalf("AddGroupNode(%q) error = %v", label, err)
		}
		for _, m := range members {
			id, err := s.AddOrGetMemberNode(m)
			if err != nil {
				t.Fatalf("AddOrGetMemberNode(%q) error = %v", m, err)
			}
			if _, err := s.AddEdge(g, id); err != nil {
				t.Fatalf("AddEdge(%q, %q) error = %v", label, m, err)
			}
		}
	}

	addGroup("The Greatest Generation", "Ben", "Adam")
	addGroup("Friendly Fire", "Ben", "Adam", "Rod")

	nodes, edges := s.Counts()
	if nodes != 5 {
		t.Errorf("node count = %d, want 5 (2 groups + 3 unique members)", nodes)
	}
	if edges != 5 {
		t.Errorf("edge count = %d, want 5", edges)
	}

	ben, _ := s.AddOrGetMemberNode("Ben")
	if got := s.Degree(ben); got != 2 {
		t.Errorf("Degree(Ben) = %d, want 2 (one edge per group)", got)
	}
}
