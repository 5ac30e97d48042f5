package physics

import (
	"math"
	"slices"

	"github.com/matzehuels/skein/pkg/graph"
)

// Step computes one relaxation iteration and returns the next position for
// every unpinned node. All forces are evaluated against the positions in
// nodes, never against positions computed earlier in the same call, so the
// result is independent of node order.
//
// Two forces act on each unpinned node:
//
//   - Repulsion: every other node closer than cfg.MinDistance pushes it
//     away with magnitude cfg.RepulsionStrength / d². Pairs at or beyond
//     the cutoff do not interact.
//   - Attraction: every touching edge pulls it toward the opposite
//     endpoint with magnitude cfg.AttractionStrength × d. Parallel edges
//     pull once each.
//
// Distances are floored at 1px so coincident nodes produce finite forces.
// The summed displacement is applied directly (no velocity or damping) and
// the result is clamped into cfg.Bounds(). Pinned nodes exert forces on
// others but are absent from the returned map.
//
// cfg is applied as given; callers are expected to have passed it through
// [Config.ValidateAndSetDefaults].
func Step(nodes []graph.Node, edges []graph.Edge, cfg Config) map[graph.NodeID]graph.Point {
	pos := make(map[graph.NodeID]graph.Point, len(nodes))
	for _, n := range nodes {
		pos[n.ID] = n.Pos
	}

	// Other endpoint per node, one entry per touching edge.
	neighbors := make(map[graph.NodeID][]graph.NodeID, len(nodes))
	for _, e := range edges {
		if e.From == e.To {
			continue
		}
		neighbors[e.From] = append(neighbors[e.From], e.To)
		neighbors[e.To] = append(neighbors[e.To], e.From)
	}

	bounds := cfg.Bounds()
	next := make(map[graph.NodeID]graph.Point, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		if n.Pinned {
			continue
		}
		var fx, fy float64

		for j := range nodes {
			if i == j {
				continue
			}
			o := &nodes[j]
			dx := n.Pos.X - o.Pos.X
			dy := n.Pos.Y - o.Pos.Y
			d := math.Hypot(dx, dy)
			if d >= cfg.MinDistance {
				continue
			}
			d = max(d, 1)
			f := cfg.RepulsionStrength / (d * d)
			fx += f * dx / d
			fy += f * dy / d
		}

		for _, other := range neighbors[n.ID] {
			op, ok := pos[other]
			if !ok {
				continue
			}
			dx := op.X - n.Pos.X
			dy := op.Y - n.Pos.Y
			d := max(math.Hypot(dx, dy), 1)
			f := cfg.AttractionStrength * d
			fx += f * dx / d
			fy += f * dy / d
		}

		next[n.ID] = bounds.Clamp(graph.Point{X: n.Pos.X + fx, Y: n.Pos.Y + fy})
	}
	return next
}

// Converge runs the full iteration budget over a snapshot and returns the
// final positions of its unpinned nodes. It is the synchronous, store-free
// form of a layout run, used by one-shot exports where intermediate frames
// are of no interest.
func Converge(s graph.Snapshot, cfg Config) (map[graph.NodeID]graph.Point, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	nodes := slices.Clone(s.Nodes)
	final := make(map[graph.NodeID]graph.Point)
	for range cfg.Iterations {
		frame := Step(nodes, s.Edges, cfg)
		for i := range nodes {
			if p, ok := frame[nodes[i].ID]; ok {
				nodes[i].Pos = p
			}
		}
		for id, p := range frame {
			final[id] = p
		}
	}
	return final, nil
}
