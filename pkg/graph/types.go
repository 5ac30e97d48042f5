package graph

// =============================================================================
// Identifiers and Categories
// =============================================================================

// NodeID uniquely identifies a node for its lifetime. IDs are immutable
// and never reused.
type NodeID string

// EdgeID uniquely identifies an edge for its lifetime.
type EdgeID string

// Category drives rendering (color) and the member merge rule: member
// nodes are deduplicated by label within their category, group nodes are not.
type Category string

const (
	// CategoryGroup marks a collective entity (e.g. a podcast) that links
	// to member nodes.
	CategoryGroup Category = "group"

	// CategoryMember marks an individual participant, deduplicated by
	// exact label across groups.
	CategoryMember Category = "member"
)

// =============================================================================
// Geometry
// =============================================================================

// Point is a 2D position in layout space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is the axis-aligned rectangle nodes are placed into and clamped
// against. Min is the top-left corner, Max the bottom-right (screen
// coordinates, y growing downward).
type Rect struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Clamp returns p constrained into the rectangle.
func (r Rect) Clamp(p Point) Point {
	return Point{
		X: max(r.MinX, min(r.MaxX, p.X)),
		Y: max(r.MinY, min(r.MaxY, p.Y)),
	}
}

// Contains reports whether p lies inside the rectangle (inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Empty reports whether the rectangle has no interior.
func (r Rect) Empty() bool {
	return r.MaxX <= r.MinX || r.MaxY <= r.MinY
}

// =============================================================================
// Nodes and Edges
// =============================================================================

// Node is a vertex of the entity graph. Pinned nodes are under external
// (user) control: the layout engine skips them entirely and their position
// changes only through [Store.SetPosition].
type Node struct {
	ID       NodeID   `json:"id"`
	Label    string   `json:"label"`
	Category Category `json:"category"`
	Pos      Point    `json:"pos"`
	Pinned   bool     `json:"pinned,omitempty"`
}

// Edge connects two nodes. Edges are undirected for force purposes
// (attraction applies symmetrically); the from/to orientation records
// provenance (group → member).
type Edge struct {
	ID   EdgeID `json:"id"`
	From NodeID `json:"from"`
	To   NodeID `json:"to"`
}

// Other returns the endpoint opposite to id, and whether the edge touches
// id at all. Used when walking a node's neighborhood.
func (e Edge) Other(id NodeID) (NodeID, bool) {
	switch id {
	case e.From:
		return e.To, true
	case e.To:
		return e.From, true
	}
	return "", false
}

// =============================================================================
// Snapshot
// =============================================================================

// Snapshot is a read-consistent value copy of the graph: the input to one
// layout iteration and the unit renderers draw from. Nodes appear in
// insertion order so output is deterministic. Mutating a snapshot never
// affects the store.
type Snapshot struct {
	Nodes      []Node `json:"nodes"`
	Edges      []Edge `json:"edges"`
	Generation uint64 `json:"generation"`
}

// Positions returns the position of every node keyed by id.
func (s Snapshot) Positions() map[NodeID]Point {
	m := make(map[NodeID]Point, len(s.Nodes))
	for _, n := range s.Nodes {
		m[n.ID] = n.Pos
	}
	return m
}
