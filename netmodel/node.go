package netmodel

import "sort"

// NodeID uniquely identifies a node: a user-supplied string at level 0, or
// an engine-generated "b_<n>" id for block nodes (spec.md §3).
type NodeID string

// Node is a single vertex in the multi-level graph. At level 0 it owns an
// ordered multi-sequence of neighbors and no children; at level >= 1 it owns
// a set of children and no neighbors. No runtime polymorphism is needed —
// which collection is populated tells the two cases apart, exactly as
// spec.md §9's "Variants instead of inheritance" design note prescribes.
//
// Node is always heap-allocated individually and referenced by pointer; Go's
// garbage collector keeps those pointers stable for the node's lifetime, so
// — unlike the original C++ engine's raw-pointer-into-a-resizable-vector
// design — no index indirection is required to keep references valid across
// Network mutations (spec.md §9's first design note is a C++-specific
// hazard that does not apply here).
type Node struct {
	id     NodeID
	level  int
	typ    int
	parent *Node

	children  map[NodeID]*Node // level >= 1 only
	neighbors []*Node          // level 0 only; ordered, may repeat (self-edges appear twice)

	degree int // cached: sum of multiplicities (level 0) or sum of children's degree (block)
}

// NewNode constructs a Node with the given id, level, and type. Block nodes
// are expected to receive an engine-generated id (see Network.addBlockNode).
func NewNode(id NodeID, level, typ int) *Node {
	n := &Node{id: id, level: level, typ: typ}
	if level >= 1 {
		n.children = make(map[NodeID]*Node)
	}
	return n
}

func (n *Node) ID() NodeID    { return n.id }
func (n *Node) Level() int    { return n.level }
func (n *Node) Type() int     { return n.typ }
func (n *Node) Parent() *Node { return n.parent }
func (n *Node) Degree() int   { return n.degree }
func (n *Node) HasParent() bool {
	return n.parent != nil
}

// NumChildren returns the number of direct children; always 0 at level 0.
func (n *Node) NumChildren() int { return len(n.children) }

// IsEmpty reports whether a block node has no children. Level-0 nodes are
// never "empty" in this sense; IsEmpty is only meaningful for level >= 1.
func (n *Node) IsEmpty() bool { return len(n.children) == 0 }

// HasChild reports whether c is a direct child of n.
func (n *Node) HasChild(c *Node) bool {
	if n.children == nil {
		return false
	}
	_, ok := n.children[c.id]
	return ok
}

// Children returns a deterministic (id-sorted) snapshot of n's children.
// Enumeration only: callers must not rely on mutating the returned slice to
// change the graph.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Neighbors returns n's level-0 neighbor multi-sequence in insertion order.
// Empty (not an error) for level >= 1 nodes.
func (n *Node) Neighbors() []*Node {
	out := make([]*Node, len(n.neighbors))
	copy(out, n.neighbors)
	return out
}

// SetParent re-parents n onto p. If updateChildren is true (the common
// case), n is removed from its old parent's children set and added to p's;
// both old and new parent's cached degree are adjusted by n's degree. With
// updateChildren=false neither children set is touched and the old parent's
// degree is left unchanged; only n's parent pointer (and p's degree, if p is
// non-nil) changes. DeleteBlockLevel uses SetParent(nil, false) to detach
// the children of a level it is discarding.
func (n *Node) SetParent(p *Node, updateChildren bool) {
	old := n.parent

	if updateChildren && old != nil {
		delete(old.children, n.id)
		addDegree(old, -n.degree)
	}

	n.parent = p
	if p != nil {
		if updateChildren {
			if p.children == nil {
				p.children = make(map[NodeID]*Node)
			}
			p.children[n.id] = n
		}
		addDegree(p, n.degree)
	}
}

// addDegree propagates a degree delta up through every ancestor of n
// (n itself included), matching the invariant degree(b) = Σ degree(children).
func addDegree(n *Node, delta int) {
	for cur := n; cur != nil; cur = cur.parent {
		cur.degree += delta
	}
}

// AddNeighbor appends other to n's level-0 neighbor list and propagates a
// degree increment of 1 up n's ancestor chain. Level-0 only; the caller
// (Network.AddEdge) calls this once per endpoint, so a self-edge calls it
// twice on the same node, producing the "appears twice" invariant of
// spec.md §3.
func (n *Node) AddNeighbor(other *Node) error {
	if n.level != 0 {
		return ErrNotLevelZero
	}
	n.neighbors = append(n.neighbors, other)
	addDegree(n, 1)
	return nil
}

// ParentAtLevel climbs n's ancestor chain to the node at level L. Returns n
// itself when L == n.level. Fails with ErrLevelBelowNode if L < n.level
// (ancestors only climb up) and ErrNoParentAtLevel if the chain runs out of
// parents before reaching L.
func (n *Node) ParentAtLevel(L int) (*Node, error) {
	if L < n.level {
		return nil, ErrLevelBelowNode
	}
	cur := n
	for cur.level < L {
		if cur.parent == nil {
			return nil, ErrNoParentAtLevel
		}
		cur = cur.parent
	}
	return cur, nil
}

// NodeEdgeCounts maps a block at some level to the number of half-edges n's
// level-0 descendants (or, if n is itself level 0, n's own neighbors)
// contribute to it once projected up to that level.
type NodeEdgeCounts map[*Node]int

// GatherNeighborsAtLevel implements spec.md §4.2's
// gather_neighbors_at_level(L): every level-0 descendant of n (n itself, if
// n is already level 0) contributes one count per neighbor, with that
// neighbor projected up to level L. Calling this on a block aggregates over
// every descendant, which is what makes inter-block edge counts and the
// move-delta/merge-delta calculators work uniformly whether n is a data
// node or a block. L need not relate to n.level — the agglomerative merger
// calls this with L == n.level to gather a block's counts against its own
// level's peers.
//
// Complexity: O(descendant level-0 nodes × their degree).
func (n *Node) GatherNeighborsAtLevel(L int) (NodeEdgeCounts, error) {
	counts := make(NodeEdgeCounts)
	var walkErr error

	var visit func(cur *Node)
	visit = func(cur *Node) {
		if walkErr != nil {
			return
		}
		if cur.level == 0 {
			for _, nb := range cur.neighbors {
				target, err := nb.ParentAtLevel(L)
				if err != nil {
					walkErr = err
					return
				}
				counts[target]++
			}
			return
		}
		for _, c := range cur.children {
			visit(c)
			if walkErr != nil {
				return
			}
		}
	}
	visit(n)

	if walkErr != nil {
		return nil, walkErr
	}
	return counts, nil
}

// sortedEdgeCounts returns a deterministic (by neighbor-block id) ordering
// of an edge-count map, so that entropy accumulation sums terms in a fixed
// order regardless of Go's randomized map iteration — matching the style of
// lvlath/core's sorted Vertices()/Edges()/NeighborIDs(), and keeping
// move-delta results reproducible bit-for-bit across runs with identical
// input, not merely within floating-point tolerance.
func sortedEdgeCounts(m NodeEdgeCounts) []NodeCount {
	out := make([]NodeCount, 0, len(m))
	for k, v := range m {
		out = append(out, NodeCount{Block: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Block.id < out[j].Block.id })
	return out
}

// NodeCount pairs a neighbor block with the count of edges to it; the
// deterministic-order view of a NodeEdgeCounts entry.
type NodeCount struct {
	Block *Node
	Count int
}

// SortedEdgeCounts exposes sortedEdgeCounts for use by the moves and merge
// packages, which need the same deterministic accumulation order.
func SortedEdgeCounts(m NodeEdgeCounts) []NodeCount { return sortedEdgeCounts(m) }
