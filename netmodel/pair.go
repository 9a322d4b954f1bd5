package netmodel

import "cmp"

// OrderedPair canonicalizes two values of an ordered type so that
// OrderedPair(a, b) == OrderedPair(b, a). It is the general-purpose building
// block spec.md §4.3 describes; NodePair (below) is its specialization over
// *Node, used for inter-block edge-count maps.
type OrderedPair[T cmp.Ordered] struct {
	First  T
	Second T
}

// NewOrderedPair builds the canonical form of (a, b): First <= Second.
func NewOrderedPair[T cmp.Ordered](a, b T) OrderedPair[T] {
	if a <= b {
		return OrderedPair[T]{First: a, Second: b}
	}
	return OrderedPair[T]{First: b, Second: a}
}

// IsMatching reports whether both elements of the pair are equal — the
// scalar used to decide the 1x/2x self-edge term in entropy formulas.
func (p OrderedPair[T]) IsMatching() bool {
	return p.First == p.Second
}

// NodePair is an unordered {a, b} pair of *Node canonicalized by node id, so
// it is usable directly as a comparable map key (two *Node pointers compare
// equal iff they are the same node). Self-edges produce a matching pair.
type NodePair struct {
	A *Node
	B *Node
}

// MakeNodePair canonicalizes (a, b) by ascending node id so that
// MakeNodePair(a, b) == MakeNodePair(b, a).
func MakeNodePair(a, b *Node) NodePair {
	if a.id <= b.id {
		return NodePair{A: a, B: b}
	}
	return NodePair{A: b, B: a}
}

// IsMatching reports whether this pair is a self-pair (both endpoints the
// same node) — used to apply the diagonal 2x/÷2 scalar in entropy formulas.
func (p NodePair) IsMatching() bool {
	return p.A == p.B
}

// InterBlockEdgeCounts maps a canonical block pair to the number of
// undirected edges projected between them at some level; self-edges
// contribute 2 to the matching pair's count (spec.md §4.3).
type InterBlockEdgeCounts map[NodePair]int
