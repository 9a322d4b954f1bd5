package netmodel

import "fmt"

// AddEdge connects two level-0 nodes by id. Both endpoints are resolved via
// idIndex; self-edges are permitted and, per spec.md §3, increment the
// node's degree and neighbor list twice. In MultipartiteRestricted mode the
// type pair of the endpoints must appear in the allowed whitelist, or the
// call fails with ErrRestrictedEdge.
func (net *Network) AddEdge(aID, bID NodeID) error {
	net.mu.Lock()
	defer net.mu.Unlock()

	a, ok := net.idIndex[aID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, aID)
	}
	b, ok := net.idIndex[bID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, bID)
	}

	if net.partite == MultipartiteRestricted {
		pair := NewOrderedPair(a.typ, b.typ)
		if _, ok := net.allowedByIndex[pair]; !ok {
			return fmt.Errorf("%w: %s--%s", ErrRestrictedEdge, net.types[a.typ], net.types[b.typ])
		}
	}

	if err := a.AddNeighbor(b); err != nil {
		return err
	}
	if err := b.AddNeighbor(a); err != nil {
		return err
	}
	return nil
}

// AddEdges bulk-adds edges from two parallel id slices (edgesA[i]--edgesB[i]
// for every i). Fails on the first invalid pair, leaving prior edges in
// place — callers building a network from a single edge list should treat a
// partial failure as fatal and discard the Network, matching the "construct,
// don't patch" usage the original engine's bulk constructors assume.
func (net *Network) AddEdges(edgesA, edgesB []string) error {
	for i := range edgesA {
		if err := net.AddEdge(NodeID(edgesA[i]), NodeID(edgesB[i])); err != nil {
			return fmt.Errorf("edge %d (%s--%s): %w", i, edgesA[i], edgesB[i], err)
		}
	}
	return nil
}

// GetInterblockEdgeCounts computes, for every node at lvl, its projected
// edge counts against every other node at lvl, folded into the canonical
// NodePair keying of spec.md §4.3. An edge between two different blocks adds
// 1 to their pair (only the block with the smaller id records it). An edge
// inside one block adds 2 to that block's matching pair, since both of its
// half-edges land in the same block's GatherNeighborsAtLevel result —
// the same convention the move/merge delta calculators use.
//
// Complexity: O(level-0 node count × average degree).
func (net *Network) GetInterblockEdgeCounts(lvl int) (InterBlockEdgeCounts, error) {
	net.mu.RLock()
	defer net.mu.RUnlock()

	if err := net.checkLevel(lvl); err != nil {
		return nil, err
	}
	if lvl == 0 {
		return nil, ErrDataLevel
	}

	out := make(InterBlockEdgeCounts)
	for _, bucket := range net.levels[lvl].byType {
		for _, n := range bucket {
			counts, err := n.GatherNeighborsAtLevel(lvl)
			if err != nil {
				return nil, err
			}
			for target, c := range counts {
				pair := MakeNodePair(n, target)
				if pair.A != n {
					continue // counted from the other block's side
				}
				out[pair] += c
			}
		}
	}
	return out, nil
}
