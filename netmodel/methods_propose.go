package netmodel

import "fmt"

// candidateTypesFor returns the type indices a node of typ may be proposed
// into, given the network's partite mode: itself only for Unipartite, every
// declared type for Multipartite, and only the types paired with typ in the
// restricted whitelist for MultipartiteRestricted.
func (net *Network) candidateTypesFor(typ int) []int {
	switch net.partite {
	case Unipartite:
		return []int{typ}
	case Multipartite:
		out := make([]int, len(net.types))
		for i := range out {
			out[i] = i
		}
		return out
	default: // MultipartiteRestricted
		var out []int
		for other := range net.types {
			if _, ok := net.allowedByIndex[NewOrderedPair(typ, other)]; ok {
				out = append(out, other)
			}
		}
		return out
	}
}

// PossibleNeighborBlocks reports how many candidate parent blocks node could
// be proposed into one level above its current level — the normalizer
// denominator of the degree-proportional proposal distribution, and the
// value the moves package needs to invert a proposal probability when
// computing the Metropolis-Hastings return probability.
func (net *Network) PossibleNeighborBlocks(node *Node) (int, error) {
	net.mu.RLock()
	defer net.mu.RUnlock()
	return net.possibleNeighborBlocksAtLevel(node, node.level+1)
}

func (net *Network) possibleNeighborBlocksAtLevel(node *Node, lvl int) (int, error) {
	if err := net.checkLevel(lvl); err != nil {
		return 0, err
	}
	total := 0
	for _, typ := range net.candidateTypesFor(node.typ) {
		total += len(net.levels[lvl].byType[typ])
	}
	return total, nil
}

// ProposeMove samples a candidate parent block for node at toLevel using the
// degree-proportional proposal distribution of spec.md §4.5/§8: each
// candidate block b (drawn from the partite-mode-permitted types at
// toLevel) is weighted e_b + eps, where e_b is the number of edges node
// projects to b at toLevel (zero for blocks node has no edge to), and eps is
// the ergodicity parameter keeping every candidate reachable even when
// e_b == 0. Returns ErrTooFewNodesForBlocks if toLevel has no eligible
// candidate blocks at all (e.g. proposing from an empty type).
func (net *Network) ProposeMove(node *Node, toLevel int, eps float64) (*Node, error) {
	net.mu.RLock()
	if err := net.checkLevel(toLevel); err != nil {
		net.mu.RUnlock()
		return nil, err
	}
	candidates := make([]*Node, 0)
	for _, typ := range net.candidateTypesFor(node.typ) {
		candidates = append(candidates, net.levels[toLevel].byType[typ]...)
	}
	net.mu.RUnlock()

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidate blocks at level %d", ErrTooFewNodesForBlocks, toLevel)
	}

	neighborCounts, err := node.GatherNeighborsAtLevel(toLevel)
	if err != nil {
		return nil, err
	}

	weights := make([]float64, len(candidates))
	for i, cand := range candidates {
		weights[i] = float64(neighborCounts[cand]) + eps
	}

	idx, err := net.Rng.SampleWeighted(weights)
	if err != nil {
		return nil, err
	}
	return candidates[idx], nil
}

// ProposalWeight returns the unnormalized weight (e_b + eps) and the total
// normalizer that ProposeMove(node, toLevel, eps) would have used to select
// candidate — the quantity the moves package needs on both sides of a
// Metropolis-Hastings prob_ratio (the forward proposal and the probability
// of the reverse move proposing node's original block back).
func (net *Network) ProposalWeight(node *Node, candidate *Node, toLevel int, eps float64) (weight, total float64, err error) {
	net.mu.RLock()
	if err = net.checkLevel(toLevel); err != nil {
		net.mu.RUnlock()
		return 0, 0, err
	}
	n, err := net.possibleNeighborBlocksAtLevel(node, toLevel)
	net.mu.RUnlock()
	if err != nil {
		return 0, 0, err
	}

	neighborCounts, err := node.GatherNeighborsAtLevel(toLevel)
	if err != nil {
		return 0, 0, err
	}

	var sum float64
	for _, nc := range sortedEdgeCounts(neighborCounts) {
		sum += float64(nc.Count)
	}
	total = sum + eps*float64(n)
	weight = float64(neighborCounts[candidate]) + eps
	return weight, total, nil
}
