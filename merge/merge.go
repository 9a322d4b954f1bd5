// Package merge implements agglomerative block merging: repeatedly folding
// one block's entire membership into another, chosen greedily by entropy
// delta, to reduce a level's block count toward a target (spec.md §4.6).
package merge

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/hsbm-go/hsbm/netmodel"
)

// entropyTerm mirrors moves.entropyTerm; kept package-local rather than
// exported from moves so merge has no compile-time dependency on a package
// whose job (single-node proposals) is conceptually distinct from this
// package's (whole-block absorption), even though the underlying MDL formula
// is the same.
func entropyTerm(e, du, dv int, diagonal bool) float64 {
	if e == 0 {
		return 0
	}
	term := float64(e) * math.Log(float64(e)/(float64(du)*float64(dv)))
	if diagonal {
		term /= 2
	}
	return term
}

// blockSum mirrors moves.blockSum.
func blockSum(counts netmodel.NodeEdgeCounts, self *netmodel.Node, selfDegree int, degreeOf func(*netmodel.Node) int) float64 {
	var sum float64
	for _, nc := range netmodel.SortedEdgeCounts(counts) {
		sum += entropyTerm(nc.Count, selfDegree, degreeOf(nc.Block), nc.Block == self)
	}
	return sum
}

// ComputeDelta evaluates folding absorbed's entire membership into absorbing
// (same level, same type), following spec.md §4.6's local algorithm: it
// takes only absorbed's and absorbing's own neighbor-count maps (each a
// single GatherNeighborsAtLevel call) and algebraically folds one into the
// other, mirroring the original engine's merge_entropy_delta except for the
// sign: Δ here is the post-merge sum of e*log(e/(du*dv)) terms minus the
// pre-merge sum, so a merge that lowers that sum has a negative Δ. This is
// the opposite orientation from moves.Result.Delta, which subtracts the
// post-move sum from the pre-move sum. net is never mutated.
func ComputeDelta(net *netmodel.Network, absorbed, absorbing *netmodel.Node) (float64, error) {
	if absorbed == absorbing {
		return 0, nil
	}
	level := absorbed.Level()

	aToT, err := absorbed.GatherNeighborsAtLevel(level)
	if err != nil {
		return 0, fmt.Errorf("merge: absorbed neighbor counts: %w", err)
	}
	bToT, err := absorbing.GatherNeighborsAtLevel(level)
	if err != nil {
		return 0, fmt.Errorf("merge: absorbing neighbor counts: %w", err)
	}

	da := absorbed.Degree()
	db := absorbing.Degree()

	degreeOf := func(t *netmodel.Node) int {
		switch t {
		case absorbed:
			return da
		case absorbing:
			return db
		default:
			return t.Degree()
		}
	}

	eAB := aToT[absorbing]
	preSum := blockSum(aToT, absorbed, da, degreeOf) +
		blockSum(bToT, absorbing, db, degreeOf) -
		entropyTerm(eAB, da, db, false)

	merged := make(netmodel.NodeEdgeCounts, len(aToT)+len(bToT))
	for t, e := range aToT {
		if t == absorbing {
			continue
		}
		merged[t] += e
	}
	for t, e := range bToT {
		if t == absorbed {
			continue
		}
		merged[t] += e
	}
	mergedDegree := da + db
	merged[absorbing] = aToT[absorbed] + bToT[absorbing] + 2*eAB

	postDegreeOf := func(t *netmodel.Node) int {
		if t == absorbing {
			return mergedDegree
		}
		return t.Degree()
	}
	postSum := blockSum(merged, absorbing, mergedDegree, postDegreeOf)

	return postSum - preSum, nil
}

// Params bundles the merge-candidate enumeration controls spec.md §4.6 and
// §6's collapse_blocks signature name: n_checks_per_block bounded stochastic
// proposals via the merge-proposal distribution, with an exhaustive fallback
// when a type has too few same-type siblings to bother sampling.
type Params struct {
	// NChecksPerBlock is the number of candidate absorbing blocks to draw
	// per block via the merge-proposal distribution. Must be >= 1.
	NChecksPerBlock int
	// Eps is the ergodicity parameter passed to the merge-proposal draw
	// (netmodel.ProposeMove(b, b.Level(), eps)).
	Eps float64
	// AllowExhaustive, when true, enumerates every same-type sibling
	// instead of sampling whenever the sibling count is <= NChecksPerBlock.
	AllowExhaustive bool
}

// candidatesForBlock returns up to params.NChecksPerBlock distinct same-type
// sibling blocks of b, drawn via the merge-proposal distribution
// (netmodel.ProposeMove(b, b.Level(), eps)), or every sibling when
// params.AllowExhaustive is set and the sibling count does not exceed
// NChecksPerBlock.
func candidatesForBlock(net *netmodel.Network, b *netmodel.Node, params Params) ([]*netmodel.Node, error) {
	siblingsAndSelf, err := net.NodesOfType(b.Type(), b.Level())
	if err != nil {
		return nil, err
	}
	siblings := make([]*netmodel.Node, 0, len(siblingsAndSelf))
	for _, o := range siblingsAndSelf {
		if o != b {
			siblings = append(siblings, o)
		}
	}
	if len(siblings) == 0 {
		return nil, nil
	}
	if params.AllowExhaustive && len(siblings) <= params.NChecksPerBlock {
		return siblings, nil
	}

	seen := make(map[*netmodel.Node]bool, params.NChecksPerBlock)
	var out []*netmodel.Node
	for i := 0; i < params.NChecksPerBlock && len(seen) < len(siblings); i++ {
		cand, err := net.ProposeMove(b, b.Level(), params.Eps)
		if err != nil {
			return nil, err
		}
		if cand == b || cand.Type() != b.Type() || seen[cand] {
			continue
		}
		seen[cand] = true
		out = append(out, cand)
	}
	return out, nil
}

// Candidate is one block's best known merge partner among its proposed
// candidates, and the entropy cost of merging into it.
type Candidate struct {
	A, B  *netmodel.Node
	Delta float64
}

// candidateHeap is a min-heap over Candidate.Delta: the most entropy-
// reducing merges surface first, the same role dijkstra's nodeItem heap
// plays for shortest-distance-first expansion.
type candidateHeap []Candidate

func (h candidateHeap) Len() int            { return len(h) }
func (h candidateHeap) Less(i, j int) bool  { return h[i].Delta < h[j].Delta }
func (h candidateHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x interface{}) { *h = append(*h, x.(Candidate)) }
func (h *candidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// BestPartners computes, for every block at level, its best merge partner
// among up to params.NChecksPerBlock candidates drawn via the merge-proposal
// distribution (or every same-type sibling, under params.AllowExhaustive),
// and returns one Candidate per block that found at least one candidate.
func BestPartners(net *netmodel.Network, level int, params Params) ([]Candidate, error) {
	var out []Candidate
	for typ := 0; typ < net.NumTypes(); typ++ {
		blocks, err := net.NodesOfType(typ, level)
		if err != nil {
			return nil, err
		}
		for _, a := range blocks {
			candidates, err := candidatesForBlock(net, a, params)
			if err != nil {
				return nil, err
			}
			var best *netmodel.Node
			bestDelta := math.Inf(1)
			for _, b := range candidates {
				delta, err := ComputeDelta(net, a, b)
				if err != nil {
					return nil, err
				}
				if delta < bestDelta {
					bestDelta = delta
					best = b
				}
			}
			if best != nil {
				out = append(out, Candidate{A: a, B: best, Delta: bestDelta})
			}
		}
	}
	return out, nil
}

// Report summarizes the merges a Run call actually performed.
type Report struct {
	Merges []MergeRecord
}

// MergeRecord names one completed merge: Absorbed's membership moved into
// Into, at a total entropy cost of Delta.
type MergeRecord struct {
	Absorbed netmodel.NodeID
	Into     netmodel.NodeID
	Delta    float64
}

// Run greedily performs up to numMerges non-overlapping merges at level,
// ranked by BestPartners' per-block candidates via a min-heap so the
// lowest-cost merge is always selected next among those not yet involving an
// already-merged block in this round.
func Run(net *netmodel.Network, level int, numMerges int, params Params) (Report, error) {
	candidates, err := BestPartners(net, level, params)
	if err != nil {
		return Report{}, err
	}

	h := candidateHeap(candidates)
	heap.Init(&h)

	used := make(map[*netmodel.Node]bool)
	var report Report

	for h.Len() > 0 && len(report.Merges) < numMerges {
		c := heap.Pop(&h).(Candidate)
		if used[c.A] || used[c.B] {
			continue
		}

		for _, child := range c.A.Children() {
			child.SetParent(c.B, true)
		}
		if err := net.RemoveBlock(c.A); err != nil {
			return report, fmt.Errorf("merge: %w", err)
		}

		used[c.A] = true
		used[c.B] = true
		report.Merges = append(report.Merges, MergeRecord{
			Absorbed: c.A.ID(),
			Into:     c.B.ID(),
			Delta:    c.Delta,
		})
	}

	return report, nil
}
