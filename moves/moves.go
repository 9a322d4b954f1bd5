// Package moves implements the move-delta calculator: the entropy change and
// Metropolis-Hastings acceptance probability of reassigning a single node to
// a candidate parent block, computed incrementally over only the pairs that
// touch the node's old and new parent (spec.md §4.5).
package moves

import (
	"errors"
	"fmt"
	"math"

	"github.com/hsbm-go/hsbm/netmodel"
)

// ErrNilParent indicates ComputeMove was called with a nil old or new
// parent, which is always a caller error (the sweep driver never proposes a
// move off of an unparented node).
var ErrNilParent = errors.New("moves: old and new parent must both be non-nil")

// Result bundles a proposed move's entropy delta, its Metropolis-Hastings
// proposal-probability ratio, and the derived acceptance probability.
type Result struct {
	// Delta is S_after - S_before, summed over only the block pairs whose
	// edge count changes when node moves from oldParent to newParent.
	// Negative means the move lowers total description length. The summed
	// e*log(e/(du*dv)) terms are the negative of the description length's
	// partition-dependent part, so Delta is the pre-move sum minus the
	// post-move sum.
	Delta float64

	// ProbRatio is P(reverse proposal) / P(forward proposal) — the
	// Hastings correction for the asymmetric, degree-proportional
	// proposal distribution implemented by netmodel.ProposeMove.
	ProbRatio float64

	// AcceptProb is min(1, ProbRatio*exp(-Delta)), the Metropolis-Hastings
	// acceptance probability.
	AcceptProb float64
}

// entropyTerm evaluates the MDL entropy contribution of one block pair:
// e*log(e/(du*dv)), halved when the pair is diagonal (a block's edges to
// itself). e == 0 contributes nothing (the limit of x*log(x) as x -> 0).
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

// blockSum sums entropyTerm(e_{self,t}, selfDegree, degreeOf(t), t==self)
// over every neighbor block t in counts, in a deterministic (block-id)
// order so the accumulation is reproducible bit-for-bit.
func blockSum(counts netmodel.NodeEdgeCounts, self *netmodel.Node, selfDegree int, degreeOf func(*netmodel.Node) int) float64 {
	var sum float64
	for _, nc := range netmodel.SortedEdgeCounts(counts) {
		sum += entropyTerm(nc.Count, selfDegree, degreeOf(nc.Block), nc.Block == self)
	}
	return sum
}

// ComputeMove evaluates moving node from its current parent (r) to newParent
// (s), both at the same block level, following spec.md §4.5's local
// algorithm: only the pairs (r,·) and (s,·) ever change, so the entire
// calculation is driven off three GatherNeighborsAtLevel calls — on node, r,
// and s — rather than a full network-wide edge-count scan. net is never
// mutated; this is a pure evaluation the mcmc package re-applies for real
// only if it decides to accept.
//
// eps is the ergodicity parameter netmodel.ProposeMove and
// netmodel.ProposalWeight use for the degree-proportional proposal
// distribution; it must match the value used to generate the original
// proposal so the Hastings ratio is valid.
func ComputeMove(net *netmodel.Network, node, newParent *netmodel.Node, eps float64) (Result, error) {
	oldParent := node.Parent()
	if oldParent == nil || newParent == nil {
		return Result{}, ErrNilParent
	}
	if oldParent == newParent {
		return Result{Delta: 0, ProbRatio: 1, AcceptProb: 1}, nil
	}

	level := oldParent.Level()

	// Step 1: local neighbor-count maps for the moving node and both
	// candidate parents, each O(descendant count x degree).
	nodeToT, err := node.GatherNeighborsAtLevel(level)
	if err != nil {
		return Result{}, fmt.Errorf("moves: node neighbor counts: %w", err)
	}
	rToT, err := oldParent.GatherNeighborsAtLevel(level)
	if err != nil {
		return Result{}, fmt.Errorf("moves: old parent neighbor counts: %w", err)
	}
	sToT, err := newParent.GatherNeighborsAtLevel(level)
	if err != nil {
		return Result{}, fmt.Errorf("moves: new parent neighbor counts: %w", err)
	}

	dNode := node.Degree()
	dr := oldParent.Degree()
	ds := newParent.Degree()

	preDegreeOf := func(t *netmodel.Node) int {
		switch t {
		case oldParent:
			return dr
		case newParent:
			return ds
		default:
			return t.Degree()
		}
	}

	// Step 2: pre-move entropy over t in neighbors(r) U neighbors(s), the
	// (r,s) term counted once (it appears as a key in both rToT and sToT).
	eRS := rToT[newParent]
	preSum := blockSum(rToT, oldParent, dr, preDegreeOf) +
		blockSum(sToT, newParent, ds, preDegreeOf) -
		entropyTerm(eRS, dr, ds, false)

	// Step 3: the incremental edge-count update. For t outside {r,s}, node's
	// contribution moves 1-for-1 from (r,t) to (s,t). For t == r (edges from
	// node to the rest of r) and t == s (edges from node to the rest of s),
	// the diagonal double-counting means the transfer is worth 2x on the
	// gaining/losing diagonal and the (r,s) cross term shifts by nodeR on
	// one side and nodeS on the other.
	nodeR := nodeToT[oldParent]
	nodeS := nodeToT[newParent]

	newRToT := make(netmodel.NodeEdgeCounts, len(rToT))
	for t, e := range rToT {
		newRToT[t] = e
	}
	newSToT := make(netmodel.NodeEdgeCounts, len(sToT))
	for t, e := range sToT {
		newSToT[t] = e
	}
	for t, e := range nodeToT {
		switch t {
		case oldParent, newParent:
			// handled below via the diagonal/cross-term adjustments.
		default:
			newRToT[t] -= e
			newSToT[t] += e
		}
	}
	newRToT[oldParent] -= 2 * nodeR
	newSToT[newParent] += 2 * nodeS
	newERS := eRS + nodeR - nodeS
	newRToT[newParent] = newERS
	newSToT[oldParent] = newERS

	// Step 4.
	newDr := dr - dNode
	newDs := ds + dNode

	postDegreeOf := func(t *netmodel.Node) int {
		switch t {
		case oldParent:
			return newDr
		case newParent:
			return newDs
		default:
			return t.Degree()
		}
	}

	// Step 5: post-move entropy, same shape as step 2.
	postSum := blockSum(newRToT, oldParent, newDr, postDegreeOf) +
		blockSum(newSToT, newParent, newDs, postDegreeOf) -
		entropyTerm(newERS, newDr, newDs, false)

	delta := preSum - postSum

	fwdWeight, fwdTotal, err := net.ProposalWeight(node, newParent, level, eps)
	if err != nil {
		return Result{}, fmt.Errorf("moves: forward proposal weight: %w", err)
	}
	revWeight, revTotal, err := net.ProposalWeight(node, oldParent, level, eps)
	if err != nil {
		return Result{}, fmt.Errorf("moves: reverse proposal weight: %w", err)
	}

	probRatio := (revWeight / revTotal) / (fwdWeight / fwdTotal)
	accept := probRatio * math.Exp(-delta)
	if accept > 1 {
		accept = 1
	}

	return Result{Delta: delta, ProbRatio: probRatio, AcceptProb: accept}, nil
}
