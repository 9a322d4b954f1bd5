// Package mcmc drives one Metropolis-Hastings sweep over a block level: each
// node proposes a move to a neighbor-weighted candidate parent, and the move
// is accepted or rejected according to the entropy delta the moves package
// computes.
package mcmc

import (
	"context"
	"fmt"

	"github.com/hsbm-go/hsbm/consensus"
	"github.com/hsbm-go/hsbm/moves"
	"github.com/hsbm-go/hsbm/netmodel"
	"github.com/hsbm-go/hsbm/sampler"
)

// pollEvery controls how often Sweep checks ctx for cancellation — checking
// on every node would make cancellation latency negligible but adds
// unnecessary overhead to the hot loop; every 100 nodes matches spec.md §5's
// polling cadence.
const pollEvery = 100

// NodeOutcome records one node's proposal-and-decision within a sweep.
type NodeOutcome struct {
	NodeID   netmodel.NodeID
	Proposed netmodel.NodeID
	Accepted bool
	Delta    float64
}

// Report summarizes a completed (or partially completed, on cancellation)
// sweep.
type Report struct {
	Level       int
	NumProposed int
	NumAccepted int
	TotalDelta  float64
	Outcomes    []NodeOutcome
	// PairCounts is tracker.All() taken right after this sweep's
	// co-membership update, populated only when trackPairs was set and a
	// non-nil tracker was supplied. This is spec.md §6's mcmc_sweep
	// pair_counts return value.
	PairCounts []consensus.Entry
}

// Sweep proposes and decides a move for every node at level, in an order
// shuffled by net's own Sampler. Following spec.md §4.7 step 1, if
// variableBlocks is set, a reserve (empty) block per type at level+1 is
// ensured *before* any node proposes a move, so every node's proposal
// distribution can land on blank room to grow into, and ensured again after
// every accepted move. A proposed block of a type other than the node's own
// is rejected without evaluation, so blocks stay type-homogeneous. If
// trackPairs is set and
// tracker is non-nil, tracker.Update is called once at the end of the sweep
// so co-membership statistics accumulate across successive sweeps (spec.md
// §4.9). Returns ctx.Err() if cancelled mid-sweep, with Report reflecting
// the work completed so far.
func Sweep(ctx context.Context, net *netmodel.Network, level int, eps float64, variableBlocks, trackPairs bool, tracker *consensus.Tracker) (Report, error) {
	if variableBlocks {
		for i := 0; i < net.NumTypes(); i++ {
			name, err := net.TypeName(i)
			if err != nil {
				return Report{}, fmt.Errorf("mcmc: reserve block: %w", err)
			}
			if _, _, err := net.EnsureReserveBlock(name, level+1); err != nil {
				return Report{}, fmt.Errorf("mcmc: reserve block: %w", err)
			}
		}
	}

	nodes, err := net.NodesAtLevel(level)
	if err != nil {
		return Report{}, fmt.Errorf("mcmc: %w", err)
	}
	sampler.Shuffle(net.Rng, nodes)

	report := Report{Level: level}
	for i, n := range nodes {
		if i%pollEvery == 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			default:
			}
		}

		candidate, err := net.ProposeMove(n, level+1, eps)
		if err != nil {
			return report, fmt.Errorf("mcmc: propose for %q: %w", n.ID(), err)
		}
		if candidate.Type() != n.Type() {
			report.NumProposed++
			report.Outcomes = append(report.Outcomes, NodeOutcome{NodeID: n.ID(), Proposed: candidate.ID()})
			continue
		}

		result, err := moves.ComputeMove(net, n, candidate, eps)
		if err != nil {
			return report, fmt.Errorf("mcmc: evaluate move for %q: %w", n.ID(), err)
		}

		accepted := net.Rng.DrawUnif() < result.AcceptProb
		if accepted {
			net.SwapBlocks(n, candidate, true)
			report.NumAccepted++
			report.TotalDelta += result.Delta
			if variableBlocks {
				name, err := net.TypeName(n.Type())
				if err != nil {
					return report, fmt.Errorf("mcmc: reserve block: %w", err)
				}
				if _, _, err := net.EnsureReserveBlock(name, level+1); err != nil {
					return report, fmt.Errorf("mcmc: reserve block: %w", err)
				}
			}
		}
		report.NumProposed++
		report.Outcomes = append(report.Outcomes, NodeOutcome{
			NodeID:   n.ID(),
			Proposed: candidate.ID(),
			Accepted: accepted,
			Delta:    result.Delta,
		})
	}

	if trackPairs && tracker != nil {
		if err := tracker.Update(net); err != nil {
			return report, fmt.Errorf("mcmc: consensus update: %w", err)
		}
		report.PairCounts = tracker.All()
	}

	return report, nil
}

// SweepN runs n successive sweeps at level, stopping early (and returning
// ctx.Err()) if any sweep is cancelled. Reports are returned in order.
func SweepN(ctx context.Context, net *netmodel.Network, level int, eps float64, variableBlocks, trackPairs bool, tracker *consensus.Tracker, n int) ([]Report, error) {
	reports := make([]Report, 0, n)
	for i := 0; i < n; i++ {
		r, err := Sweep(ctx, net, level, eps, variableBlocks, trackPairs, tracker)
		reports = append(reports, r)
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}
