// Package engine is the external-interfaces façade: it wires netmodel,
// moves, merge, mcmc, collapse, and consensus together into the single
// construction/mutation/inspection/inference surface spec.md §6 describes.
// Callers that only need the whole-partition objective, a full sweep, or a
// full collapse run should reach for Engine rather than assembling the
// lower-level packages themselves.
package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/hsbm-go/hsbm/collapse"
	"github.com/hsbm-go/hsbm/consensus"
	"github.com/hsbm-go/hsbm/mcmc"
	"github.com/hsbm-go/hsbm/moves"
	"github.com/hsbm-go/hsbm/netmodel"
)

// Engine wraps a Network with the inference operations spec.md §6 exposes
// as a single cohesive API.
type Engine struct {
	Net *netmodel.Network
}

// New constructs an empty Engine over a fresh Network with the given
// declared node types.
func New(typeNames []string, seed int64) *Engine {
	return &Engine{Net: netmodel.New(typeNames, seed)}
}

// NewFromEdgeList constructs an Engine, bulk-loading ids/types and an edge
// list in one step.
func NewFromEdgeList(typeNames []string, ids, types, edgesA, edgesB []string, seed int64) (*Engine, error) {
	net, err := netmodel.NewBulk(typeNames, ids, types, edgesA, edgesB, seed)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return &Engine{Net: net}, nil
}

// NewRestrictedBipartite constructs an Engine in restricted-multipartite
// mode, only permitting edges between the named type pairs.
func NewRestrictedBipartite(typeNames []string, allowedA, allowedB []string, seed int64) (*Engine, error) {
	net, err := netmodel.NewRestrictedBipartite(typeNames, allowedA, allowedB, seed)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return &Engine{Net: net}, nil
}

// InitializeBlocks builds the first block level (level 1) over the data
// level; see netmodel.Network.InitializeBlocks for the B semantics.
func (e *Engine) InitializeBlocks(B int) error {
	return e.Net.InitializeBlocks(B)
}

// BuildLevel adds a fresh singleton level atop the current top level.
func (e *Engine) BuildLevel() error {
	return e.Net.BuildLevel()
}

// RunSweep performs one MCMC sweep over the nodes at level, proposing moves
// into blocks at level+1. If tracker is non-nil, the sweep updates its
// co-membership counts once the sweep completes (spec.md §4.7 step 4,
// §4.9); pass a nil tracker to skip consensus tracking entirely.
func (e *Engine) RunSweep(ctx context.Context, level int, eps float64, variableBlocks bool, tracker *consensus.Tracker) (mcmc.Report, error) {
	return mcmc.Sweep(ctx, e.Net, level, eps, variableBlocks, tracker != nil, tracker)
}

// RunSweeps performs n successive MCMC sweeps, updating tracker (if
// non-nil) after each one.
func (e *Engine) RunSweeps(ctx context.Context, level int, eps float64, variableBlocks bool, tracker *consensus.Tracker, n int) ([]mcmc.Report, error) {
	return mcmc.SweepN(ctx, e.Net, level, eps, variableBlocks, tracker != nil, tracker, n)
}

// Collapse agglomeratively merges blocks at level down to cfg.TargetBlocks.
func (e *Engine) Collapse(ctx context.Context, level int, cfg collapse.Config) (collapse.Report, error) {
	return collapse.Run(ctx, e.Net, level, cfg)
}

// EvaluateMove reports the entropy delta and acceptance probability of
// moving node to candidate, without performing it.
func (e *Engine) EvaluateMove(node, candidate *netmodel.Node, eps float64) (moves.Result, error) {
	return moves.ComputeMove(e.Net, node, candidate, eps)
}

// NewConsensusTracker builds a Tracker over every level-0 node, observed at
// level. Pairs whose two nodes declare incompatible types are excluded at
// construction (spec.md §4.9); see consensus.NewTracker.
func (e *Engine) NewConsensusTracker(level int) (*consensus.Tracker, error) {
	nodes, err := e.Net.NodesAtLevel(0)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return consensus.NewTracker(nodes, level), nil
}

// State captures a full snapshot of the network's hierarchy.
func (e *Engine) State() (netmodel.StateDump, error) {
	return e.Net.State()
}

// Restore replaces the network's block levels with dump's.
func (e *Engine) Restore(dump netmodel.StateDump) error {
	return e.Net.UpdateState(dump)
}

// Entropy returns, at level, the sum of e*log(e/(du*dv)) over every
// inter-block pair present at that level, halving self-block (diagonal)
// terms. This sum is the negative of the partition-dependent part of the MDL
// description length, so higher values mean a better fit; it is not the full
// description length, whose partition-independent terms are not included.
// merge.ComputeDelta reports changes in this sum and moves.Result.Delta
// reports changes in its negative.
func (e *Engine) Entropy(level int) (float64, error) {
	counts, err := e.Net.GetInterblockEdgeCounts(level)
	if err != nil {
		return 0, fmt.Errorf("engine: %w", err)
	}

	var sum float64
	for pair, edgeCount := range counts {
		if edgeCount == 0 {
			continue
		}
		du, dv := pair.A.Degree(), pair.B.Degree()
		term := float64(edgeCount) * math.Log(float64(edgeCount)/(float64(du)*float64(dv)))
		if pair.IsMatching() {
			term /= 2
		}
		sum += term
	}
	return sum, nil
}
