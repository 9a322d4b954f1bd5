// Package collapse drives agglomerative collapse: starting from one block
// per node at a fixed data level, repeatedly merging blocks down toward a
// target count following a geometric schedule controlled by sigma, and
// optionally interleaving MCMC sweeps between rounds (spec.md §4.8).
package collapse

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/hsbm-go/hsbm/mcmc"
	"github.com/hsbm-go/hsbm/merge"
	"github.com/hsbm-go/hsbm/netmodel"
)

// ErrNoProgress indicates a collapse round requested at least one merge but
// merge.Run performed none — every block at level already shares its only
// same-type partner with another already-merged block this round. Collapse
// refuses to loop forever waiting for a block count that cannot shrink
// further under the current round's constraints.
var ErrNoProgress = errors.New("collapse: merge round made no progress")

// ErrTargetBelowTypes indicates cfg.TargetBlocks asked for fewer blocks than
// the network has declared types, which is unsatisfiable: every type needs
// at least one block of its own (spec.md §4.8 step 1).
var ErrTargetBelowTypes = errors.New("collapse: target block count is below the number of declared types")

// Config parameterizes a collapse run.
type Config struct {
	// Sigma controls how aggressively each round shrinks the block count:
	// larger sigma means smaller per-round merge counts and more rounds.
	Sigma float64

	// TargetBlocks is the block count collapse stops at. Must be >= the
	// network's declared type count.
	TargetBlocks int

	// SweepsPerRound, if > 0, runs that many MCMC sweeps at the data level
	// (reassigning its members into the just-shrunk block level) after
	// every merge round. These sweeps always run with variable_num_blocks
	// disabled, per spec.md §4.8 step 4.
	SweepsPerRound int
	Eps            float64

	// NChecksPerBlock bounds how many candidate absorbing blocks the
	// agglomerative merger draws per block via the merge-proposal
	// distribution; see merge.Params.
	NChecksPerBlock int
	// AllowExhaustive enables merge.Params' exhaustive fallback for small
	// same-type pools.
	AllowExhaustive bool
	// ReportAllSteps, when true, records one StageRecord per individual
	// merge performed, in addition to the per-round summaries always
	// produced.
	ReportAllSteps bool
}

// StageRecord is one (entropy_delta, merge_from, merge_into, state,
// n_blocks) record spec.md §6's collapse_blocks names, one per merge
// performed, produced only when Config.ReportAllSteps is set. State is a
// snapshot taken once per round (after all of that round's merges and any
// interleaved sweeps have completed) rather than after each individual
// merge — recomputing a full StateDump between every merge in a round would
// multiply collapse's cost by its round size for a snapshot granularity the
// driver does not otherwise need.
type StageRecord struct {
	EntropyDelta float64
	MergeFrom    netmodel.NodeID
	MergeInto    netmodel.NodeID
	State        netmodel.StateDump
	NBlocks      int
}

// RoundReport summarizes one merge-then-optionally-sweep round.
type RoundReport struct {
	NumMerges    int
	Merge        merge.Report
	SweepReports []mcmc.Report
	// Stages holds one StageRecord per merge in this round, populated only
	// when Config.ReportAllSteps is set.
	Stages []StageRecord
}

// Report summarizes a full collapse run.
type Report struct {
	Rounds []RoundReport
}

// numMerges implements spec.md §4.8's merge-count schedule:
// max(1, B_cur - max(B_end, floor(B_cur/sigma))).
func numMerges(bCur, bEnd int, sigma float64) int {
	floorDiv := int(math.Floor(float64(bCur) / sigma))
	target := bEnd
	if floorDiv > target {
		target = floorDiv
	}
	n := bCur - target
	if n < 1 {
		n = 1
	}
	return n
}

// Run collapses nodeLevel's block hierarchy down to cfg.TargetBlocks,
// following spec.md §4.8's five-step algorithm:
//  1. Validate cfg.TargetBlocks >= the network's declared type count.
//  2. Strip any existing block levels above nodeLevel and reinitialize a
//     fresh one-block-per-node level on top of it.
//  3. Read the resulting block count.
//  4. Repeatedly merge down by round, interleaving cfg.SweepsPerRound MCMC
//     sweeps at nodeLevel after each round if configured.
//  5. Return the aggregate per-round report.
//
// Returns ctx.Err() if a sweep is cancelled mid-round, and ErrNoProgress if
// a round cannot shrink the block count any further.
func Run(ctx context.Context, net *netmodel.Network, nodeLevel int, cfg Config) (Report, error) {
	var report Report

	if cfg.TargetBlocks < net.NumTypes() {
		return report, fmt.Errorf("%w: target %d, have %d types", ErrTargetBelowTypes, cfg.TargetBlocks, net.NumTypes())
	}

	for net.TopLevel() > nodeLevel {
		if err := net.DeleteBlockLevel(); err != nil {
			return report, fmt.Errorf("collapse: %w", err)
		}
	}
	if err := net.InitializeBlocks(-1); err != nil {
		return report, fmt.Errorf("collapse: %w", err)
	}
	blockLevel := nodeLevel + 1

	mergeParams := merge.Params{
		NChecksPerBlock: cfg.NChecksPerBlock,
		Eps:             cfg.Eps,
		AllowExhaustive: cfg.AllowExhaustive,
	}

	for {
		bCur, err := net.NNodesAtLevel(blockLevel)
		if err != nil {
			return report, fmt.Errorf("collapse: %w", err)
		}
		if bCur <= cfg.TargetBlocks {
			return report, nil
		}

		n := numMerges(bCur, cfg.TargetBlocks, cfg.Sigma)
		mergeReport, err := merge.Run(net, blockLevel, n, mergeParams)
		if err != nil {
			return report, fmt.Errorf("collapse: %w", err)
		}
		if len(mergeReport.Merges) == 0 {
			return report, ErrNoProgress
		}

		round := RoundReport{NumMerges: n, Merge: mergeReport}
		if cfg.SweepsPerRound > 0 {
			sweeps, sweepErr := mcmc.SweepN(ctx, net, nodeLevel, cfg.Eps, false, false, nil, cfg.SweepsPerRound)
			round.SweepReports = sweeps
			if sweepErr != nil {
				report.Rounds = append(report.Rounds, round)
				return report, sweepErr
			}
		}

		if cfg.ReportAllSteps {
			state, stateErr := net.State()
			if stateErr != nil {
				report.Rounds = append(report.Rounds, round)
				return report, fmt.Errorf("collapse: %w", stateErr)
			}
			remaining := bCur
			for _, m := range mergeReport.Merges {
				remaining--
				round.Stages = append(round.Stages, StageRecord{
					EntropyDelta: m.Delta,
					MergeFrom:    m.Absorbed,
					MergeInto:    m.Into,
					State:        state,
					NBlocks:      remaining,
				})
			}
		}

		report.Rounds = append(report.Rounds, round)
	}
}
