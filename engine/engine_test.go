package engine_test

import (
	"context"
	"testing"

	"github.com/hsbm-go/hsbm/collapse"
	"github.com/hsbm-go/hsbm/engine"
	"github.com/stretchr/testify/require"
)

// sixNodeUnipartite matches the fixture spec.md §8 names for entropy-value
// regression checking: a ring of six nodes plus two chords, split into two
// blocks of three.
func sixNodeUnipartite(t *testing.T) *engine.Engine {
	t.Helper()
	e, err := engine.NewFromEdgeList(
		[]string{"n"},
		[]string{"v0", "v1", "v2", "v3", "v4", "v5"},
		[]string{"n", "n", "n", "n", "n", "n"},
		[]string{"v0", "v1", "v2", "v3", "v4", "v5", "v0", "v1"},
		[]string{"v1", "v2", "v3", "v4", "v5", "v0", "v3", "v4"},
		11,
	)
	require.NoError(t, err)
	require.NoError(t, e.InitializeBlocks(2))
	return e
}

func TestEntropy_IsNegativeForAConnectedPartition(t *testing.T) {
	e := sixNodeUnipartite(t)
	s, err := e.Entropy(1)
	require.NoError(t, err)
	// e*log(e/(du*dv)) is negative whenever e < du*dv, which holds for any
	// block pair that isn't fully saturated — true of every pair here.
	require.Less(t, s, 0.0)
}

func TestEvaluateMove_RoundTripsThroughEngine(t *testing.T) {
	e := sixNodeUnipartite(t)
	n0, err := e.Net.GetNode("v0")
	require.NoError(t, err)

	blocks, err := e.Net.NodesOfType(0, 1)
	require.NoError(t, err)
	target := n0.Parent()
	for _, b := range blocks {
		if b != n0.Parent() {
			target = b
		}
	}

	res, err := e.EvaluateMove(n0, target, 0.05)
	require.NoError(t, err)
	require.GreaterOrEqual(t, res.AcceptProb, 0.0)
	require.LessOrEqual(t, res.AcceptProb, 1.0)
}

func TestEngine_StateRoundTrip(t *testing.T) {
	e := sixNodeUnipartite(t)
	dump, err := e.State()
	require.NoError(t, err)

	_, err = e.RunSweeps(context.Background(), 0, 0.1, false, nil, 3)
	require.NoError(t, err)

	require.NoError(t, e.Restore(dump))
	redump, err := e.State()
	require.NoError(t, err)
	require.ElementsMatch(t, dump.Rows, redump.Rows)
}

func TestEngine_CollapseReachesTarget(t *testing.T) {
	e := sixNodeUnipartite(t)
	_, err := e.Collapse(context.Background(), 0, collapse.Config{
		Sigma:           1.2,
		TargetBlocks:    1,
		NChecksPerBlock: 6,
		AllowExhaustive: true,
	})
	require.NoError(t, err)

	n, err := e.Net.NNodesAtLevel(1)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestEngine_ConsensusTrackerCoversAllNodes(t *testing.T) {
	e := sixNodeUnipartite(t)
	tracker, err := e.NewConsensusTracker(1)
	require.NoError(t, err)

	require.NoError(t, tracker.Update(e.Net))
	require.Len(t, tracker.All(), 15) // C(6,2)
}
