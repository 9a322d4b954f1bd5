package moves_test

import (
	"testing"

	"github.com/hsbm-go/hsbm/moves"
	"github.com/hsbm-go/hsbm/netmodel"
	"github.com/stretchr/testify/require"
)

// sixNodeRing builds the six-node unipartite network referenced by the
// determinism fixtures: a ring plus two chords, split into two blocks of
// three round-robin after a seeded shuffle.
func sixNodeRing(t *testing.T) *netmodel.Network {
	t.Helper()
	net := netmodel.New([]string{"n"}, 11)
	for _, id := range []string{"v0", "v1", "v2", "v3", "v4", "v5"} {
		_, err := net.AddNode(netmodel.NodeID(id), "n", 0)
		require.NoError(t, err)
	}
	require.NoError(t, net.AddEdges(
		[]string{"v0", "v1", "v2", "v3", "v4", "v5", "v0", "v1"},
		[]string{"v1", "v2", "v3", "v4", "v5", "v0", "v3", "v4"},
	))
	require.NoError(t, net.InitializeBlocks(2))
	return net
}

func TestComputeMove_SameParentIsNoop(t *testing.T) {
	net := sixNodeRing(t)
	n0, err := net.GetNode("v0")
	require.NoError(t, err)

	res, err := moves.ComputeMove(net, n0, n0.Parent(), 0.01)
	require.NoError(t, err)
	require.Equal(t, moves.Result{Delta: 0, ProbRatio: 1, AcceptProb: 1}, res)
}

func TestComputeMove_LeavesNetworkUnmutated(t *testing.T) {
	net := sixNodeRing(t)
	n0, err := net.GetNode("v0")
	require.NoError(t, err)

	blocks, err := net.NodesOfType(0, 1)
	require.NoError(t, err)
	var other *netmodel.Node
	for _, b := range blocks {
		if b != n0.Parent() {
			other = b
		}
	}
	require.NotNil(t, other)

	before, err := net.State()
	require.NoError(t, err)

	_, err = moves.ComputeMove(net, n0, other, 0.01)
	require.NoError(t, err)

	after, err := net.State()
	require.NoError(t, err)
	require.ElementsMatch(t, before.Rows, after.Rows)
}

func TestComputeMove_AcceptProbBounded(t *testing.T) {
	net := sixNodeRing(t)
	n0, err := net.GetNode("v0")
	require.NoError(t, err)

	blocks, err := net.NodesOfType(0, 1)
	require.NoError(t, err)
	var other *netmodel.Node
	for _, b := range blocks {
		if b != n0.Parent() {
			other = b
		}
	}

	res, err := moves.ComputeMove(net, n0, other, 0.01)
	require.NoError(t, err)
	require.GreaterOrEqual(t, res.AcceptProb, 0.0)
	require.LessOrEqual(t, res.AcceptProb, 1.0)
	require.Greater(t, res.ProbRatio, 0.0)
}

func TestComputeMove_NilParentRejected(t *testing.T) {
	net := sixNodeRing(t)
	n0, err := net.GetNode("v0")
	require.NoError(t, err)

	_, err = moves.ComputeMove(net, n0, nil, 0.01)
	require.ErrorIs(t, err, moves.ErrNilParent)
}
