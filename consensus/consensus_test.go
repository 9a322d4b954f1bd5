package consensus_test

import (
	"testing"

	"github.com/hsbm-go/hsbm/consensus"
	"github.com/hsbm-go/hsbm/netmodel"
	"github.com/stretchr/testify/require"
)

func TestMakeKey_IsOrderInsensitive(t *testing.T) {
	require.Equal(t, consensus.MakeKey("a", "b"), consensus.MakeKey("b", "a"))
}

func TestTracker_AlwaysCoLocatedReachesFiveAfterFiveSweeps(t *testing.T) {
	net := netmodel.New([]string{"n"}, 1)
	ids := []netmodel.NodeID{"v0", "v1", "v2", "v3"}
	nodes := make([]*netmodel.Node, len(ids))
	for i, id := range ids {
		n, err := net.AddNode(id, "n", 0)
		require.NoError(t, err)
		nodes[i] = n
	}
	require.NoError(t, net.InitializeBlocks(1)) // single block per type: all four co-located

	tracker := consensus.NewTracker(nodes, 1)
	for i := 0; i < 5; i++ {
		require.NoError(t, tracker.Update(net))
	}

	status, ok := tracker.Status("v0", "v2")
	require.True(t, ok)
	require.True(t, status.Connected)
	require.Equal(t, 5, status.TimesConnected)
}

func TestTracker_SeparatedPairStopsAccumulating(t *testing.T) {
	net := netmodel.New([]string{"n"}, 1)
	ids := []netmodel.NodeID{"v0", "v1"}
	nodes := make([]*netmodel.Node, len(ids))
	for i, id := range ids {
		n, err := net.AddNode(id, "n", 0)
		require.NoError(t, err)
		nodes[i] = n
	}
	require.NoError(t, net.InitializeBlocks(1))

	tracker := consensus.NewTracker(nodes, 1)
	require.NoError(t, tracker.Update(net))

	n0, err := net.GetNode("v0")
	require.NoError(t, err)
	blocks, err := net.NodesOfType(0, 1)
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	newBlock, err := net.AddNode("", "n", 1)
	require.NoError(t, err)
	net.SwapBlocks(n0, newBlock, false)

	require.NoError(t, tracker.Update(net))

	status, ok := tracker.Status("v0", "v1")
	require.True(t, ok)
	require.False(t, status.Connected)
	require.Equal(t, 1, status.TimesConnected)
}

func TestTracker_ExcludesCrossTypePairs(t *testing.T) {
	net := netmodel.New([]string{"a", "b"}, 1)
	a0, err := net.AddNode("a0", "a", 0)
	require.NoError(t, err)
	a1, err := net.AddNode("a1", "a", 0)
	require.NoError(t, err)
	b0, err := net.AddNode("b0", "b", 0)
	require.NoError(t, err)

	tracker := consensus.NewTracker([]*netmodel.Node{a0, a1, b0}, 0)

	_, sameTypeOK := tracker.Status("a0", "a1")
	require.True(t, sameTypeOK)

	_, crossTypeOK := tracker.Status("a0", "b0")
	require.False(t, crossTypeOK)

	require.Len(t, tracker.All(), 1)
}

func TestTracker_AllReturnsSortedEntries(t *testing.T) {
	net := netmodel.New([]string{"n"}, 1)
	ids := []netmodel.NodeID{"v0", "v1", "v2"}
	nodes := make([]*netmodel.Node, len(ids))
	for i, id := range ids {
		n, err := net.AddNode(id, "n", 0)
		require.NoError(t, err)
		nodes[i] = n
	}
	require.NoError(t, net.InitializeBlocks(1))

	tracker := consensus.NewTracker(nodes, 1)
	require.NoError(t, tracker.Update(net))

	entries := tracker.All()
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		require.Less(t, entries[i-1].Key, entries[i].Key)
	}
}
