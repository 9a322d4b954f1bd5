package store_test

import (
	"testing"

	"github.com/hsbm-go/hsbm/netmodel"
	"github.com/hsbm-go/hsbm/store"
	"github.com/stretchr/testify/require"
)

func sampleDump() netmodel.StateDump {
	return netmodel.StateDump{
		Types: []string{"n"},
		Rows: []netmodel.StateRow{
			{ID: "v0", TypeName: "n", Level: 0, ParentID: "b_0"},
			{ID: "v1", TypeName: "n", Level: 0, ParentID: "b_0"},
			{ID: "b_0", TypeName: "n", Level: 1, ParentID: ""},
		},
	}
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestStore_SaveThenLoadRoundTrips(t *testing.T) {
	s := openTestStore(t)
	dump := sampleDump()

	require.NoError(t, s.Save("run-1", dump))

	loaded, err := s.Load("run-1", dump.Types)
	require.NoError(t, err)
	require.ElementsMatch(t, dump.Rows, loaded.Rows)
	require.Equal(t, dump.Types, loaded.Types)
}

func TestStore_LoadUnknownRun(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Load("missing", []string{"n"})
	require.ErrorIs(t, err, store.ErrRunNotFound)
}

func TestStore_SaveReplacesPriorRowsForSameRun(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Save("run-1", sampleDump()))

	smaller := netmodel.StateDump{
		Types: []string{"n"},
		Rows: []netmodel.StateRow{
			{ID: "v0", TypeName: "n", Level: 0, ParentID: ""},
		},
	}
	require.NoError(t, s.Save("run-1", smaller))

	loaded, err := s.Load("run-1", smaller.Types)
	require.NoError(t, err)
	require.Len(t, loaded.Rows, 1)
}

func TestStore_ListRuns(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Save("run-a", sampleDump()))
	require.NoError(t, s.Save("run-b", sampleDump()))

	runs, err := s.ListRuns()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"run-a", "run-b"}, runs)
}
