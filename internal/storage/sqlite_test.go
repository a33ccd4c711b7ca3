package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivernet/internal/datfile"
	"rivernet/internal/network"
)

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_SaveModel_SnapshotSync(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	// Initial snapshot: two units and one branch
	m1 := &Model{
		Path:  "model.dat",
		Title: "first",
		Valid: true,
		Units: []Unit{
			{Seq: 0, Kind: "RIVER SECTION", Name: "A1", Labels: []string{"A1"}, Line: 8},
			{Seq: 1, Kind: "RIVER SECTION", Name: "A2", Labels: []string{"A2", "LAT"}, Line: 16},
		},
		Nodes:    []Node{{ID: "n1", Name: "A1", Labels: []string{"A1"}}, {ID: "n2", Name: "A2", Labels: []string{"A2"}}},
		Branches: []Branch{{ID: "b1", Name: "A1 → A2", Upstream: "n1", Downstream: "n2", Layers: [][]string{{"A1-A2"}}}},
	}
	require.NoError(t, store.SaveModel(ctx, m1))

	// New snapshot of the same path replaces everything
	m2 := &Model{
		Path:  "model.dat",
		Title: "second",
		Units: []Unit{{Seq: 0, Kind: "INTERPOLATE", Name: "B1", Labels: []string{"B1"}, Line: 8}},
	}
	require.NoError(t, store.SaveModel(ctx, m2))

	loaded, err := store.LoadModel(ctx, "model.dat")
	require.NoError(t, err)
	assert.Equal(t, "second", loaded.Title)
	assert.False(t, loaded.Valid)
	require.Len(t, loaded.Units, 1)
	assert.Equal(t, "B1", loaded.Units[0].Name)
	assert.Empty(t, loaded.Nodes)
	assert.Empty(t, loaded.Branches)
	assert.False(t, loaded.SavedAt.IsZero())
}

func TestSQLiteStore_DeleteAndList(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, p := range []string{"b.dat", "a.dat"} {
		require.NoError(t, store.SaveModel(ctx, &Model{Path: p, Units: []Unit{{Seq: 0, Name: "X", Labels: []string{"X"}}}}))
	}
	list, err := store.ListModels(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a.dat", list[0].Path)

	require.NoError(t, store.DeleteModel(ctx, "a.dat"))
	assert.ErrorIs(t, store.DeleteModel(ctx, "a.dat"), ErrModelNotFound)
	_, err = store.LoadModel(ctx, "a.dat")
	assert.ErrorIs(t, err, ErrModelNotFound)

	refs, err := store.FindUnitsByLabel(ctx, "X")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "b.dat", refs[0].Path)
}

func TestSQLiteStore_DataFileRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	d, err := datfile.Open(filepath.Join("..", "datfile", "testdata", "split.dat"))
	require.NoError(t, err)
	n := network.Build(d.Apply())
	m := NewModel(d, n)
	require.NoError(t, store.SaveModel(ctx, m))

	loaded, err := store.LoadModel(ctx, d.Path)
	require.NoError(t, err)
	assert.Equal(t, "Split channel test model", loaded.Title)
	assert.True(t, loaded.Valid)
	assert.Equal(t, 12, loaded.NodeLabelLength)
	assert.Len(t, loaded.Units, 15)
	assert.Equal(t, m.Nodes, loaded.Nodes)
	assert.Equal(t, m.Branches, loaded.Branches)

	refs, err := store.FindUnitsByLabel(ctx, "B01")
	require.NoError(t, err)
	var kinds []string
	for _, r := range refs {
		kinds = append(kinds, r.Unit.Kind)
	}
	assert.Equal(t, []string{"JUNCTION OPEN", "RIVER SECTION"}, kinds)
}
