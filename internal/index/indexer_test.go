package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivernet/internal/crawler"
	"rivernet/internal/datfile"
	"rivernet/internal/network"
	"rivernet/internal/storage"
)

func TestIndexer_Index(t *testing.T) {
	root := t.TempDir()
	fixture, err := os.ReadFile(filepath.Join("..", "datfile", "testdata", "split.dat"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.dat"), fixture, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "events"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "events", "b.ied"), []byte("no line break"), 0o644))

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	defer store.Close()

	idx := NewIndexer(crawler.NewCrawler(), WithStore(store), WithWorkers(2),
		WithNetworkOptions(network.IncludePartialReaches(false)))
	ctx := context.Background()
	summaries, err := idx.Index(ctx, root)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	t.Run("Valid model", func(t *testing.T) {
		s := summaries[0]
		assert.Equal(t, filepath.Join(root, "a.dat"), s.Path)
		assert.True(t, s.Valid)
		assert.Equal(t, "Split channel test model", s.Title)
		assert.Equal(t, 15, s.Units)
		assert.Equal(t, 6, s.Reaches)
		assert.Equal(t, 1, s.Branches)
		assert.Equal(t, 2, s.Nodes)
		assert.Zero(t, s.Errors)
		assert.Empty(t, s.Err)
	})

	t.Run("Broken file is reported", func(t *testing.T) {
		s := summaries[1]
		assert.False(t, s.Valid)
		assert.Equal(t, 1, s.Errors)
		assert.Contains(t, s.Err, datfile.ErrNoLineBreaks.Error())
	})

	t.Run("Only parsed models are stored", func(t *testing.T) {
		models, err := store.ListModels(ctx)
		require.NoError(t, err)
		require.Len(t, models, 1)
		assert.Equal(t, filepath.Join(root, "a.dat"), models[0].Path)

		m, err := store.LoadModel(ctx, models[0].Path)
		require.NoError(t, err)
		assert.Len(t, m.Units, 15)
		assert.Len(t, m.Branches, 1)
	})

	t.Run("Summary file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "summary.json")
		require.NoError(t, idx.SaveSummary(summaries, path))
		loaded, err := idx.LoadSummary(path)
		require.NoError(t, err)
		assert.Equal(t, summaries, loaded)
	})
}

func TestIndexer_Load(t *testing.T) {
	idx := NewIndexer(crawler.NewCrawler())
	m, err := idx.Load(filepath.Join("..", "datfile", "testdata", "split.dat"))
	require.NoError(t, err)
	assert.Len(t, m.Network.Branches, 1)

	_, err = idx.Load(filepath.Join(t.TempDir(), "missing.dat"))
	assert.Error(t, err)
}

func TestIndexer_LoadSummaryRejectsBadFile(t *testing.T) {
	idx := NewIndexer(crawler.NewCrawler())
	dir := t.TempDir()

	tests := []struct {
		name string
		body string
	}{
		{"Not an array", `{"path": "a.dat"}`},
		{"Missing counts", `[{"path": "a.dat", "valid": true}]`},
		{"Negative count", `[{"path": "a.dat", "valid": true, "units": -1, "skipped": 0, "reaches": 0, "branches": 0, "nodes": 0, "errors": 0, "warnings": 0}]`},
		{"Not JSON", `units: 3`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "summary.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, err := idx.LoadSummary(path)
			assert.Error(t, err)
		})
	}
}
