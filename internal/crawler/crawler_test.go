package crawler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		p := filepath.Join(root, r)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x\n"), 0o644))
	}
}

func TestCrawler_Scan(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"model.dat",
		"events/100yr.IED",
		"events/notes.txt",
		"results/model.dat",
		".git/config",
	)

	c := NewCrawler()
	files, err := c.Files(root)
	require.NoError(t, err)

	t.Run("Finds data files", func(t *testing.T) {
		assert.Equal(t, []string{
			filepath.Join(root, "events", "100yr.IED"),
			filepath.Join(root, "model.dat"),
		}, files)
	})

	t.Run("Custom ignore list", func(t *testing.T) {
		files, err := NewCrawler("events").Files(root)
		require.NoError(t, err)
		assert.Len(t, files, 2)
		assert.Contains(t, files, filepath.Join(root, "results", "model.dat"))
	})

	t.Run("Callback error stops the walk", func(t *testing.T) {
		stop := errors.New("stop")
		n := 0
		err := c.Scan(root, func(string) error {
			n++
			return stop
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, n)
	})
}
