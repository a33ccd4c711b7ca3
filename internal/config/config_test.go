package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"RIVERNET_DB", "RIVERNET_LOG_LEVEL", "RIVERNET_LOG_FORMAT", "RIVERNET_INCLUDE_PARTIAL"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_YAMLAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "rivernet.yaml")
	body := `
storage:
  path: models.db
log:
  level: debug
network:
  include_partial_reaches: false
scan:
  workers: 8
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "models.db", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.Network.IncludePartialReaches)
	assert.Equal(t, 8, cfg.Scan.Workers)

	t.Setenv("RIVERNET_DB", "/tmp/other.db")
	t.Setenv("RIVERNET_INCLUDE_PARTIAL", "true")
	t.Setenv("RIVERNET_LOG_FORMAT", "json")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.Storage.Path)
	assert.True(t, cfg.Network.IncludePartialReaches)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_Errors(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [unclosed"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)

	t.Setenv("RIVERNET_INCLUDE_PARTIAL", "maybe")
	_, err = LoadConfig("")
	assert.Error(t, err)
}
