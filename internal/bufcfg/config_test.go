package bufcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/bufcache/internal/bufferpool"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bufcache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_ParsesPoolAndStorage(t *testing.T) {
	path := writeConfig(t, `
pool:
  capacity: 64
  policy: lru
storage:
  file: ./data/pages.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 64, cfg.Pool.Capacity)
	require.Equal(t, "./data/pages.db", cfg.Storage.File)

	policy, err := cfg.Policy()
	require.NoError(t, err)
	require.Equal(t, bufferpool.LRU, policy)
}

func TestLoad_FillsDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  file: ./data/pages.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 128, cfg.Pool.Capacity)

	policy, err := cfg.Policy()
	require.NoError(t, err)
	require.Equal(t, bufferpool.Clock, policy)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestConfig_Policy_RejectsUnknownTag(t *testing.T) {
	path := writeConfig(t, `
pool:
  policy: lfu
storage:
  file: ./data/pages.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	_, err = cfg.Policy()
	require.Error(t, err)
}
