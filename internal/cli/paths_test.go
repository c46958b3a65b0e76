package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	dir, err := cacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".cache", appName), dir)
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/custom-cache", appName), dir)
}

func TestFileCacheDirFromConfig(t *testing.T) {
	isolate(t)
	t.Setenv("LINEAGE_CACHE_DIR", "/tmp/lineage-cache")
	c := New(os.Stderr, log.InfoLevel)

	dir, err := c.fileCacheDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/lineage-cache", dir)
}

func TestCacheClear(t *testing.T) {
	dir := isolate(t)
	cacheRoot := filepath.Join(dir, "cache", appName)
	require.NoError(t, os.MkdirAll(filepath.Join(cacheRoot, "ab"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cacheRoot, "ab", "abcdef.json"), []byte(`{}`), 0o644))

	c := New(os.Stderr, log.InfoLevel)
	require.NoError(t, run(t, c, "cache", "clear"))

	_, err := os.Stat(filepath.Join(cacheRoot, "ab", "abcdef.json"))
	assert.True(t, os.IsNotExist(err))
}
