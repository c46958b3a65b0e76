package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/lineage/pkg/errors"
)

// isolate points XDG_CONFIG_HOME at an empty dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{"LINEAGE_STORAGE_BACKEND", "LINEAGE_AI_API_KEY", "OPENAI_API_KEY", "OPENAI_MODEL", "LINEAGE_AI_MODEL", "LINEAGE_SESSION_TTL", "LINEAGE_SERVER_ADDR"} {
		t.Setenv(k, "")
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.False(t, cfg.AI.Enabled())
}

func TestDefaultPath(t *testing.T) {
	dir := isolate(t)
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "lineage", "config.toml"), path)
}

func TestLoadFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "lineage", "config.toml"), `
[storage]
backend = "postgres"
postgres_dsn = "host=db dbname=lineage"

[cache]
backend = "none"

[ai]
model = "gpt-4o"

[session]
ttl = "24h"
`)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, "host=db dbname=lineage", cfg.Storage.PostgresDSN)
	assert.Equal(t, BackendNone, cfg.Cache.Backend)
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, ":8080", cfg.Server.Addr, "unset fields keep defaults")
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	writeFile(t, path, "[server]\naddr = \":9000\"\n")

	t.Setenv("LINEAGE_SERVER_ADDR", ":7000")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("LINEAGE_AI_API_KEY", "sk-lineage")
	t.Setenv("LINEAGE_SESSION_TTL", "1h")
	t.Setenv("LINEAGE_REDIS_DB", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "sk-lineage", cfg.AI.APIKey)
	assert.True(t, cfg.AI.Enabled())
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, 3, cfg.Storage.RedisDB)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"syntax", "[storage\n", errors.ErrCodeInvalidFormat},
		{"unknown key", "[storage]\nbakend = \"file\"\n", errors.ErrCodeInvalidFormat},
		{"bad backend", "[storage]\nbackend = \"sqlite\"\n", errors.ErrCodeInvalidInput},
		{"postgres without dsn", "[storage]\nbackend = \"postgres\"\n", errors.ErrCodeInvalidInput},
		{"bad cache", "[cache]\nbackend = \"memcached\"\n", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, "config.toml")
			writeFile(t, path, tt.content)

			_, err := Load(path)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err), err.Error())
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestWriteFileRoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "lineage", "config.toml")

	cfg := Default()
	cfg.AI.APIKey = "secret"
	cfg.Storage.Backend = BackendMemory
	require.NoError(t, cfg.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, loaded.Storage.Backend)
	assert.Equal(t, cfg.Session.TTL, loaded.Session.TTL)

	assert.Error(t, cfg.WriteFile(path), "existing file should not be overwritten")
}
