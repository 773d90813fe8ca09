package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "adorn-service", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.Timeout.Read)
	assert.True(t, cfg.Docs.Enabled)
	assert.Equal(t, "/openapi.json", cfg.Docs.SpecPath)
	assert.Equal(t, ".adorn-cache", cfg.Cache.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadBytesOverridesDefaults(t *testing.T) {
	doc := []byte(`
app:
  name: petstore
  env: production
server:
  port: 9090
docs:
  enabled: false
`)
	cfg, err := LoadBytes(doc)
	require.NoError(t, err)

	assert.Equal(t, "petstore", cfg.App.Name)
	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Docs.Enabled)
	assert.Equal(t, "v0.1.0", cfg.App.Version)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 3000\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("ADORN_SERVER_PORT", "4000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
}

func TestValidateRejectsBadEnv(t *testing.T) {
	_, err := LoadBytes([]byte("app:\n  env: nonsense\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidateRejectsBadPort(t *testing.T) {
	_, err := LoadBytes([]byte("server:\n  port: 0\n"))
	require.Error(t, err)
}

func TestValidateRejectsRelativeDocsPath(t *testing.T) {
	_, err := LoadBytes([]byte("docs:\n  path: docs\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docs.path")
}
