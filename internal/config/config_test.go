package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("CCR_TEST_RULES", "/etc/ccr/lookup-data.yaml")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
coder:
  rules_path: ${CCR_TEST_RULES}
  registry_path: data/registry.json
api:
  lang: es
  per_page: 500
  timeout: 10s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/etc/ccr/lookup-data.yaml", cfg.Coder.RulesPath, "env vars are expanded")
	assert.Equal(t, "data/registry.json", cfg.Coder.RegistryPath)
	assert.Equal(t, "es", cfg.API.Lang)
	assert.Equal(t, 500, cfg.API.PerPage)
	assert.Equal(t, 10*time.Second, time.Duration(cfg.API.Timeout))
	assert.Equal(t, "https://api.worldbank.org/v2", cfg.API.Endpoint, "defaults fill the gaps")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadFromEnv()
		require.NoError(t, err)

		assert.Empty(t, cfg.Coder.RulesPath)
		assert.Equal(t, "https://api.worldbank.org/v2", cfg.API.Endpoint)
		assert.Equal(t, "en", cfg.API.Lang)
		assert.Equal(t, 1000, cfg.API.PerPage)
		assert.Equal(t, 30*time.Second, time.Duration(cfg.API.Timeout))
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("CCR_RULES_PATH", "rules.yaml")
		t.Setenv("CCR_API_LANG", "fr")
		t.Setenv("CCR_API_PER_PAGE", "250")
		t.Setenv("CCR_API_TIMEOUT", "1m")

		cfg, err := LoadFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "rules.yaml", cfg.Coder.RulesPath)
		assert.Equal(t, "fr", cfg.API.Lang)
		assert.Equal(t, 250, cfg.API.PerPage)
		assert.Equal(t, time.Minute, time.Duration(cfg.API.Timeout))
	})

	t.Run("bad per page", func(t *testing.T) {
		t.Setenv("CCR_API_PER_PAGE", "many")
		_, err := LoadFromEnv()
		assert.Error(t, err)
	})

	t.Run("bad timeout", func(t *testing.T) {
		t.Setenv("CCR_API_TIMEOUT", "soon")
		_, err := LoadFromEnv()
		assert.Error(t, err)
	})
}
