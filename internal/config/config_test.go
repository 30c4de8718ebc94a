package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost:5432/cases?sslmode=disable
  debug: true
embedding:
  api_key: sk-test
  model: text-embedding-3-small
store:
  backend: chromem
  path: ./data/chromemdb
ingest:
  workers: 8
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/cases?sslmode=disable", cfg.Database.URL)
	assert.True(t, cfg.Database.Debug)
	assert.Equal(t, "sk-test", cfg.EmbedLLM.APIKey)
	assert.Equal(t, "chromem", cfg.Store.Backend)
	assert.Equal(t, "./data/chromemdb", cfg.Store.Path)
	assert.Equal(t, 8, cfg.Ingest.Workers)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "database:\n  url: postgres://localhost/x\n"))
	require.NoError(t, err)

	assert.Equal(t, "text-embedding-3-small", cfg.EmbedLLM.Model)
	assert.Equal(t, uint64(3), cfg.EmbedLLM.MaxRetries)
	assert.Equal(t, "postgres", cfg.Store.Backend)
	assert.Equal(t, 4, cfg.Ingest.Workers)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("DATABASE_URL", "postgres://env-host/cases")

	cfg, err := LoadConfig(writeConfig(t, `
database:
  url: postgres://file-host/cases
embedding:
  api_key: sk-from-file
`))
	require.NoError(t, err)

	assert.Equal(t, "sk-from-env", cfg.EmbedLLM.APIKey)
	assert.Equal(t, "postgres://env-host/cases", cfg.Database.URL)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
