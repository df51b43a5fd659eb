// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalYAML = `
app:
  name: advisor
database:
  redis:
    address: localhost:6379
apis:
  genai:
    base_url: https://api.example.com
    api_key: ${TEST_GENAI_KEY}
  web_search:
    base_url: https://search.example.com
  currency:
    base_url: https://rates.example.com
`

func TestLoadFromFile_AppliesDefaultsAndEnvExpansion(t *testing.T) {
	t.Setenv("TEST_GENAI_KEY", "sk-test-123")
	path := writeConfigFile(t, minimalYAML)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-test-123", cfg.APIs.GenAI.APIKey)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 3600, cfg.Session.TTL)
	assert.Equal(t, "advisor:session:", cfg.Session.KeyPrefix)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 60000, cfg.APIs.GenAI.Timeout)
}

func TestLoadFromFile_MissingRequiredFieldFails(t *testing.T) {
	path := writeConfigFile(t, `
app:
  name: advisor
database:
  redis:
    address: localhost:6379
apis:
  genai:
    base_url: https://api.example.com
  web_search:
    base_url: https://search.example.com
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "currency.base_url")
}

func TestLoadFromFile_UnreadablePathFails(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestGetStageConfig_FallsBackToDefaults(t *testing.T) {
	cfg := &Config{Stages: map[string]StageConfig{
		"analyze-intent": {Enabled: true, Timeout: 45000},
	}}

	assert.Equal(t, 45000, GetStageConfig(cfg, "analyze-intent").Timeout)

	fallback := GetStageConfig(cfg, "unknown-stage")
	assert.True(t, fallback.Enabled)
	assert.Equal(t, 30000, fallback.Timeout)
}
