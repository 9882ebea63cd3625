package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := LoadConfig("", "")
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, 120*time.Second, cfg.LLM.RequestTimeout)
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta", cfg.LLM.Gemini.BaseURL)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Gemini.DefaultModel)
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.OpenAI.BaseURL)
	assert.Equal(t, "gpt-4o", cfg.LLM.OpenAI.DefaultModel)
	assert.Empty(t, cfg.LLM.Gemini.APIKey)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, 30*24*time.Hour, cfg.JWT.RefreshTokenExpiry)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	envPath := filepath.Join(dir, ".env")

	yaml := `
server:
  port: "9000"
llm:
  request_timeout: 30s
  gemini:
    default_model: gemini-2.0-flash
  openai:
    base_url: http://localhost:11434/v1
    api_key: from-yaml
`
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0o600))
	require.NoError(t, os.WriteFile(envPath, []byte("GEMINI_API_KEY=from-dotenv\n"), 0o600))

	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("GEMINI_API_KEY", "")
	require.NoError(t, os.Unsetenv("GEMINI_API_KEY"))

	cfg, err := LoadConfig(configPath, envPath)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.LLM.RequestTimeout)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Gemini.DefaultModel)
	assert.Equal(t, "from-dotenv", cfg.LLM.Gemini.APIKey)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.OpenAI.BaseURL)
	assert.Equal(t, "from-env", cfg.LLM.OpenAI.APIKey)
}

func TestLoadConfigMissingFilesAreTolerated(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "absent.yaml"), filepath.Join(dir, "absent.env"))
	require.NoError(t, err)
}
