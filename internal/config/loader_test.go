package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalConfig = `
database:
  postgres:
    host: localhost
cache:
  redis:
    host: localhost
security:
  jwt:
    secret: test-secret
`

func TestLoad_Minimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	// 默认值生效
	assert.Equal(t, "worldbest-ai-api", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, 90*time.Second, cfg.Generation.CallTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Generation.ContextCacheTTL)
	assert.True(t, cfg.Generation.ContextCacheEnabled)
	assert.Equal(t, 4, cfg.Generation.EnrichConcurrency)
	assert.Equal(t, 1024, cfg.Embedding.Dimension)
	assert.Equal(t, "HNSW", cfg.Vector.Milvus.IndexType)
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_PG_HOST", "db.internal")

	cfg, err := Load(writeConfig(t, `
database:
  postgres:
    host: ${TEST_PG_HOST}
    password: ${TEST_PG_PASSWORD:fallback-pass}
cache:
  redis:
    host: localhost
security:
  jwt:
    secret: test-secret
`))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	// 未设置的变量使用默认值
	assert.Equal(t, "fallback-pass", cfg.Database.Postgres.Password)
}

func TestLoad_MissingRequired(t *testing.T) {
	_, err := Load(writeConfig(t, `
database:
  postgres:
    host: localhost
cache:
  redis:
    host: localhost
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "security.jwt.secret")
}

func TestLoad_DefaultProviderMustBeDefined(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
llm:
  default_provider: openai
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_provider")
}

func TestLoad_ProvidersParsed(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
llm:
  default_provider: openai
  providers:
    openai:
      api_key: sk-test
      model: gpt-4o
      timeout: 60s
  cost_rates:
    gpt-4o:
      prompt_per_1k: 0.0025
      completion_per_1k: 0.01
`))
	require.NoError(t, err)

	p, ok := cfg.LLM.Providers["openai"]
	require.True(t, ok)
	assert.Equal(t, "sk-test", p.APIKey)
	assert.Equal(t, "gpt-4o", p.Model)
	assert.Equal(t, time.Minute, p.Timeout)

	rate, ok := cfg.LLM.CostRates["gpt-4o"]
	require.True(t, ok)
	assert.InDelta(t, 0.0025, rate.PromptPer1K, 1e-9)
}
