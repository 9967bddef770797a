package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/trendline/pkg/adapters/eino"
	"github.com/aretw0/trendline/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := load(filepath.Join(t.TempDir(), "absent.yaml"), env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, pipeline.DefaultOptions().Config(), cfg.RunConfig())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := writeFile(t, "trendline.yaml", `
model:
  type: openai
  model: gpt-4o-mini
  timeout: 90s
github:
  rate_limit: 2s
pipeline:
  item_count: 5
  lookback: 48h
store:
  type: redis
  redis:
    addr: localhost:6379
    ttl: 24h
log:
  level: DEBUG
`)

	cfg, err := load(path, env(map[string]string{
		EnvGitHubToken:  "ghp_x",
		EnvModel:        "gpt-4o",
		EnvRedisAddr:    "redis:6379",
		EnvLangGraphURL: "",
	}))
	require.NoError(t, err)

	assert.Equal(t, eino.ModelTypeOpenAI, cfg.Model.Type)
	assert.Equal(t, "gpt-4o", cfg.Model.Model, "environment wins over file")
	assert.Equal(t, 90*time.Second, cfg.Model.Timeout)
	assert.Equal(t, "ghp_x", cfg.GitHub.Token)
	assert.Equal(t, 2*time.Second, cfg.GitHub.RateLimit)
	assert.Equal(t, 5, cfg.Pipeline.ItemCount)
	assert.Equal(t, 10, cfg.Pipeline.PerPage, "unset keys keep defaults")
	assert.Equal(t, pipeline.AnalyzerInstructions, cfg.Pipeline.AnalyzerInstructions)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Store.Redis.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "http://127.0.0.1:2024", cfg.LangGraph.BaseURL, "empty variables are ignored")

	run := cfg.RunConfig()
	assert.Equal(t, 5, run[pipeline.KeyItemCount])
	assert.Equal(t, "48h0m0s", run[pipeline.KeyLookback])
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "trendline.json", `{"model": {"type": "qwen"}, "pipeline": {"item_count": 2}}`)
	cfg, err := load(path, env(nil))
	require.NoError(t, err)
	assert.Equal(t, eino.ModelTypeDashScope, cfg.Model.Type)
	assert.Equal(t, 2, cfg.Pipeline.ItemCount)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"Model Type":     "model: {type: gemini}",
		"Store Type":     "store: {type: s3}",
		"Redis Addr":     "store: {type: redis}",
		"Loam Path":      "store: {type: loam, path: ''}",
		"Log Level":      "log: {level: loud}",
		"GitHub URL":     "github: {base_url: 'not a url'}",
		"Item Count":     "pipeline: {item_count: 0}",
		"Broken YAML":    "model: [",
		"Negative Limit": "github: {rate_limit: -1s}",
		"Short Key":      "store: {encryption_key: c2hvcnQ=}",
		"Bad Pattern":    "store: {redact_patterns: ['(']}",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := load(writeFile(t, "c.yaml", content), env(nil))
			assert.Error(t, err)
		})
	}
}

func TestStoreMiddlewares(t *testing.T) {
	none, err := Default().Store.Middlewares()
	require.NoError(t, err)
	assert.Empty(t, none)

	key := base64.StdEncoding.EncodeToString(make([]byte, 32))
	cfg, err := load(writeFile(t, "c.yaml", "store: {redact: true}"), env(map[string]string{EnvEncryptKey: key}))
	require.NoError(t, err)
	assert.Equal(t, key, cfg.Store.EncryptionKey)

	mws, err := cfg.Store.Middlewares()
	require.NoError(t, err)
	assert.Len(t, mws, 2)
}
