package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "ollama", cfg.LLM.Transport)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.Server)
	assert.Equal(t, "gemma3:27b", cfg.LLM.Model)
	assert.Equal(t, 1.0, cfg.LLM.Temperature)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, time.Hour, cfg.Cache.EvaluationTTL)
	assert.Empty(t, cfg.Redis.Address)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smartq.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  transport: openai
  server: http://localhost:11434/v1
  model: qwen3:8b
  temperature: 0.2
  timeout: 15
redis:
  address: localhost:6379
`), 0o600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Transport)
	assert.Equal(t, "qwen3:8b", cfg.LLM.Model)
	assert.Equal(t, 0.2, cfg.LLM.Temperature)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("LLM_MODEL", "llama3.1:8b")
	t.Setenv("LLM_TIMEOUT", "5")
	t.Setenv("LLM_TEMPERATURE", "0.4")
	t.Setenv("REDIS_ADDRESS", "redis:6379")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "llama3.1:8b", cfg.LLM.Model)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 0.4, cfg.LLM.Temperature)
	assert.Equal(t, "redis:6379", cfg.Redis.Address)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{LLM: LLMConfig{Transport: "ollama", Server: "http://x", Model: "m", Temperature: 1, Timeout: time.Second}}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(c *Config){
		"unknown transport":    func(c *Config) { c.LLM.Transport = "grpc" },
		"empty server":         func(c *Config) { c.LLM.Server = "" },
		"empty model":          func(c *Config) { c.LLM.Model = "" },
		"zero timeout":         func(c *Config) { c.LLM.Timeout = 0 },
		"negative temperature": func(c *Config) { c.LLM.Temperature = -0.1 },
		"temperature too high": func(c *Config) { c.LLM.Temperature = 2.5 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
