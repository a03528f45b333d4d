package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: bedrock
bedrock:
  model_id: amazon.titan-text-express-v1
smtp:
  block_phishing: true
  timeout: 5s
  relay:
    port: 2526
trust:
  domains: [example.org, bank.example]
`), 0o600))

	cfg, err := NewFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "bedrock", cfg.GetLLM().Provider)
	assert.Equal(t, "amazon.titan-text-express-v1", cfg.GetBedrock().ModelID)
	assert.Equal(t, "us-east-1", cfg.GetBedrock().Region)
	assert.Equal(t, []string{"example.org", "bank.example"}, cfg.GetStringSlice("trust.domains"))

	smtpCfg, err := cfg.GetSMTP()
	require.NoError(t, err)
	assert.True(t, smtpCfg.BlockPhishing)
	assert.Equal(t, 5*time.Second, smtpCfg.Timeout)
	assert.Equal(t, 2526, smtpCfg.RelayPort)
	assert.Equal(t, "X-Phishing-Status", smtpCfg.StatusHeader)
}

func TestNewFromFile_Missing(t *testing.T) {
	_, err := NewFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	assert.Equal(t, "openai", cfg.GetLLM().Provider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.GetOpenAI().ModelName)
	assert.InDelta(t, 0.3, cfg.GetOpenAI().Temperature, 0.0001)
	assert.Equal(t, "OPENAI_API_KEY", cfg.GetCredentials().EnvVar)
	assert.Equal(t, 8192, cfg.GetInt("analysis.max_body_size"))

	src, err := cfg.GetSource()
	require.NoError(t, err)
	assert.Equal(t, "file", src.Type)
	assert.Equal(t, 15*time.Second, src.BrowserTimeout)
	assert.Equal(t, "mail.google.com", src.TabMatch)

	ttl, err := cfg.GetDuration("cache.ttl")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("PHISH_DETECTOR_LLM_PROVIDER", "gemini")
	t.Setenv("PHISH_DETECTOR_SMTP_TIMEOUT", "2m")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  provider: openai\n"), 0o600))

	cfg, err := NewFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.GetLLM().Provider)
	smtpCfg, err := cfg.GetSMTP()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, smtpCfg.Timeout)
}

func TestGetDuration_Invalid(t *testing.T) {
	v := NewEmptyViper()
	v.Set("smtp.timeout", "soon")
	cfg := NewFromViper(v)

	_, err := cfg.GetSMTP()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp.timeout")
}

func TestGetCache(t *testing.T) {
	v := NewEmptyViper()
	v.Set("cache.type", "sqlite")
	v.Set("cache.ttl", "30m")
	cfg := NewFromViper(v)

	cacheCfg, err := cfg.GetCache()
	require.NoError(t, err)
	assert.True(t, cacheCfg.Enabled)
	assert.Equal(t, "sqlite", cacheCfg.Type)
	assert.Equal(t, 30*time.Minute, cacheCfg.TTL)
	assert.Equal(t, time.Hour, cacheCfg.CleanupFrequency)

	v.Set("cache.cleanup_frequency", "often")
	_, err = cfg.GetCache()
	assert.Error(t, err)
}
