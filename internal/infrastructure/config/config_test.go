package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  callback_base_url: https://api.example.com
gateway:
  api_key: KEY1
  secret_key: s3cr3t
links:
  backend: redis
`)

	cfg, err := Load("", path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.Server.CallbackBaseURL)
	assert.Equal(t, "redis", cfg.Links.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Links.TTL)
	assert.Equal(t, "memory", cfg.Ledger.Backend)
	assert.Equal(t, 5*time.Second, cfg.Ledger.WaitTimeout)
	assert.Equal(t, 3, cfg.Gateway.StatusAttempts)
	assert.Equal(t, 300*time.Millisecond, cfg.Gateway.StatusBackoff)
	assert.False(t, cfg.Email.IsConfigured())
	assert.Same(t, cfg, Get())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  callback_base_url: https://api.example.com
gateway:
  api_key: KEY1
`)
	t.Setenv("AGENDAPAY_GATEWAY_SECRET_KEY", "from-env")
	t.Setenv("AGENDAPAY_LEDGER_BACKEND", "database")

	cfg, err := Load("production", path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Gateway.SecretKey)
	assert.Equal(t, "database", cfg.Ledger.Backend)
	assert.Equal(t, "production", cfg.Server.Mode)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing secret",
			body: "server:\n  callback_base_url: https://api.example.com\ngateway:\n  api_key: KEY1\n",
		},
		{
			name: "missing callback base",
			body: "gateway:\n  api_key: KEY1\n  secret_key: s\n",
		},
		{
			name: "unknown ledger backend",
			body: "server:\n  callback_base_url: https://x\ngateway:\n  api_key: KEY1\n  secret_key: s\nledger:\n  backend: etcd\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("", writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
