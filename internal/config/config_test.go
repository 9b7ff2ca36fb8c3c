package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "https://localhost:9090", cfg.BaseURL)
	assert.Equal(t, "default", cfg.Profile)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.InsecureSkipVerify)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadReadsEnvFilesInPrecedenceOrder(t *testing.T) {
	dir := t.TempDir()
	local := writeEnvFile(t, dir, ".env.local", "AUTHCLIENT_PROFILE=local\n")
	shared := writeEnvFile(t, dir, ".env", "AUTHCLIENT_PROFILE=shared\nAUTHCLIENT_REDIS_URL=redis://127.0.0.1:6379/2\n")

	cfg, err := Load(local, shared)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Profile)
	assert.Equal(t, "redis://127.0.0.1:6379/2", cfg.RedisURL)
}

func TestLoadProcessEnvWins(t *testing.T) {
	dir := t.TempDir()
	path := writeEnvFile(t, dir, ".env", "AUTHCLIENT_BASE_URL=https://from-file:9090\n")
	t.Setenv("AUTHCLIENT_BASE_URL", "http://127.0.0.1:8080")
	t.Setenv("AUTHCLIENT_REQUEST_TIMEOUT", "3")
	t.Setenv("AUTHCLIENT_INSECURE_SKIP_VERIFY", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8080", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.InsecureSkipVerify)
	assert.Equal(t, 3*time.Second, cfg.ClientConfig().Transport.RequestTimeout)
}

func TestLoadRejectsBadValues(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")
	cases := map[string]string{
		"AUTHCLIENT_REQUEST_TIMEOUT":      "soon",
		"AUTHCLIENT_INSECURE_SKIP_VERIFY": "maybe",
		"AUTHCLIENT_PROFILE":              "../etc",
		"AUTHCLIENT_BASE_URL":             "ftp://localhost",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load(missing)
			assert.Error(t, err)
		})
	}
}
