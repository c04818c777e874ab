package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) lookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestParseEnv(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()

	err := parseEnv(&cfg, mapLookup(map[string]string{
		"GOPHRELEASE_DB":               "env.db",
		"GOPHRELEASE_REFRESH_INTERVAL": "1m",
		"GOPHRELEASE_REQUEST_TIMEOUT":  "5",
		"GOPHRELEASE_AUTO_REFRESH":     "false",
		"GOPHRELEASE_CONFLICT_RETRIES": "4",
		"GOPHRELEASE_DEVICE_FEED_URL":  "https://feed",
		"GOPHRELEASE_S3_SECRET_KEY":    "s3cr3t",
		"UNRELATED":                    "x",
	}))
	require.NoError(t, err)

	assert.Equal(t, "env.db", cfg.DatabasePath)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.AutoRefresh)
	assert.Equal(t, 4, cfg.ConflictRetries)
	assert.Equal(t, "https://feed", cfg.DeviceFeedURL)
	assert.Equal(t, "s3cr3t", cfg.S3.SecretKey)
}

func TestParseEnv_Invalid(t *testing.T) {
	for _, kv := range [][2]string{
		{"GOPHRELEASE_REFRESH_INTERVAL", "soon"},
		{"GOPHRELEASE_AUTO_REFRESH", "maybe"},
		{"GOPHRELEASE_CONFLICT_RETRIES", "many"},
	} {
		var cfg Config
		err := parseEnv(&cfg, mapLookup(map[string]string{kv[0]: kv[1]}))
		assert.Error(t, err, kv[0])
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, loadDotEnv(filepath.Join(dir, "absent.env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GOPHRELEASE_TEST_DOTENV=from-file\n"), 0o600))
	t.Setenv("GOPHRELEASE_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("GOPHRELEASE_TEST_DOTENV"))

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("GOPHRELEASE_TEST_DOTENV"))
}
