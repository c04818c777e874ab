package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	dir := t.TempDir()
	path := writeTempJSON(t, dir, "flag.json", map[string]any{
		"database_path":    "/var/lib/gophrelease.db",
		"refresh_interval": "10s",
		"auto_refresh":     false,
		"conflict_retries": 3,
		"preview_addr":     "",
		"s3": map[string]any{
			"bucket": "updates",
			"key":    "system_update.json",
		},
	})

	t.Run("loads from flags", func(t *testing.T) {
		var cfg Config
		cfg.LoadDefaults()
		require.NoError(t, parseJson(&cfg, []string{"-config", path}))

		assert.Equal(t, "/var/lib/gophrelease.db", cfg.DatabasePath)
		assert.Equal(t, 10*time.Second, cfg.RefreshInterval)
		assert.False(t, cfg.AutoRefresh)
		assert.Equal(t, 3, cfg.ConflictRetries)
		assert.Empty(t, cfg.PreviewAddr)
		assert.Equal(t, "updates", cfg.S3.Bucket)
		assert.Equal(t, "https://api.github.com", cfg.GitHubAPIURL, "absent keys keep defaults")
	})

	t.Run("no flag → no changes", func(t *testing.T) {
		cfg := Config{DatabasePath: "defaults.db", RefreshInterval: 42 * time.Second}
		require.NoError(t, parseJson(&cfg, []string{"-d", "x.db"}))

		assert.Equal(t, "defaults.db", cfg.DatabasePath)
		assert.Equal(t, 42*time.Second, cfg.RefreshInterval)
	})

	t.Run("invalid JSON → error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		var cfg Config
		require.Error(t, parseJson(&cfg, []string{"-c", bad}))
	})

	t.Run("missing file → error", func(t *testing.T) {
		var cfg Config
		require.Error(t, parseJson(&cfg, []string{"-c", filepath.Join(dir, "absent.json")}))
	})
}
