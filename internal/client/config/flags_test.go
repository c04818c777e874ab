package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	base := func() Config {
		var c Config
		c.LoadDefaults()
		return c
	}

	tests := []struct {
		name    string
		args    []string
		want    func() Config
		wantErr bool
	}{
		{
			name: "overrides",
			args: []string{"-d", "x.db", "-i", "10", "-r=false", "-retries", "2", "-k", "sealed", "-p", ""},
			want: func() Config {
				c := base()
				c.DatabasePath = "x.db"
				c.RefreshInterval = 10 * time.Second
				c.AutoRefresh = false
				c.ConflictRetries = 2
				c.TokenStorage = "sealed"
				c.PreviewAddr = ""
				return c
			},
		},
		{
			name: "unknown flags ignored",
			args: []string{"-c", "cfg.json", "-zzz", "1"},
			want: base,
		},
		{
			name:    "bad interval",
			args:    []string{"-i", "abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			err := parseFlags(&cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.want(), cfg))
		})
	}
}

func TestParseFlags_IntervalUntouchedWithoutFlag(t *testing.T) {
	cfg := Config{RefreshInterval: 1500 * time.Millisecond}
	require.NoError(t, parseFlags(&cfg, nil))
	assert.Equal(t, 1500*time.Millisecond, cfg.RefreshInterval)
}
