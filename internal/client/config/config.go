package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophrelease/internal/common"
)

// Config holds runtime settings for the release console.
//
// Intervals and timeouts are time.Duration values. JSON accepts duration
// strings like "30s" or integer nanoseconds; the environment takes bare
// integers as seconds.
type Config struct {
	DatabasePath string

	RefreshInterval time.Duration
	AutoRefresh     bool

	GitHubAPIURL       string
	RequestTimeout     time.Duration
	ConflictRetries    int
	ConflictRetryDelay time.Duration
	TokenStorage       string

	DeviceFeedURL    string
	DeviceFeedSecret string
	DeviceDSN        string

	PreviewAddr string
	ExportPath  string

	LogLevel  string
	LogFormat string
	LogFile   string

	S3 S3
}

// S3 configures the optional bucket mirror. It is disabled unless both
// Bucket and Key are set.
type S3 struct {
	Bucket    string
	Key       string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "gophrelease.db"
	c.RefreshInterval = 30 * time.Second
	c.AutoRefresh = true
	c.GitHubAPIURL = "https://api.github.com"
	c.RequestTimeout = 30 * time.Second
	c.ConflictRetries = 0
	c.ConflictRetryDelay = time.Second
	c.TokenStorage = "plain"
	c.PreviewAddr = "127.0.0.1:8089"
	c.ExportPath = "system_update.json"
	c.LogLevel = "warn"
	c.LogFormat = "text"
}

// Validate rejects settings the console cannot start with.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return common.NewValidationError("database_path", "must not be empty")
	}
	if c.RefreshInterval <= 0 {
		return common.NewValidationError("refresh_interval", "must be positive")
	}
	if c.RequestTimeout <= 0 {
		return common.NewValidationError("request_timeout", "must be positive")
	}
	if c.ConflictRetries < 0 {
		return common.NewValidationError("conflict_retries", "must not be negative")
	}
	switch c.TokenStorage {
	case "plain", "keyring", "sealed":
	default:
		return common.NewValidationError("token_storage", fmt.Sprintf("unknown kind %q", c.TokenStorage))
	}
	if c.DeviceFeedURL != "" && c.DeviceDSN != "" {
		return common.NewValidationError("device_feed", "set either a feed URL or a DSN, not both")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment (seeded from a .env file when one
// exists) and command-line flags. Later sources take precedence over earlier
// ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	cfg.TokenStorage = strings.ToLower(strings.TrimSpace(cfg.TokenStorage))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
