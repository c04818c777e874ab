package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the console reads.
const EnvPrefix = "GOPHRELEASE_"

// loadDotEnv exports the variables of path into the process environment.
// Variables that are already set keep their value. A missing file is fine.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

type lookupFunc func(key string) (string, bool)

// parseEnv overlays cfg with GOPHRELEASE_* variables.
func parseEnv(cfg *Config, lookup lookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
		return nil
	}

	str("DB", &cfg.DatabasePath)
	if err := dur("REFRESH_INTERVAL", &cfg.RefreshInterval); err != nil {
		return err
	}
	if v, ok := lookup(EnvPrefix + "AUTO_REFRESH"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sAUTO_REFRESH: %w", EnvPrefix, err)
		}
		cfg.AutoRefresh = b
	}
	str("GITHUB_API_URL", &cfg.GitHubAPIURL)
	if err := dur("REQUEST_TIMEOUT", &cfg.RequestTimeout); err != nil {
		return err
	}
	if v, ok := lookup(EnvPrefix + "CONFLICT_RETRIES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sCONFLICT_RETRIES: %w", EnvPrefix, err)
		}
		cfg.ConflictRetries = n
	}
	if err := dur("CONFLICT_RETRY_DELAY", &cfg.ConflictRetryDelay); err != nil {
		return err
	}
	str("TOKEN_STORAGE", &cfg.TokenStorage)
	str("DEVICE_FEED_URL", &cfg.DeviceFeedURL)
	str("DEVICE_FEED_SECRET", &cfg.DeviceFeedSecret)
	str("DEVICE_DSN", &cfg.DeviceDSN)
	str("PREVIEW_ADDR", &cfg.PreviewAddr)
	str("EXPORT_PATH", &cfg.ExportPath)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("LOG_FILE", &cfg.LogFile)

	str("S3_BUCKET", &cfg.S3.Bucket)
	str("S3_KEY", &cfg.S3.Key)
	str("S3_REGION", &cfg.S3.Region)
	str("S3_ENDPOINT", &cfg.S3.Endpoint)
	str("S3_ACCESS_KEY", &cfg.S3.AccessKey)
	str("S3_SECRET_KEY", &cfg.S3.SecretKey)
	return nil
}

// parseDuration accepts "30s" style strings or bare integers as seconds.
func parseDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}
