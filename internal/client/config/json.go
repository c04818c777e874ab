package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophrelease/internal/flagx"
	"github.com/dmitrijs2005/gophrelease/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// leave the corresponding Config value untouched, hence the pointers.
type JsonConfig struct {
	DatabasePath       string          `json:"database_path"`
	RefreshInterval    *timex.Duration `json:"refresh_interval"`
	AutoRefresh        *bool           `json:"auto_refresh"`
	GitHubAPIURL       string          `json:"github_api_url"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	ConflictRetries    *int            `json:"conflict_retries"`
	ConflictRetryDelay *timex.Duration `json:"conflict_retry_delay"`
	TokenStorage       string          `json:"token_storage"`
	DeviceFeedURL      string          `json:"device_feed_url"`
	DeviceFeedSecret   string          `json:"device_feed_secret"`
	DeviceDSN          string          `json:"device_dsn"`
	PreviewAddr        *string         `json:"preview_addr"`
	ExportPath         string          `json:"export_path"`
	LogLevel           string          `json:"log_level"`
	LogFormat          string          `json:"log_format"`
	LogFile            string          `json:"log_file"`
	S3                 struct {
		Bucket    string `json:"bucket"`
		Key       string `json:"key"`
		Region    string `json:"region"`
		Endpoint  string `json:"endpoint"`
		AccessKey string `json:"access_key"`
		SecretKey string `json:"secret_key"`
	} `json:"s3"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJson overlays cfg with the JSON file named by -c/-config in args. No
// flag means no file.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFileFrom(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.DatabasePath, jc.DatabasePath)
	if jc.RefreshInterval != nil {
		cfg.RefreshInterval = jc.RefreshInterval.Duration
	}
	if jc.AutoRefresh != nil {
		cfg.AutoRefresh = *jc.AutoRefresh
	}
	setString(&cfg.GitHubAPIURL, jc.GitHubAPIURL)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ConflictRetries != nil {
		cfg.ConflictRetries = *jc.ConflictRetries
	}
	if jc.ConflictRetryDelay != nil {
		cfg.ConflictRetryDelay = jc.ConflictRetryDelay.Duration
	}
	setString(&cfg.TokenStorage, jc.TokenStorage)
	setString(&cfg.DeviceFeedURL, jc.DeviceFeedURL)
	setString(&cfg.DeviceFeedSecret, jc.DeviceFeedSecret)
	setString(&cfg.DeviceDSN, jc.DeviceDSN)
	if jc.PreviewAddr != nil {
		cfg.PreviewAddr = *jc.PreviewAddr
	}
	setString(&cfg.ExportPath, jc.ExportPath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.LogFile, jc.LogFile)

	setString(&cfg.S3.Bucket, jc.S3.Bucket)
	setString(&cfg.S3.Key, jc.S3.Key)
	setString(&cfg.S3.Region, jc.S3.Region)
	setString(&cfg.S3.Endpoint, jc.S3.Endpoint)
	setString(&cfg.S3.AccessKey, jc.S3.AccessKey)
	setString(&cfg.S3.SecretKey, jc.S3.SecretKey)
	return nil
}
