// Package config loads runtime configuration for the release console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment variables prefixed GOPHRELEASE_, seeded from ./.env when
//     that file exists. Variables already set in the process win over .env.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string     path of the local SQLite database
//	-i int        refresh interval (seconds)
//	-r            enable auto-refresh; -r=false disables it
//	-g string     GitHub API base URL
//	-t duration   HTTP request timeout
//	-retries int  conflict retries on publish (0 disables)
//	-k string     token storage: plain, keyring or sealed
//	-f string     device feed URL
//	-db-dsn string  PostgreSQL DSN of the device check-in table
//	-p string     preview server address, empty disables it
//	-o string     export path
//	-l string     log level (debug, info, warn, error)
//
// # JSON schema
//
// Durations are either strings like "30s" or integer nanoseconds:
//
//	{
//	  "database_path": "gophrelease.db",
//	  "refresh_interval": "30s",
//	  "auto_refresh": true,
//	  "github_api_url": "https://api.github.com",
//	  "request_timeout": "30s",
//	  "conflict_retries": 2,
//	  "token_storage": "keyring",
//	  "device_feed_url": "https://devices.example/api/checkins",
//	  "preview_addr": "127.0.0.1:8089",
//	  "s3": {"bucket": "updates", "key": "system_update.json", "region": "us-east-1"}
//	}
//
// Secrets (device feed secret, S3 keys) are best passed through the
// environment rather than the JSON file.
package config
