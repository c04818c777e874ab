package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gophrelease/internal/flagx"
)

var knownFlags = []string{
	"-d", "-i", "-g", "-t", "-retries", "-k", "-f", "-db-dsn", "-p", "-o", "-l",
}

// parseFlags populates Config fields from command-line flags. args is
// filtered down to the flags handled here, so other components may share
// the command line.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags, "-r")

	fs := flag.NewFlagSet("gophrelease", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local database")
	interval := fs.Int("i", int(cfg.RefreshInterval.Seconds()), "refresh interval (in seconds)")
	fs.BoolVar(&cfg.AutoRefresh, "r", cfg.AutoRefresh, "enable auto-refresh")
	fs.StringVar(&cfg.GitHubAPIURL, "g", cfg.GitHubAPIURL, "GitHub API base URL")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "HTTP request timeout")
	fs.IntVar(&cfg.ConflictRetries, "retries", cfg.ConflictRetries, "conflict retries on publish")
	fs.StringVar(&cfg.TokenStorage, "k", cfg.TokenStorage, "token storage: plain, keyring or sealed")
	fs.StringVar(&cfg.DeviceFeedURL, "f", cfg.DeviceFeedURL, "device feed URL")
	fs.StringVar(&cfg.DeviceDSN, "db-dsn", cfg.DeviceDSN, "PostgreSQL DSN of the device check-in table")
	fs.StringVar(&cfg.PreviewAddr, "p", cfg.PreviewAddr, "preview server address")
	fs.StringVar(&cfg.ExportPath, "o", cfg.ExportPath, "export path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.RefreshInterval = time.Duration(*interval) * time.Second
		}
	})
	return nil
}
