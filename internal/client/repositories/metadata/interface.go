package metadata

import (
	"context"
	"time"
)

// Keys used by the console.
const (
	KeyWorkingManifest = "working_manifest"
	KeyGitHubSettings  = "github_settings"
	KeyToken           = "github_token"
	KeySealedToken     = "github_token_sealed"
	KeyAutoRefresh     = "auto_refresh"
)

// Repository is a small key/value store. Get returns (nil, nil) for an
// absent key; ModTime returns the zero time.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	ModTime(ctx context.Context, key string) (time.Time, error)
}
