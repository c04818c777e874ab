package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophrelease/internal/client/models"
	"github.com/dmitrijs2005/gophrelease/internal/client/repositories/metadata"
)

// SettingsService loads and saves the GitHub sync settings. The token goes
// through a TokenStore; everything else lives in the metadata table.
type SettingsService interface {
	Load(ctx context.Context) (models.GitHubSettings, error)
	// Save stores owner, repo and file path. A non-empty Token replaces the
	// stored one; an empty Token keeps it.
	Save(ctx context.Context, s models.GitHubSettings) error
	ClearToken(ctx context.Context) error
	TokenStorage() (kind string, weak bool)
}

type settingsService struct {
	meta   metadata.Repository
	tokens TokenStore
}

func NewSettingsService(meta metadata.Repository, tokens TokenStore) SettingsService {
	return &settingsService{meta: meta, tokens: tokens}
}

func (s *settingsService) Load(ctx context.Context) (models.GitHubSettings, error) {
	out := models.DefaultGitHubSettings()
	if _, err := metadata.GetJSON(ctx, s.meta, metadata.KeyGitHubSettings, &out); err != nil {
		return models.GitHubSettings{}, fmt.Errorf("load settings: %w", err)
	}

	token, err := s.tokens.Load(ctx)
	if err != nil {
		return models.GitHubSettings{}, fmt.Errorf("load token: %w", err)
	}
	out.Token = token
	return out, nil
}

func (s *settingsService) Save(ctx context.Context, in models.GitHubSettings) error {
	in.Owner = strings.TrimSpace(in.Owner)
	in.Repo = strings.TrimSpace(in.Repo)
	in.FilePath = strings.Trim(strings.TrimSpace(in.FilePath), "/")

	if err := metadata.SetJSON(ctx, s.meta, metadata.KeyGitHubSettings, in); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	if token := strings.TrimSpace(in.Token); token != "" {
		if err := s.tokens.Save(ctx, token); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
	}
	return nil
}

func (s *settingsService) ClearToken(ctx context.Context) error {
	return s.tokens.Clear(ctx)
}

func (s *settingsService) TokenStorage() (string, bool) {
	return s.tokens.Kind(), s.tokens.Weak()
}
