// Package models defines the client-side settings model shared by the
// services and the CLI.
package models

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrijs2005/gophrelease/internal/common"
)

const (
	DefaultOwner    = "alltechdev"
	DefaultRepo     = "alltech.dev"
	DefaultFilePath = "system_update.json"
)

// GitHubSettings identifies the remote file and the credential used to write
// it. Token is a bearer secret: String and LogValue never reveal it.
type GitHubSettings struct {
	Token    string `json:"-"`
	Owner    string `json:"owner"`
	Repo     string `json:"repo"`
	FilePath string `json:"file_path"`
}

func DefaultGitHubSettings() GitHubSettings {
	return GitHubSettings{Owner: DefaultOwner, Repo: DefaultRepo, FilePath: DefaultFilePath}
}

// Missing lists empty required settings in form order. withFile controls
// whether the file path is required.
func (s GitHubSettings) Missing(withFile bool) []string {
	var out []string
	if strings.TrimSpace(s.Token) == "" {
		out = append(out, "token")
	}
	if strings.TrimSpace(s.Owner) == "" {
		out = append(out, "owner")
	}
	if strings.TrimSpace(s.Repo) == "" {
		out = append(out, "repo")
	}
	if withFile && strings.TrimSpace(s.FilePath) == "" {
		out = append(out, "file path")
	}
	return out
}

// Validate checks everything a publish needs.
func (s GitHubSettings) Validate() error {
	if m := s.Missing(true); len(m) > 0 {
		return &common.ConfigurationError{Missing: m}
	}
	return nil
}

// ValidateConnection checks what a connectivity test needs; the file path
// is not required.
func (s GitHubSettings) ValidateConnection() error {
	if m := s.Missing(false); len(m) > 0 {
		return &common.ConfigurationError{Missing: m}
	}
	return nil
}

// MaskedToken shows whether a token is set without revealing any of it.
func (s GitHubSettings) MaskedToken() string {
	if s.Token == "" {
		return "(not set)"
	}
	return "********"
}

func (s GitHubSettings) String() string {
	return fmt.Sprintf("owner=%s repo=%s file=%s token=%s", s.Owner, s.Repo, s.FilePath, s.MaskedToken())
}

func (s GitHubSettings) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("owner", s.Owner),
		slog.String("repo", s.Repo),
		slog.String("file_path", s.FilePath),
		slog.Bool("token_set", s.Token != ""),
	)
}

// GoString keeps %#v from dumping the token.
func (s GitHubSettings) GoString() string {
	return "models.GitHubSettings{" + s.String() + "}"
}
