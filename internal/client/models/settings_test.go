package models

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophrelease/internal/common"
)

const secret = "ghp_verysecretvalue"

func TestGitHubSettings_Validate(t *testing.T) {
	s := DefaultGitHubSettings()
	err := s.Validate()
	require.ErrorIs(t, err, common.ErrConfiguration)
	assert.Equal(t, "missing settings: token", err.Error())

	s.Token = secret
	require.NoError(t, s.Validate())

	s.FilePath = " "
	require.ErrorIs(t, s.Validate(), common.ErrConfiguration)
	require.NoError(t, s.ValidateConnection())

	assert.Equal(t, []string{"token", "owner", "repo", "file path"}, GitHubSettings{}.Missing(true))
	assert.Equal(t, []string{"token", "owner", "repo"}, GitHubSettings{}.Missing(false))
}

func TestGitHubSettings_NeverPrintsToken(t *testing.T) {
	s := DefaultGitHubSettings()
	s.Token = secret

	for _, out := range []string{
		s.String(),
		fmt.Sprintf("%v", s),
		fmt.Sprintf("%+v", s),
		fmt.Sprintf("%#v", s),
	} {
		assert.NotContains(t, out, secret)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logger.Info("settings", "github", s)
	assert.NotContains(t, buf.String(), secret)
	assert.Contains(t, buf.String(), `"token_set":true`)
	assert.Contains(t, buf.String(), `"owner":"alltechdev"`)
}

func TestGitHubSettings_MaskedToken(t *testing.T) {
	assert.Equal(t, "(not set)", GitHubSettings{}.MaskedToken())
	assert.Equal(t, "********", GitHubSettings{Token: "x"}.MaskedToken())
}
