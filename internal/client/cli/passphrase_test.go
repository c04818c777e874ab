package cli

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophrelease/internal/client/client"
	"github.com/dmitrijs2005/gophrelease/internal/client/models"
	"github.com/dmitrijs2005/gophrelease/internal/client/services"
	"github.com/dmitrijs2005/gophrelease/internal/common"
	"github.com/dmitrijs2005/gophrelease/internal/cryptox"
)

// queuePasswords answers terminal password reads in order and counts them.
func queuePasswords(t *testing.T, answers ...string) *int {
	t.Helper()
	calls := 0
	orig := readPassword
	readPassword = func(int) ([]byte, error) {
		if calls >= len(answers) {
			return nil, io.EOF
		}
		calls++
		return []byte(answers[calls-1]), nil
	}
	t.Cleanup(func() { readPassword = orig })
	return &calls
}

func TestPassphrasePrompt_ConfirmMismatch(t *testing.T) {
	calls := queuePasswords(t, "one", "two", "three", "three")
	p := newPassphrasePrompt(io.Discard)

	_, err := p.Passphrase(true)
	require.ErrorIs(t, err, common.ErrValidation)

	v, err := p.Passphrase(true)
	require.NoError(t, err)
	assert.Equal(t, []byte("three"), v)
	assert.Equal(t, 4, *calls)
}

func TestPassphrasePrompt_RemembersUntilForget(t *testing.T) {
	calls := queuePasswords(t, "first", "second")
	p := newPassphrasePrompt(io.Discard)

	v, err := p.Passphrase(false)
	require.NoError(t, err)
	v[0] = 'X'

	v, err = p.Passphrase(false)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), v)
	assert.Equal(t, 1, *calls)

	p.Forget()
	v, err = p.Passphrase(false)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), v)
}

func TestPassphrasePrompt_EmptyIsRejected(t *testing.T) {
	queuePasswords(t, "")
	p := newPassphrasePrompt(io.Discard)

	_, err := p.Passphrase(false)
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestSealedSettings_MistypedPassphraseCanBeRetried(t *testing.T) {
	ctx := context.Background()
	repos, err := client.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	calls := queuePasswords(t, "right", "right", "wrong", "right")

	newSettings := func() services.SettingsService {
		tokens, err := services.NewTokenStore(services.TokenStorageSealed, repos.Metadata, newPassphrasePrompt(io.Discard))
		require.NoError(t, err)
		return services.NewSettingsService(repos.Metadata, tokens)
	}

	first := newSettings()
	s := models.DefaultGitHubSettings()
	s.Token = "ghp_sealed"
	require.NoError(t, first.Save(ctx, s))
	assert.Equal(t, 2, *calls)

	second := newSettings()
	_, err = second.Load(ctx)
	require.ErrorIs(t, err, cryptox.ErrDecrypt)

	got, err := second.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ghp_sealed", got.Token)
	assert.Equal(t, 4, *calls)
}
