package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_DeterministicPerSalt(t *testing.T) {
	pass := []byte("release-manager")

	k1 := DeriveKey(pass, []byte("salt-1"))
	k2 := DeriveKey(pass, []byte("salt-1"))
	k3 := DeriveKey(pass, []byte("salt-2"))

	require.Len(t, k1, 32)
	assert.True(t, bytes.Equal(k1, k2))
	assert.False(t, bytes.Equal(k1, k3))
	assert.Equal(t, Fingerprint(k1), Fingerprint(k2))
}

func TestSealOpen_RoundTrip(t *testing.T) {
	s, err := Seal([]byte("ghp_token"), []byte("pass"))
	require.NoError(t, err)
	assert.Len(t, s.Salt, SaltSize)
	assert.NotContains(t, string(s.Ciphertext), "ghp_token")

	got, err := Open(s, []byte("pass"))
	require.NoError(t, err)
	assert.Equal(t, "ghp_token", string(got))
}

func TestOpen_WrongPassphrase(t *testing.T) {
	s, err := Seal([]byte("ghp_token"), []byte("pass"))
	require.NoError(t, err)

	_, err = Open(s, []byte("other"))
	require.ErrorIs(t, err, ErrDecrypt)

	_, err = Open(nil, []byte("pass"))
	require.ErrorIs(t, err, ErrDecrypt)

	s.Nonce = s.Nonce[:3]
	_, err = Open(s, []byte("pass"))
	require.ErrorIs(t, err, ErrDecrypt)
}
