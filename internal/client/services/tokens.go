package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/99designs/keyring"

	"github.com/dmitrijs2005/gophrelease/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophrelease/internal/common"
	"github.com/dmitrijs2005/gophrelease/internal/cryptox"
)

// Token storage kinds accepted in configuration.
const (
	TokenStoragePlain   = "plain"
	TokenStorageKeyring = "keyring"
	TokenStorageSealed  = "sealed"
)

const keyringItem = "github-token"

// TokenStore keeps the GitHub bearer token. Load returns "" when no token
// has been saved.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Kind() string
	// Weak reports that the token is stored readable by anyone with the
	// database file.
	Weak() bool
}

// Passphrases supplies the passphrase for sealed storage, typically by
// prompting without echo. Passphrase asks for confirmation when confirm is
// set, which happens when nothing is sealed yet. Forget drops a remembered
// passphrase after it failed to open the stored token. Callers wipe the
// returned slice.
type Passphrases interface {
	Passphrase(confirm bool) ([]byte, error)
	Forget()
}

// PassphraseFunc adapts a plain function to Passphrases. It remembers
// nothing, so Forget is a no-op.
type PassphraseFunc func(confirm bool) ([]byte, error)

func (f PassphraseFunc) Passphrase(confirm bool) ([]byte, error) { return f(confirm) }
func (PassphraseFunc) Forget()                                   {}

type plainTokenStore struct {
	meta metadata.Repository
}

// NewPlainTokenStore keeps the token as-is in the metadata table.
func NewPlainTokenStore(meta metadata.Repository) TokenStore {
	return &plainTokenStore{meta: meta}
}

func (s *plainTokenStore) Load(ctx context.Context) (string, error) {
	v, err := s.meta.Get(ctx, metadata.KeyToken)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *plainTokenStore) Save(ctx context.Context, token string) error {
	return s.meta.Set(ctx, metadata.KeyToken, []byte(token))
}

func (s *plainTokenStore) Clear(ctx context.Context) error {
	return s.meta.Delete(ctx, metadata.KeyToken)
}

func (s *plainTokenStore) Kind() string { return TokenStoragePlain }
func (s *plainTokenStore) Weak() bool   { return true }

type keyringTokenStore struct {
	ring keyring.Keyring
}

// NewKeyringTokenStore keeps the token in the OS credential store.
func NewKeyringTokenStore(ring keyring.Keyring) TokenStore {
	return &keyringTokenStore{ring: ring}
}

// OpenKeyring opens the platform keyring for the console.
func OpenKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:              common.AppName,
		KeychainTrustApplication: true,
		LibSecretCollectionName:  common.AppName,
		KWalletAppID:             common.AppName,
		KWalletFolder:            common.AppName,
	})
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return ring, nil
}

func (s *keyringTokenStore) Load(context.Context) (string, error) {
	item, err := s.ring.Get(keyringItem)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("keyring get: %w", err)
	}
	return string(item.Data), nil
}

func (s *keyringTokenStore) Save(_ context.Context, token string) error {
	err := s.ring.Set(keyring.Item{
		Key:         keyringItem,
		Data:        []byte(token),
		Label:       "gophrelease GitHub token",
		Description: "Bearer token used to publish the update manifest",
	})
	if err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return nil
}

func (s *keyringTokenStore) Clear(context.Context) error {
	err := s.ring.Remove(keyringItem)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("keyring remove: %w", err)
	}
	return nil
}

func (s *keyringTokenStore) Kind() string { return TokenStorageKeyring }
func (s *keyringTokenStore) Weak() bool   { return false }

type sealedTokenStore struct {
	meta metadata.Repository
	pass Passphrases
}

// NewSealedTokenStore encrypts the token with a key derived from a
// passphrase before writing it to the metadata table.
func NewSealedTokenStore(meta metadata.Repository, pass Passphrases) TokenStore {
	return &sealedTokenStore{meta: meta, pass: pass}
}

func (s *sealedTokenStore) stored(ctx context.Context) (*cryptox.Sealed, error) {
	var sealed cryptox.Sealed
	found, err := metadata.GetJSON(ctx, s.meta, metadata.KeySealedToken, &sealed)
	if err != nil || !found {
		return nil, err
	}
	return &sealed, nil
}

// open decrypts sealed with pass. A passphrase that does not fit is
// forgotten so the next call asks again.
func (s *sealedTokenStore) open(sealed *cryptox.Sealed, pass []byte) ([]byte, error) {
	plain, err := cryptox.Open(sealed, pass)
	if err != nil {
		s.pass.Forget()
		return nil, err
	}
	return plain, nil
}

func (s *sealedTokenStore) Load(ctx context.Context) (string, error) {
	sealed, err := s.stored(ctx)
	if err != nil || sealed == nil {
		return "", err
	}

	pass, err := s.pass.Passphrase(false)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pass)

	plain, err := s.open(sealed, pass)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(plain)
	return string(plain), nil
}

// Save seals token. When a token is already sealed the passphrase must open
// it first, so a mistyped answer never re-seals under a new passphrase.
func (s *sealedTokenStore) Save(ctx context.Context, token string) error {
	current, err := s.stored(ctx)
	if err != nil {
		return err
	}

	pass, err := s.pass.Passphrase(current == nil)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pass)

	if current != nil {
		old, err := s.open(current, pass)
		if err != nil {
			return fmt.Errorf("check passphrase: %w", err)
		}
		common.WipeByteArray(old)
	}

	sealed, err := cryptox.Seal([]byte(token), pass)
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}
	raw, err := json.Marshal(sealed)
	if err != nil {
		return err
	}
	return s.meta.Set(ctx, metadata.KeySealedToken, raw)
}

func (s *sealedTokenStore) Clear(ctx context.Context) error {
	return s.meta.Delete(ctx, metadata.KeySealedToken)
}

func (s *sealedTokenStore) Kind() string { return TokenStorageSealed }
func (s *sealedTokenStore) Weak() bool   { return false }

// NewTokenStore builds the store named by kind.
func NewTokenStore(kind string, meta metadata.Repository, pass Passphrases) (TokenStore, error) {
	switch kind {
	case "", TokenStoragePlain:
		return NewPlainTokenStore(meta), nil
	case TokenStorageKeyring:
		ring, err := OpenKeyring()
		if err != nil {
			return nil, err
		}
		return NewKeyringTokenStore(ring), nil
	case TokenStorageSealed:
		if pass == nil {
			return nil, common.NewValidationError("token_storage", "sealed storage needs a passphrase prompt")
		}
		return NewSealedTokenStore(meta, pass), nil
	default:
		return nil, common.NewValidationError("token_storage", fmt.Sprintf("unknown kind %q", kind))
	}
}
