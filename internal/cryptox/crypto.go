// Package cryptox seals small secrets (the GitHub token) with a key derived
// from a user passphrase.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"errors"

	"github.com/dmitrijs2005/gophrelease/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	keySize  = 32
)

var ErrDecrypt = errors.New("wrong passphrase or corrupted secret")

// DeriveKey stretches passphrase with argon2id into an AES-256 key.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, keySize)
}

// Fingerprint returns a short value that lets callers check a passphrase
// without attempting a decryption.
func Fingerprint(key []byte) []byte {
	sum := sha256.Sum256(key)
	return sum[:]
}

// Sealed is the at-rest form of a secret.
type Sealed struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// Seal encrypts plaintext with AES-GCM under a key derived from passphrase
// and a fresh random salt.
func Seal(plaintext, passphrase []byte) (*Sealed, error) {
	salt := common.GenerateRandByteArray(SaltSize)
	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := common.GenerateRandByteArray(aead.NonceSize())

	return &Sealed{
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, plaintext, nil),
	}, nil
}

// Open reverses Seal. A wrong passphrase yields ErrDecrypt.
func Open(s *Sealed, passphrase []byte) ([]byte, error) {
	if s == nil {
		return nil, ErrDecrypt
	}
	key := DeriveKey(passphrase, s.Salt)
	defer common.WipeByteArray(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(s.Nonce) != aead.NonceSize() {
		return nil, ErrDecrypt
	}
	plaintext, err := aead.Open(nil, s.Nonce, s.Ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
