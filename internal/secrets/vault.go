// Package secrets seals data kept outside the process, such as the OAuth
// tokens stored with sessions in Redis.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the AES-256 key length.
const KeySize = 32

//nolint:gochecknoglobals // sentinel error
var ErrInvalidKey = errors.New("secrets: invalid encryption key")

//nolint:gochecknoglobals // sentinel error
var ErrMalformed = errors.New("secrets: sealed value too short")

// Vault encrypts and decrypts values using AES-256-GCM.
type Vault struct {
	aead cipher.AEAD
}

// NewVault creates a Vault with the given 32-byte encryption key.
func NewVault(key []byte) (*Vault, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("secrets.NewVault: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secrets.NewVault: %w", err)
	}

	return &Vault{aead: aead}, nil
}

// DeriveKey stretches secret into a key bound to purpose, so one
// configured secret can key several vaults.
func DeriveKey(secret, purpose string) ([]byte, error) {
	if secret == "" {
		return nil, ErrInvalidKey
	}
	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("cabinet/"+purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("secrets.DeriveKey: %w", err)
	}
	return key, nil
}

// FromSecret is NewVault over DeriveKey.
func FromSecret(secret, purpose string) (*Vault, error) {
	key, err := DeriveKey(secret, purpose)
	if err != nil {
		return nil, fmt.Errorf("secrets.FromSecret: %w", err)
	}
	return NewVault(key)
}

// Seal returns nonce || ciphertext.
func (v *Vault) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, v.aead.NonceSize(), v.aead.NonceSize()+len(plaintext)+v.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("secrets.Seal: generate nonce: %w", err)
	}
	return v.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func (v *Vault) Open(sealed []byte) ([]byte, error) {
	nonceSize := v.aead.NonceSize()
	if len(sealed) < nonceSize {
		return nil, ErrMalformed
	}

	plaintext, err := v.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("secrets.Open: %w", err)
	}
	return plaintext, nil
}
