// Package secrets encrypts webhook URLs at rest with XChaCha20-Poly1305.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	// ErrInvalidKey is returned when the configured key is not 32 bytes of base64.
	ErrInvalidKey = errors.New("webhook secret key must be 32 bytes, base64 encoded")
	// ErrDecrypt is returned for any ciphertext that cannot be opened with the configured key.
	ErrDecrypt = errors.New("unable to decrypt webhook secret")
)

// Cipher implements domain.SecretCipher. Ciphertexts are base64url(nonce || sealed).
type Cipher struct {
	key []byte
}

// NewCipher decodes a base64 key (standard or URL alphabet, padded or not).
func NewCipher(encodedKey string) (*Cipher, error) {
	key, err := decodeKey(encodedKey)
	if err != nil || len(key) != chacha20poly1305.KeySize {
		return nil, ErrInvalidKey
	}
	return &Cipher{key: key}, nil
}

func decodeKey(s string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, ErrInvalidKey
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", fmt.Errorf("init aead: %w", err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt with the same key.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecrypt
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", ErrDecrypt
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", ErrDecrypt
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}
