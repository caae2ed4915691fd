package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrDecryption is returned when a ciphertext cannot be decrypted, either
// because it was tampered with or encrypted under a different key.
var ErrDecryption = errors.New("cryptox: decryption failed")

// FieldCipher encrypts individual claim values with AES-GCM so that a leaked
// token does not expose the raw value even to someone holding the token
// verification key. This is defense in depth under the token signature, not
// a trust boundary of its own.
//
// The key is injected at construction; there is no ambient key state.
type FieldCipher struct {
	aead cipher.AEAD
}

// NewFieldCipher builds a cipher from a 16, 24 or 32 byte key
// (AES-128/192/256 respectively).
func NewFieldCipher(key []byte) (*FieldCipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: invalid field cipher key: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to create GCM: %w", err)
	}
	return &FieldCipher{aead: aead}, nil
}

// EncryptField encrypts plaintext and returns base64url([nonce||ciphertext]).
// A fresh random nonce is used per call.
func (c *FieldCipher) EncryptField(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// DecryptField reverses EncryptField. Any integrity or key failure surfaces
// as ErrDecryption without further detail.
func (c *FieldCipher) DecryptField(ciphertext string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecryption
	}
	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", ErrDecryption
	}
	plaintext, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", ErrDecryption
	}
	return string(plaintext), nil
}
