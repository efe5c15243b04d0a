// Package vault encrypts stored credentials at rest.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

const (
	ivLength  = 16
	tagLength = 16
	keyLength = 32

	// MinKeyLength is the shortest ENCRYPTION_KEY accepted.
	MinKeyLength = 32

	// Masked replaces the secret in every response except Reveal.
	Masked = "[PROTEGIDO]"
)

var (
	ErrKeyNotConfigured = errors.New("ENCRYPTION_KEY must have at least 32 characters")
	ErrMalformed        = errors.New("malformed ciphertext")
)

// Cipher seals secrets as base64(iv | tag | ciphertext) with AES-256-GCM.
type Cipher struct {
	aead cipher.AEAD
}

// New derives the AES key with scrypt(N=16384, r=8, p=1).
func New(key, salt string) (*Cipher, error) {
	if len(key) < MinKeyLength {
		return nil, ErrKeyNotConfigured
	}
	derived, err := scrypt.Key([]byte(key), []byte(salt), 16384, 8, 1, keyLength)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCMWithNonceSize(block, ivLength)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}
	sealed := c.aead.Seal(nil, iv, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-tagLength], sealed[len(sealed)-tagLength:]

	out := make([]byte, 0, ivLength+tagLength+len(ct))
	out = append(out, iv...)
	out = append(out, tag...)
	out = append(out, ct...)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (c *Cipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrMalformed
	}
	if len(raw) < ivLength+tagLength {
		return "", ErrMalformed
	}
	iv := raw[:ivLength]
	tag := raw[ivLength : ivLength+tagLength]
	ct := raw[ivLength+tagLength:]

	sealed := make([]byte, 0, len(ct)+tagLength)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)
	plain, err := c.aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return string(plain), nil
}
