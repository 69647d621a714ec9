// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// =============================================================================
// SEALED EXPORT ENCRYPTION
// =============================================================================
// SECURITY: Sealed exports use AES-256-GCM with a key derived from the
// passphrase via PBKDF2-SHA256. A fresh random salt per export means the
// derived key is unique per file, so a random nonce is safe.

const (
	// SealedPrefix marks a sealed export payload.
	SealedPrefix = "AIDEENC:"

	// NonceSize is the GCM nonce size in bytes.
	NonceSize = 12

	// KeySize is the AES-256 key size in bytes.
	KeySize = 32

	// SaltSize is the PBKDF2 salt size in bytes.
	SaltSize = 32

	// PBKDF2Iterations per OWASP recommendations for PBKDF2-SHA256.
	PBKDF2Iterations = 600000
)

var (
	// ErrInvalidCiphertext indicates malformed sealed data.
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")

	// ErrDecryptionFailed indicates a wrong passphrase or tampered data.
	ErrDecryptionFailed = errors.New("decryption failed")
)

// Seal encrypts content with a passphrase-derived key and returns the
// sealed payload: SealedPrefix + base64(salt || nonce || ciphertext+tag).
func Seal(passphrase string, content []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase cannot be empty")
	}

	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key := deriveKey(passphrase, salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// salt || nonce || ciphertext+tag
	sealed := gcm.Seal(nil, nonce, content, nil)
	payload := make([]byte, 0, SaltSize+NonceSize+len(sealed))
	payload = append(payload, salt...)
	payload = append(payload, nonce...)
	payload = append(payload, sealed...)

	encoded := SealedPrefix + base64.StdEncoding.EncodeToString(payload)
	return []byte(encoded), nil
}

// Open decrypts a sealed payload produced by Seal.
func Open(passphrase string, sealed []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase cannot be empty")
	}

	text := string(sealed)
	if !strings.HasPrefix(text, SealedPrefix) {
		return nil, ErrInvalidCiphertext
	}

	payload, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(text, SealedPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	if len(payload) < SaltSize+NonceSize {
		return nil, ErrInvalidCiphertext
	}

	salt := payload[:SaltSize]
	nonce := payload[SaltSize : SaltSize+NonceSize]
	ciphertext := payload[SaltSize+NonceSize:]

	key := deriveKey(passphrase, salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// IsSealed reports whether data looks like a sealed export payload.
func IsSealed(data []byte) bool {
	return strings.HasPrefix(string(data), SealedPrefix)
}

// deriveKey derives an AES-256 key from a passphrase and salt.
func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, PBKDF2Iterations, KeySize, sha256.New)
}
