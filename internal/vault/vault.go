// Package vault seals and reveals confidential byte payloads (Wi-Fi
// passwords, device secrets) with a process-wide symmetric key.
//
// Sealing uses NaCl secretbox (XSalsa20-Poly1305) with a fresh random nonce
// per call, so identical plaintexts never produce identical tokens. The key
// is derived once at construction as SHA-256 of the configured key string and
// never mutated during the process lifetime; rotating it requires re-sealing
// all stored tokens out-of-band.
//
// Plaintext is never logged or persisted here. Reveal is the only path by
// which plaintext leaves the core; any display-side expiry is presentation
// policy and outside the vault's responsibility.
package vault

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"

	"netatlas/internal/domain"
)

const nonceSize = 24

// Vault holds the process-wide sealing key.
type Vault struct {
	key [32]byte
}

// New derives the sealing key from the configured key string. The key
// material must be non-empty; there is no unencrypted fallback.
func New(key string) (*Vault, error) {
	if key == "" {
		return nil, fmt.Errorf("vault: encryption key is required")
	}
	v := &Vault{key: sha256.Sum256([]byte(key))}
	return v, nil
}

// Seal encrypts plaintext and returns a base64 token of nonce||box.
// Ciphertext is non-deterministic: each call draws a fresh nonce.
func (v *Vault) Seal(plaintext []byte) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("vault: read nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], plaintext, &nonce, &v.key)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Reveal decrypts a token produced by Seal. It fails with
// domain.ErrDecryption when the token is malformed, truncated, or was sealed
// under a different key.
func (v *Vault) Reveal(token string) ([]byte, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed token", domain.ErrDecryption)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: token too short", domain.ErrDecryption)
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plaintext, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &v.key)
	if !ok {
		return nil, fmt.Errorf("%w: authentication failed", domain.ErrDecryption)
	}
	return plaintext, nil
}
