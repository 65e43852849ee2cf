// internal/auth/keys.go
package auth

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// keyInfo namespaces the HKDF output so the secret can be shared with other uses.
const keyInfo = "highcard session token ed25519 seed v1"

// ErrEmptySecret is returned when deriving keys from an empty secret.
var ErrEmptySecret = errors.New("session secret is empty")

// deriveKeyPair turns an operator-supplied secret into an ed25519 key pair.
// The same secret always yields the same keys.
func deriveKeyPair(secret string) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	if secret == "" {
		return nil, nil, ErrEmptySecret
	}
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(r, seed); err != nil {
		return nil, nil, fmt.Errorf("failed to derive key seed: %w", err)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return priv.Public().(ed25519.PublicKey), priv, nil
}
