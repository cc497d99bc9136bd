// Package minter generates opaque token values. Kept behind a tiny type so
// tests can substitute deterministic values for the engine's minting steps.
package minter

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// UUID mints random UUID strings, matching the original token format.
type UUID struct{}

func (UUID) NewValue() string { return uuid.NewString() }

// Hex mints crypto/rand hex strings of 2*NBytes characters for deployments
// that want longer values than a UUID carries.
type Hex struct {
	NBytes int
}

func (h Hex) NewValue() string {
	n := h.NBytes
	if n <= 0 {
		n = 16
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// UUID rather than returning a guessable value.
		return uuid.NewString()
	}
	return hex.EncodeToString(b)
}
