// Package hasher implements the one-way password capability consumed by the
// credential engine.
package hasher

import "golang.org/x/crypto/bcrypt"

// Bcrypt hashes and verifies passwords with x/crypto/bcrypt. The digest is
// opaque to the rest of the system.
type Bcrypt struct {
	cost int
}

// NewBcrypt builds a hasher with the given cost; zero or out-of-range values
// fall back to bcrypt.DefaultCost. Tests pass bcrypt.MinCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash produces a salted digest of plaintext.
func (b *Bcrypt) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. Comparison cost is
// constant-time inside bcrypt.
func (b *Bcrypt) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
