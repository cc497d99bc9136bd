// Package models holds the entities the credential engine persists. Records
// are plain data, immutable by convention; stores replace them wholesale.
package models

import (
	"errors"
	"time"
)

// User is a registered identity keyed by normalized email. The email is
// immutable once created; there is exactly one User per key.
type User struct {
	Email          string
	FirstName      string
	LastName       string
	PasswordDigest string
	RegisteredAt   time.Time
	LastActiveAt   time.Time
}

// NewUser builds a fresh identity record with both timestamps set to now.
func NewUser(email, firstName, lastName, passwordDigest string, now time.Time) *User {
	return &User{
		Email:          email,
		FirstName:      firstName,
		LastName:       lastName,
		PasswordDigest: passwordDigest,
		RegisteredAt:   now,
		LastActiveAt:   now,
	}
}

// Token is the single credential slot for one identity. The owner email is
// also its store key: at most one token exists per identity, and session
// tokens and password-reset tokens overwrite each other in that slot.
type Token struct {
	Email     string
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ErrTokenExpiryBeforeIssue rejects tokens violating expiry > issued.
var ErrTokenExpiryBeforeIssue = errors.New("token expiry must be after issue time")

// NewToken mints a token record for owner, valid for ttl from now.
func NewToken(email, value string, now time.Time, ttl time.Duration) (*Token, error) {
	t := &Token{
		Email:     email,
		Value:     value,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	if !t.ExpiresAt.After(t.IssuedAt) {
		return nil, ErrTokenExpiryBeforeIssue
	}
	return t, nil
}

// LiveAt reports whether the token is still usable for validation at now.
func (t *Token) LiveAt(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}
