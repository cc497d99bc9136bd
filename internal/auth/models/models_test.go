package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenEnforcesExpiryAfterIssue(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tok, err := NewToken("a@x.com", "v", now, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, now, tok.IssuedAt)
	assert.Equal(t, now.Add(24*time.Hour), tok.ExpiresAt)

	_, err = NewToken("a@x.com", "v", now, 0)
	assert.ErrorIs(t, err, ErrTokenExpiryBeforeIssue)

	_, err = NewToken("a@x.com", "v", now, -time.Minute)
	assert.ErrorIs(t, err, ErrTokenExpiryBeforeIssue)
}

func TestTokenLiveAt(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tok, err := NewToken("a@x.com", "v", now, time.Hour)
	require.NoError(t, err)

	assert.True(t, tok.LiveAt(now))
	assert.True(t, tok.LiveAt(now.Add(59*time.Minute)))
	assert.False(t, tok.LiveAt(now.Add(time.Hour)))
	assert.False(t, tok.LiveAt(now.Add(2*time.Hour)))
}
