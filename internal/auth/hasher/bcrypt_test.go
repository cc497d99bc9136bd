package hasher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptRoundTrip(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	digest, err := h.Hash("s3cret-pw")
	require.NoError(t, err)
	require.NotEmpty(t, digest)
	assert.NotEqual(t, "s3cret-pw", digest)

	assert.True(t, h.Verify("s3cret-pw", digest))
	assert.False(t, h.Verify("wrong-pw", digest))
	assert.False(t, h.Verify("s3cret-pw", "not-a-digest"))
}

func TestBcryptDigestsAreSalted(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	d1, err := h.Hash("same-pw")
	require.NoError(t, err)
	d2, err := h.Hash("same-pw")
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2)
	assert.True(t, h.Verify("same-pw", d1))
	assert.True(t, h.Verify("same-pw", d2))
}

func TestNewBcryptClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(100).cost)
	assert.Equal(t, bcrypt.MinCost, NewBcrypt(bcrypt.MinCost).cost)
}
