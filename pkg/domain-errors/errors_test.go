package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	err := New(CodeConflict, "email is already registered")
	assert.True(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(err, CodeUnauthorized))
	assert.False(t, HasCode(errors.New("plain"), CodeConflict))
}

func TestHasCodeThroughWrapping(t *testing.T) {
	inner := New(CodeUnauthorized, "invalid credentials")
	outer := fmt.Errorf("login: %w", inner)
	assert.True(t, HasCode(outer, CodeUnauthorized))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "store unavailable")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "store unavailable", Message(err))
}

func TestMessageFallback(t *testing.T) {
	assert.Equal(t, "internal error", Message(errors.New("pq: relation missing")))
}

func TestToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ToHTTPStatus(CodeBadRequest))
	assert.Equal(t, http.StatusBadRequest, ToHTTPStatus(CodeConflict))
	assert.Equal(t, http.StatusBadRequest, ToHTTPStatus(CodeUnauthorized))
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(CodeNotFound))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(CodeInternal))
}

func TestStatusForUncodedError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("boom")))
}
