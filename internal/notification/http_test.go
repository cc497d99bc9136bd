package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPNotifierPostsWelcome(t *testing.T) {
	var got WelcomeInfo
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, postRegisterPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewHTTP(srv.URL)
	err := n.NotifyRegistered(context.Background(), "a@x.com", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.EmailAddress)
	assert.Equal(t, "Ada", got.FirstName)
}

func TestHTTPNotifierPostsResetLink(t *testing.T) {
	var got ForgotPasswordInfo
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, forgotPasswordPath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewHTTP(srv.URL)
	err := n.NotifyForgotPassword(context.Background(), "a@x.com", "Ada", "http://front/pwdreset?id=a@x.com&token=t")
	require.NoError(t, err)
	assert.Equal(t, "http://front/pwdreset?id=a@x.com&token=t", got.PasswordResetURL)
}

func TestHTTPNotifierRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewHTTP(srv.URL)
	err := n.NotifyRegistered(context.Background(), "a@x.com", "Ada")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPNotifierDoesNotRetryRejections(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewHTTP(srv.URL)
	err := n.NotifyRegistered(context.Background(), "a@x.com", "Ada")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
