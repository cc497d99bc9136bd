//go:build integration

package token_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"vouch/internal/auth/models"
	"vouch/internal/auth/store/token"
	"vouch/pkg/platform/sentinel"
	"vouch/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *token.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = token.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "auth_tokens")
	s.Require().NoError(err)
}

func newTestToken(email string) *models.Token {
	now := time.Now().UTC().Truncate(time.Microsecond)
	t, err := models.NewToken(email, uuid.NewString(), now, 24*time.Hour)
	if err != nil {
		panic(err)
	}
	return t
}

func (s *PostgresStoreSuite) TestPutAndFetch() {
	ctx := context.Background()
	tok := newTestToken("a@x.com")

	s.Require().NoError(s.store.Put(ctx, tok))

	got, err := s.store.Fetch(ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal(tok.Value, got.Value)
	s.WithinDuration(tok.IssuedAt, got.IssuedAt, time.Millisecond)
	s.WithinDuration(tok.ExpiresAt, got.ExpiresAt, time.Millisecond)
}

func (s *PostgresStoreSuite) TestFetchEmptySlot() {
	_, err := s.store.Fetch(context.Background(), "ghost@x.com")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestPutOverwritesSlot verifies the single-slot semantics: a second Put for
// the same owner replaces the first token.
func (s *PostgresStoreSuite) TestPutOverwritesSlot() {
	ctx := context.Background()
	first := newTestToken("a@x.com")
	second := newTestToken("a@x.com")

	s.Require().NoError(s.store.Put(ctx, first))
	s.Require().NoError(s.store.Put(ctx, second))

	got, err := s.store.Fetch(ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal(second.Value, got.Value)

	_, err = s.store.FetchIfMatches(ctx, "a@x.com", first.Value)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestFetchIfMatches() {
	ctx := context.Background()
	tok := newTestToken("a@x.com")
	s.Require().NoError(s.store.Put(ctx, tok))

	got, err := s.store.FetchIfMatches(ctx, "a@x.com", tok.Value)
	s.Require().NoError(err)
	s.Equal(tok.Value, got.Value)

	_, err = s.store.FetchIfMatches(ctx, "a@x.com", "wrong-value")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, newTestToken("a@x.com")))

	s.Require().NoError(s.store.Delete(ctx, "a@x.com"))

	_, err := s.store.Fetch(ctx, "a@x.com")
	s.ErrorIs(err, sentinel.ErrNotFound)

	// Deleting an already-empty slot is not an error.
	s.NoError(s.store.Delete(ctx, "a@x.com"))
}

// TestExpiredTokenStaysReadable verifies the store does not interpret expiry:
// an expired token remains fetchable until explicitly replaced or deleted.
func (s *PostgresStoreSuite) TestExpiredTokenStaysReadable() {
	ctx := context.Background()
	issued := time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Microsecond)
	tok, err := models.NewToken("a@x.com", uuid.NewString(), issued, time.Hour)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Put(ctx, tok))

	got, err := s.store.FetchIfMatches(ctx, "a@x.com", tok.Value)
	s.Require().NoError(err)
	s.False(got.LiveAt(time.Now().UTC()))
}
