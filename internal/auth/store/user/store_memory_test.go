package user

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vouch/internal/auth/models"
	"vouch/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func newTestUser(email string) *models.User {
	return models.NewUser(email, "A", "B", "digest", time.Now())
}

func (s *MemoryStoreSuite) TestCreateAndFind() {
	u := newTestUser("a@x.com")
	s.Require().NoError(s.store.Create(s.ctx, u))

	got, err := s.store.FindByEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal("a@x.com", got.Email)
	s.Equal("digest", got.PasswordDigest)
}

func (s *MemoryStoreSuite) TestCreateDuplicate() {
	s.Require().NoError(s.store.Create(s.ctx, newTestUser("a@x.com")))
	err := s.store.Create(s.ctx, newTestUser("a@x.com"))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *MemoryStoreSuite) TestFindUnknown() {
	_, err := s.store.FindByEmail(s.ctx, "missing@x.com")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestUpdate() {
	u := newTestUser("a@x.com")
	s.Require().NoError(s.store.Create(s.ctx, u))

	u.PasswordDigest = "digest2"
	u.LastActiveAt = u.LastActiveAt.Add(time.Hour)
	s.Require().NoError(s.store.Update(s.ctx, u))

	got, err := s.store.FindByEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal("digest2", got.PasswordDigest)
}

func (s *MemoryStoreSuite) TestUpdateUnknown() {
	err := s.store.Update(s.ctx, newTestUser("missing@x.com"))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// Two concurrent creates for one key must resolve to exactly one winner.
func (s *MemoryStoreSuite) TestConcurrentCreateExactlyOneWins() {
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Create(s.ctx, newTestUser("race@x.com"))
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
	s.Equal(int32(goroutines-1), conflictCount.Load())
}

func (s *MemoryStoreSuite) TestStoredRecordIsDetached() {
	u := newTestUser("a@x.com")
	s.Require().NoError(s.store.Create(s.ctx, u))

	u.PasswordDigest = "mutated-after-create"

	got, err := s.store.FindByEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal("digest", got.PasswordDigest)
}
