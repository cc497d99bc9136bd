package user

import (
	"context"
	"sync"

	"vouch/internal/auth/models"
	"vouch/pkg/platform/sentinel"
)

// MemoryStore is the in-memory UserStore used in tests and single-node
// deployments. The mutex makes Create an indivisible check-and-insert, which
// is the store contract's only hard synchronization requirement.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemory() *MemoryStore {
	return &MemoryStore{users: make(map[string]models.User)}
}

func (s *MemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Email]; exists {
		return sentinel.ErrConflict
	}
	s.users[user.Email] = *user
	return nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Email]; !exists {
		return sentinel.ErrNotFound
	}
	s.users[user.Email] = *user
	return nil
}
