package token

import (
	"context"
	"sync"

	"vouch/internal/auth/models"
	"vouch/pkg/platform/sentinel"
)

// MemoryStore keeps the one-token-per-owner slots in a map. Put and Delete
// are atomic per key under the mutex; the slot never transitions through
// empty on overwrite.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]models.Token
}

func NewMemory() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]models.Token)}
}

func (s *MemoryStore) Fetch(_ context.Context, ownerEmail string) (*models.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[ownerEmail]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &t, nil
}

func (s *MemoryStore) FetchIfMatches(_ context.Context, ownerEmail, value string) (*models.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[ownerEmail]
	if !ok || t.Value != value {
		return nil, sentinel.ErrNotFound
	}
	return &t, nil
}

func (s *MemoryStore) Put(_ context.Context, token *models.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.Email] = *token
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, ownerEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, ownerEmail)
	return nil
}
