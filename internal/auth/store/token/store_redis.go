package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vouch/internal/auth/models"
	"vouch/pkg/platform/sentinel"
)

// Redis key prefix for token slots, one key per owner email.
const slotKeyPrefix = "vouch:token:"

// RedisStore keeps token slots in Redis for deployments where several
// instances share state. Each slot is one key holding a JSON record.
//
// No server-side TTL is set: expiry is a field the engine interprets, and the
// reset flow honors exact match even on an expired token, so eviction would
// change behavior. Slots are overwritten in place on every issuance.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

type tokenRecord struct {
	Value     string    `json:"value"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *RedisStore) Fetch(ctx context.Context, ownerEmail string) (*models.Token, error) {
	raw, err := s.client.Get(ctx, slotKeyPrefix+ownerEmail).Result()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch token: %w", err)
	}

	var rec tokenRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return &models.Token{
		Email:     ownerEmail,
		Value:     rec.Value,
		IssuedAt:  rec.IssuedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

func (s *RedisStore) FetchIfMatches(ctx context.Context, ownerEmail, value string) (*models.Token, error) {
	t, err := s.Fetch(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}
	if t.Value != value {
		return nil, sentinel.ErrNotFound
	}
	return t, nil
}

func (s *RedisStore) Put(ctx context.Context, token *models.Token) error {
	raw, err := json.Marshal(tokenRecord{
		Value:     token.Value,
		IssuedAt:  token.IssuedAt,
		ExpiresAt: token.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := s.client.Set(ctx, slotKeyPrefix+token.Email, raw, 0).Err(); err != nil {
		return fmt.Errorf("put token: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, ownerEmail string) error {
	if err := s.client.Del(ctx, slotKeyPrefix+ownerEmail).Err(); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
