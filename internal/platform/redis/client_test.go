package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vouch/internal/platform/config"
	"vouch/pkg/platform/sentinel"
)

func TestNewReturnsNilWhenUnconfigured(t *testing.T) {
	client, err := New(config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRejectsMalformedURL(t *testing.T) {
	_, err := New(config.RedisConfig{URL: "not-a-redis-url"})
	assert.Error(t, err)
}

func TestHealthReportsUnavailable(t *testing.T) {
	// Port 1 is never a Redis server; the dial fails immediately.
	c := &Client{Client: goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
	})}
	defer c.Close()

	err := c.Health(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}
