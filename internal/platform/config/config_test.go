package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.PostgresDSN)
	assert.Empty(t, cfg.Redis.URL)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, "user-lifecycle", cfg.KafkaTopic)
	assert.Equal(t, "http://localhost:3000", cfg.FrontendRootURL)
	assert.Equal(t, 24*time.Hour, cfg.SessionTokenTTL)
	assert.Equal(t, 72*time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, TokenFormatUUID, cfg.TokenFormat)
	assert.Equal(t, 16, cfg.TokenHexBytes)
	assert.Zero(t, cfg.BcryptCost)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("VOUCH_ADDR", ":9090")
	t.Setenv("VOUCH_POSTGRES_DSN", "postgres://localhost/vouch")
	t.Setenv("VOUCH_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("VOUCH_KAFKA_BROKERS", "one:9092, two:9092,")
	t.Setenv("VOUCH_SESSION_TOKEN_TTL", "1h")
	t.Setenv("VOUCH_RESET_TOKEN_TTL", "15m")
	t.Setenv("VOUCH_TOKEN_FORMAT", "hex")
	t.Setenv("VOUCH_TOKEN_HEX_BYTES", "32")
	t.Setenv("VOUCH_BCRYPT_COST", "12")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "postgres://localhost/vouch", cfg.PostgresDSN)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, []string{"one:9092", "two:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, time.Hour, cfg.SessionTokenTTL)
	assert.Equal(t, 15*time.Minute, cfg.ResetTokenTTL)
	assert.Equal(t, TokenFormatHex, cfg.TokenFormat)
	assert.Equal(t, 32, cfg.TokenHexBytes)
	assert.Equal(t, 12, cfg.BcryptCost)
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("VOUCH_SESSION_TOKEN_TTL", "soon")
	t.Setenv("VOUCH_BCRYPT_COST", "high")

	cfg := FromEnv()

	assert.Equal(t, 24*time.Hour, cfg.SessionTokenTTL)
	assert.Zero(t, cfg.BcryptCost)
}
