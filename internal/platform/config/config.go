package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything main needs to wire the service. Values come from
// the environment so deploys stay twelve-factor; FromEnv keeps main lean.
type Config struct {
	Addr string

	// PostgresDSN selects the durable stores; empty means in-memory.
	PostgresDSN string

	Redis RedisConfig

	// Kafka, when configured, replaces HTTP notification delivery.
	KafkaBrokers []string
	KafkaTopic   string

	// NotificationURL is the base URL of the notification service.
	NotificationURL string

	// FrontendRootURL anchors password-reset links sent to users.
	FrontendRootURL string

	SessionTokenTTL time.Duration
	ResetTokenTTL   time.Duration

	// TokenFormat selects how token values are minted: "uuid" or "hex".
	TokenFormat   string
	TokenHexBytes int

	BcryptCost int
}

// Token format values.
const (
	TokenFormatUUID = "uuid"
	TokenFormatHex  = "hex"
)

// RedisConfig carries connection settings for the token store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds the configuration from environment variables, applying
// defaults that match the original deployment (24h sessions, 72h reset links).
func FromEnv() Config {
	return Config{
		Addr:            envOr("VOUCH_ADDR", ":8080"),
		PostgresDSN:     os.Getenv("VOUCH_POSTGRES_DSN"),
		Redis:           redisFromEnv(),
		KafkaBrokers:    splitList(os.Getenv("VOUCH_KAFKA_BROKERS")),
		KafkaTopic:      envOr("VOUCH_KAFKA_TOPIC", "user-lifecycle"),
		NotificationURL: os.Getenv("VOUCH_NOTIFICATION_URL"),
		FrontendRootURL: envOr("VOUCH_FRONTEND_ROOT_URL", "http://localhost:3000"),
		SessionTokenTTL: durationOr("VOUCH_SESSION_TOKEN_TTL", 24*time.Hour),
		ResetTokenTTL:   durationOr("VOUCH_RESET_TOKEN_TTL", 72*time.Hour),
		TokenFormat:     envOr("VOUCH_TOKEN_FORMAT", TokenFormatUUID),
		TokenHexBytes:   intOr("VOUCH_TOKEN_HEX_BYTES", 16),
		BcryptCost:      intOr("VOUCH_BCRYPT_COST", 0),
	}
}

func redisFromEnv() RedisConfig {
	return RedisConfig{
		URL:          os.Getenv("VOUCH_REDIS_URL"),
		PoolSize:     intOr("VOUCH_REDIS_POOL_SIZE", 10),
		MinIdleConns: intOr("VOUCH_REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  durationOr("VOUCH_REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  durationOr("VOUCH_REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: durationOr("VOUCH_REDIS_WRITE_TIMEOUT", 3*time.Second),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
