package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ownerID = "7d444840-9dc0-11d1-b245-5ffdce74fad2"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("IDREG_OWNER_ACCOUNT_ID", ownerID)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "local", cfg.Server.Environment)
	assert.Equal(t, ownerID, cfg.OwnerAccountID.String())
	assert.Equal(t, DevJWTSigningKey, cfg.Auth.JWTSigningKey)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	assert.Empty(t, cfg.Database.URL)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 10*time.Minute, cfg.Cache.SummaryTTL)
	assert.Equal(t, "idregistry.notifications", cfg.Kafka.Topic)
	assert.Equal(t, "all", cfg.Kafka.Acks)
	assert.Equal(t, 100, cfg.Outbox.BatchSize)
	assert.Equal(t, 24*time.Hour, cfg.Outbox.Retention)
	assert.Equal(t, 10*time.Minute, cfg.Outbox.CleanupInterval)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("IDREG_OWNER_ACCOUNT_ID", ownerID)
	t.Setenv("IDREG_ADDR", ":9090")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/idregistry")
	t.Setenv("SUMMARY_CACHE_TTL", "30s")
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("KAFKA_ACKS", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "postgres://u:p@localhost/idregistry", cfg.Database.URL)
	assert.Equal(t, 30*time.Second, cfg.Cache.SummaryTTL)
	assert.Equal(t, "localhost:9092", cfg.Kafka.Brokers)
	assert.Equal(t, "1", cfg.Kafka.Acks)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server: ServerConfig{Owner: ownerID, LogLevel: "info"},
			Auth:   AuthConfig{TokenTTL: time.Minute},
			Kafka:  KafkaConfig{Acks: "all"},
			Outbox: OutboxConfig{BatchSize: 10, Retention: time.Hour, CleanupInterval: time.Minute},
			Cache:  CacheConfig{SummaryTTL: time.Minute},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing owner", func(c *Config) { c.Server.Owner = "" }, "IDREG_OWNER_ACCOUNT_ID"},
		{"malformed owner", func(c *Config) { c.Server.Owner = "owner" }, "IDREG_OWNER_ACCOUNT_ID"},
		{"null owner", func(c *Config) { c.Server.Owner = "00000000-0000-0000-0000-000000000000" }, "null identifier"},
		{"production without key", func(c *Config) { c.Server.Environment = "production" }, "JWT_SIGNING_KEY"},
		{"bad log level", func(c *Config) { c.Server.LogLevel = "loud" }, "IDREG_LOG_LEVEL"},
		{"bad acks", func(c *Config) { c.Kafka.Acks = "2" }, "KAFKA_ACKS"},
		{"zero batch", func(c *Config) { c.Outbox.BatchSize = 0 }, "OUTBOX_BATCH_SIZE"},
		{"zero retention", func(c *Config) { c.Outbox.Retention = 0 }, "OUTBOX_RETENTION"},
		{"zero cleanup interval", func(c *Config) { c.Outbox.CleanupInterval = 0 }, "OUTBOX_CLEANUP_INTERVAL"},
		{"zero cache ttl", func(c *Config) { c.Cache.SummaryTTL = 0 }, "SUMMARY_CACHE_TTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("production keeps explicit key", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Environment = "Production"
		cfg.Auth.JWTSigningKey = "prod-key"
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "prod-key", cfg.Auth.JWTSigningKey)
	})
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}
