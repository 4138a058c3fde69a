package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	id "idregistry/pkg/domain"
)

// DevJWTSigningKey is used when JWT_SIGNING_KEY is unset outside production.
const DevJWTSigningKey = "dev-secret-key-change-in-production"

// Config is the full server configuration, read from the environment.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Kafka    KafkaConfig
	Outbox   OutboxConfig
	Tracing  TracingConfig

	// OwnerAccountID is the parsed IDREG_OWNER_ACCOUNT_ID, set by Validate.
	OwnerAccountID id.AccountID
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string        `env:"IDREG_ADDR" envDefault:":8080"`
	Environment     string        `env:"IDREG_ENV" envDefault:"local"`
	LogLevel        string        `env:"IDREG_LOG_LEVEL" envDefault:"info"`
	Owner           string        `env:"IDREG_OWNER_ACCOUNT_ID"`
	RequestTimeout  time.Duration `env:"IDREG_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// AuthConfig configures bearer token validation.
type AuthConfig struct {
	JWTSigningKey string        `env:"JWT_SIGNING_KEY"`
	Issuer        string        `env:"JWT_ISSUER" envDefault:"idregistry"`
	Audience      string        `env:"JWT_AUDIENCE" envDefault:"idregistry-api"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"15m"`
}

// DatabaseConfig selects PostgreSQL; an empty URL keeps the registry in memory.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"5m"`
	AutoMigrate     bool          `env:"DATABASE_AUTO_MIGRATE" envDefault:"true"`
}

// RedisConfig selects the shared summary cache; an empty URL keeps it in process.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

type CacheConfig struct {
	SummaryTTL time.Duration `env:"SUMMARY_CACHE_TTL" envDefault:"10m"`
}

// KafkaConfig selects the notification transport; empty brokers log instead.
type KafkaConfig struct {
	Brokers         string        `env:"KAFKA_BROKERS"`
	Topic           string        `env:"KAFKA_TOPIC" envDefault:"idregistry.notifications"`
	Acks            string        `env:"KAFKA_ACKS" envDefault:"all"`
	Retries         int           `env:"KAFKA_RETRIES" envDefault:"3"`
	DeliveryTimeout time.Duration `env:"KAFKA_DELIVERY_TIMEOUT" envDefault:"30s"`
}

type OutboxConfig struct {
	PollInterval    time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"100ms"`
	BatchSize       int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
	Retention       time.Duration `env:"OUTBOX_RETENTION" envDefault:"24h"`
	CleanupInterval time.Duration `env:"OUTBOX_CLEANUP_INTERVAL" envDefault:"10m"`
}

// TracingConfig enables OTLP/HTTP export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string `env:"OTEL_EXPORTER_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"idregistry"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether the server runs in the production environment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// Validate checks required settings and fills the signing key default
// outside production.
func (c *Config) Validate() error {
	var errs []error

	owner, err := id.ParseAccountID(c.Server.Owner)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("IDREG_OWNER_ACCOUNT_ID: %w", err))
	case owner.IsNil():
		errs = append(errs, errors.New("IDREG_OWNER_ACCOUNT_ID must not be the null identifier"))
	default:
		c.OwnerAccountID = owner
	}

	if c.Auth.JWTSigningKey == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("JWT_SIGNING_KEY is required in production"))
		} else {
			c.Auth.JWTSigningKey = DevJWTSigningKey
		}
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if _, err := ParseLogLevel(c.Server.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.Kafka.Acks {
	case "0", "1", "all":
	default:
		errs = append(errs, fmt.Errorf("KAFKA_ACKS must be 0, 1 or all, got %q", c.Kafka.Acks))
	}
	if c.Outbox.BatchSize <= 0 {
		errs = append(errs, errors.New("OUTBOX_BATCH_SIZE must be positive"))
	}
	if c.Outbox.Retention <= 0 {
		errs = append(errs, errors.New("OUTBOX_RETENTION must be positive"))
	}
	if c.Outbox.CleanupInterval <= 0 {
		errs = append(errs, errors.New("OUTBOX_CLEANUP_INTERVAL must be positive"))
	}
	if c.Cache.SummaryTTL <= 0 {
		errs = append(errs, errors.New("SUMMARY_CACHE_TTL must be positive"))
	}

	return errors.Join(errs...)
}

// ParseLogLevel maps debug, info, warn and error to slog levels.
func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("IDREG_LOG_LEVEL: unknown level %q", level)
	}
	return l, nil
}
