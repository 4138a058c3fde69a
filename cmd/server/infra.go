package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	identitymetrics "idregistry/internal/identity/metrics"
	identityservice "idregistry/internal/identity/service"
	identitystore "idregistry/internal/identity/store"
	"idregistry/internal/platform/config"
	"idregistry/internal/platform/database"
	"idregistry/internal/platform/health"
	"idregistry/internal/platform/kafka"
	"idregistry/internal/platform/kafka/producer"
	redisclient "idregistry/internal/platform/redis"
	"idregistry/pkg/platform/circuit"
	"idregistry/pkg/platform/outbox"
	outboxmemory "idregistry/pkg/platform/outbox/store/memory"
	outboxpostgres "idregistry/pkg/platform/outbox/store/postgres"
)

// infra holds the backing services chosen by configuration. Every optional
// backend has an in-process fallback so the server runs with no dependencies.
type infra struct {
	store     identityservice.Store
	tx        identityservice.RegistryTx
	outbox    outbox.Store
	cache     identityservice.SummaryCache
	publisher producer.Publisher

	db    *database.Pool
	redis *redisclient.Client
	admin *kafka.Admin
}

func buildInfra(ctx context.Context, cfg *config.Config, log *slog.Logger, reg prometheus.Registerer, m *identitymetrics.Metrics, checks *health.Handler) (*infra, error) {
	in := &infra{}
	if err := in.buildStorage(ctx, cfg, log, m, checks); err != nil {
		in.Close(log)
		return nil, err
	}
	if err := in.buildCache(ctx, cfg, log, reg, checks); err != nil {
		in.Close(log)
		return nil, err
	}
	if err := in.buildPublisher(ctx, cfg, log, checks); err != nil {
		in.Close(log)
		return nil, err
	}
	return in, nil
}

func (in *infra) buildStorage(ctx context.Context, cfg *config.Config, log *slog.Logger, m *identitymetrics.Metrics, checks *health.Handler) error {
	if cfg.Database.URL == "" {
		log.Warn("DATABASE_URL not set; registry state is kept in memory and lost on restart")
		records := identitystore.NewInMemory()
		events := outboxmemory.New()
		in.store = records
		in.outbox = events
		in.tx = identityservice.NewInMemoryTx(records, events, identityservice.WithLockWaitMetrics(m))
		return nil
	}

	if cfg.Database.AutoMigrate {
		if err := migrateUp(cfg.Database.URL, log); err != nil {
			return err
		}
	}

	pool, err := database.New(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	in.db = pool
	in.store = identitystore.NewPostgres(pool.DB())
	in.outbox = outboxpostgres.New(pool.DB())
	in.tx = newIdentityPostgresTx(pool.DB())
	checks.RegisterCheck("postgres", pool.Health)
	return nil
}

func migrateUp(url string, log *slog.Logger) error {
	m, err := database.NewMigrator(url)
	if err != nil {
		return err
	}
	defer m.Close() //nolint:errcheck // migration connection is not reused
	if err := m.Up(); err != nil {
		return err
	}
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	log.Info("database schema ready", "version", version, "dirty", dirty)
	return nil
}

func (in *infra) buildCache(ctx context.Context, cfg *config.Config, log *slog.Logger, reg prometheus.Registerer, checks *health.Handler) error {
	if cfg.Redis.URL == "" {
		in.cache = identitystore.NewLocalSummaryCache(cfg.Cache.SummaryTTL)
		return nil
	}

	client, err := redisclient.New(ctx, cfg.Redis, redisclient.NewPoolMetrics(reg))
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	in.redis = client
	in.cache = identitystore.NewGuardedSummaryCache(
		identitystore.NewRedisSummaryCache(client.Client, cfg.Cache.SummaryTTL),
		circuit.New("redis-summary-cache"),
		log,
	)
	checks.RegisterCheck("redis", client.Health)
	log.Info("summary cache backed by redis")
	return nil
}

func (in *infra) buildPublisher(ctx context.Context, cfg *config.Config, log *slog.Logger, checks *health.Handler) error {
	if cfg.Kafka.Brokers == "" {
		log.Warn("KAFKA_BROKERS not set; notifications are written to the log")
		in.publisher = producer.NewLogProducer(log)
		return nil
	}

	admin, err := kafka.NewAdmin(cfg.Kafka.Brokers)
	if err != nil {
		return err
	}
	in.admin = admin
	// -1 asks the broker for its default partition count and replication.
	if err := admin.EnsureTopic(ctx, cfg.Kafka.Topic, -1, -1); err != nil {
		log.Warn("could not ensure notification topic", "topic", cfg.Kafka.Topic, "error", err)
	}
	checks.RegisterCheck("kafka", admin.Check)

	p, err := producer.New(producer.Config{
		Brokers:         cfg.Kafka.Brokers,
		Acks:            cfg.Kafka.Acks,
		Retries:         cfg.Kafka.Retries,
		DeliveryTimeout: cfg.Kafka.DeliveryTimeout,
	}, log)
	if err != nil {
		return err
	}
	in.publisher = p
	return nil
}

// Close releases backends in reverse dependency order.
func (in *infra) Close(log *slog.Logger) {
	if in.publisher != nil {
		if err := in.publisher.Close(); err != nil {
			log.Warn("failed to close publisher", "error", err)
		}
	}
	if in.admin != nil {
		in.admin.Close()
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			log.Warn("failed to close redis", "error", err)
		}
	}
	if in.db != nil {
		if err := in.db.Close(); err != nil {
			log.Warn("failed to close database", "error", err)
		}
	}
}
