package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	identityhandler "idregistry/internal/identity/handler"
	identitymetrics "idregistry/internal/identity/metrics"
	identityservice "idregistry/internal/identity/service"
	"idregistry/internal/identity/tracer"
	jwttoken "idregistry/internal/jwt_token"
	"idregistry/internal/platform/config"
	"idregistry/internal/platform/health"
	"idregistry/internal/platform/logger"
	platformotel "idregistry/internal/platform/otel"
	httptransport "idregistry/internal/transport/http"
	"idregistry/pkg/platform/middleware/request"
	outboxmetrics "idregistry/pkg/platform/outbox/metrics"
	"idregistry/pkg/platform/outbox/worker"
)

const (
	poolStatsInterval   = 15 * time.Second
	outboxDepthInterval = 10 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "idregistry:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level, _ := config.ParseLogLevel(cfg.Server.LogLevel) //nolint:errcheck // validated by config.Load
	log := logger.New(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing idregistry",
		"addr", cfg.Server.Addr,
		"environment", cfg.Server.Environment,
		"owner", cfg.OwnerAccountID.String(),
		"postgres", cfg.Database.URL != "",
		"redis", cfg.Redis.URL != "",
		"kafka", cfg.Kafka.Brokers != "",
	)

	shutdownTracing, err := platformotel.Setup(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	healthHandler := health.New(cfg.Server.Environment)
	registryMetrics := identitymetrics.New(reg)

	infra, err := buildInfra(ctx, cfg, log, reg, registryMetrics, healthHandler)
	if err != nil {
		return err
	}
	defer infra.Close(log)

	var spans tracer.Tracer = tracer.NewNoop()
	if cfg.Tracing.Endpoint != "" {
		spans = tracer.NewOTel()
	}

	registry, err := identityservice.New(cfg.OwnerAccountID, infra.store, infra.tx,
		identityservice.WithLogger(log),
		identityservice.WithMetrics(registryMetrics),
		identityservice.WithTracer(spans),
		identityservice.WithSummaryCache(infra.cache),
	)
	if err != nil {
		return fmt.Errorf("create registry: %w", err)
	}
	if err := registry.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap registry: %w", err)
	}

	outboxWorker := worker.New(infra.outbox, infra.publisher,
		worker.WithTopic(cfg.Kafka.Topic),
		worker.WithBatchSize(cfg.Outbox.BatchSize),
		worker.WithPollInterval(cfg.Outbox.PollInterval),
		worker.WithRetention(cfg.Outbox.Retention),
		worker.WithMetrics(outboxmetrics.New(reg)),
		worker.WithLogger(log),
	)

	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.TokenTTL)
	tokens.SetEnv(cfg.Server.Environment)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Identity:       identityhandler.New(registry, log),
		Health:         healthHandler,
		Validator:      jwttoken.NewJWTServiceAdapter(tokens),
		Metrics:        request.NewMetrics(reg),
		Gatherer:       reg,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	outboxWorker.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return every(gctx, outboxDepthInterval, func() {
			if err := outboxWorker.UpdateMetrics(gctx); err != nil {
				log.WarnContext(gctx, "failed to refresh outbox depth", "error", err)
			}
		})
	})
	g.Go(func() error {
		return every(gctx, cfg.Outbox.CleanupInterval, func() {
			n, err := outboxWorker.Prune(gctx)
			if err != nil {
				log.WarnContext(gctx, "failed to prune outbox", "error", err)
				return
			}
			if n > 0 {
				log.InfoContext(gctx, "pruned published notifications", "count", n)
			}
		})
	})
	if infra.redis != nil {
		g.Go(func() error {
			return every(gctx, poolStatsInterval, infra.redis.RecordPoolStats)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if err := outboxWorker.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("outbox worker stop: %w", err))
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("tracing shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		return err
	}
	log.Info("server stopped")
	return nil
}

// every runs fn on each tick until ctx is done.
func every(ctx context.Context, interval time.Duration, fn func()) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fn()
		}
	}
}
