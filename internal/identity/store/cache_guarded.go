package store

import (
	"context"
	"errors"
	"log/slog"

	"idregistry/internal/identity/models"
	id "idregistry/pkg/domain"
	"idregistry/pkg/platform/circuit"
	"idregistry/pkg/platform/sentinel"
)

type summaryCache interface {
	Get(ctx context.Context, accountID id.AccountID) (*models.Summary, error)
	Set(ctx context.Context, summary *models.Summary) error
}

// GuardedSummaryCache puts a circuit breaker in front of a shared cache.
// While the circuit is open reads fail fast with sentinel.ErrUnavailable and
// writes are dropped, so a failing cache costs nothing beyond the summary
// being read from the store.
type GuardedSummaryCache struct {
	next    summaryCache
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuardedSummaryCache(next summaryCache, breaker *circuit.Breaker, logger *slog.Logger) *GuardedSummaryCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &GuardedSummaryCache{next: next, breaker: breaker, logger: logger}
}

func (c *GuardedSummaryCache) Get(ctx context.Context, accountID id.AccountID) (*models.Summary, error) {
	if !c.breaker.Allow() {
		return nil, sentinel.ErrUnavailable
	}
	summary, err := c.next.Get(ctx, accountID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		c.record(ctx, c.breaker.RecordFailure(), err)
		return nil, err
	}
	c.record(ctx, c.breaker.RecordSuccess(), nil)
	return summary, err
}

func (c *GuardedSummaryCache) Set(ctx context.Context, summary *models.Summary) error {
	if !c.breaker.Allow() {
		return nil
	}
	if err := c.next.Set(ctx, summary); err != nil {
		c.record(ctx, c.breaker.RecordFailure(), err)
		return err
	}
	c.record(ctx, c.breaker.RecordSuccess(), nil)
	return nil
}

func (c *GuardedSummaryCache) record(ctx context.Context, change circuit.StateChange, err error) {
	switch {
	case change.Opened:
		c.logger.WarnContext(ctx, "summary cache circuit opened", "breaker", c.breaker.Name(), "error", err)
	case change.Closed:
		c.logger.InfoContext(ctx, "summary cache circuit closed", "breaker", c.breaker.Name())
	}
}
