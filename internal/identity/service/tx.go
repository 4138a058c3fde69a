package service

import (
	"context"
	"sync"
	"time"

	"idregistry/internal/identity/metrics"
	dErrors "idregistry/pkg/domain-errors"
	"idregistry/pkg/platform/outbox"
)

// RegistryTx is the atomicity boundary for every state-changing operation.
// fn sees a Store bound to the transaction and an outbox appender; either all
// of its writes and notifications become visible, or none do.
type RegistryTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, store Store, events outbox.Appender) error) error
}

const defaultTxTimeout = 5 * time.Second

// InMemoryTx serializes every mutation behind one exclusive lock. Outbox
// entries are buffered and flushed only when fn succeeds.
type InMemoryTx struct {
	mu      sync.Mutex
	store   Store
	events  outbox.Appender
	timeout time.Duration
	metrics *metrics.Metrics
}

type InMemoryTxOption func(*InMemoryTx)

// WithLockWaitMetrics observes how long each transaction waits for the lock.
func WithLockWaitMetrics(m *metrics.Metrics) InMemoryTxOption {
	return func(t *InMemoryTx) {
		t.metrics = m
	}
}

func NewInMemoryTx(store Store, events outbox.Appender, opts ...InMemoryTxOption) *InMemoryTx {
	t := &InMemoryTx{store: store, events: events, timeout: defaultTxTimeout}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *InMemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store Store, events outbox.Appender) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	lockStart := time.Now()
	t.mu.Lock()
	if t.metrics != nil {
		t.metrics.ObserveTxLockWait(time.Since(lockStart).Seconds())
	}
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	var buf outbox.Buffer
	if err := fn(ctx, t.store, &buf); err != nil {
		return err
	}
	if err := buf.Flush(ctx, t.events); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to queue notifications")
	}
	return nil
}
