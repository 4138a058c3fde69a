package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	identityservice "idregistry/internal/identity/service"
	identitystore "idregistry/internal/identity/store"
	dErrors "idregistry/pkg/domain-errors"
	"idregistry/pkg/platform/outbox"
	outboxpostgres "idregistry/pkg/platform/outbox/store/postgres"
)

const defaultIdentityTxTimeout = 5 * time.Second

// identityPostgresTx runs registry mutations and their outbox entries in one
// database transaction. Row locks taken by the store serialize conflicting
// check-then-write sequences.
type identityPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newIdentityPostgresTx(db *sql.DB) *identityPostgresTx {
	return &identityPostgresTx{db: db}
}

func (t *identityPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store identityservice.Store, events outbox.Appender) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultIdentityTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin identity tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is no-op; error already captured
	}()

	if err := fn(ctx, identitystore.NewPostgresTx(tx), outboxpostgres.NewTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit identity tx: %w", err)
	}
	return nil
}
