package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "dummyapi/pkg/domain-errors"
	txcontext "dummyapi/pkg/platform/tx"
)

const defaultDummyTxTimeout = 5 * time.Second

// dummyPostgresTx runs service mutations in one database transaction that the
// Postgres store joins through the context.
type dummyPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newDummyPostgresTx(db *sql.DB) *dummyPostgresTx {
	return &dummyPostgresTx{db: db}
}

func (t *dummyPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, ok := txcontext.From(ctx); ok {
		return fn(ctx)
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultDummyTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is no-op; error already captured
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit()
}
