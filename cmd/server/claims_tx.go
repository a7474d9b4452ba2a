package main

import (
	"context"
	"database/sql"
	"time"

	"onboard/internal/onboarding/service"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	txcontext "onboard/pkg/platform/tx"
)

// claimsPostgresTx runs a claim resolution in one database transaction. The
// stores join it through the context; row locks on the claim serialise
// concurrent resolutions of the same key.
type claimsPostgresTx struct {
	db      *sql.DB
	stores  service.TxStores
	timeout time.Duration
}

func newClaimsPostgresTx(db *sql.DB, stores service.TxStores, timeout time.Duration) *claimsPostgresTx {
	return &claimsPostgresTx{db: db, stores: stores, timeout: timeout}
}

func (t *claimsPostgresTx) RunInTx(ctx context.Context, _ id.ClaimKey, fn func(ctx context.Context, stores service.TxStores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = service.DefaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx), t.stores); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit transaction")
	}
	return nil
}
