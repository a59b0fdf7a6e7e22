package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner implements domain.TxRunner on a pgx connection pool. The callback
// receives a pgx.Tx as the opaque handle; repository Tx-variant methods
// unwrap it.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner creates a new TxRunner
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunInTx begins a transaction, runs fn, and commits. Any error from fn
// rolls the transaction back.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(tx any) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
