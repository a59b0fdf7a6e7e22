package domain

import "context"

// TxRunner runs a function within a database transaction. Repositories expose
// *Tx method variants that accept the opaque tx handle; the postgres
// implementation passes a pgx.Tx, mocks pass nil.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx any) error) error
}
