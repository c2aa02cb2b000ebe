package sql

import (
	"context"
	"database/sql"
)

type txKey struct{}

// WithTransaction makes store writes issued with ctx join tx instead of autocommitting.
// The caller owns tx and decides whether to commit or roll back.
func WithTransaction(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetTransaction returns the transaction carried by ctx, or nil.
func GetTransaction(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}
