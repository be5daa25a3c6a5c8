package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier is the query surface shared by *sql.DB and *sql.Tx. Repositories
// only ever talk to a Querier, so the same repository object is transactional
// when the calling context carries an ambient transaction and auto-committing
// otherwise.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// txKey marks the ambient transaction bound to a context chain.
type txKey struct{}

// Session returns the ambient transaction bound to ctx, or the root database
// connection when no unit of work is active.
func (db *DB) Session(ctx context.Context) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db.sql
}

// InTransaction reports whether ctx carries an ambient transaction.
func (db *DB) InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*sql.Tx)
	return ok
}

// RunInTransaction executes fn as one unit of work. If ctx already carries an
// ambient transaction, fn joins it directly: no savepoints, no nested
// transactions. Otherwise a transaction is opened and bound to the context
// passed to fn, committed when fn returns nil and rolled back when fn returns
// an error or panics. The binding is scoped to the derived context chain, so
// interleaved units of work never observe each other's session.
func (db *DB) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if db.InTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	done := false
	defer func() {
		if !done {
			// fn panicked; roll back before the panic unwinds further.
			tx.Rollback()
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		done = true
		if rbErr := tx.Rollback(); rbErr != nil {
			db.log.Error().Err(rbErr).Msg("rollback failed")
		}
		return err
	}

	done = true
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
