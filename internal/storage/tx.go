// ABOUTME: Scoped transactions over the SQLite store.
// ABOUTME: WithTx guarantees rollback on every failure path and commit on success.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harperreed/biosync/internal/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx so read helpers can run
// inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx is a write transaction. Its methods are the only way to mutate
// multi-row state; obtain one through DB.WithTx.
type Tx struct {
	tx *sql.Tx
}

// WithTx runs fn inside a transaction. Any error from fn rolls the
// transaction back and is returned unchanged; a failed commit is reported
// as a ConsistencyError.
func (d *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()

	if err := fn(&Tx{tx: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return &models.ConsistencyError{Op: "commit", Err: err}
	}
	committed = true
	return nil
}

// readTx runs fn over one transaction and always rolls it back. Under
// _txlock=immediate the transaction holds the write lock, so fn sees no
// commits between its queries.
func (d *DB) readTx(ctx context.Context, fn func(q querier) error) error {
	sqlTx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin read tx: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()
	return fn(sqlTx)
}
