// Package storage threads an explicit transaction handle through the
// core: ports accept a *sqlx.Tx rather than reaching for an ambient
// request-scoped session, and grant's nested savepoint is opened here
// rather than hidden inside an ORM.
package storage

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jmoiron/sqlx"
)

// Tx is the transaction handle threaded through every storage-backed
// core operation.
type Tx = *sqlx.Tx

// WithTx runs fn inside a new transaction on db, committing on success
// and rolling back on error or panic — the common outer transaction
// commits at the request boundary.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(tx)
	return err
}

var savepointSeq int64

// WithSavepoint runs fn inside a nested savepoint on tx, rolling back
// only the savepoint (not the enclosing transaction) when fn errors.
// This is the mechanism grant uses so a unique-constraint conflict on
// the ACL row only unwinds the insert attempt.
func WithSavepoint(ctx context.Context, tx Tx, fn func() error) error {
	name := fmt.Sprintf("sp_%d", atomic.AddInt64(&savepointSeq, 1))

	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("savepoint %s: %w", name, err)
	}

	if err := fn(); err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("rollback savepoint %s after %v: %w", name, err, rbErr)
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("release savepoint %s: %w", name, err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505); grant treats one as an already-present
// ACL row rather than an error.
func IsUniqueViolation(err error) bool {
	return pqErrorCode(err) == "23505"
}
