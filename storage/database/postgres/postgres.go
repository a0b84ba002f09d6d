// Package postgres implements the core repository interfaces on top of
// PostgreSQL via sqlx.
package postgres

import (
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

func itoa(n int) string { return strconv.Itoa(n) }

// inTx runs fn inside a transaction, committing on success and rolling
// back on error or panic.
func inTx(db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.Beginx()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}
