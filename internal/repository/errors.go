// Package repository stores users, refresh tokens, member accounts and
// catalog items in MySQL. Balances are not touched here; they belong to the
// ledger procedures.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrEmailExists = errors.New("email already exists")
	ErrConflict    = errors.New("conflict")
)

type mysqlError = mysql.MySQLError

const (
	mysqlDuplicateEntry  = 1062 // ER_DUP_ENTRY
	mysqlSignalException = 1644 // SIGNAL SQLSTATE '45000'
)

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// affectedOrNotFound maps "no row matched" onto ErrNotFound.
func affectedOrNotFound(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// rowsMatched counts rows matched by an UPDATE. The DSN sets
// clientFoundRows, so unchanged rows count too.
func rowsMatched(res sql.Result) (int64, error) { return res.RowsAffected() }
