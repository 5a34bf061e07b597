// Package postgres implements the ports repositories with sqlx. Queries are
// written with ? placeholders and rebound per driver, so the same code runs
// on PostgreSQL (lib/pq) and on SQLite (go-sqlite3) for development and tests.
package postgres

import (
	"database/sql"

	"filmdash/internal/errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// isUniqueViolation recognises duplicate-key errors from either driver
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" // unique_violation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// translate maps driver errors onto application codes
func translate(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return errors.NotFound(resource)
	case isUniqueViolation(err):
		return &errors.AppError{Code: errors.CodeConflict, Message: resource + " already exists", Cause: err}
	default:
		return &errors.AppError{Code: errors.CodeDatabaseError, Message: resource + " query failed", Cause: err}
	}
}

// expectOne turns an update that matched nothing into NOT_FOUND
func expectOne(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return translate(err, resource)
	}
	if n == 0 {
		return errors.NotFound(resource)
	}
	return nil
}
