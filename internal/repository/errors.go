package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrPinTaken is returned when a member's PIN hash collides with another
// member of the same family.
var ErrPinTaken = errors.New("pin already in use within family")

// ErrCodeTaken is returned when an invitation code collides with an existing
// one. Callers retry with a fresh code.
var ErrCodeTaken = errors.New("invitation code already exists")

// isUniqueViolation reports whether err is a unique-constraint error from any
// of the supported drivers.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}

	return false
}
