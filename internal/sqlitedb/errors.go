package sqlitedb

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// IsUniqueViolation returns true if err is a UNIQUE or PRIMARY KEY
// constraint failure.
func IsUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
		se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// IsForeignKeyViolation returns true if err is a FOREIGN KEY constraint
// failure.
func IsForeignKeyViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

// IsCheckViolation returns true if err is a CHECK constraint failure.
func IsCheckViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintCheck
}

// ftsQueryMessages are fragments of the errors FTS5 raises while parsing a
// MATCH expression.
var ftsQueryMessages = []string{
	"fts5:",               // syntax error, parser stack overflow
	"unterminated string", // unbalanced double quote
	"no such column",      // column filter naming an unknown column
}

// IsFTSQueryError returns true if err was raised by FTS5 while parsing a
// MATCH expression rather than by storage.
func IsFTSQueryError(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) || se.Code != sqlite3.ErrError {
		return false
	}
	msg := se.Error()
	for _, m := range ftsQueryMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
