package pgutils

import "strings"

// CodeForeignKeyViolation is the PostgreSQL SQLSTATE for a foreign key
// constraint violation.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const CodeForeignKeyViolation = "23503"

// IsForeignKeyViolation reports whether err is a foreign key violation.
// Inserting a favorite for a nonexistent monologue surfaces as one.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, CodeForeignKeyViolation) ||
		strings.Contains(s, "SQLSTATE "+CodeForeignKeyViolation)
}
