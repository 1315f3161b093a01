package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

const sqlStateUndefinedTable = "42P01"

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// dbError wraps a driver error with the operation and, for server errors, the SQLSTATE
// condition name, so logs read "upsert matches [unique_violation]: pq: ...".
func dbError(op string, err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if pqErr.Code == sqlStateUndefinedTable {
		return fmt.Errorf("%s [%s, run migrations]: %w", op, pqErr.Code.Name(), err)
	}
	return fmt.Errorf("%s [%s]: %w", op, pqErr.Code.Name(), err)
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func nullString(value sql.NullString) string {
	if !value.Valid {
		return ""
	}
	return value.String
}
