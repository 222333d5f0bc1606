package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mirepoix/mirepoix/internal/storage"
)

// ErrIntegrity indicates the database violated an invariant the engine relies
// on, such as an edge referencing a step row that does not exist. Operations
// that hit this abort the whole unit of work rather than repairing silently.
var ErrIntegrity = errors.New("storage integrity fault")

// wrapDBError wraps a database error with operation context.
// It converts sql.ErrNoRows to storage.ErrNotFound for consistent error handling.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// wrapDBErrorf wraps a database error with formatted operation context.
// It converts sql.ErrNoRows to storage.ErrNotFound for consistent error handling.
func wrapDBErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	op := fmt.Sprintf(format, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsUniqueConstraintError checks if an error is a UNIQUE constraint violation
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsCheckConstraintError checks if an error is a CHECK constraint violation.
// The edge table's output_step < input_step CHECK surfaces this way if a
// mutation path ever tries to persist a backward edge.
func IsCheckConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "CHECK constraint failed")
}
