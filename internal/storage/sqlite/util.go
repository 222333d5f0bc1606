package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// querier is the subset of *sql.DB and *sql.Conn the query helpers need.
// Read helpers are written against it so the storage and its transaction
// wrapper share one implementation.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// isBusyError reports whether err is a transient SQLITE_BUSY/SQLITE_LOCKED
// condition worth retrying.
func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "sqlite_busy") ||
		strings.Contains(msg, "sqlite_locked")
}

// beginImmediateWithRetry starts an IMMEDIATE transaction on conn, retrying
// SQLITE_BUSY with exponential backoff.
//
// IMMEDIATE acquires the write lock up front, which serializes writers and
// prevents deadlocks between transactions that upgrade from read to write.
// Raw Exec is used instead of BeginTx because database/sql has no way to
// request a transaction mode.
func beginImmediateWithRetry(ctx context.Context, conn *sql.Conn, maxElapsed time.Duration) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxElapsedTime = maxElapsed

	op := func() error {
		_, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE")
		if err == nil {
			return nil
		}
		if isBusyError(err) {
			return err // retryable
		}
		return backoff.Permanent(err)
	}

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("begin immediate: %w", err)
	}
	return nil
}

// nullableString converts a scanned sql.NullString to the *string
// representation used by the types package. Null stays nil; it is never
// substituted with an empty string.
func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
