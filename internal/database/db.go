// Package database is the relational layer under the kv_entries store. The
// postgres and sqlite packages adapt their drivers to DB.
package database

import (
	"context"
	"database/sql"
	"errors"
)

var (
	// ErrNoRows is returned by Row.Scan when a lookup matched nothing,
	// whichever driver served it.
	ErrNoRows = errors.New("database: no rows")
	// ErrNotConnected is returned by a DB that was never opened.
	ErrNotConnected = errors.New("database: not connected")
)

// DB runs the single-row reads and guarded writes of the kv_entries table.
type DB interface {
	Ping(ctx context.Context) error
	Close() error

	// Exec returns the number of affected rows.
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	QueryRow(ctx context.Context, query string, args ...any) Row

	Begin(ctx context.Context) (Tx, error)

	// SQLDB exposes a database/sql handle for the migration runner.
	SQLDB() *sql.DB
}

// Tx is one commit of the store: version checks and writes for every
// touched key, applied together or not at all.
type Tx interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	QueryRow(ctx context.Context, query string, args ...any) Row

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Row interface {
	Scan(dest ...any) error
}
