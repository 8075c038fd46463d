// Package sqlite provides scoped access to the SQLite files behind the
// task table and the contract mirror.
//
// Every operation in keeper acquires its own connection, uses it, and
// releases it before returning:
//
//	err := sqlite.WithConn(ctx, "data/tasks.db", func(conn *sql.DB) error {
//	    _, err := conn.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
//	    return err
//	})
//
// The database stays in the default rollback-journal mode so that the
// whole store lives in a single file that can be copied for backups.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DriverName is the database/sql driver registered by ncruces/go-sqlite3.
const DriverName = "sqlite3"

// Opener acquires a connection for a single operation. Stores accept one
// so tests can substitute a mock connection.
type Opener func(ctx context.Context) (*sql.DB, error)

// Open creates a connection to the database at path, creating the parent
// directory and the file if needed.
//
// The caller MUST Close the returned handle.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open(DriverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection, released with the handle.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := conn.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return conn, nil
}

// dsn turns a file path into a "file:" URI. Characters with a meaning in
// URIs (?, #, %) are escaped so they stay part of the file name.
func dsn(path string) string {
	return "file:" + (&url.URL{Path: filepath.ToSlash(path)}).EscapedPath()
}

// FileOpener returns an Opener for the database at path.
func FileOpener(path string) Opener {
	return func(ctx context.Context) (*sql.DB, error) {
		return Open(ctx, path)
	}
}

// WithConn opens the database at path, runs fn and closes the connection
// on every exit path.
func WithConn(ctx context.Context, path string, fn func(*sql.DB) error) error {
	return Scoped(ctx, FileOpener(path), fn)
}

// Scoped acquires a connection from open, runs fn and closes the
// connection even when fn fails. A close error is reported only when fn
// succeeded.
func Scoped(ctx context.Context, open Opener, fn func(*sql.DB) error) (err error) {
	conn, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close database: %w", cerr)
		}
	}()

	return fn(conn)
}
