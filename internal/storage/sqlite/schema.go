package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

const taskSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'Pending'
)`

const contractSchema = `
CREATE TABLE IF NOT EXISTS contracts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	descricao TEXT,
	categoria TEXT,
	vencimento TEXT,
	fornecedor TEXT
)`

// InitTaskSchema creates the tasks table if it doesn't exist.
// It never drops or alters an existing table, so it is safe to call on
// every start.
func InitTaskSchema(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, taskSchema); err != nil {
		return fmt.Errorf("failed to initialize task schema: %w", err)
	}
	return nil
}

// InitContractSchema creates the contracts mirror table if it doesn't exist.
func InitContractSchema(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, contractSchema); err != nil {
		return fmt.Errorf("failed to initialize contract schema: %w", err)
	}
	return nil
}

// TableExists reports whether a table named name exists.
func TableExists(ctx context.Context, conn *sql.DB, name string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`
	if err := conn.QueryRowContext(ctx, query, name).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to look up table %s: %w", name, err)
	}
	return count == 1, nil
}
