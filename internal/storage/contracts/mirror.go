package contracts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/steveyegge/keeper/internal/storage/sqlite"
	"github.com/steveyegge/keeper/internal/types"
)

// DefaultMirrorPath is the default SQLite file for the contracts mirror.
const DefaultMirrorPath = "data/contracts.db"

// ErrNoMirrorTable is returned when reading a mirror that was never
// populated.
var ErrNoMirrorTable = errors.New("contracts table does not exist")

// Mirror is the relational copy of the contracts file. Rows get their own
// surrogate id, which never flows back to the file.
type Mirror struct {
	path   string
	open   sqlite.Opener
	logger *slog.Logger
}

// MirrorOption configures a Mirror.
type MirrorOption func(*Mirror)

// WithMirrorOpener replaces the connection opener, mainly for tests.
func WithMirrorOpener(open sqlite.Opener) MirrorOption {
	return func(m *Mirror) {
		m.open = open
	}
}

// NewMirror creates a mirror backed by the SQLite file at path.
func NewMirror(path string, logger *slog.Logger, opts ...MirrorOption) *Mirror {
	if path == "" {
		path = DefaultMirrorPath
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Mirror{
		path:   path,
		open:   sqlite.FileOpener(path),
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Path returns the SQLite file path.
func (m *Mirror) Path() string {
	return m.path
}

func (m *Mirror) storageErr(op string, err error) error {
	m.logger.Error("contract mirror operation failed",
		slog.String("op", op), slog.String("path", m.path), slog.Any("error", err))
	return types.NewStorageError(op, m.path, err)
}

// EnsureTable creates the contracts table if it doesn't exist.
func (m *Mirror) EnsureTable(ctx context.Context) error {
	err := sqlite.Scoped(ctx, m.open, func(conn *sql.DB) error {
		return sqlite.InitContractSchema(ctx, conn)
	})
	if err != nil {
		return m.storageErr("ensure contracts table", err)
	}
	return nil
}

// InsertAll appends every contract as a new row in one transaction and
// returns the number of rows written. Nothing is deduplicated.
func (m *Mirror) InsertAll(ctx context.Context, contracts []types.Contract) (int, error) {
	inserted := 0
	err := sqlite.Scoped(ctx, m.open, func(conn *sql.DB) error {
		if err := sqlite.InitContractSchema(ctx, conn); err != nil {
			return err
		}

		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO contracts (descricao, categoria, vencimento, fornecedor)
			VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, c := range contracts {
			if _, err := stmt.ExecContext(ctx, c.Description, c.Category, c.DueDate, c.Supplier); err != nil {
				return fmt.Errorf("failed to insert contract %q: %w", c.Description, err)
			}
			inserted++
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, m.storageErr("insert contracts", err)
	}

	m.logger.Debug("inserted contracts into mirror", slog.Int("count", inserted))
	return inserted, nil
}

// exists reports whether the mirror file is on disk. Reads check it first
// so that they never create an empty database.
func (m *Mirror) exists() (bool, error) {
	_, err := os.Stat(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// All returns every mirrored contract in whatever order SQLite yields.
// It fails with ErrNoMirrorTable if the file or table was never created.
func (m *Mirror) All(ctx context.Context) ([]types.Contract, error) {
	ok, err := m.exists()
	if err != nil {
		return nil, m.storageErr("read contracts", err)
	}
	if !ok {
		return nil, m.storageErr("read contracts", ErrNoMirrorTable)
	}

	contracts := []types.Contract{}
	err = sqlite.Scoped(ctx, m.open, func(conn *sql.DB) error {
		exists, err := sqlite.TableExists(ctx, conn, "contracts")
		if err != nil {
			return err
		}
		if !exists {
			return ErrNoMirrorTable
		}

		rows, err := conn.QueryContext(ctx,
			`SELECT descricao, categoria, vencimento, fornecedor FROM contracts`)
		if err != nil {
			return fmt.Errorf("failed to query contracts: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var desc, cat, due, sup sql.NullString
			if err := rows.Scan(&desc, &cat, &due, &sup); err != nil {
				return fmt.Errorf("failed to scan contract: %w", err)
			}
			contracts = append(contracts, types.Contract{
				Description: desc.String,
				Category:    cat.String,
				DueDate:     due.String,
				Supplier:    sup.String,
			})
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating contracts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, m.storageErr("read contracts", err)
	}
	return contracts, nil
}

// Count returns the number of mirrored rows, or zero when the file or
// table doesn't exist yet.
func (m *Mirror) Count(ctx context.Context) (int, error) {
	ok, err := m.exists()
	if err != nil {
		return 0, m.storageErr("count contracts", err)
	}
	if !ok {
		return 0, nil
	}

	var count int
	err = sqlite.Scoped(ctx, m.open, func(conn *sql.DB) error {
		exists, err := sqlite.TableExists(ctx, conn, "contracts")
		if err != nil || !exists {
			return err
		}
		if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM contracts").Scan(&count); err != nil {
			return fmt.Errorf("failed to count contracts: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, m.storageErr("count contracts", err)
	}
	return count, nil
}
