// Package tasks keeps tasks in a SQLite table.
//
// Every method opens its own connection and closes it before returning;
// the Store itself holds only paths and a logger.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/steveyegge/keeper/internal/storage/sqlite"
	"github.com/steveyegge/keeper/internal/types"
)

// Default locations of the task database and its backup.
const (
	DefaultDBPath     = "data/tasks.db"
	DefaultBackupName = "tasks_backup.db"
)

// Store performs CRUD operations on the tasks table.
type Store struct {
	path       string
	backupPath string
	open       sqlite.Opener
	logger     *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithBackupPath overrides the backup location. By default the backup is
// tasks_backup.db next to the database.
func WithBackupPath(path string) Option {
	return func(s *Store) {
		if path != "" {
			s.backupPath = path
		}
	}
}

// WithOpener replaces the connection opener, mainly for tests.
func WithOpener(open sqlite.Opener) Option {
	return func(s *Store) {
		s.open = open
	}
}

// WithLogger sets the logger. Without it log output is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Store for the database at path.
func New(path string, opts ...Option) *Store {
	if path == "" {
		path = DefaultDBPath
	}
	s := &Store{
		path:       path,
		backupPath: filepath.Join(filepath.Dir(path), DefaultBackupName),
		open:       sqlite.FileOpener(path),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// BackupPath returns where Backup copies the database.
func (s *Store) BackupPath() string {
	return s.backupPath
}

func (s *Store) storageErr(op string, err error) error {
	s.logger.Error("task store operation failed",
		slog.String("op", op), slog.String("path", s.path), slog.Any("error", err))
	return types.NewStorageError(op, s.path, err)
}

// Initialize creates the tasks table if it doesn't exist. It is safe to
// call on every start.
func (s *Store) Initialize(ctx context.Context) error {
	err := sqlite.Scoped(ctx, s.open, func(conn *sql.DB) error {
		return sqlite.InitTaskSchema(ctx, conn)
	})
	if err != nil {
		return s.storageErr("initialize task table", err)
	}
	s.logger.Debug("task table ready", slog.String("path", s.path))
	return nil
}

// Create inserts a Pending task and returns its id. Empty title or
// description is rejected before the database is touched.
func (s *Store) Create(ctx context.Context, title, description string) (int64, error) {
	if err := types.ValidateFields(title, description); err != nil {
		s.logger.Warn("task rejected", slog.Any("error", err))
		return 0, err
	}

	var id int64
	err := sqlite.Scoped(ctx, s.open, func(conn *sql.DB) error {
		result, err := conn.ExecContext(ctx,
			`INSERT INTO tasks (title, description, status) VALUES (?, ?, ?)`,
			title, description, string(types.StatusPending))
		if err != nil {
			return fmt.Errorf("failed to insert task: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read task id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, s.storageErr("create task", err)
	}

	s.logger.Info("task created", slog.Int64("id", id), slog.String("title", title))
	return id, nil
}

// List returns every task ordered by id.
//
// On a storage failure it returns an empty, non-nil slice together with
// an error matching types.ErrStorage, so "no tasks" and "could not read
// tasks" stay distinguishable.
func (s *Store) List(ctx context.Context) ([]types.Task, error) {
	var tasks []types.Task
	err := sqlite.Scoped(ctx, s.open, func(conn *sql.DB) error {
		rows, err := conn.QueryContext(ctx,
			`SELECT id, title, description, status FROM tasks ORDER BY id`)
		if err != nil {
			return fmt.Errorf("failed to query tasks: %w", err)
		}
		defer rows.Close()

		tasks, err = scanTasks(rows)
		return err
	})
	if err != nil {
		return []types.Task{}, s.storageErr("list tasks", err)
	}
	return tasks, nil
}

// scanTasks is a helper function to scan multiple tasks from query results.
func scanTasks(rows *sql.Rows) ([]types.Task, error) {
	tasks := []types.Task{}
	for rows.Next() {
		var t types.Task
		var status string
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &status); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		t.Status = types.Status(status)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

// Get returns the task with the given id, or types.ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (*types.Task, error) {
	var t types.Task
	var status string
	err := sqlite.Scoped(ctx, s.open, func(conn *sql.DB) error {
		return conn.QueryRowContext(ctx,
			`SELECT id, title, description, status FROM tasks WHERE id = ?`, id,
		).Scan(&t.ID, &t.Title, &t.Description, &status)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %d: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, s.storageErr("get task", err)
	}
	t.Status = types.Status(status)
	return &t, nil
}

// Update replaces title, description and status of the task with the
// given id. Validation failures match types.ErrValidation; a missing id
// matches types.ErrNotFound and changes nothing.
func (s *Store) Update(ctx context.Context, id int64, title, description string, status types.Status) error {
	task := types.Task{ID: id, Title: title, Description: description, Status: status}
	if err := task.Validate(); err != nil {
		s.logger.Warn("task update rejected", slog.Int64("id", id), slog.Any("error", err))
		return err
	}

	var affected int64
	err := sqlite.Scoped(ctx, s.open, func(conn *sql.DB) error {
		result, err := conn.ExecContext(ctx,
			`UPDATE tasks SET title = ?, description = ?, status = ? WHERE id = ?`,
			title, description, string(status), id)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return s.storageErr("update task", err)
	}

	if affected == 0 {
		s.logger.Warn("task not found", slog.Int64("id", id))
		return fmt.Errorf("task %d: %w", id, types.ErrNotFound)
	}

	s.logger.Info("task updated", slog.Int64("id", id), slog.String("status", string(status)))
	return nil
}

// Delete removes the task with the given id, or returns types.ErrNotFound.
func (s *Store) Delete(ctx context.Context, id int64) error {
	var affected int64
	err := sqlite.Scoped(ctx, s.open, func(conn *sql.DB) error {
		result, err := conn.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return s.storageErr("delete task", err)
	}

	if affected == 0 {
		s.logger.Warn("task not found", slog.Int64("id", id))
		return fmt.Errorf("task %d: %w", id, types.ErrNotFound)
	}

	s.logger.Info("task deleted", slog.Int64("id", id))
	return nil
}

// Count returns the number of tasks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := sqlite.Scoped(ctx, s.open, func(conn *sql.DB) error {
		return conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&count)
	})
	if err != nil {
		return 0, s.storageErr("count tasks", err)
	}
	return count, nil
}

// Backup copies the database file byte for byte to BackupPath, replacing
// any earlier backup, and returns the backup path.
func (s *Store) Backup(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := copyFile(s.path, s.backupPath); err != nil {
		return "", s.storageErr("back up task database", err)
	}

	s.logger.Info("task database backed up", slog.String("backup", s.backupPath))
	return s.backupPath, nil
}

func copyFile(src, dst string) error {
	// #nosec G304 - paths come from configuration
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	// #nosec G304 - paths come from configuration
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy database: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}
