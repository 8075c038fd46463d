package tasks

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/keeper/internal/testutil"
	"github.com/steveyegge/keeper/internal/types"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "tasks.db")
	store := New(path, WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, store.Initialize(context.Background()))
	return store
}

func mustCount(t *testing.T, store *Store) int {
	t.Helper()
	n, err := store.Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestCreateThenList(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	id, err := store.Create(ctx, "T1", "D1")
	require.NoError(t, err)
	assert.Positive(t, id)

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, types.Task{ID: id, Title: "T1", Description: "D1", Status: types.StatusPending}, tasks[0])
}

func TestList_EmptyTable(t *testing.T) {
	store := setupTestStore(t)

	tasks, err := store.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestCreate_RejectsEmptyFields(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		field       string
	}{
		{"empty title", "", "D1", "title"},
		{"empty description", "T1", "", "description"},
		{"both empty", "", "", "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := setupTestStore(t)
			before := mustCount(t, store)

			_, err := store.Create(ctx, tt.title, tt.description)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrValidation)

			var verr *types.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)

			assert.Equal(t, before, mustCount(t, store))
		})
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	id, err := store.Create(ctx, "Estudar Go", "SQLite")
	require.NoError(t, err)

	err = store.Update(ctx, id, "Estudar Go Avançado", "SQLite e cobra", types.StatusInProgress)
	require.NoError(t, err)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Estudar Go Avançado", got.Title)
	assert.Equal(t, "SQLite e cobra", got.Description)
	assert.Equal(t, types.StatusInProgress, got.Status)
}

func TestUpdate_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		status      types.Status
	}{
		{"invalid status", "T", "D", "Invalid"},
		{"empty title", "", "D", types.StatusCompleted},
		{"empty description", "T", "", types.StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := setupTestStore(t)
			id, err := store.Create(ctx, "T1", "D1")
			require.NoError(t, err)

			err = store.Update(ctx, id, tt.title, tt.description, tt.status)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrValidation)

			got, err := store.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, types.Task{ID: id, Title: "T1", Description: "D1", Status: types.StatusPending}, *got)
		})
	}
}

func TestUpdate_NotFound(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	err := store.Update(ctx, 42, "T", "D", types.StatusCompleted)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NotErrorIs(t, err, types.ErrStorage)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	keep, err := store.Create(ctx, "keep", "d")
	require.NoError(t, err)
	drop, err := store.Create(ctx, "drop", "d")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, drop))

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, keep, tasks[0].ID)

	_, err = store.Get(ctx, drop)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDelete_NotFoundLeavesCount(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	_, err := store.Create(ctx, "T1", "D1")
	require.NoError(t, err)
	before := mustCount(t, store)

	err = store.Delete(ctx, 999)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, before, mustCount(t, store))
}

func TestList_OrderedByID(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	for _, title := range []string{"a", "b", "c"} {
		_, err := store.Create(ctx, title, "d")
		require.NoError(t, err)
	}

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	for i := 1; i < len(tasks); i++ {
		assert.Less(t, tasks[i-1].ID, tasks[i].ID)
	}
	assert.Equal(t, "a", tasks[0].Title)
}

func TestBackup_ByteIdenticalAndOverwrites(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	_, err := store.Create(ctx, "T1", "D1")
	require.NoError(t, err)

	backupPath, err := store.Backup(ctx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(store.Path()), "tasks_backup.db"), backupPath)
	assertSameBytes(t, store.Path(), backupPath)

	_, err = store.Create(ctx, "T2", "D2")
	require.NoError(t, err)

	_, err = store.Backup(ctx)
	require.NoError(t, err)
	assertSameBytes(t, store.Path(), backupPath)

	// The backup is a working database.
	restored := New(backupPath)
	n, err := restored.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestBackup_CustomPath(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	custom := filepath.Join(dir, "backups", "tasks.bak")
	store := New(filepath.Join(dir, "tasks.db"), WithBackupPath(custom))
	require.NoError(t, store.Initialize(ctx))

	got, err := store.Backup(ctx)
	require.NoError(t, err)
	assert.Equal(t, custom, got)
	assertSameBytes(t, store.Path(), custom)
}

func TestBackup_MissingDatabase(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "missing.db"))

	_, err := store.Backup(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrStorage)
}

func assertSameBytes(t *testing.T, a, b string) {
	t.Helper()
	want, err := os.ReadFile(a)
	require.NoError(t, err)
	got, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// --- storage failures (go-sqlmock) ---

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	store := New("mock.db",
		WithLogger(testutil.NewTestLogger(t)),
		WithOpener(func(context.Context) (*sql.DB, error) { return db, nil }),
	)
	return store, mock
}

func TestList_StorageFailureReturnsEmpty(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT id, title, description, status FROM tasks").
		WillReturnError(errors.New("no such table: tasks"))
	mock.ExpectClose()

	tasks, err := store.List(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrStorage)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
	assert.NoError(t, mock.ExpectationsWereMet(), "connection must be closed on failure")
}

func TestList_ScanFailure(t *testing.T) {
	store, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"id", "title", "description", "status"}).
		AddRow("not-a-number", "t", "d", "Pending")
	mock.ExpectQuery("SELECT id, title, description, status FROM tasks").WillReturnRows(rows)
	mock.ExpectClose()

	tasks, err := store.List(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrStorage)
	assert.Empty(t, tasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_StorageFailure(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO tasks").
		WithArgs("T1", "D1", "Pending").
		WillReturnError(errors.New("attempt to write a readonly database"))
	mock.ExpectClose()

	_, err := store.Create(context.Background(), "T1", "D1")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrStorage)
	assert.NotErrorIs(t, err, types.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_ValidationSkipsStorage(t *testing.T) {
	store, mock := newMockStore(t)

	_, err := store.Create(context.Background(), "", "D1")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrValidation)
	// No connection was opened, so no expectations are pending.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_UsesRowsAffected(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("UPDATE tasks SET title = \\?, description = \\?, status = \\? WHERE id = \\?").
		WithArgs("T", "D", "Completed", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	err := store.Update(context.Background(), 7, "T", "D", types.StatusCompleted)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_StorageFailure(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM tasks").
		WithArgs(int64(3)).
		WillReturnError(errors.New("database is locked"))
	mock.ExpectClose()

	err := store.Delete(context.Background(), 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrStorage)
	assert.NotErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
