package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/steveyegge/keeper/internal/storage/contracts"
	"github.com/steveyegge/keeper/internal/storage/sqlite"
	"github.com/steveyegge/keeper/internal/types"
)

// Store states reported by status.
const (
	statePresent        = "present"
	stateMissing        = "missing"
	stateNotImported    = "not imported"
	stateNotInitialized = "not initialized"
)

// storeStatus describes one store on disk.
type storeStatus struct {
	Store    string `json:"store" yaml:"store"`
	Path     string `json:"path" yaml:"path"`
	State    string `json:"state" yaml:"state"`
	Size     int64  `json:"size" yaml:"size"`
	Records  *int   `json:"records,omitempty" yaml:"records,omitempty"`
	Modified string `json:"modified,omitempty" yaml:"modified,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "maint",
	Short:   "Show store locations, sizes and record counts",
	Long: `Display where each store lives and what it holds.

Shows:
  - Contract file location, size and row count
  - Contract mirror location, size and row count
  - Task database location, size and task count
  - Task backup location, size and last modification time

Stores that do not exist yet are reported as missing and are not created.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		stores, err := collectStatus(cmd.Context())
		if err != nil {
			return err
		}
		if ok, err := printer.Structured(stores); ok {
			return err
		}
		return printer.KeyValues("keeper status", statusRows(stores))
	},
}

func collectStatus(ctx context.Context) ([]storeStatus, error) {
	file := storeStatus{Store: "contracts file", Path: cfg.ContractsFilePath()}
	if stat(&file) {
		list, err := contractFile().Load()
		if err != nil {
			return nil, err
		}
		file.Records = intPtr(len(list))
	}

	mirror := storeStatus{Store: "contracts mirror", Path: cfg.ContractsDBPath(), State: stateNotImported}
	if stat(&mirror) {
		n, err := contracts.NewMirror(mirror.Path, logger).Count(ctx)
		if err != nil {
			return nil, err
		}
		mirror.Records = intPtr(n)
	}

	store := newTaskStore()
	tasksDB := storeStatus{Store: "tasks database", Path: store.Path()}
	if stat(&tasksDB) {
		var initialized bool
		err := sqlite.WithConn(ctx, tasksDB.Path, func(conn *sql.DB) error {
			var err error
			initialized, err = sqlite.TableExists(ctx, conn, "tasks")
			return err
		})
		if err != nil {
			return nil, types.NewStorageError("inspect task database", tasksDB.Path, err)
		}
		if initialized {
			n, err := store.Count(ctx)
			if err != nil {
				return nil, err
			}
			tasksDB.Records = intPtr(n)
		} else {
			tasksDB.State = stateNotInitialized
		}
	}

	backup := storeStatus{Store: "tasks backup", Path: store.BackupPath()}
	stat(&backup)

	return []storeStatus{file, mirror, tasksDB, backup}, nil
}

// stat fills in size, modification time and state from the file system
// and reports whether the file exists. A missing file keeps a preset
// State, or becomes "missing".
func stat(s *storeStatus) bool {
	info, err := os.Stat(s.Path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("cannot stat store", "path", s.Path, "error", err)
		}
		if s.State == "" {
			s.State = stateMissing
		}
		return false
	}
	s.State = statePresent
	s.Size = info.Size()
	s.Modified = info.ModTime().Format("2006-01-02 15:04:05")
	return true
}

func statusRows(stores []storeStatus) [][2]string {
	var rows [][2]string
	for _, s := range stores {
		rows = append(rows, [2]string{s.Store, s.Path})
		if s.State != statePresent {
			rows = append(rows, [2]string{"  state", s.State})
			continue
		}
		rows = append(rows, [2]string{"  size", formatSize(s.Size)})
		if s.Records != nil {
			rows = append(rows, [2]string{"  records", strconv.Itoa(*s.Records)})
		}
		rows = append(rows, [2]string{"  modified", s.Modified})
	}
	return rows
}

func intPtr(n int) *int { return &n }

func formatSize(size int64) string {
	switch {
	case size > 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	case size > 1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
