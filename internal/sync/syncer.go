package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/steveyegge/keeper/internal/storage/contracts"
)

// syncer implements the Syncer interface.
type syncer struct {
	file   *contracts.FileStore
	mirror *contracts.Mirror
	logger *slog.Logger
}

// New creates a Syncer between file and mirror.
//
// If logger is nil, log output is discarded.
//
// Example:
//
//	file := contracts.NewFileStore("data/contratos.csv", logger)
//	mirror := contracts.NewMirror("data/contracts.db", logger)
//	res, err := sync.New(file, mirror, logger).ImportToRelational(ctx)
func New(file *contracts.FileStore, mirror *contracts.Mirror, logger *slog.Logger) Syncer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &syncer{
		file:   file,
		mirror: mirror,
		logger: logger.With(slog.String("component", "sync")),
	}
}

// ImportToRelational implements Syncer.ImportToRelational.
func (s *syncer) ImportToRelational(ctx context.Context) (*Result, error) {
	s.logger.Info("starting import", slog.String("from", s.file.Path()), slog.String("to", s.mirror.Path()))

	records, err := s.file.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load contracts file: %w", err)
	}

	if err := s.mirror.EnsureTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare contracts table: %w", err)
	}

	n, err := s.mirror.InsertAll(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("failed to import contracts: %w", err)
	}

	s.logger.Info("import complete", slog.Int("rows", n))
	return &Result{
		Direction:   FileToRelational,
		Rows:        n,
		Source:      s.file.Path(),
		Destination: s.mirror.Path(),
	}, nil
}

// ExportFromRelational implements Syncer.ExportFromRelational.
func (s *syncer) ExportFromRelational(ctx context.Context) (*Result, error) {
	s.logger.Info("starting export", slog.String("from", s.mirror.Path()), slog.String("to", s.file.Path()))

	records, err := s.mirror.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read contracts table: %w", err)
	}

	if err := s.file.Save(records); err != nil {
		return nil, fmt.Errorf("failed to export contracts: %w", err)
	}

	s.logger.Info("export complete", slog.Int("rows", len(records)))
	return &Result{
		Direction:   RelationalToFile,
		Rows:        len(records),
		Source:      s.mirror.Path(),
		Destination: s.file.Path(),
	}, nil
}
