// Package contracts stores contract records in a CSV file, the source of
// truth, and in an optional SQLite mirror table.
//
// The two representations share no identity. Copying between them is
// the job of the sync package and only happens when a caller asks for it.
package contracts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/steveyegge/keeper/internal/types"
)

// DefaultFilePath is where contracts are kept unless configured otherwise.
const DefaultFilePath = "data/contratos.csv"

// FileStore reads and writes the whole contract collection to a CSV file.
// There is no locking; concurrent writers overwrite each other.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore creates a store backed by the CSV file at path.
// If logger is nil, log output is discarded.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if path == "" {
		path = DefaultFilePath
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return types.NewStorageError("create contracts directory", filepath.Dir(s.path), err)
	}
	return nil
}

// Load returns every contract in file order. A missing file is an empty
// collection, not an error.
func (s *FileStore) Load() ([]types.Contract, error) {
	if err := s.ensureDir(); err != nil {
		return nil, err
	}

	// #nosec G304 - path comes from configuration
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []types.Contract{}, nil
		}
		return nil, types.NewStorageError("open contracts file", s.path, err)
	}
	defer f.Close()

	contracts, err := decode(f)
	if err != nil {
		return nil, types.NewStorageError("read contracts file", s.path, err)
	}
	return contracts, nil
}

// decode maps each row by header name. Missing columns read as empty
// strings and unknown columns are ignored.
func decode(r io.Reader) ([]types.Contract, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []types.Contract{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	contracts := []types.Contract{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid row: %w", err)
		}

		contracts = append(contracts, types.Contract{
			Description: field(row, types.HeaderDescription),
			Category:    field(row, types.HeaderCategory),
			DueDate:     field(row, types.HeaderDueDate),
			Supplier:    field(row, types.HeaderSupplier),
		})
	}

	return contracts, nil
}

// Save overwrites the file with the header followed by contracts.
// The file is replaced atomically via a temp file.
func (s *FileStore) Save(contracts []types.Contract) error {
	if err := s.ensureDir(); err != nil {
		return err
	}

	tmpPath := s.path + ".tmp"
	// #nosec G304 - path comes from configuration
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return types.NewStorageError("create temp file", tmpPath, err)
	}

	if err := encode(f, contracts); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return types.NewStorageError("write contracts file", s.path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return types.NewStorageError("write contracts file", s.path, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return types.NewStorageError("rename temp file", s.path, err)
	}

	s.logger.Debug("saved contracts", slog.String("path", s.path), slog.Int("count", len(contracts)))
	return nil
}

func encode(w io.Writer, contracts []types.Contract) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true

	if err := writer.Write(types.ContractHeader); err != nil {
		return err
	}
	for _, c := range contracts {
		if err := writer.Write(c.Record()); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// Add appends c to the end of the file. Duplicate descriptions are allowed.
func (s *FileStore) Add(c types.Contract) error {
	contracts, err := s.Load()
	if err != nil {
		return err
	}
	contracts = append(contracts, c)
	if err := s.Save(contracts); err != nil {
		return err
	}

	s.logger.Info("contract added", slog.String("description", c.Description))
	return nil
}

// Delete removes every contract whose description equals description and
// returns how many were removed. Remaining contracts keep their order.
func (s *FileStore) Delete(description string) (int, error) {
	contracts, err := s.Load()
	if err != nil {
		return 0, err
	}

	kept := contracts[:0]
	for _, c := range contracts {
		if c.Description != description {
			kept = append(kept, c)
		}
	}
	removed := len(contracts) - len(kept)

	if err := s.Save(kept); err != nil {
		return 0, err
	}

	s.logger.Info("contracts deleted",
		slog.String("description", description), slog.Int("removed", removed))
	return removed, nil
}

// Update replaces the first contract whose description equals description,
// keeping its position. The file is rewritten even when nothing matched.
// It reports whether a contract was replaced.
func (s *FileStore) Update(description string, updated types.Contract) (bool, error) {
	contracts, err := s.Load()
	if err != nil {
		return false, err
	}

	found := false
	for i := range contracts {
		if contracts[i].Description == description {
			contracts[i] = updated
			found = true
			break
		}
	}

	if err := s.Save(contracts); err != nil {
		return false, err
	}

	if found {
		s.logger.Info("contract updated", slog.String("description", description))
	} else {
		s.logger.Warn("contract not found for update", slog.String("description", description))
	}
	return found, nil
}
