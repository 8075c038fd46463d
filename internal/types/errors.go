package types

import (
	"errors"
	"fmt"
)

// Common errors returned by the contract and task stores.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, types.ErrNotFound) {
//	    // nothing matched the id
//	}
var (
	// ErrValidation is returned when a required field is empty or a
	// status is outside the allowed set. No storage access happened.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an update or delete affected zero rows.
	ErrNotFound = errors.New("record not found")

	// ErrStorage is returned when the backing file or database failed.
	ErrStorage = errors.New("storage failure")
)

// ValidationError describes which field was rejected and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Is reports ErrValidation so callers can match on the sentinel.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StorageError wraps a failure of the persistence layer with the
// operation and path that produced it.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to %s (%s): %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports ErrStorage so callers can match on the sentinel.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// NewStorageError wraps err, returning nil when err is nil.
func NewStorageError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Path: path, Err: err}
}
