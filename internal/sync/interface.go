// Package sync copies contracts between the CSV file and its SQLite mirror.
//
// Both directions are explicit, one-way bulk copies the caller invokes on
// purpose. There is no merging, diffing or conflict resolution.
package sync

import "context"

// Direction names which representation was copied into the other.
type Direction string

const (
	FileToRelational Direction = "file->relational"
	RelationalToFile Direction = "relational->file"
)

// Result describes a completed copy.
type Result struct {
	Direction   Direction `json:"direction" yaml:"direction"`
	Rows        int       `json:"rows" yaml:"rows"`
	Source      string    `json:"source" yaml:"source"`
	Destination string    `json:"destination" yaml:"destination"`
}

// Syncer copies the contract collection between its two stores.
type Syncer interface {
	// ImportToRelational appends every contract currently in the file to
	// the mirror table, creating the table if needed.
	//
	// Each call is additive: importing an unchanged file twice doubles
	// the number of mirrored rows.
	ImportToRelational(ctx context.Context) (*Result, error)

	// ExportFromRelational overwrites the file with every mirrored row.
	// The mirror's surrogate ids are dropped.
	//
	// If the mirror table doesn't exist the file is left untouched and
	// an error is returned.
	ExportFromRelational(ctx context.Context) (*Result, error)
}
