package types

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In-Progress"
	StatusCompleted  Status = "Completed"
)

// legacyStatuses maps labels written by earlier versions of the tool.
var legacyStatuses = map[string]Status{
	"Pendente":     StatusPending,
	"Em andamento": StatusInProgress,
	"Concluído":    StatusCompleted,
}

// ValidStatuses returns the allowed statuses in lifecycle order.
func ValidStatuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

// IsValid reports whether s is one of the canonical statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus accepts a canonical status or a legacy label and returns the
// canonical value. Unknown input is returned unchanged so that Validate
// can reject it with a descriptive error.
func ParseStatus(s string) Status {
	s = strings.TrimSpace(s)
	if st, ok := legacyStatuses[s]; ok {
		return st
	}
	return Status(s)
}

func statusList() string {
	names := make([]string, 0, 3)
	for _, s := range ValidStatuses() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// Task is a row of the tasks table.
type Task struct {
	ID          int64  `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Status      Status `json:"status" yaml:"status"`
}

// ValidateFields checks the fields required on both create and update.
func ValidateFields(title, description string) error {
	if title == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if description == "" {
		return &ValidationError{Field: "description", Reason: "is required"}
	}
	return nil
}

// Validate checks title, description and status.
func (t *Task) Validate() error {
	if err := ValidateFields(t.Title, t.Description); err != nil {
		return err
	}
	if !t.Status.IsValid() {
		return &ValidationError{
			Field:  "status",
			Reason: fmt.Sprintf("must be one of %s (got %q)", statusList(), t.Status),
		}
	}
	return nil
}
