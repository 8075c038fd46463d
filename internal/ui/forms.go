package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/steveyegge/keeper/internal/types"
)

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

// ContractForm prompts for the fields of c, pre-filled with its current
// values.
func ContractForm(c *types.Contract) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title(types.HeaderDescription).Value(&c.Description).Validate(required("description")),
			huh.NewInput().Title(types.HeaderCategory).Value(&c.Category),
			huh.NewInput().Title(types.HeaderDueDate).Placeholder("2024-12-31").Value(&c.DueDate),
			huh.NewInput().Title(types.HeaderSupplier).Value(&c.Supplier),
		),
	).Run()
}

// TaskForm prompts for a task's title and description.
func TaskForm(title, description *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(title).Validate(required("title")),
			huh.NewText().Title("Description").Value(description).Validate(required("description")),
		),
	).Run()
}

// Confirm asks a yes/no question.
func Confirm(question string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().Title(question).Value(&ok).Run()
	return ok, err
}
