package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/steveyegge/keeper/internal/types"
)

// Format selects how records are written.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Printer writes records in a fixed format.
type Printer struct {
	out    io.Writer
	format Format
}

// NewPrinter returns a Printer. Unknown formats fall back to table.
func NewPrinter(out io.Writer, format string) *Printer {
	f := Format(format)
	switch f {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		f = FormatTable
	}
	return &Printer{out: out, format: f}
}

// Structured writes v as JSON or YAML. It returns false for table output
// so the caller can render its own table.
func (p *Printer) Structured(v any) (bool, error) {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(p.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	return t
}

// Contracts writes contracts with 1-based row numbers.
func (p *Printer) Contracts(contracts []types.Contract) error {
	if ok, err := p.Structured(contracts); ok {
		return err
	}
	if len(contracts) == 0 {
		_, err := fmt.Fprintln(p.out, RenderMuted("no contracts"))
		return err
	}

	t := newTable(p.out)
	t.AppendHeader(table.Row{"#", types.HeaderDescription, types.HeaderCategory, types.HeaderDueDate, types.HeaderSupplier})
	for i, c := range contracts {
		t.AppendRow(table.Row{i + 1, c.Description, c.Category, c.DueDate, c.Supplier})
	}
	t.Render()
	return nil
}

// Tasks writes tasks as a table or structured document.
func (p *Printer) Tasks(tasks []types.Task) error {
	if ok, err := p.Structured(tasks); ok {
		return err
	}
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(p.out, RenderMuted("no tasks"))
		return err
	}

	t := newTable(p.out)
	t.AppendHeader(table.Row{"ID", "Title", "Description", "Status"})
	for _, task := range tasks {
		t.AppendRow(table.Row{task.ID, task.Title, task.Description, RenderStatus(string(task.Status))})
	}
	t.Render()
	return nil
}

// Task writes a single task.
func (p *Printer) Task(task *types.Task) error {
	if ok, err := p.Structured(task); ok {
		return err
	}
	t := newTable(p.out)
	t.AppendRows([]table.Row{
		{"ID", strconv.FormatInt(task.ID, 10)},
		{"Title", task.Title},
		{"Description", task.Description},
		{"Status", RenderStatus(string(task.Status))},
	})
	t.Render()
	return nil
}

// KeyValue is one labelled row of KeyValues output.
type KeyValue struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// KeyValues writes ordered label/value pairs. Labels may repeat; json and
// yaml output is a list in the given order.
func (p *Printer) KeyValues(title string, pairs [][2]string) error {
	if p.format != FormatTable {
		rows := make([]KeyValue, 0, len(pairs))
		for _, kv := range pairs {
			rows = append(rows, KeyValue{Label: kv[0], Value: kv[1]})
		}
		_, err := p.Structured(rows)
		return err
	}
	t := newTable(p.out)
	if title != "" {
		t.SetTitle(title)
	}
	for _, kv := range pairs {
		t.AppendRow(table.Row{kv[0], kv[1]})
	}
	t.Render()
	return nil
}
