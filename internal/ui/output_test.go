package ui

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/steveyegge/keeper/internal/types"
)

var testContracts = []types.Contract{
	{Description: "Serviço de TI", Category: "Tecnologia", DueDate: "2024-12-31", Supplier: "Empresa XYZ"},
}

func TestPrinter_ContractsTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, "table").Contracts(testContracts))

	out := buf.String()
	assert.Contains(t, out, "Serviço de TI")
	assert.Contains(t, out, "Empresa XYZ")
}

func TestPrinter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, "table").Tasks(nil))
	assert.Contains(t, buf.String(), "no tasks")
}

func TestPrinter_JSON(t *testing.T) {
	var buf bytes.Buffer
	tasks := []types.Task{{ID: 1, Title: "T1", Description: "D1", Status: types.StatusPending}}
	require.NoError(t, NewPrinter(&buf, "json").Tasks(tasks))

	var got []types.Task
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, tasks, got)
}

func TestPrinter_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, "yaml").Contracts(testContracts))

	var got []types.Contract
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, testContracts, got)
}

func TestNewPrinter_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	tasks := []types.Task{{ID: 1, Title: "T1", Description: "D1", Status: types.StatusPending}}
	require.NoError(t, NewPrinter(&buf, "xml").Tasks(tasks))

	assert.Contains(t, buf.String(), "T1")
	assert.False(t, json.Valid(buf.Bytes()), "unknown formats fall back to a table")
}

func TestPrinter_KeyValuesKeepsRepeatedLabels(t *testing.T) {
	pairs := [][2]string{
		{"contracts file", "data/contratos.csv"},
		{"  size", "50 bytes"},
		{"tasks database", "data/tasks.db"},
		{"  size", "12.0 KB"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, "json").KeyValues("status", pairs))

	var got []KeyValue
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 4)
	assert.Equal(t, KeyValue{Label: "  size", Value: "50 bytes"}, got[1])
	assert.Equal(t, KeyValue{Label: "  size", Value: "12.0 KB"}, got[3])

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, "table").KeyValues("status", pairs))
	assert.Contains(t, buf.String(), "50 bytes")
	assert.Contains(t, buf.String(), "12.0 KB")
}

func TestIsTerminal_Buffer(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
