package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/keeper/internal/storage/contracts"
	"github.com/steveyegge/keeper/internal/testutil"
	"github.com/steveyegge/keeper/internal/types"
)

type fixture struct {
	file   *contracts.FileStore
	mirror *contracts.Mirror
	syncer Syncer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "data")
	logger := testutil.NewTestLogger(t)
	f := &fixture{
		file:   contracts.NewFileStore(filepath.Join(dir, "contratos.csv"), logger),
		mirror: contracts.NewMirror(filepath.Join(dir, "contracts.db"), logger),
	}
	f.syncer = New(f.file, f.mirror, logger)
	return f
}

var seed = []types.Contract{
	{Description: "Serviço de TI", Category: "Tecnologia", DueDate: "2024-12-31", Supplier: "Empresa XYZ"},
	{Description: "Limpeza", Category: "Serviços", DueDate: "2025-03-01", Supplier: "Limpa, Ltda"},
}

func TestImportToRelational_TwiceDoublesRows(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.file.Save(seed))

	res, err := f.syncer.ImportToRelational(ctx)
	require.NoError(t, err)
	assert.Equal(t, FileToRelational, res.Direction)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, f.file.Path(), res.Source)
	assert.Equal(t, f.mirror.Path(), res.Destination)

	count, err := f.mirror.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = f.syncer.ImportToRelational(ctx)
	require.NoError(t, err)

	count, err = f.mirror.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestImportToRelational_MissingFileCreatesEmptyTable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.syncer.ImportToRelational(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Rows)

	all, err := f.mirror.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestExportFromRelational_OverwritesFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.file.Save(seed))
	_, err := f.syncer.ImportToRelational(ctx)
	require.NoError(t, err)

	// Local edits to the file are discarded by the export.
	require.NoError(t, f.file.Add(types.Contract{Description: "local only"}))

	res, err := f.syncer.ExportFromRelational(ctx)
	require.NoError(t, err)
	assert.Equal(t, RelationalToFile, res.Direction)
	assert.Equal(t, 2, res.Rows)

	loaded, err := f.file.Load()
	require.NoError(t, err)
	assert.ElementsMatch(t, seed, loaded)
}

func TestExportFromRelational_MissingTableLeavesFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.file.Save(seed))
	before, err := os.ReadFile(f.file.Path())
	require.NoError(t, err)

	_, err = f.syncer.ExportFromRelational(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrStorage)
	assert.ErrorIs(t, err, contracts.ErrNoMirrorTable)

	after, err := os.ReadFile(f.file.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRoundTrip_ImportThenExport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.file.Save(seed))
	before, err := os.ReadFile(f.file.Path())
	require.NoError(t, err)

	_, err = f.syncer.ImportToRelational(ctx)
	require.NoError(t, err)
	_, err = f.syncer.ExportFromRelational(ctx)
	require.NoError(t, err)

	loaded, err := f.file.Load()
	require.NoError(t, err)
	assert.ElementsMatch(t, seed, loaded)
	after, err := os.ReadFile(f.file.Path())
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}
