package readers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTempXLSX(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "refs.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestReadXLSXFile(t *testing.T) {
	t.Parallel()

	path := writeTempXLSX(t, [][]interface{}{
		{"title", "author", "year"},
		{"Web Testing Survey", "Doe, J.", "2020"},
		{"Unrelated Paper", "Smith"},
	})

	records, err := ReadXLSXFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"title", "author", "year"}, records[0].FieldNames())
	assert.Equal(t, "Doe, J.", records[0].Get("author"))
	assert.Equal(t, "2020", records[0].Get("year"))

	// Trailing cells absent from the sheet read back as empty values.
	assert.Equal(t, "", records[1].Get("year"))
	assert.Equal(t, 1, records[1].OriginIndex)
}

func TestReadXLSXFile_HeaderOnly(t *testing.T) {
	t.Parallel()

	path := writeTempXLSX(t, [][]interface{}{{"title", "author"}})

	records, err := ReadXLSXFile(path)
	require.NoError(t, err)
	assert.Empty(t, records)
}
