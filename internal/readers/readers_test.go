package readers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/reference-dedup-service/internal/domain"
)

const sampleBib = `@article{doe2020,
  title = {Web Testing Survey},
  author = {Doe, J.},
  year = {2020},
  doi = {10.1/X}
}

@inproceedings{smith2021,
  title = {Unrelated Paper},
  author = {Smith, A.}
}
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadBibFile(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "refs.bib", sampleBib)
	records, err := ReadBibFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, path, first.SourceID)
	assert.Equal(t, 0, first.OriginIndex)
	assert.Equal(t, "article", first.Get(FieldEntryType))
	assert.Equal(t, "doe2020", first.Get(FieldCiteKey))
	assert.Equal(t, "Web Testing Survey", first.Get("title"))
	assert.Equal(t, "10.1/X", first.Get("doi"))

	second := records[1]
	assert.Equal(t, 1, second.OriginIndex)
	assert.Equal(t, "inproceedings", second.Get(FieldEntryType))
	assert.Equal(t, "", second.Get("doi"))
}

func TestReadCSVFile(t *testing.T) {
	t.Parallel()

	csvContent := "title,author,year\nWeb Testing Survey,\"Doe, J.\",2020\nUnrelated Paper,Smith\n"
	path := writeTemp(t, "rows.csv", csvContent)

	records, err := ReadCSVFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"title", "author", "year"}, records[0].FieldNames())
	assert.Equal(t, "Doe, J.", records[0].Get("author"))

	// Short row: the missing year column reads as empty, not an error.
	assert.Equal(t, "Unrelated Paper", records[1].Get("title"))
	assert.Equal(t, "", records[1].Get("year"))
}

func TestReadCSVFile_Latin1Fallback(t *testing.T) {
	t.Parallel()

	// "Ségur" with a Latin-1 encoded é (0xE9), invalid as UTF-8.
	raw := append([]byte("title,author\npaper,S"), 0xE9)
	raw = append(raw, []byte("gur\n")...)
	path := filepath.Join(t.TempDir(), "latin1.csv")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	records, err := ReadCSVFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ségur", records[0].Get("author"))
}

func TestReadCSVFile_Empty(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "empty.csv", "")
	records, err := ReadCSVFile(path)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadFile_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "notes.txt", "whatever")
	_, err := ReadFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	var parseErr *domain.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "txt", parseErr.Format)
}

func TestReadFiles_ConcatenatesInOrder(t *testing.T) {
	t.Parallel()

	a := writeTemp(t, "a.csv", "title\nfirst\n")
	b := writeTemp(t, "b.csv", "title\nsecond\nthird\n")

	records, err := ReadFiles([]string{a, b})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, a, records[0].SourceID)
	assert.Equal(t, b, records[1].SourceID)
	assert.Equal(t, 0, records[1].OriginIndex)
	assert.Equal(t, 1, records[2].OriginIndex)
}
