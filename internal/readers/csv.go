package readers

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/helixir/reference-dedup-service/internal/domain"
)

// ReadCSVFile parses a delimited text file into records. The first row
// supplies the field names; short rows leave trailing fields empty.
// Files that are not valid UTF-8 are retried as Latin-1, the usual
// fallback for exports from reference managers.
func ReadCSVFile(path string) ([]domain.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ParseError{Source: path, Format: "csv", Cause: err}
	}

	if !utf8.Valid(data) {
		decoded, decErr := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if decErr != nil {
			return nil, &domain.ParseError{Source: path, Format: "csv", Cause: decErr}
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.ParseError{Source: path, Format: "csv", Cause: err}
	}

	var records []domain.Record
	for i := 0; ; i++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &domain.ParseError{Source: path, Format: "csv", Cause: err}
		}
		records = append(records, rowToRecord(path, i, header, row))
	}
	return records, nil
}

// rowToRecord zips a header onto one data row, preserving column order.
// Cells beyond the header width are dropped; missing cells become empty.
func rowToRecord(path string, index int, header, row []string) domain.Record {
	fields := make([]domain.Field, len(header))
	for c, name := range header {
		value := ""
		if c < len(row) {
			value = row[c]
		}
		fields[c] = domain.Field{Name: name, Value: value}
	}
	return domain.NewRecord(path, index, fields)
}
