package readers

import (
	"github.com/xuri/excelize/v2"

	"github.com/helixir/reference-dedup-service/internal/domain"
)

// ReadXLSXFile parses the first sheet of a spreadsheet into records. The
// first row supplies the field names, like the CSV reader.
func ReadXLSXFile(path string) ([]domain.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &domain.ParseError{Source: path, Format: "xlsx", Cause: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &domain.ParseError{Source: path, Format: "xlsx", Cause: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]domain.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		records = append(records, rowToRecord(path, i, header, row))
	}
	return records, nil
}
