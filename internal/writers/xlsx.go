package writers

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/helixir/reference-dedup-service/internal/domain"
)

// WriteXLSXFile writes records to a single-sheet spreadsheet with a
// header row, the same shape the XLSX reader consumes.
func WriteXLSXFile(path string, records []domain.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := headerUnion(records)

	if err := setRow(f, sheet, 1, header); err != nil {
		return fmt.Errorf("write xlsx header %s: %w", path, err)
	}

	row := make([]string, len(header))
	for i, r := range records {
		for c, name := range header {
			row[c] = r.Get(name)
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return fmt.Errorf("write xlsx row %s: %w", path, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx file %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheet, cell, &cells)
}
