package writers

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/helixir/reference-dedup-service/internal/domain"
)

// WriteCSVFile writes records as delimited text. The header is the
// union of all field names in first-seen order; records lacking a
// column leave the cell empty.
func WriteCSVFile(path string, records []domain.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file %s: %w", path, err)
	}
	defer f.Close()

	header := headerUnion(records)
	if len(header) == 0 {
		return f.Close()
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header %s: %w", path, err)
	}

	row := make([]string, len(header))
	for _, r := range records {
		for i, name := range header {
			row[i] = r.Get(name)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv file %s: %w", path, err)
	}
	return f.Close()
}
