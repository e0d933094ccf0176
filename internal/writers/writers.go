// Package writers serializes records back to the supported file
// formats, mirroring the readers package. Used to write the unique
// partition of a cleaned batch.
package writers

import (
	"path/filepath"
	"strings"

	"github.com/helixir/reference-dedup-service/internal/domain"
)

// WriteFile writes records to path, dispatching on the file extension.
func WriteFile(path string, records []domain.Record) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bib":
		return WriteBibFile(path, records)
	case ".csv":
		return WriteCSVFile(path, records)
	case ".xlsx":
		return WriteXLSXFile(path, records)
	default:
		return &domain.ParseError{
			Source: path,
			Format: strings.TrimPrefix(filepath.Ext(path), "."),
			Cause:  domain.ErrUnsupportedFormat,
		}
	}
}

// headerUnion collects field names across records in first-seen order,
// so a mixed batch still writes every column.
func headerUnion(records []domain.Record, skip ...string) []string {
	skipSet := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipSet[s] = true
	}

	var header []string
	seen := make(map[string]bool)
	for _, r := range records {
		for _, name := range r.FieldNames() {
			if seen[name] || skipSet[name] {
				continue
			}
			seen[name] = true
			header = append(header, name)
		}
	}
	return header
}
