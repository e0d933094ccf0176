// Package readers parses source files into generic records. Each reader
// maps one file format (BibTeX, delimited text, spreadsheets) onto
// []domain.Record; the detection engine never touches files itself.
package readers

import (
	"path/filepath"
	"strings"

	"github.com/helixir/reference-dedup-service/internal/domain"
)

// ReadFile parses path into records, dispatching on the file extension.
// SourceID of each record is the path as given; OriginIndex is the
// record's position within the file.
func ReadFile(path string) ([]domain.Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bib":
		return ReadBibFile(path)
	case ".csv":
		return ReadCSVFile(path)
	case ".xlsx":
		return ReadXLSXFile(path)
	default:
		return nil, &domain.ParseError{
			Source: path,
			Format: strings.TrimPrefix(filepath.Ext(path), "."),
			Cause:  domain.ErrUnsupportedFormat,
		}
	}
}

// ReadFiles parses every path in order and concatenates the batches, the
// cross-source input shape the detector deduplicates over.
func ReadFiles(paths []string) ([]domain.Record, error) {
	var all []domain.Record
	for _, p := range paths {
		records, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}
