package readers

import (
	"os"

	"github.com/nickng/bibtex"

	"github.com/helixir/reference-dedup-service/internal/domain"
)

// Reserved field names the BibTeX reader adds alongside the entry's own
// fields, so writers can reconstruct the entry head.
const (
	FieldEntryType = "entry_type"
	FieldCiteKey   = "cite_key"
)

// ReadBibFile parses a BibTeX file into records. The entry type and cite
// key land in the entry_type and cite_key fields; everything else keeps
// its BibTeX field name.
func ReadBibFile(path string) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.ParseError{Source: path, Format: "bibtex", Cause: err}
	}
	defer f.Close()

	bib, err := bibtex.Parse(f)
	if err != nil {
		return nil, &domain.ParseError{Source: path, Format: "bibtex", Cause: err}
	}

	records := make([]domain.Record, 0, len(bib.Entries))
	for i, entry := range bib.Entries {
		fields := make(map[string]string, len(entry.Fields)+2)
		fields[FieldEntryType] = entry.Type
		fields[FieldCiteKey] = entry.CiteName
		for name, value := range entry.Fields {
			fields[name] = value.String()
		}
		records = append(records, domain.NewRecordFromMap(path, i, fields))
	}
	return records, nil
}
