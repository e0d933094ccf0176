package writers

import (
	"fmt"
	"os"

	"github.com/nickng/bibtex"

	"github.com/helixir/reference-dedup-service/internal/domain"
	"github.com/helixir/reference-dedup-service/internal/readers"
)

// WriteBibFile writes records as a BibTeX file. The entry type and cite
// key come from the reserved fields the BibTeX reader sets; records from
// other formats fall back to @article with a generated key.
func WriteBibFile(path string, records []domain.Record) error {
	bib := bibtex.NewBibTex()

	for i, r := range records {
		entryType := r.Get(readers.FieldEntryType)
		if entryType == "" {
			entryType = "article"
		}
		citeKey := r.Get(readers.FieldCiteKey)
		if citeKey == "" {
			citeKey = fmt.Sprintf("ref%d", i)
		}

		entry := bibtex.NewBibEntry(entryType, citeKey)
		for _, f := range r.Fields() {
			if f.Name == readers.FieldEntryType || f.Name == readers.FieldCiteKey {
				continue
			}
			entry.AddField(f.Name, bibtex.NewBibConst(f.Value))
		}
		bib.AddEntry(entry)
	}

	if err := os.WriteFile(path, []byte(bib.PrettyString()), 0o644); err != nil {
		return fmt.Errorf("write bibtex file %s: %w", path, err)
	}
	return nil
}
