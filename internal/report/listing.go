package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/helixir/reference-dedup-service/internal/domain"
)

const listingWidth = 80

// WriteListing renders records as a readable text catalogue, one block
// per record with wrapped title and abstract. Records are sorted by
// year then title; the input slice is not modified.
func WriteListing(w io.Writer, records []domain.Record) error {
	sorted := make([]domain.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		yi, yj := sorted[i].Get("year"), sorted[j].Get("year")
		if yi != yj {
			return yi < yj
		}
		return sorted[i].Get("title") < sorted[j].Get("title")
	})

	for i, r := range sorted {
		if err := writeListingEntry(w, i+1, r); err != nil {
			return fmt.Errorf("write listing entry %d: %w", i+1, err)
		}
	}
	return nil
}

func writeListingEntry(w io.Writer, n int, r domain.Record) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Paper %d\n", n)
	b.WriteString(strings.Repeat("=", listingWidth) + "\n\n")

	b.WriteString("Title:\n")
	b.WriteString(indent(text.WrapSoft(r.Get("title"), listingWidth-2)) + "\n\n")

	fmt.Fprintf(&b, "Year: %s\n", valueOr(r.Get("year"), "N/A"))
	fmt.Fprintf(&b, "Authors: %s\n\n", valueOr(r.Get("author"), "N/A"))

	b.WriteString("Abstract:\n")
	if abstract := r.Get("abstract"); abstract != "" {
		b.WriteString(indent(text.WrapSoft(abstract, listingWidth-2)) + "\n")
	} else {
		b.WriteString("  [No abstract available]\n")
	}

	b.WriteString("\n" + strings.Repeat("-", listingWidth) + "\n\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
