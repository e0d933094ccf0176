// Package filter screens records for topical relevance using keyword
// lists. Matching is case-insensitive substring membership over a
// single field, typically the title.
package filter

import (
	"strings"

	"github.com/helixir/reference-dedup-service/internal/domain"
)

// KeywordFilter classifies records as relevant or excluded. A record is
// relevant when at least one include keyword appears in the field and
// no exclude keyword does. With an empty include list every record
// passes the include check.
type KeywordFilter struct {
	field   string
	include []string
	exclude []string
}

// New builds a filter over the given field. Keywords are lowercased
// once here so Relevant only does substring scans.
func New(field string, include, exclude []string) *KeywordFilter {
	return &KeywordFilter{
		field:   field,
		include: lowerAll(include),
		exclude: lowerAll(exclude),
	}
}

// Relevant reports whether the text passes the keyword screen.
func (f *KeywordFilter) Relevant(text string) bool {
	text = strings.ToLower(text)

	for _, kw := range f.exclude {
		if strings.Contains(text, kw) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, kw := range f.include {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Split partitions a batch into relevant and excluded records,
// preserving input order within each side.
func (f *KeywordFilter) Split(records []domain.Record) (relevant, excluded []domain.Record) {
	for _, r := range records {
		if f.Relevant(r.Get(f.field)) {
			relevant = append(relevant, r)
		} else {
			excluded = append(excluded, r)
		}
	}
	return relevant, excluded
}

// lowerAll lowercases the keywords, dropping entries that are entirely
// whitespace. Surrounding whitespace is kept: a trailing space in a
// keyword is a deliberate word-boundary guard, e.g. "android " matches
// "Android App" but not "AndroidX".
func lowerAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			continue
		}
		out = append(out, strings.ToLower(kw))
	}
	return out
}
