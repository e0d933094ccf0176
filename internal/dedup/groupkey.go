package dedup

import (
	"strings"

	"github.com/helixir/reference-dedup-service/internal/domain"
	"github.com/helixir/reference-dedup-service/internal/normalize"
)

// keySeparator joins composite key segments. Text normalization strips
// underscores along with all other punctuation, so the separator cannot
// occur inside a normalized segment.
const keySeparator = "_"

// compositeKey builds the grouping key for one record: each comparison
// field's value normalized, joined in field order. A missing field
// contributes an empty segment rather than failing, so records missing
// the same fields stay comparable on the fields they do have.
func compositeKey(r domain.Record, fields []string) string {
	segments := make([]string, len(fields))
	for i, f := range fields {
		segments[i] = normalize.Text(r.Get(f))
	}
	return strings.Join(segments, keySeparator)
}

// matchGroupKey claims every record whose composite key was already seen
// as a duplicate of the first record with that key, preserving first-seen
// order across and within groups.
//
// Records missing all comparison fields share the all-empty key and are
// grouped together. That looseness is deliberate and documented: the
// composite key treats absent data as equal data unless some present
// field differentiates the records.
func matchGroupKey(records []domain.Record, fields []string, claim func(orig, dup int, method domain.MatchMethod)) {
	firstByKey := make(map[string]int, len(records))

	for i, r := range records {
		key := compositeKey(r, fields)
		if orig, ok := firstByKey[key]; ok {
			claim(orig, i, domain.MethodGroupKey)
			continue
		}
		firstByKey[key] = i
	}
}
