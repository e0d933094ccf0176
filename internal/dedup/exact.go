package dedup

import (
	"github.com/helixir/reference-dedup-service/internal/domain"
	"github.com/helixir/reference-dedup-service/internal/normalize"
)

// matchExactKey claims every record whose normalized identifier was
// already seen as a duplicate of the first record carrying it. Records
// with an empty identifier never match: a missing identifier is not
// evidence of equality. First-seen wins; one map lookup per record.
func matchExactKey(records []domain.Record, field string, claim func(orig, dup int, method domain.MatchMethod)) {
	firstByKey := make(map[string]int, len(records))

	for i, r := range records {
		key := normalize.Key(r.Get(field))
		if key == "" {
			continue
		}
		if orig, ok := firstByKey[key]; ok {
			claim(orig, i, domain.MethodExactKey)
			continue
		}
		firstByKey[key] = i
	}
}
