package dedup

import (
	"github.com/helixir/reference-dedup-service/internal/domain"
	"github.com/helixir/reference-dedup-service/internal/normalize"
	"github.com/helixir/reference-dedup-service/internal/similarity"
)

// matchFuzzy compares every unclaimed record pairwise in input order.
// A pair matches when title similarity strictly exceeds the title
// threshold AND author similarity strictly exceeds the author threshold;
// the author comparison is skipped entirely when the title gate fails,
// since many unrelated works share near-identical titles but a similar
// title alone proves nothing.
//
// On a match the later record is claimed as a duplicate of the earlier
// one and drops out of all further comparisons, as candidate original
// and as candidate duplicate. Matches are not merged transitively beyond
// that. Returns the number of title comparisons performed and the number
// of pairs whose author fields were reached; this O(n²) pass is the
// engine's dominant cost.
func matchFuzzy(records []domain.Record, claimed []bool, cfg Config, claim func(orig, dup int, method domain.MatchMethod)) (comparisons, authorComparisons int) {
	// Normalized titles and authors are cached up front so each value is
	// normalized once, not once per pair.
	titles := make([]string, len(records))
	authors := make([]string, len(records))
	for i, r := range records {
		if claimed[i] {
			continue
		}
		titles[i] = normalize.Text(r.Get(cfg.TitleField))
		authors[i] = normalize.Text(r.Get(cfg.AuthorField))
	}

	for i := range records {
		if claimed[i] {
			continue
		}
		for j := i + 1; j < len(records); j++ {
			if claimed[j] {
				continue
			}
			comparisons++
			if similarity.Ratio(titles[i], titles[j]) <= cfg.TitleThreshold {
				continue
			}
			authorComparisons++
			if similarity.Ratio(authors[i], authors[j]) <= cfg.AuthorThreshold {
				continue
			}
			claim(i, j, domain.MethodFuzzy)
		}
	}
	return comparisons, authorComparisons
}
