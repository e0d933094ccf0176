package report

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/helixir/reference-dedup-service/internal/dedup"
	"github.com/helixir/reference-dedup-service/internal/domain"
)

// WriteSummary renders a per-run summary table followed by one row per
// duplicate group, for CLI output.
func WriteSummary(w io.Writer, partition domain.Partition, stats dedup.Stats) {
	totals := table.NewWriter()
	totals.SetOutputMirror(w)
	totals.AppendHeader(table.Row{"Records", "Unique", "Duplicates", "Exact-Key", "Group-Key", "Fuzzy", "Comparisons"})
	totals.AppendRow(table.Row{
		stats.InputRecords,
		len(partition.Unique),
		stats.DuplicateCount(),
		stats.DuplicatesByMethod[domain.MethodExactKey],
		stats.DuplicatesByMethod[domain.MethodGroupKey],
		stats.DuplicatesByMethod[domain.MethodFuzzy],
		stats.Comparisons,
	})
	totals.Render()

	if len(partition.Duplicates) == 0 {
		return
	}

	groups := table.NewWriter()
	groups.SetOutputMirror(w)
	groups.AppendHeader(table.Row{"Method", "Original", "Title", "Duplicates"})
	for _, g := range partition.Duplicates {
		groups.AppendRow(table.Row{
			string(g.Method),
			g.Original.SourceID,
			g.Original.Get("title"),
			g.Size(),
		})
	}
	groups.Render()
}
