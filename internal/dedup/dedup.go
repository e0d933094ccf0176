// Package dedup partitions batches of bibliographic records into unique
// entries and detected duplicates, using exact identifier matching,
// composite-key grouping and title/author similarity matching.
package dedup

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/helixir/reference-dedup-service/internal/domain"
)

// Strategy selects the first detection pass. The two key-based passes
// are mutually exclusive; the fuzzy pass always runs over the survivors.
type Strategy string

// Detection strategies.
const (
	// StrategyExactKey matches records on a normalized identifier field.
	StrategyExactKey Strategy = "exact-key"

	// StrategyGroupKey matches records on a composite key built from a
	// list of normalized comparison fields. Used when no reliable
	// identifier field exists.
	StrategyGroupKey Strategy = "group-key"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyExactKey || s == StrategyGroupKey
}

// Config holds the configuration for the duplicate detector.
type Config struct {
	// Strategy selects the key-based pass: exact-key or group-key.
	Strategy Strategy

	// IdentifierField is the record field holding the unique identifier
	// (e.g. "doi"). Required for the exact-key strategy.
	IdentifierField string

	// GroupFields are the record fields joined into the composite key.
	// Required for the group-key strategy; order matters.
	GroupFields []string

	// TitleField is the record field compared as the title in the fuzzy pass.
	TitleField string

	// AuthorField is the record field compared as the author list in the
	// fuzzy pass.
	AuthorField string

	// TitleThreshold is the similarity a title pair must strictly exceed
	// before authors are compared (e.g. 0.95).
	TitleThreshold float64

	// AuthorThreshold is the similarity an author pair must strictly
	// exceed for the pair to be a duplicate (e.g. 0.8).
	AuthorThreshold float64
}

// DefaultConfig returns a Config with the standard field names and
// thresholds.
func DefaultConfig() Config {
	return Config{
		Strategy:        StrategyExactKey,
		IdentifierField: "doi",
		TitleField:      "title",
		AuthorField:     "author",
		TitleThreshold:  0.95,
		AuthorThreshold: 0.8,
	}
}

// Validate checks the configuration. Thresholds must lie in (0, 1]; a
// threshold of exactly 1 makes the fuzzy pass reject every pair, which
// is allowed.
func (c Config) Validate() error {
	if !c.Strategy.Valid() {
		return domain.NewValidationError("strategy", fmt.Sprintf("unknown strategy %q", c.Strategy))
	}
	if c.Strategy == StrategyExactKey && c.IdentifierField == "" {
		return domain.NewValidationError("identifier_field", "required for the exact-key strategy")
	}
	if c.Strategy == StrategyGroupKey && len(c.GroupFields) == 0 {
		return domain.NewValidationError("group_fields", "required for the group-key strategy")
	}
	if c.TitleField == "" {
		return domain.NewValidationError("title_field", "required for the fuzzy pass")
	}
	if c.AuthorField == "" {
		return domain.NewValidationError("author_field", "required for the fuzzy pass")
	}
	if c.TitleThreshold <= 0 || c.TitleThreshold > 1 {
		return domain.NewValidationError("title_threshold", "must be in (0, 1]")
	}
	if c.AuthorThreshold <= 0 || c.AuthorThreshold > 1 {
		return domain.NewValidationError("author_threshold", "must be in (0, 1]")
	}
	return nil
}

// ReportSink records one detected duplicate pair. Implementations write
// log lines, report files or database rows. A sink call happens exactly
// once per pair and is never retried; failures are advisory and must not
// affect the partition.
type ReportSink interface {
	Record(original, duplicate domain.Record, method domain.MatchMethod) error
}

// Stats summarizes one detection run.
type Stats struct {
	// InputRecords is the size of the input batch.
	InputRecords int

	// DuplicatesByMethod counts claimed duplicates per match method.
	DuplicatesByMethod map[domain.MatchMethod]int

	// Comparisons is the number of pairwise title comparisons made by
	// the fuzzy pass.
	Comparisons int

	// AuthorComparisons counts the pairs whose title similarity cleared
	// the threshold, so the author fields were actually compared.
	AuthorComparisons int

	// SinkFailures counts report-sink calls that returned an error.
	SinkFailures int
}

// DuplicateCount returns the total number of claimed duplicates.
func (s Stats) DuplicateCount() int {
	n := 0
	for _, c := range s.DuplicatesByMethod {
		n += c
	}
	return n
}

// Detector orchestrates the detection passes over one in-memory batch.
// A Detector is stateless between runs; independent detectors may run
// concurrently over independent batches.
type Detector struct {
	cfg    Config
	sink   ReportSink
	logger zerolog.Logger
}

// NewDetector creates a Detector. sink may be nil, in which case no
// duplicate reports are emitted.
func NewDetector(cfg Config, sink ReportSink, logger zerolog.Logger) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("detector config: %w", err)
	}
	return &Detector{
		cfg:    cfg,
		sink:   sink,
		logger: logger.With().Str("component", "detector").Logger(),
	}, nil
}

// Detect partitions the batch. Pass order is fixed: the configured
// key-based pass first, then the fuzzy pass over records it left
// unclaimed. A record's status is terminal the moment a pass claims it;
// later passes never reconsider it, as original or as duplicate.
//
// The empty batch yields an empty partition. Detection never fails: any
// input produces a well-defined Partition, and only the accompanying
// Stats report sink trouble.
func (d *Detector) Detect(records []domain.Record) (domain.Partition, Stats) {
	stats := Stats{
		InputRecords:       len(records),
		DuplicatesByMethod: make(map[domain.MatchMethod]int),
	}

	// claimed[i] is set once record i is taken as a duplicate. The arena
	// is local to this run; there is no shared state across runs.
	claimed := make([]bool, len(records))
	builder := newGroupBuilder(records)

	claim := func(orig, dup int, method domain.MatchMethod) {
		claimed[dup] = true
		builder.add(orig, dup, method)
		stats.DuplicatesByMethod[method]++
		d.report(records[orig], records[dup], method, &stats)
	}

	switch d.cfg.Strategy {
	case StrategyGroupKey:
		matchGroupKey(records, d.cfg.GroupFields, claim)
	default:
		matchExactKey(records, d.cfg.IdentifierField, claim)
	}

	stats.Comparisons, stats.AuthorComparisons = matchFuzzy(records, claimed, d.cfg, claim)

	unique := make([]domain.Record, 0, len(records)-stats.DuplicateCount())
	for i, r := range records {
		if !claimed[i] {
			unique = append(unique, r)
		}
	}

	d.logger.Debug().
		Int("records", stats.InputRecords).
		Int("unique", len(unique)).
		Int("duplicates", stats.DuplicateCount()).
		Int("comparisons", stats.Comparisons).
		Msg("detection run complete")

	return domain.Partition{Unique: unique, Duplicates: builder.groups()}, stats
}

// report invokes the sink for one pair. Sink failures are logged and
// counted, never retried, and never abort detection.
func (d *Detector) report(original, duplicate domain.Record, method domain.MatchMethod, stats *Stats) {
	if d.sink == nil {
		return
	}
	if err := d.sink.Record(original, duplicate, method); err != nil {
		stats.SinkFailures++
		d.logger.Warn().Err(err).
			Str("method", string(method)).
			Str("original_source", original.SourceID).
			Int("original_index", original.OriginIndex).
			Str("duplicate_source", duplicate.SourceID).
			Int("duplicate_index", duplicate.OriginIndex).
			Msg("report sink failed")
	}
}

// groupBuilder assembles duplicate groups keyed by original index and
// method, preserving the order in which groups first gained a duplicate.
// An original that collects duplicates from both passes yields one group
// per method, so every duplicate stays tagged with the pass that found it.
type groupBuilder struct {
	records []domain.Record
	order   []groupKey
	byKey   map[groupKey]*domain.DuplicateGroup
}

type groupKey struct {
	orig   int
	method domain.MatchMethod
}

func newGroupBuilder(records []domain.Record) *groupBuilder {
	return &groupBuilder{
		records: records,
		byKey:   make(map[groupKey]*domain.DuplicateGroup),
	}
}

func (b *groupBuilder) add(orig, dup int, method domain.MatchMethod) {
	k := groupKey{orig: orig, method: method}
	g, ok := b.byKey[k]
	if !ok {
		g = &domain.DuplicateGroup{
			Original: b.records[orig],
			Method:   method,
		}
		b.byKey[k] = g
		b.order = append(b.order, k)
	}
	g.Duplicates = append(g.Duplicates, b.records[dup])
}

func (b *groupBuilder) groups() []domain.DuplicateGroup {
	out := make([]domain.DuplicateGroup, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, *b.byKey[k])
	}
	return out
}
