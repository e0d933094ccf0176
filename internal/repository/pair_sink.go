package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/helixir/reference-dedup-service/internal/dedup"
	"github.com/helixir/reference-dedup-service/internal/domain"
)

// Compile-time interface verification.
var _ dedup.ReportSink = (*PairCollector)(nil)

// PairCollector is a report sink that buffers duplicate pairs in memory
// so they can be persisted after the run, once its ID and outcome are
// known. Record never fails; Flush writes the batch through a
// RunRepository.
type PairCollector struct {
	runID      uuid.UUID
	titleField string

	mu    sync.Mutex
	pairs []domain.DuplicatePair
}

// NewPairCollector creates a collector for the given run. titleField is
// the record field stored as the human-readable label of each side.
func NewPairCollector(runID uuid.UUID, titleField string) *PairCollector {
	return &PairCollector{runID: runID, titleField: titleField}
}

// Record buffers one original/duplicate pair.
func (c *PairCollector) Record(original, duplicate domain.Record, method domain.MatchMethod) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pairs = append(c.pairs, domain.DuplicatePair{
		ID:              uuid.New(),
		RunID:           c.runID,
		Method:          method,
		OriginalSource:  original.SourceID,
		OriginalIndex:   original.OriginIndex,
		OriginalTitle:   original.Get(c.titleField),
		DuplicateSource: duplicate.SourceID,
		DuplicateIndex:  duplicate.OriginIndex,
		DuplicateTitle:  duplicate.Get(c.titleField),
	})
	return nil
}

// Pairs returns a copy of the buffered pairs.
func (c *PairCollector) Pairs() []domain.DuplicatePair {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.DuplicatePair, len(c.pairs))
	copy(out, c.pairs)
	return out
}

// Flush persists the buffered pairs and clears the buffer.
func (c *PairCollector) Flush(ctx context.Context, repo RunRepository) error {
	c.mu.Lock()
	pairs := c.pairs
	c.pairs = nil
	c.mu.Unlock()

	if err := repo.SavePairs(ctx, pairs); err != nil {
		return fmt.Errorf("flush pair collector: %w", err)
	}
	return nil
}
