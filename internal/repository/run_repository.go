package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/helixir/reference-dedup-service/internal/domain"
)

// RunRepository handles dedup run persistence and lifecycle management.
type RunRepository interface {
	// Create inserts a new dedup run.
	// Returns domain.ErrAlreadyExists if a run with the same ID already exists.
	// Returns domain.ErrInvalidInput if required fields are missing.
	Create(ctx context.Context, run *domain.DedupRun) error

	// Get retrieves a dedup run by its ID.
	// Returns domain.ErrNotFound if the run does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.DedupRun, error)

	// List returns runs ordered by creation time descending.
	List(ctx context.Context, limit, offset int) ([]*domain.DedupRun, error)

	// MarkRunning transitions a pending run to running.
	// Returns domain.ErrNotFound if the run does not exist.
	MarkRunning(ctx context.Context, id uuid.UUID) error

	// Complete marks a run as completed and stores its final counters.
	// Returns domain.ErrNotFound if the run does not exist.
	Complete(ctx context.Context, run *domain.DedupRun) error

	// Fail marks a run as failed with the given error message.
	// Returns domain.ErrNotFound if the run does not exist.
	Fail(ctx context.Context, id uuid.UUID, message string) error

	// SavePairs persists the duplicate pairs detected during a run.
	SavePairs(ctx context.Context, pairs []domain.DuplicatePair) error

	// ListPairs returns the duplicate pairs persisted for a run,
	// ordered by insertion.
	ListPairs(ctx context.Context, runID uuid.UUID) ([]domain.DuplicatePair, error)
}
