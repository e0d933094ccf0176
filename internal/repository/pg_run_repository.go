package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/helixir/reference-dedup-service/internal/domain"
)

// PostgreSQL error codes used for constraint violation detection.
const (
	pgUniqueViolation = "23505" // unique_violation
)

// Compile-time interface verification.
var _ RunRepository = (*PgRunRepository)(nil)

// PgRunRepository is a PostgreSQL implementation of RunRepository.
type PgRunRepository struct {
	db DBTX
}

// NewPgRunRepository creates a new PostgreSQL run repository.
func NewPgRunRepository(db DBTX) *PgRunRepository {
	return &PgRunRepository{db: db}
}

const runColumns = `id, status, strategy, title_threshold, author_threshold,
		input_records, unique_records, duplicate_records, comparisons, sink_failures,
		error_message, created_at, updated_at, completed_at`

// Create inserts a new dedup run.
func (r *PgRunRepository) Create(ctx context.Context, run *domain.DedupRun) error {
	if run == nil {
		return domain.NewValidationError("run", "run cannot be nil")
	}
	if run.ID == uuid.Nil {
		return domain.NewValidationError("id", "run ID is required")
	}
	if !run.Status.Valid() {
		return domain.NewValidationError("status", fmt.Sprintf("unknown status %q", run.Status))
	}
	if run.Strategy == "" {
		return domain.NewValidationError("strategy", "strategy is required")
	}

	query := `
		INSERT INTO dedup_runs (
			id, status, strategy, title_threshold, author_threshold,
			input_records, unique_records, duplicate_records, comparisons, sink_failures,
			error_message, created_at, updated_at, completed_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14
		)`

	_, err := r.db.Exec(ctx, query,
		run.ID, run.Status, run.Strategy, run.TitleThreshold, run.AuthorThreshold,
		run.InputRecords, run.UniqueRecords, run.DuplicateRecords, run.Comparisons, run.SinkFailures,
		nullString(run.ErrorMessage), run.CreatedAt, run.UpdatedAt, run.CompletedAt,
	)

	if err != nil {
		if isPgUniqueViolation(err) {
			return domain.NewAlreadyExistsError("run", run.ID.String())
		}
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// Get retrieves a dedup run by its ID.
func (r *PgRunRepository) Get(ctx context.Context, id uuid.UUID) (*domain.DedupRun, error) {
	query := `SELECT ` + runColumns + ` FROM dedup_runs WHERE id = $1`

	run, err := scanRun(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("run", id.String())
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

// List returns runs ordered by creation time descending.
func (r *PgRunRepository) List(ctx context.Context, limit, offset int) ([]*domain.DedupRun, error) {
	applyPaginationDefaults(&limit, &offset)

	query := `SELECT ` + runColumns + `
		FROM dedup_runs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.DedupRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// MarkRunning transitions a pending run to running.
func (r *PgRunRepository) MarkRunning(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE dedup_runs
		SET status = $1, updated_at = $2
		WHERE id = $3`

	tag, err := r.db.Exec(ctx, query, domain.RunStatusRunning, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark run running: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("run", id.String())
	}

	return nil
}

// Complete marks a run as completed and stores its final counters.
func (r *PgRunRepository) Complete(ctx context.Context, run *domain.DedupRun) error {
	if run == nil {
		return domain.NewValidationError("run", "run cannot be nil")
	}

	now := time.Now().UTC()
	query := `
		UPDATE dedup_runs
		SET status = $1,
			input_records = $2,
			unique_records = $3,
			duplicate_records = $4,
			comparisons = $5,
			sink_failures = $6,
			updated_at = $7,
			completed_at = $8
		WHERE id = $9`

	tag, err := r.db.Exec(ctx, query,
		domain.RunStatusCompleted,
		run.InputRecords, run.UniqueRecords, run.DuplicateRecords,
		run.Comparisons, run.SinkFailures,
		now, now, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("run", run.ID.String())
	}

	run.Status = domain.RunStatusCompleted
	run.UpdatedAt = now
	run.CompletedAt = &now
	return nil
}

// Fail marks a run as failed with the given error message.
func (r *PgRunRepository) Fail(ctx context.Context, id uuid.UUID, message string) error {
	now := time.Now().UTC()
	query := `
		UPDATE dedup_runs
		SET status = $1, error_message = $2, updated_at = $3, completed_at = $4
		WHERE id = $5`

	tag, err := r.db.Exec(ctx, query, domain.RunStatusFailed, message, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to mark run failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("run", id.String())
	}

	return nil
}

// SavePairs persists the duplicate pairs detected during a run.
// Pairs are written with a batch, one insert per pair.
func (r *PgRunRepository) SavePairs(ctx context.Context, pairs []domain.DuplicatePair) error {
	if len(pairs) == 0 {
		return nil
	}

	query := `
		INSERT INTO duplicate_records (
			id, run_id, method,
			original_source, original_index, original_title,
			duplicate_source, duplicate_index, duplicate_title,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	batch := &pgx.Batch{}
	for _, p := range pairs {
		id := p.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		createdAt := p.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		batch.Queue(query,
			id, p.RunID, p.Method,
			p.OriginalSource, p.OriginalIndex, p.OriginalTitle,
			p.DuplicateSource, p.DuplicateIndex, p.DuplicateTitle,
			createdAt,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range pairs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to save duplicate pair: %w", err)
		}
	}

	return nil
}

// ListPairs returns the duplicate pairs persisted for a run.
func (r *PgRunRepository) ListPairs(ctx context.Context, runID uuid.UUID) ([]domain.DuplicatePair, error) {
	query := `
		SELECT id, run_id, method,
			original_source, original_index, original_title,
			duplicate_source, duplicate_index, duplicate_title,
			created_at
		FROM duplicate_records
		WHERE run_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list duplicate pairs: %w", err)
	}
	defer rows.Close()

	var pairs []domain.DuplicatePair
	for rows.Next() {
		var p domain.DuplicatePair
		if err := rows.Scan(
			&p.ID, &p.RunID, &p.Method,
			&p.OriginalSource, &p.OriginalIndex, &p.OriginalTitle,
			&p.DuplicateSource, &p.DuplicateIndex, &p.DuplicateTitle,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan duplicate pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate duplicate pairs: %w", err)
	}

	return pairs, nil
}

// scanRun scans one dedup run row.
func scanRun(row pgx.Row) (*domain.DedupRun, error) {
	var (
		run          domain.DedupRun
		errorMessage *string
	)

	if err := row.Scan(
		&run.ID, &run.Status, &run.Strategy, &run.TitleThreshold, &run.AuthorThreshold,
		&run.InputRecords, &run.UniqueRecords, &run.DuplicateRecords, &run.Comparisons, &run.SinkFailures,
		&errorMessage, &run.CreatedAt, &run.UpdatedAt, &run.CompletedAt,
	); err != nil {
		return nil, err
	}

	if errorMessage != nil {
		run.ErrorMessage = *errorMessage
	}
	return &run, nil
}

// isPgUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

// nullString returns a pointer to the string if non-empty, otherwise nil.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
