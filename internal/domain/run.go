package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the lifecycle state of a dedup run.
type RunStatus string

// Run statuses.
const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Valid reports whether the status is one of the known run states.
func (s RunStatus) Valid() bool {
	switch s {
	case RunStatusPending, RunStatusRunning, RunStatusCompleted, RunStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the status is an end state.
func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// DedupRun records one execution of the detection engine.
type DedupRun struct {
	ID       uuid.UUID
	Status   RunStatus
	Strategy string

	// Thresholds the run was executed with.
	TitleThreshold  float64
	AuthorThreshold float64

	// Counters filled in when the run completes.
	InputRecords     int
	UniqueRecords    int
	DuplicateRecords int
	Comparisons      int
	SinkFailures     int

	// ErrorMessage holds the failure reason for failed runs.
	ErrorMessage string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// NewDedupRun creates a pending run with the given detection settings.
func NewDedupRun(strategy string, titleThreshold, authorThreshold float64) *DedupRun {
	now := time.Now().UTC()
	return &DedupRun{
		ID:              uuid.New(),
		Status:          RunStatusPending,
		Strategy:        strategy,
		TitleThreshold:  titleThreshold,
		AuthorThreshold: authorThreshold,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// DuplicatePair is one persisted original/duplicate association from a run.
type DuplicatePair struct {
	ID    uuid.UUID
	RunID uuid.UUID

	Method MatchMethod

	OriginalSource  string
	OriginalIndex   int
	OriginalTitle   string
	DuplicateSource string
	DuplicateIndex  int
	DuplicateTitle  string

	CreatedAt time.Time
}
