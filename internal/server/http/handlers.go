package httpserver

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/helixir/reference-dedup-service/internal/dedup"
	"github.com/helixir/reference-dedup-service/internal/domain"
	"github.com/helixir/reference-dedup-service/internal/repository"
)

// Pagination and validation constants.
const (
	defaultPageSize    = 50
	maxPageSize        = 100
	maxBatchRecords    = 50000
	maxRequestBodySize = 16 << 20 // 16 MB limit for record batches
)

// startDedupRun handles POST /dedup-runs.
// It runs the detection engine over the submitted batch and persists the
// run with its duplicate pairs.
func (s *Server) startDedupRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req startRunRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	if len(req.Records) > maxBatchRecords {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("records must have at most %d entries", maxBatchRecords))
		return
	}

	// Build configuration from service defaults with optional overrides.
	cfg := s.engineCfg
	if req.Strategy != "" {
		cfg.Strategy = dedup.Strategy(req.Strategy)
	}
	if req.TitleThreshold != nil {
		cfg.TitleThreshold = *req.TitleThreshold
	}
	if req.AuthorThreshold != nil {
		cfg.AuthorThreshold = *req.AuthorThreshold
	}

	records := make([]domain.Record, len(req.Records))
	for i, rp := range req.Records {
		records[i] = rp.toDomain(i)
	}

	run := domain.NewDedupRun(string(cfg.Strategy), cfg.TitleThreshold, cfg.AuthorThreshold)
	collector := repository.NewPairCollector(run.ID, cfg.TitleField)

	detector, err := dedup.NewDetector(cfg, collector, s.logger)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.runs.Create(ctx, run); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.runs.MarkRunning(ctx, run.ID); err != nil {
		writeDomainError(w, err)
		return
	}

	started := time.Now()
	s.metrics.RecordRunStarted(len(records))

	partition, stats := detector.Detect(records)

	run.InputRecords = stats.InputRecords
	run.UniqueRecords = len(partition.Unique)
	run.DuplicateRecords = stats.DuplicateCount()
	run.Comparisons = stats.Comparisons
	run.SinkFailures = stats.SinkFailures

	// Pair persistence is advisory reporting; a failed flush does not
	// invalidate the partition.
	if err := collector.Flush(ctx, s.runs); err != nil {
		s.logger.Error().Err(err).Str("run_id", run.ID.String()).Msg("persist duplicate pairs failed")
	}

	if err := s.runs.Complete(ctx, run); err != nil {
		s.metrics.RecordRunFailed(time.Since(started).Seconds())
		// Best effort: without this the row would sit in running forever.
		if failErr := s.runs.Fail(ctx, run.ID, err.Error()); failErr != nil {
			s.logger.Error().Err(failErr).Str("run_id", run.ID.String()).Msg("mark run failed errored")
		}
		writeDomainError(w, err)
		return
	}

	s.metrics.RecordRunCompleted(time.Since(started).Seconds())
	for method, count := range stats.DuplicatesByMethod {
		s.metrics.RecordDuplicates(string(method), count)
	}
	s.metrics.RecordFuzzyComparisons(stats.Comparisons)
	s.metrics.RecordSinkFailures(stats.SinkFailures)

	writeJSON(w, http.StatusCreated, startRunResponse{
		RunID:     run.ID.String(),
		Status:    string(domain.RunStatusCompleted),
		Stats:     domainStatsToResponse(stats, len(partition.Unique)),
		Partition: domainPartitionToResponse(partition),
	})
}

// getDedupRun handles GET /dedup-runs/{runID}.
func (s *Server) getDedupRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := parseUUID(w, chi.URLParam(r, "runID"), "run_id")
	if !ok {
		return
	}

	run, err := s.runs.Get(r.Context(), runID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainRunToResponse(run))
}

// listDedupRuns handles GET /dedup-runs.
// It returns a paginated list of runs, newest first.
func (s *Server) listDedupRuns(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePaginationParams(r)

	runs, err := s.runs.List(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	summaries := make([]runResponse, len(runs))
	for i, run := range runs {
		summaries[i] = domainRunToResponse(run)
	}

	writeJSON(w, http.StatusOK, listRunsResponse{
		Runs:          summaries,
		NextPageToken: encodeHTTPPageToken(offset, limit, len(runs)),
	})
}

// listDuplicatePairs handles GET /dedup-runs/{runID}/pairs.
func (s *Server) listDuplicatePairs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	runID, ok := parseUUID(w, chi.URLParam(r, "runID"), "run_id")
	if !ok {
		return
	}

	// Resolve the run first so an unknown ID yields 404 rather than an
	// empty list.
	if _, err := s.runs.Get(ctx, runID); err != nil {
		writeDomainError(w, err)
		return
	}

	pairs, err := s.runs.ListPairs(ctx, runID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]pairResponse, len(pairs))
	for i, p := range pairs {
		resp[i] = domainPairToResponse(p)
	}

	writeJSON(w, http.StatusOK, listPairsResponse{Pairs: resp})
}

// writeDomainError maps domain errors to appropriate HTTP status codes
// and writes a JSON error response. Internal error details are not leaked
// to clients.
func writeDomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusBadRequest, "invalid input")
		}
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "resource already exists")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseUUID parses a UUID from a string, writing a 400 error response if invalid.
// Returns the parsed UUID and true on success, or uuid.Nil and false on failure.
// The parse error details are not included to avoid echoing potentially malicious input.
func parseUUID(w http.ResponseWriter, s, fieldName string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be a valid UUID", fieldName))
		return uuid.Nil, false
	}
	return id, true
}

// parsePaginationParams extracts page_size and page_token from query parameters.
// It applies default and maximum bounds to the page size.
func parsePaginationParams(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	if pageSizeStr := r.URL.Query().Get("page_size"); pageSizeStr != "" {
		if parsed, err := strconv.Atoi(pageSizeStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if pageToken := r.URL.Query().Get("page_token"); pageToken != "" {
		decoded, err := base64.StdEncoding.DecodeString(pageToken)
		if err == nil {
			if parsed, parseErr := strconv.Atoi(string(decoded)); parseErr == nil && parsed > 0 {
				offset = parsed
			}
		}
	}

	return limit, offset
}

// encodeHTTPPageToken encodes the next offset as a base64 page token.
// Returns an empty string when the current page came back short, meaning
// there are no more results.
func encodeHTTPPageToken(offset, limit, returned int) string {
	if returned < limit {
		return ""
	}
	return base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(offset + limit)))
}
