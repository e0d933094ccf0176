package httpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/helixir/reference-dedup-service/internal/dedup"
	"github.com/helixir/reference-dedup-service/internal/domain"
	"github.com/helixir/reference-dedup-service/internal/observability"
)

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

// mockRunRepo implements repository.RunRepository for HTTP handler tests.
type mockRunRepo struct {
	createFn      func(ctx context.Context, run *domain.DedupRun) error
	getFn         func(ctx context.Context, id uuid.UUID) (*domain.DedupRun, error)
	listFn        func(ctx context.Context, limit, offset int) ([]*domain.DedupRun, error)
	markRunningFn func(ctx context.Context, id uuid.UUID) error
	completeFn    func(ctx context.Context, run *domain.DedupRun) error
	failFn        func(ctx context.Context, id uuid.UUID, message string) error
	savePairsFn   func(ctx context.Context, pairs []domain.DuplicatePair) error
	listPairsFn   func(ctx context.Context, runID uuid.UUID) ([]domain.DuplicatePair, error)
}

func (m *mockRunRepo) Create(ctx context.Context, run *domain.DedupRun) error {
	if m.createFn != nil {
		return m.createFn(ctx, run)
	}
	return nil
}

func (m *mockRunRepo) Get(ctx context.Context, id uuid.UUID) (*domain.DedupRun, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockRunRepo) List(ctx context.Context, limit, offset int) ([]*domain.DedupRun, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockRunRepo) MarkRunning(ctx context.Context, id uuid.UUID) error {
	if m.markRunningFn != nil {
		return m.markRunningFn(ctx, id)
	}
	return nil
}

func (m *mockRunRepo) Complete(ctx context.Context, run *domain.DedupRun) error {
	if m.completeFn != nil {
		return m.completeFn(ctx, run)
	}
	return nil
}

func (m *mockRunRepo) Fail(ctx context.Context, id uuid.UUID, message string) error {
	if m.failFn != nil {
		return m.failFn(ctx, id, message)
	}
	return nil
}

func (m *mockRunRepo) SavePairs(ctx context.Context, pairs []domain.DuplicatePair) error {
	if m.savePairsFn != nil {
		return m.savePairsFn(ctx, pairs)
	}
	return nil
}

func (m *mockRunRepo) ListPairs(ctx context.Context, runID uuid.UUID) ([]domain.DuplicatePair, error) {
	if m.listPairsFn != nil {
		return m.listPairsFn(ctx, runID)
	}
	return nil, nil
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

var (
	testMetrics     *observability.Metrics
	testMetricsOnce sync.Once
)

// sharedMetrics returns a process-wide Metrics instance for handler tests.
// promauto registers with the default registry, so constructing twice panics.
func sharedMetrics() *observability.Metrics {
	testMetricsOnce.Do(func() {
		testMetrics = observability.NewMetrics("refdedup_httptest")
	})
	return testMetrics
}

// newTestHTTPServer creates a Server configured for testing with a mocked repository.
func newTestHTTPServer(runs *mockRunRepo) *Server {
	s := &Server{
		engineCfg: dedup.DefaultConfig(),
		runs:      runs,
		metrics:   sharedMetrics(),
		logger:    zerolog.Nop(),
	}
	s.router = s.buildRouter()
	return s
}

// serveHTTP dispatches a request through the test server's router and returns the recorder.
func serveHTTP(s *Server, r *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, r)
	return rr
}

// decodeJSON decodes a JSON response body into the given target.
func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(target); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

// postRun dispatches a POST /api/v1/dedup-runs request with the given body.
func postRun(s *Server, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dedup-runs", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return serveHTTP(s, req)
}

// ---------------------------------------------------------------------------
// Tests: startDedupRun
// ---------------------------------------------------------------------------

func TestStartDedupRun_Success(t *testing.T) {
	var (
		createdRun *domain.DedupRun
		markedID   uuid.UUID
		savedPairs []domain.DuplicatePair
		completed  *domain.DedupRun
	)

	runs := &mockRunRepo{
		createFn: func(_ context.Context, run *domain.DedupRun) error {
			createdRun = run
			return nil
		},
		markRunningFn: func(_ context.Context, id uuid.UUID) error {
			markedID = id
			return nil
		},
		savePairsFn: func(_ context.Context, pairs []domain.DuplicatePair) error {
			savedPairs = pairs
			return nil
		},
		completeFn: func(_ context.Context, run *domain.DedupRun) error {
			completed = run
			return nil
		},
	}
	srv := newTestHTTPServer(runs)

	body := `{"records":[
		{"source_id":"a.bib","fields":[{"name":"doi","value":"10.1/X"},{"name":"title","value":"First"}]},
		{"source_id":"b.bib","fields":[{"name":"doi","value":"10.1/x"},{"name":"title","value":"First again"}]},
		{"source_id":"b.bib","fields":[{"name":"doi","value":"10.2/Y"},{"name":"title","value":"Second"}]}
	]}`
	rr := postRun(srv, body)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp startRunResponse
	decodeJSON(t, rr, &resp)

	if resp.RunID == "" {
		t.Error("expected run_id to be set")
	}
	if resp.Status != string(domain.RunStatusCompleted) {
		t.Errorf("expected status %q, got %q", domain.RunStatusCompleted, resp.Status)
	}
	if resp.Stats.InputRecords != 3 {
		t.Errorf("expected 3 input records, got %d", resp.Stats.InputRecords)
	}
	if resp.Stats.DuplicateRecords != 1 {
		t.Errorf("expected 1 duplicate, got %d", resp.Stats.DuplicateRecords)
	}
	if len(resp.Partition.Unique) != 2 {
		t.Errorf("expected 2 unique records, got %d", len(resp.Partition.Unique))
	}
	if len(resp.Partition.Duplicates) != 1 {
		t.Fatalf("expected 1 duplicate group, got %d", len(resp.Partition.Duplicates))
	}
	if resp.Partition.Duplicates[0].Method != string(domain.MethodExactKey) {
		t.Errorf("expected exact-key method, got %s", resp.Partition.Duplicates[0].Method)
	}

	if createdRun == nil {
		t.Fatal("expected createFn to be called")
	}
	if createdRun.Strategy != string(dedup.StrategyExactKey) {
		t.Errorf("expected exact-key strategy, got %s", createdRun.Strategy)
	}
	if markedID != createdRun.ID {
		t.Errorf("expected MarkRunning with run ID %s, got %s", createdRun.ID, markedID)
	}
	if len(savedPairs) != 1 {
		t.Fatalf("expected 1 saved pair, got %d", len(savedPairs))
	}
	if savedPairs[0].RunID != createdRun.ID {
		t.Errorf("expected pair run ID %s, got %s", createdRun.ID, savedPairs[0].RunID)
	}
	if savedPairs[0].OriginalTitle != "First" {
		t.Errorf("expected original title First, got %q", savedPairs[0].OriginalTitle)
	}

	if completed == nil {
		t.Fatal("expected completeFn to be called")
	}
	if completed.InputRecords != 3 || completed.UniqueRecords != 2 || completed.DuplicateRecords != 1 {
		t.Errorf("unexpected completed counters: %+v", completed)
	}
}

func TestStartDedupRun_EmptyBatch(t *testing.T) {
	srv := newTestHTTPServer(&mockRunRepo{})

	rr := postRun(srv, `{"records":[]}`)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp startRunResponse
	decodeJSON(t, rr, &resp)
	if resp.Stats.InputRecords != 0 {
		t.Errorf("expected 0 input records, got %d", resp.Stats.InputRecords)
	}
	if len(resp.Partition.Unique) != 0 || len(resp.Partition.Duplicates) != 0 {
		t.Error("expected empty partition")
	}
}

func TestStartDedupRun_InvalidJSON(t *testing.T) {
	srv := newTestHTTPServer(&mockRunRepo{})

	rr := postRun(srv, "{invalid json")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestStartDedupRun_UnknownStrategy(t *testing.T) {
	srv := newTestHTTPServer(&mockRunRepo{})

	rr := postRun(srv, `{"strategy":"phonetic","records":[]}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestStartDedupRun_InvalidThresholdOverride(t *testing.T) {
	srv := newTestHTTPServer(&mockRunRepo{})

	rr := postRun(srv, `{"title_threshold":1.5,"records":[]}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestStartDedupRun_CreateRepoError(t *testing.T) {
	runs := &mockRunRepo{
		createFn: func(_ context.Context, _ *domain.DedupRun) error {
			return errors.New("connection refused")
		},
	}
	srv := newTestHTTPServer(runs)

	rr := postRun(srv, `{"records":[]}`)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestStartDedupRun_CompleteErrorMarksRunFailed(t *testing.T) {
	var (
		createdRun  *domain.DedupRun
		failedID    uuid.UUID
		failMessage string
	)

	runs := &mockRunRepo{
		createFn: func(_ context.Context, run *domain.DedupRun) error {
			createdRun = run
			return nil
		},
		completeFn: func(_ context.Context, _ *domain.DedupRun) error {
			return errors.New("connection reset")
		},
		failFn: func(_ context.Context, id uuid.UUID, message string) error {
			failedID = id
			failMessage = message
			return nil
		},
	}
	srv := newTestHTTPServer(runs)

	rr := postRun(srv, `{"records":[]}`)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d: %s", rr.Code, rr.Body.String())
	}
	if createdRun == nil {
		t.Fatal("expected createFn to be called")
	}
	if failedID != createdRun.ID {
		t.Errorf("expected Fail with run ID %s, got %s", createdRun.ID, failedID)
	}
	if !strings.Contains(failMessage, "connection reset") {
		t.Errorf("expected failure message to carry the cause, got %q", failMessage)
	}
}

func TestStartDedupRun_FlushErrorStillSucceeds(t *testing.T) {
	runs := &mockRunRepo{
		savePairsFn: func(_ context.Context, _ []domain.DuplicatePair) error {
			return errors.New("disk full")
		},
	}
	srv := newTestHTTPServer(runs)

	body := `{"records":[
		{"fields":[{"name":"doi","value":"10.1/X"},{"name":"title","value":"First"}]},
		{"fields":[{"name":"doi","value":"10.1/X"},{"name":"title","value":"First"}]}
	]}`
	rr := postRun(srv, body)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestStartDedupRun_GroupKeyOverride(t *testing.T) {
	srv := newTestHTTPServer(&mockRunRepo{})
	srv.engineCfg.GroupFields = []string{"title", "author", "year"}

	body := `{"strategy":"group-key","records":[
		{"fields":[{"name":"title","value":"Alpha"},{"name":"author","value":"Doe"},{"name":"year","value":"2021"}]},
		{"fields":[{"name":"title","value":"  ALPHA "},{"name":"author","value":"doe"},{"name":"year","value":"2021"}]}
	]}`
	rr := postRun(srv, body)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp startRunResponse
	decodeJSON(t, rr, &resp)
	if len(resp.Partition.Duplicates) != 1 {
		t.Fatalf("expected 1 duplicate group, got %d", len(resp.Partition.Duplicates))
	}
	if resp.Partition.Duplicates[0].Method != string(domain.MethodGroupKey) {
		t.Errorf("expected group-key method, got %s", resp.Partition.Duplicates[0].Method)
	}
}

// ---------------------------------------------------------------------------
// Tests: getDedupRun
// ---------------------------------------------------------------------------

func TestGetDedupRun_Success(t *testing.T) {
	run := domain.NewDedupRun("exact-key", 0.95, 0.8)
	run.Status = domain.RunStatusCompleted
	run.InputRecords = 10
	run.UniqueRecords = 8
	run.DuplicateRecords = 2

	runs := &mockRunRepo{
		getFn: func(_ context.Context, id uuid.UUID) (*domain.DedupRun, error) {
			if id != run.ID {
				return nil, domain.ErrNotFound
			}
			return run, nil
		},
	}
	srv := newTestHTTPServer(runs)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dedup-runs/"+run.ID.String(), nil)
	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp runResponse
	decodeJSON(t, rr, &resp)
	if resp.RunID != run.ID.String() {
		t.Errorf("expected run_id %s, got %s", run.ID, resp.RunID)
	}
	if resp.Status != "completed" {
		t.Errorf("expected status completed, got %s", resp.Status)
	}
	if resp.InputRecords != 10 || resp.UniqueRecords != 8 || resp.DuplicateRecords != 2 {
		t.Errorf("unexpected counters in response: %+v", resp)
	}
}

func TestGetDedupRun_NotFound(t *testing.T) {
	srv := newTestHTTPServer(&mockRunRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dedup-runs/"+uuid.NewString(), nil)
	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestGetDedupRun_InvalidUUID(t *testing.T) {
	srv := newTestHTTPServer(&mockRunRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dedup-runs/not-a-uuid", nil)
	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

// ---------------------------------------------------------------------------
// Tests: listDedupRuns
// ---------------------------------------------------------------------------

func TestListDedupRuns_Pagination(t *testing.T) {
	var gotLimit, gotOffset int
	runs := &mockRunRepo{
		listFn: func(_ context.Context, limit, offset int) ([]*domain.DedupRun, error) {
			gotLimit, gotOffset = limit, offset
			out := make([]*domain.DedupRun, limit)
			for i := range out {
				out[i] = domain.NewDedupRun("exact-key", 0.95, 0.8)
			}
			return out, nil
		},
	}
	srv := newTestHTTPServer(runs)

	token := base64.StdEncoding.EncodeToString([]byte("10"))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dedup-runs?page_size=5&page_token="+token, nil)
	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotLimit != 5 || gotOffset != 10 {
		t.Errorf("expected limit 5 offset 10, got %d %d", gotLimit, gotOffset)
	}

	var resp listRunsResponse
	decodeJSON(t, rr, &resp)
	if len(resp.Runs) != 5 {
		t.Errorf("expected 5 runs, got %d", len(resp.Runs))
	}

	// A full page yields a token for the next offset.
	decoded, err := base64.StdEncoding.DecodeString(resp.NextPageToken)
	if err != nil {
		t.Fatalf("failed to decode page token: %v", err)
	}
	if next, _ := strconv.Atoi(string(decoded)); next != 15 {
		t.Errorf("expected next offset 15, got %s", decoded)
	}
}

func TestListDedupRuns_LastPage(t *testing.T) {
	runs := &mockRunRepo{
		listFn: func(_ context.Context, _, _ int) ([]*domain.DedupRun, error) {
			return []*domain.DedupRun{domain.NewDedupRun("exact-key", 0.95, 0.8)}, nil
		},
	}
	srv := newTestHTTPServer(runs)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dedup-runs?page_size=5", nil)
	rr := serveHTTP(srv, req)

	var resp listRunsResponse
	decodeJSON(t, rr, &resp)
	if resp.NextPageToken != "" {
		t.Errorf("expected no next page token on a short page, got %q", resp.NextPageToken)
	}
}

// ---------------------------------------------------------------------------
// Tests: listDuplicatePairs
// ---------------------------------------------------------------------------

func TestListDuplicatePairs_Success(t *testing.T) {
	run := domain.NewDedupRun("exact-key", 0.95, 0.8)
	pair := domain.DuplicatePair{
		ID:              uuid.New(),
		RunID:           run.ID,
		Method:          domain.MethodFuzzy,
		OriginalSource:  "a.bib",
		OriginalTitle:   "Alpha",
		DuplicateSource: "b.bib",
		DuplicateIndex:  3,
		DuplicateTitle:  "Alpha!",
	}

	runs := &mockRunRepo{
		getFn: func(_ context.Context, _ uuid.UUID) (*domain.DedupRun, error) {
			return run, nil
		},
		listPairsFn: func(_ context.Context, runID uuid.UUID) ([]domain.DuplicatePair, error) {
			if runID != run.ID {
				t.Errorf("expected run ID %s, got %s", run.ID, runID)
			}
			return []domain.DuplicatePair{pair}, nil
		},
	}
	srv := newTestHTTPServer(runs)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dedup-runs/"+run.ID.String()+"/pairs", nil)
	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp listPairsResponse
	decodeJSON(t, rr, &resp)
	if len(resp.Pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(resp.Pairs))
	}
	if resp.Pairs[0].Method != "fuzzy" {
		t.Errorf("expected fuzzy method, got %s", resp.Pairs[0].Method)
	}
	if resp.Pairs[0].DuplicateIndex != 3 {
		t.Errorf("expected duplicate index 3, got %d", resp.Pairs[0].DuplicateIndex)
	}
}

func TestListDuplicatePairs_RunNotFound(t *testing.T) {
	srv := newTestHTTPServer(&mockRunRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dedup-runs/"+uuid.NewString()+"/pairs", nil)
	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", rr.Code, rr.Body.String())
	}
}
