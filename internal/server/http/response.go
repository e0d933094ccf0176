package httpserver

import (
	"time"

	"github.com/helixir/reference-dedup-service/internal/dedup"
	"github.com/helixir/reference-dedup-service/internal/domain"
)

// Request and response types for JSON serialization.

type startRunRequest struct {
	Strategy        string          `json:"strategy,omitempty"`
	TitleThreshold  *float64        `json:"title_threshold,omitempty"`
	AuthorThreshold *float64        `json:"author_threshold,omitempty"`
	Records         []recordPayload `json:"records"`
}

type fieldPayload struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type recordPayload struct {
	SourceID    string         `json:"source_id,omitempty"`
	OriginIndex *int           `json:"origin_index,omitempty"`
	Fields      []fieldPayload `json:"fields"`
}

// toDomain builds a domain Record from the payload. Records without an
// explicit origin index take their position in the batch.
func (p recordPayload) toDomain(position int) domain.Record {
	index := position
	if p.OriginIndex != nil {
		index = *p.OriginIndex
	}
	fields := make([]domain.Field, len(p.Fields))
	for i, f := range p.Fields {
		fields[i] = domain.Field{Name: f.Name, Value: f.Value}
	}
	return domain.NewRecord(p.SourceID, index, fields)
}

type recordResponse struct {
	SourceID    string         `json:"source_id,omitempty"`
	OriginIndex int            `json:"origin_index"`
	Fields      []fieldPayload `json:"fields"`
}

type duplicateGroupResponse struct {
	Original   recordResponse   `json:"original"`
	Duplicates []recordResponse `json:"duplicates"`
	Method     string           `json:"method"`
}

type partitionResponse struct {
	Unique     []recordResponse         `json:"unique"`
	Duplicates []duplicateGroupResponse `json:"duplicates"`
}

type statsResponse struct {
	InputRecords     int            `json:"input_records"`
	UniqueRecords    int            `json:"unique_records"`
	DuplicateRecords int            `json:"duplicate_records"`
	ByMethod         map[string]int `json:"duplicates_by_method,omitempty"`
	Comparisons      int            `json:"comparisons"`
	SinkFailures     int            `json:"sink_failures,omitempty"`
}

type startRunResponse struct {
	RunID     string            `json:"run_id"`
	Status    string            `json:"status"`
	Stats     statsResponse     `json:"stats"`
	Partition partitionResponse `json:"partition"`
}

type runResponse struct {
	RunID            string     `json:"run_id"`
	Status           string     `json:"status"`
	Strategy         string     `json:"strategy"`
	TitleThreshold   float64    `json:"title_threshold"`
	AuthorThreshold  float64    `json:"author_threshold"`
	InputRecords     int        `json:"input_records"`
	UniqueRecords    int        `json:"unique_records"`
	DuplicateRecords int        `json:"duplicate_records"`
	Comparisons      int        `json:"comparisons"`
	SinkFailures     int        `json:"sink_failures"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

type listRunsResponse struct {
	Runs          []runResponse `json:"runs"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

type pairResponse struct {
	ID              string    `json:"id"`
	Method          string    `json:"method"`
	OriginalSource  string    `json:"original_source,omitempty"`
	OriginalIndex   int       `json:"original_index"`
	OriginalTitle   string    `json:"original_title,omitempty"`
	DuplicateSource string    `json:"duplicate_source,omitempty"`
	DuplicateIndex  int       `json:"duplicate_index"`
	DuplicateTitle  string    `json:"duplicate_title,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type listPairsResponse struct {
	Pairs []pairResponse `json:"pairs"`
}

// Converter functions

func domainRecordToResponse(r domain.Record) recordResponse {
	fields := r.Fields()
	payload := make([]fieldPayload, len(fields))
	for i, f := range fields {
		payload[i] = fieldPayload{Name: f.Name, Value: f.Value}
	}
	return recordResponse{
		SourceID:    r.SourceID,
		OriginIndex: r.OriginIndex,
		Fields:      payload,
	}
}

func domainPartitionToResponse(p domain.Partition) partitionResponse {
	unique := make([]recordResponse, len(p.Unique))
	for i, r := range p.Unique {
		unique[i] = domainRecordToResponse(r)
	}
	groups := make([]duplicateGroupResponse, len(p.Duplicates))
	for i, g := range p.Duplicates {
		dups := make([]recordResponse, len(g.Duplicates))
		for j, d := range g.Duplicates {
			dups[j] = domainRecordToResponse(d)
		}
		groups[i] = duplicateGroupResponse{
			Original:   domainRecordToResponse(g.Original),
			Duplicates: dups,
			Method:     string(g.Method),
		}
	}
	return partitionResponse{Unique: unique, Duplicates: groups}
}

func domainStatsToResponse(stats dedup.Stats, uniqueCount int) statsResponse {
	byMethod := make(map[string]int, len(stats.DuplicatesByMethod))
	for method, count := range stats.DuplicatesByMethod {
		byMethod[string(method)] = count
	}
	return statsResponse{
		InputRecords:     stats.InputRecords,
		UniqueRecords:    uniqueCount,
		DuplicateRecords: stats.DuplicateCount(),
		ByMethod:         byMethod,
		Comparisons:      stats.Comparisons,
		SinkFailures:     stats.SinkFailures,
	}
}

func domainRunToResponse(run *domain.DedupRun) runResponse {
	return runResponse{
		RunID:            run.ID.String(),
		Status:           string(run.Status),
		Strategy:         run.Strategy,
		TitleThreshold:   run.TitleThreshold,
		AuthorThreshold:  run.AuthorThreshold,
		InputRecords:     run.InputRecords,
		UniqueRecords:    run.UniqueRecords,
		DuplicateRecords: run.DuplicateRecords,
		Comparisons:      run.Comparisons,
		SinkFailures:     run.SinkFailures,
		ErrorMessage:     run.ErrorMessage,
		CreatedAt:        run.CreatedAt,
		CompletedAt:      run.CompletedAt,
	}
}

func domainPairToResponse(p domain.DuplicatePair) pairResponse {
	return pairResponse{
		ID:              p.ID.String(),
		Method:          string(p.Method),
		OriginalSource:  p.OriginalSource,
		OriginalIndex:   p.OriginalIndex,
		OriginalTitle:   p.OriginalTitle,
		DuplicateSource: p.DuplicateSource,
		DuplicateIndex:  p.DuplicateIndex,
		DuplicateTitle:  p.DuplicateTitle,
		CreatedAt:       p.CreatedAt,
	}
}
