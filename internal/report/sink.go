// Package report emits duplicate reports: structured log lines, a
// human-readable duplicates file, and run summary tables. Every sink
// implements dedup.ReportSink and is scoped to a single detection run.
package report

import (
	"bufio"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/helixir/reference-dedup-service/internal/dedup"
	"github.com/helixir/reference-dedup-service/internal/domain"
)

// DefaultFields are the record fields included in reports when the
// caller does not pick their own.
var DefaultFields = []string{"title", "author", "year", "doi"}

// LogSink writes one structured log line per duplicate pair.
type LogSink struct {
	logger zerolog.Logger
	fields []string
}

// NewLogSink creates a LogSink reporting the given record fields.
// Passing no fields selects DefaultFields.
func NewLogSink(logger zerolog.Logger, fields ...string) *LogSink {
	if len(fields) == 0 {
		fields = DefaultFields
	}
	return &LogSink{
		logger: logger.With().Str("component", "report").Logger(),
		fields: fields,
	}
}

// Record implements dedup.ReportSink. It never fails.
func (s *LogSink) Record(original, duplicate domain.Record, method domain.MatchMethod) error {
	ev := s.logger.Info().
		Str("method", string(method)).
		Str("original_source", original.SourceID).
		Int("original_index", original.OriginIndex).
		Str("duplicate_source", duplicate.SourceID).
		Int("duplicate_index", duplicate.OriginIndex)
	for _, f := range s.fields {
		ev = ev.Str("original_"+f, original.Get(f))
	}
	ev.Msg("duplicate found")
	return nil
}

// FileSink appends a readable block per duplicate pair to a report file,
// the duplicates.txt format downstream reviewers work through by hand.
// The file is truncated when the sink is opened, so each run starts clean.
type FileSink struct {
	path   string
	file   *os.File
	writer *bufio.Writer
	fields []string
}

// NewFileSink opens (and truncates) the report file at path.
func NewFileSink(path string, fields ...string) (*FileSink, error) {
	if len(fields) == 0 {
		fields = DefaultFields
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open duplicates report %s: %w", path, err)
	}
	return &FileSink{
		path:   path,
		file:   f,
		writer: bufio.NewWriter(f),
		fields: fields,
	}, nil
}

// Record implements dedup.ReportSink.
func (s *FileSink) Record(original, duplicate domain.Record, method domain.MatchMethod) error {
	if err := s.writePair(original, duplicate, method); err != nil {
		return &domain.SinkError{Sink: s.path, Cause: err}
	}
	return nil
}

func (s *FileSink) writePair(original, duplicate domain.Record, method domain.MatchMethod) error {
	w := s.writer
	fmt.Fprintf(w, "Duplicate found by %s:\n", method)
	fmt.Fprintf(w, "  Original entry from: %s (#%d)\n", original.SourceID, original.OriginIndex)
	for _, f := range s.fields {
		fmt.Fprintf(w, "    %s: %s\n", f, original.Get(f))
	}
	fmt.Fprintf(w, "  Duplicate entry from: %s (#%d)\n", duplicate.SourceID, duplicate.OriginIndex)
	for _, f := range s.fields {
		fmt.Fprintf(w, "    %s: %s\n", f, duplicate.Get(f))
	}
	fmt.Fprintf(w, "%s\n", separator)
	return w.Flush()
}

const separator = "=================================================="

// Close flushes and closes the report file.
func (s *FileSink) Close() error {
	if err := s.writer.Flush(); err != nil {
		s.file.Close()
		return fmt.Errorf("flush duplicates report %s: %w", s.path, err)
	}
	return s.file.Close()
}

// MultiSink fans a pair out to every sink. All sinks are invoked even
// when one fails; the first error is returned.
type MultiSink []dedup.ReportSink

// Record implements dedup.ReportSink.
func (m MultiSink) Record(original, duplicate domain.Record, method domain.MatchMethod) error {
	var firstErr error
	for _, s := range m {
		if err := s.Record(original, duplicate, method); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
