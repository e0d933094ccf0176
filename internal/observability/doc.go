// Package observability provides logging and metrics support for the
// reference dedup service.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for runs, records, and report sinks
//   - Context helpers for propagating observability data
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:     "info",
//	    Format:    "json",
//	    Output:    "stdout",
//	    AddSource: true,
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Str("run_id", runID).Msg("dedup run started")
//
// Add run context to logger:
//
//	logger = observability.WithRunContext(logger, requestID, runID)
//
// # Metrics
//
// Initialize metrics:
//
//	metrics := observability.NewMetrics("refdedup")
//
// Record metrics:
//
//	metrics.RecordRunStarted(len(records))
//	metrics.RecordDuplicates("exact-key", 12)
//	metrics.RecordRunCompleted(elapsed.Seconds())
//
// # Context Helpers
//
// Store and retrieve request context:
//
//	ctx = observability.WithRequestID(ctx, requestID)
//	ctx = observability.WithRunID(ctx, runID)
//
//	reqID := observability.RequestIDFromContext(ctx)
//	runID := observability.RunIDFromContext(ctx)
//
// # Standard Fields
//
// Common fields used across the service:
//
//   - request_id: HTTP request identifier
//   - run_id: Dedup run identifier
//   - source: Input file or API source
//   - format: Input file format (bibtex, csv, xlsx)
//   - source_id: Source a record came from
//   - origin_index: Record position within its source
//   - method: Match method (exact-key, group-key, fuzzy)
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability
