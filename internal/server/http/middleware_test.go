package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/helixir/reference-dedup-service/internal/observability"
)

func TestCorrelationIDMiddleware_UsesHeader(t *testing.T) {
	var seen string
	handler := correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = observability.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "corr-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if seen != "corr-123" {
		t.Errorf("expected correlation ID corr-123 in context, got %q", seen)
	}
	if got := rr.Header().Get("X-Correlation-ID"); got != "corr-123" {
		t.Errorf("expected correlation ID echoed in response header, got %q", got)
	}
}

func TestCorrelationIDMiddleware_GeneratesWhenMissing(t *testing.T) {
	var seen string
	handler := correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = observability.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if seen == "" {
		t.Error("expected a generated correlation ID in context")
	}
	if rr.Header().Get("X-Correlation-ID") != seen {
		t.Error("expected response header to match the context correlation ID")
	}
}

func TestJSONContentTypeMiddleware(t *testing.T) {
	handler := jsonContentTypeMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("expected application/json content type, got %q", got)
	}
}
