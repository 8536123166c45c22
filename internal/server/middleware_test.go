package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCorrelationIDGenerated(t *testing.T) {
	srv := newTestServer(t, okBackend)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Correlation-ID"); got == "" {
		t.Error("expected a generated X-Correlation-ID header")
	}
}

func TestCorrelationIDPropagated(t *testing.T) {
	srv := newTestServer(t, okBackend)

	tests := []struct {
		name   string
		header string
	}{
		{"request id header", "X-Request-ID"},
		{"correlation id header", "X-Correlation-ID"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			req.Header.Set(tc.header, "req-42")
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			if got := rec.Header().Get("X-Correlation-ID"); got != "req-42" {
				t.Errorf("expected req-42 echoed, got %q", got)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, okBackend)

	req := httptest.NewRequest(http.MethodOptions, "/api/transactions", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "DELETE") {
		t.Errorf("expected DELETE in allowed methods, got %q", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, okBackend)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for header, value := range want {
		if got := rec.Header().Get(header); got != value {
			t.Errorf("%s: expected %q, got %q", header, value, got)
		}
	}
}

func TestMaxBodySize(t *testing.T) {
	srv := newTestServer(t, okBackend)

	big := strings.Repeat("x", (1<<20)+1)
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"`+big+`"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for oversized body, got %d", rec.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	srv := newTestServer(t, okBackend)

	handler := srv.withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 after panic, got %d", rec.Code)
	}
}

func TestResponseWriterCapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusTeapot)
	rw.Write([]byte("short"))

	if rw.statusCode != http.StatusTeapot {
		t.Errorf("expected captured status 418, got %d", rw.statusCode)
	}
	if rw.bytesWritten != 5 {
		t.Errorf("expected 5 bytes written, got %d", rw.bytesWritten)
	}
}
