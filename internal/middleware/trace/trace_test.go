package trace

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddlewareInjectsRequestID(t *testing.T) {
	m := NewMiddleware(nil)

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatal("handler saw no request ID in context")
	}
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status not propagated: got %d", rec.Code)
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetRequestID(r.Context()); got != "" {
		t.Fatalf("expected empty ID without middleware, got %q", got)
	}
}
