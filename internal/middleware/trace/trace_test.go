package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	dlog "dernek/internal/log"
)

func newTestMiddleware(buf *bytes.Buffer) *Middleware {
	logger := dlog.New(dlog.Config{Output: buf, Component: dlog.ComponentHTTP})
	return NewMiddleware(logger, func(*http.Request) string { return "198.51.100.1" })
}

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	m := newTestMiddleware(&buf)

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusBadGateway)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ledger?kind=cash", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("request ID %q is not a UUID: %v", seen, err)
	}
	if got := rec.Header().Get(HeaderRequestID); got != seen {
		t.Errorf("response header = %q, want %q", got, seen)
	}

	metrics := m.GetMetrics()
	if metrics.TotalRequests != 1 || metrics.ServerErrors != 1 {
		t.Errorf("metrics = %+v", metrics)
	}

	out := buf.String()
	for _, want := range []string{"HTTP request started", "HTTP request completed", seen, "status_code=502"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestMiddlewareReusesIncomingID(t *testing.T) {
	var buf bytes.Buffer
	m := newTestMiddleware(&buf)
	incoming := uuid.NewString()

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestIDFromRequest(r)
	}))

	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.Header.Set(HeaderRequestID, incoming)
	h.ServeHTTP(httptest.NewRecorder(), r)
	if seen != incoming {
		t.Errorf("request ID = %q, want %q", seen, incoming)
	}

	r = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.Header.Set(HeaderRequestID, "not-a-uuid")
	h.ServeHTTP(httptest.NewRecorder(), r)
	if seen == "not-a-uuid" {
		t.Error("malformed request IDs must be replaced")
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetRequestID(r.Context()); got != "" {
		t.Errorf("GetRequestID() = %q, want empty", got)
	}
}
