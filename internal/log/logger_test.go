package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentAggregator, Output: &buf})

	l.Info("snapshot fetched", FieldScreen, "calendar")
	l.WithComponent(ComponentStorage).Debug("saved")

	out := buf.String()
	if !strings.Contains(out, "component=aggregator") || !strings.Contains(out, "screen=calendar") {
		t.Errorf("missing fields in %q", out)
	}
	if !strings.Contains(out, "component=storage") {
		t.Errorf("WithComponent not applied: %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf})
	l.Info("hidden")
	l.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Output: &buf, Component: ComponentHTTP})

	h := Middleware(base)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).InfoContext(r.Context(), "inside")
		}),
	))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("request id missing: %q", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Error("FromContext must never return nil")
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Output: &buf}))
	r := httptest.NewRequest(http.MethodGet, "/api/ledger?kind=cash", nil)

	sl.LogHTTPEnd(context.Background(), r, "req-2", http.StatusBadGateway, 12, "127.0.0.1")
	sl.LogError(context.Background(), "fetch failed", errors.New("boom"), OpFetch, nil)

	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "status_code=502") {
		t.Errorf("unexpected output %q", out)
	}
	if !strings.Contains(out, "error=boom") || !strings.Contains(out, "operation=fetch") {
		t.Errorf("error fields missing: %q", out)
	}
}
