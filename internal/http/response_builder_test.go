package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSONResponseBuilder(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Test", "1").
		Body(map[string]int{"count": 3}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "application/json") {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("X-Test"); got != "1" {
		t.Errorf("X-Test = %q", got)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"count":3}` {
		t.Errorf("Body = %q", got)
	}
}

func TestJSONResponseBuilderNoBody(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("got %d with %q", w.Code, w.Body.String())
	}
}

func TestJSONResponseBuilderEncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Body(map[string]any{"f": func() {}}).Write(w)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name string
		resp *JSONResponseBuilder
		code int
	}{
		{"bad request", BadRequestError("x"), http.StatusBadRequest},
		{"bad gateway", BadGatewayError("x"), http.StatusBadGateway},
		{"not found", NotFoundError("x"), http.StatusNotFound},
		{"method", MethodNotAllowedError("GET"), http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.resp.Write(w)
			if w.Code != tt.code {
				t.Errorf("Status code = %d, want %d", w.Code, tt.code)
			}
			var body errorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Errorf("body = %q, err = %v", w.Body.String(), err)
			}
		})
	}
}

func TestFetchErrorResponse(t *testing.T) {
	for _, err := range []error{
		fmt.Errorf("fetch cases: %w", context.DeadlineExceeded),
		fmt.Errorf("fetch people: %w", fmt.Errorf("boom")),
	} {
		w := httptest.NewRecorder()
		fetchErrorResponse(err).Write(w)
		if w.Code != http.StatusBadGateway {
			t.Errorf("%v: status = %d, want 502", err, w.Code)
		}
	}
}
