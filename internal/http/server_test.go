package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dernek/internal/core"
	dlog "dernek/internal/log"
	"dernek/internal/services"
	"dernek/internal/source"
	"dernek/internal/source/memory"
)

type failingPeople struct {
	*memory.Store
}

func (failingPeople) FetchPeople(ctx context.Context) ([]core.Person, error) {
	return nil, errors.New("connection refused")
}

func testStore() *memory.Store {
	lat, lng := 39.92, 32.85
	return memory.NewFromDataset(source.Dataset{
		Events: []core.Event{{ID: "e1", Title: "Genel Kurul", Date: "2024-05-25", Time: "14:00"}},
		Cases: []core.Case{{ID: "c1", Title: "Kira Davası", Status: "open", Hearings: []core.Hearing{
			{ID: "h1", Date: "2024-05-26"},
		}}},
		Payments: []core.CashPayment{
			{ID: "p1", PersonName: "Ayşe Yılmaz", Purpose: core.PurposeAid, Amount: decimal.RequireFromString("750.50"), Currency: "TRY", Date: "2024-05-02"},
		},
		InKind: []core.InKindTransaction{
			{ID: "k1", PersonID: "u1", ProductID: "pr1", Quantity: decimal.NewFromInt(5), Unit: "kg", Date: "2024-05-03"},
		},
		People:   []core.Person{{ID: "u1", Name: "Mehmet Kaya", Nationality: "TR", Latitude: &lat, Longitude: &lng}},
		Products: []core.Product{{ID: "pr1", Name: "Pirinç", Unit: "kg"}},
	})
}

func newTestServer(store source.Store, ready func(context.Context) error) *Server {
	logger := dlog.New(dlog.Config{Output: &bytes.Buffer{}})
	agg := services.NewAggregator(store, services.Options{
		Logger: logger,
		Now:    func() time.Time { return time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC) },
	})
	return NewServer(":0", agg, Options{Logger: logger, Ready: ready, RefreshPerMinute: 1})
}

func serve(srv *Server, method, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(testStore(), nil)
	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := serve(srv, http.MethodGet, path); rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	srv = newTestServer(testStore(), func(context.Context) error { return errors.New("db closed") })
	rr := serve(srv, http.MethodGet, "/readyz")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d, want 503", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "db closed") {
		t.Errorf("readyz body = %s", rr.Body.String())
	}
}

func TestCalendarEndpoint(t *testing.T) {
	srv := newTestServer(testStore(), nil)

	rr := serve(srv, http.MethodGet, "/api/calendar?year=2024&month=5")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	var resp calendarResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Month != "2024-05" || resp.Prev != (monthRef{2024, 4}) || resp.Next != (monthRef{2024, 6}) {
		t.Errorf("navigation = %+v", resp)
	}
	if resp.Grid.LeadingBlanks != 2 || resp.Grid.DaysInMonth != 31 {
		t.Errorf("grid shape = %d blanks, %d days", resp.Grid.LeadingBlanks, resp.Grid.DaysInMonth)
	}
	if got := len(resp.Grid.Cells[resp.Grid.LeadingBlanks+24].Events); got != 1 {
		t.Errorf("day 25 has %d events, want 1", got)
	}
	if !resp.Grid.Cells[resp.Grid.LeadingBlanks+13].IsToday {
		t.Error("day 14 must be today")
	}
}

func TestCalendarRejectsInvalidMonth(t *testing.T) {
	srv := newTestServer(testStore(), nil)
	for _, target := range []string{"/api/calendar?month=13", "/api/calendar?year=abc", "/calendar.ics?month=0"} {
		if rr := serve(srv, http.MethodGet, target); rr.Code != http.StatusBadRequest {
			t.Errorf("%s status=%d, want 400", target, rr.Code)
		}
	}
}

func TestCalendarICS(t *testing.T) {
	srv := newTestServer(testStore(), nil)
	rr := serve(srv, http.MethodGet, "/calendar.ics?year=2024&month=5")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rr.Body.String()
	if n := strings.Count(body, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("got %d VEVENTs, want 2", n)
	}
	if !strings.Contains(body, "20240526") {
		t.Error("hearing date missing from feed")
	}
}

func TestLedgerEndpoint(t *testing.T) {
	srv := newTestServer(testStore(), nil)

	rr := serve(srv, http.MethodGet, "/api/ledger?kind=cash&q=AYŞE")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var view services.LedgerView
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Entries) != 1 || view.Entries[0].PersonName != "Ayşe Yılmaz" {
		t.Fatalf("entries = %+v", view.Entries)
	}
	if view.Total != 2 {
		t.Errorf("total = %d, want 2", view.Total)
	}

	if rr := serve(srv, http.MethodGet, "/api/ledger?kind=bogus"); rr.Code != http.StatusBadRequest {
		t.Errorf("invalid kind status=%d", rr.Code)
	}
}

func TestReportsAndMap(t *testing.T) {
	srv := newTestServer(testStore(), nil)

	if rr := serve(srv, http.MethodGet, "/api/reports"); rr.Code != http.StatusOK {
		t.Fatalf("reports status=%d", rr.Code)
	}

	rr := serve(srv, http.MethodGet, "/api/map")
	if rr.Code != http.StatusOK {
		t.Fatalf("map status=%d", rr.Code)
	}
	var resp mapResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Points[0].Name != "Mehmet Kaya" {
		t.Errorf("map = %+v", resp)
	}
}

func TestFetchFailureIsSingleBadGateway(t *testing.T) {
	srv := newTestServer(failingPeople{testStore()}, nil)

	for _, path := range []string{"/api/ledger", "/api/reports", "/api/map"} {
		rr := serve(srv, http.MethodGet, path)
		if rr.Code != http.StatusBadGateway {
			t.Errorf("%s status=%d, want 502", path, rr.Code)
			continue
		}
		var body map[string]string
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
		if len(body) != 1 || !strings.Contains(body["error"], "fetch people") {
			t.Errorf("%s body = %v", path, body)
		}
	}

	// Calendar does not read people.
	if rr := serve(srv, http.MethodGet, "/api/calendar"); rr.Code != http.StatusOK {
		t.Errorf("calendar status=%d", rr.Code)
	}
}

func TestRefreshBypassesCache(t *testing.T) {
	store := testStore()
	srv := newTestServer(store, nil)

	serve(srv, http.MethodGet, "/api/map")
	lat, lng := 41.0, 29.0
	if err := store.SavePeople(context.Background(), []core.Person{{ID: "u2", Name: "Zeynep", Latitude: &lat, Longitude: &lng}}); err != nil {
		t.Fatal(err)
	}

	decode := func(rr *httptest.ResponseRecorder) int {
		var resp mapResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return resp.Count
	}

	if got := decode(serve(srv, http.MethodGet, "/api/map")); got != 1 {
		t.Errorf("cached count = %d, want 1", got)
	}
	if got := decode(serve(srv, http.MethodGet, "/api/map?refresh=1")); got != 2 {
		t.Errorf("refreshed count = %d, want 2", got)
	}
}

func TestRefreshOverLimitServesCache(t *testing.T) {
	store := testStore()
	srv := newTestServer(store, nil)

	serve(srv, http.MethodGet, "/api/map?refresh=1")
	lat, lng := 41.0, 29.0
	if err := store.SavePeople(context.Background(), []core.Person{{ID: "u2", Name: "Zeynep", Latitude: &lat, Longitude: &lng}}); err != nil {
		t.Fatal(err)
	}

	rr := serve(srv, http.MethodGet, "/api/map?refresh=1")
	var resp mapResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("count = %d, want cached 1 once the refresh limit is reached", resp.Count)
	}
}

func TestMethodAndNotFound(t *testing.T) {
	srv := newTestServer(testStore(), nil)

	rr := serve(srv, http.MethodPost, "/api/ledger")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d, want 405", rr.Code)
	}
	if allow := rr.Header().Get("Allow"); !strings.Contains(allow, "GET") {
		t.Errorf("Allow = %q", allow)
	}

	if rr := serve(srv, http.MethodGet, "/nope"); rr.Code != http.StatusNotFound {
		t.Errorf("status=%d, want 404", rr.Code)
	}

	if got := srv.Metrics().TotalRequests; got != 2 {
		t.Errorf("TotalRequests = %d, want 2", got)
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	srv := newTestServer(testStore(), nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
}
