package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"dernek/internal/calendar"
	"dernek/internal/core"
	"dernek/internal/ics"
	dlog "dernek/internal/log"
	"dernek/internal/middleware/trace"
	"dernek/internal/services"
)

type monthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func refOf(m calendar.Month) monthRef {
	return monthRef{Year: m.Year, Month: int(m.Month)}
}

type calendarResponse struct {
	Month string        `json:"month"`
	Prev  monthRef      `json:"prev"`
	Next  monthRef      `json:"next"`
	Grid  calendar.Grid `json:"grid"`
}

type mapResponse struct {
	Count  int             `json:"count"`
	Points []core.MapPoint `json:"points"`
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks the backing store
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"store": "ok"}
	status, code := "ready", http.StatusOK

	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			checks["store"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		}
	}

	NewJSONResponse().Status(code).Body(map[string]any{
		"status": status,
		"checks": checks,
	}).Write(w)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	month, err := ParseMonthParams(r.URL.Query(), s.agg.Today())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	grid, err := s.agg.Calendar(r.Context(), month, s.refresh(r))
	if err != nil {
		s.fetchFailed(w, r, services.ScreenCalendar, err)
		return
	}

	NewJSONResponse().Body(calendarResponse{
		Month: month.String(),
		Prev:  refOf(month.Prev()),
		Next:  refOf(month.Next()),
		Grid:  grid,
	}).Write(w)
}

func (s *Server) handleCalendarICS(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	month, err := ParseMonthParams(r.URL.Query(), s.agg.Today())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	events, err := s.agg.MonthEvents(r.Context(), month, s.refresh(r))
	if err != nil {
		s.fetchFailed(w, r, services.ScreenCalendar, err)
		return
	}

	opts := s.icsOpts
	opts.Stamp = s.agg.Today()
	body := ics.Render(events, opts)

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="dernek-%s.ics"`, month))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	f, err := ParseLedgerFilter(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	view, err := s.agg.Ledger(r.Context(), f, s.refresh(r))
	if err != nil {
		s.fetchFailed(w, r, services.ScreenLedger, err)
		return
	}
	NewJSONResponse().Body(view).Write(w)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	report, err := s.agg.Report(r.Context(), s.refresh(r))
	if err != nil {
		s.fetchFailed(w, r, services.ScreenReport, err)
		return
	}
	NewJSONResponse().Body(report).Write(w)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	points, err := s.agg.Map(r.Context(), s.refresh(r))
	if err != nil {
		s.fetchFailed(w, r, services.ScreenMap, err)
		return
	}
	NewJSONResponse().Body(mapResponse{Count: len(points), Points: points}).Write(w)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	NotFoundError("bulunamadı").Write(w)
}

// fetchFailed logs once and writes the single error response of a request.
func (s *Server) fetchFailed(w http.ResponseWriter, r *http.Request, screen string, err error) {
	s.errors.LogError(r.Context(), "View fetch failed", err, dlog.OpFetch,
		dlog.NewFields().
			WithRequestID(trace.GetRequestID(r.Context())).
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "").
			WithScreen(screen),
	)
	fetchErrorResponse(err).Write(w)
}
