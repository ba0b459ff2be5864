package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"dernek/internal/ics"
	dlog "dernek/internal/log"
	"dernek/internal/middleware/ratelimit"
	"dernek/internal/middleware/security"
	"dernek/internal/middleware/trace"
	"dernek/internal/services"
)

// Options configures the optional parts of a Server.
type Options struct {
	Logger *dlog.Logger
	// Ready is checked by /readyz. Nil means always ready.
	Ready func(ctx context.Context) error
	// RefreshPerMinute limits forced refetches per client.
	RefreshPerMinute int
	// BaseURL makes calendar feed links absolute.
	BaseURL      string
	CalendarName string
}

type Server struct {
	http.Server
	agg      *services.Aggregator
	ready    func(ctx context.Context) error
	limiter  *ratelimit.Limiter
	resolver *security.Resolver
	tracer   *trace.Middleware
	logger   *dlog.Logger
	errors   *dlog.StructuredLogger
	icsOpts  ics.Options
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, agg *services.Aggregator, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = dlog.New(dlog.DefaultConfig())
	}
	if opts.CalendarName == "" {
		opts.CalendarName = "Dernek Takvimi"
	}
	logger := opts.Logger.WithComponent(dlog.ComponentHTTP)
	resolver := security.NewResolver()

	s := &Server{
		agg:      agg,
		ready:    opts.Ready,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RefreshPerMinute}),
		resolver: resolver,
		tracer:   trace.NewMiddleware(logger, resolver.ClientIP),
		logger:   logger,
		errors:   dlog.NewStructuredLogger(logger),
		icsOpts:  ics.Options{Name: opts.CalendarName, BaseURL: opts.BaseURL},
		started:  time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/api/calendar", s.handleCalendar)
	mux.HandleFunc("/calendar.ics", s.handleCalendarICS)
	mux.HandleFunc("/api/ledger", s.handleLedger)
	mux.HandleFunc("/api/reports", s.handleReports)
	mux.HandleFunc("/api/map", s.handleMap)
	mux.HandleFunc("/", s.handleNotFound)

	var handler http.Handler = mux
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = dlog.RequestIDMiddleware(trace.GetRequestIDFromRequest)(handler)
	handler = dlog.Middleware(logger)(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Metrics returns the request counters of the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

// refresh reports whether this request may bypass the snapshot cache.
// Clients over the limit are served the cached snapshot.
func (s *Server) refresh(r *http.Request) bool {
	if !RefreshRequested(r) {
		return false
	}
	clientIP := s.resolver.ClientIP(r)
	if s.limiter.Allow(clientIP) {
		return true
	}
	dlog.FromContext(r.Context()).WarnContext(r.Context(), "Refresh limit exceeded, serving cached snapshot",
		dlog.FieldClientIP, clientIP,
		dlog.FieldPath, r.URL.Path,
	)
	return false
}
