package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"subtrack/internal/core"
	"subtrack/internal/log"
)

// SubscriptionService is the application API the handlers drive.
type SubscriptionService interface {
	List(ctx context.Context) ([]core.Subscription, error)
	Get(ctx context.Context, id string) (core.Subscription, error)
	Create(ctx context.Context, sub core.Subscription) (core.Subscription, error)
	Update(ctx context.Context, sub core.Subscription) (core.Subscription, error)
	Delete(ctx context.Context, id string) error
	Pause(ctx context.Context, id string) (core.Subscription, error)
	Resume(ctx context.Context, id string) (core.Subscription, error)
	SchedulePause(ctx context.Context, id string, enabled bool) (core.Subscription, error)
	Settings(ctx context.Context) (core.Settings, error)
	SaveSettings(ctx context.Context, settings core.Settings) (core.Settings, error)
	Snapshot(ctx context.Context) ([]core.Subscription, core.Settings, error)
	Dashboard(ctx context.Context, now time.Time, upcomingLimit int) (core.Overview, error)
	Calendar(ctx context.Context, year int, month time.Month, now time.Time) (core.MonthCalendar, error)
}

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	svc        SubscriptionService
	pinger     Pinger
	metrics    prometheus.Gatherer
	logger     *log.Logger
	structured *log.StructuredLogger

	now           func() time.Time
	upcomingLimit int
	started       time.Time

	rateLimiter      *rateLimiter
	securityDetector *securityMetrics

	shutdownOnce sync.Once
}

type Option func(*Server)

// WithClock sets the reference instant used by every computation.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithUpcomingLimit sets the default number of upcoming payments returned.
func WithUpcomingLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.upcomingLimit = n
		}
	}
}

// WithGatherer exposes the registry on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.metrics = g }
}

// WithPinger adds a backend check to /readyz.
func WithPinger(p Pinger) Option {
	return func(s *Server) { s.pinger = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc SubscriptionService, opts ...Option) *Server {
	s := &Server{
		svc:              svc,
		now:              time.Now,
		upcomingLimit:    5,
		started:          time.Now(),
		logger:           log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP),
		securityDetector: &securityMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.structured = log.NewStructuredLogger(s.logger)
	s.rateLimiter = newRateLimiter(s.now)

	mux := http.NewServeMux()
	s.routes(mux)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.chain(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	if s.metrics != nil {
		mux.Handle("GET /metrics", metricsHandler(s.metrics))
	}

	mux.HandleFunc("GET /api/subscriptions", s.handleListSubscriptions)
	mux.HandleFunc("POST /api/subscriptions", s.handleCreateSubscription)
	mux.HandleFunc("GET /api/subscriptions/{id}", s.handleGetSubscription)
	mux.HandleFunc("PUT /api/subscriptions/{id}", s.handleUpdateSubscription)
	mux.HandleFunc("DELETE /api/subscriptions/{id}", s.handleDeleteSubscription)
	mux.HandleFunc("POST /api/subscriptions/{id}/pause", s.handlePause)
	mux.HandleFunc("POST /api/subscriptions/{id}/resume", s.handleResume)
	mux.HandleFunc("POST /api/subscriptions/{id}/schedule-pause", s.handleSchedulePause)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("POST /api/settings", s.handleSaveSettings)

	mux.HandleFunc("GET /api/totals", s.handleTotals)
	mux.HandleFunc("GET /api/budget", s.handleBudget)
	mux.HandleFunc("GET /api/upcoming", s.handleUpcoming)
	mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	mux.HandleFunc("GET /api/overview", s.handleOverview)

	mux.HandleFunc("GET /api/export.csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/export.xlsx", s.handleExportXLSX)
}

// Shutdown stops the rate limiter cleanup and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
