package http

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"subtrack/internal/metrics"
)

// handleHealth is the liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks the storage backend when it can be pinged.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{}

	if s.pinger != nil {
		if err := s.pinger.Ping(ctx); err != nil {
			checks["storage"] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["storage"] = "ok"
		}
	} else {
		checks["storage"] = "in-process"
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"hits":           s.securityDetector.RateLimitHits(),
	}
	checks["security"] = map[string]any{
		"suspicious_requests": s.securityDetector.SuspiciousRequests(),
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

func metricsHandler(g prometheus.Gatherer) http.Handler {
	return metrics.Handler(g)
}
