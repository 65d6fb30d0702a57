package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"subtrack/internal/log"
)

const headerRequestID = "X-Request-ID"

// chain wraps the mux with request logging and security. The outermost
// handler runs first.
func (s *Server) chain(next http.Handler) http.Handler {
	h := log.ComponentMiddleware(log.ComponentHTTP)(next)
	h = log.RequestIDMiddleware(func(r *http.Request) string { return r.Header.Get(headerRequestID) })(h)
	h = log.Middleware(s.logger)(h)
	return s.withSecurityHeaders(h)
}

// withSecurityHeaders assigns a request ID, applies rate limiting to
// mutating requests, sets security headers and logs each request.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := strings.TrimSpace(r.Header.Get(headerRequestID))
		if requestID == "" || len(requestID) > 64 {
			requestID = generateRequestID()
			r.Header.Set(headerRequestID, requestID)
		}
		w.Header().Set(headerRequestID, requestID)

		ctx := r.Context()
		s.structured.LogHTTPStart(ctx, r, clientIP)

		if detectSuspiciousRequest(r, s.securityDetector) {
			fields := log.NewFields().
				WithRequestID(requestID).
				WithClientIP(clientIP).
				WithHTTPRequest(r)
			s.logger.WithComponent(log.ComponentSecurity).WarnContext(ctx, "Suspicious request", fields.Args()...)
		}

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP, s.securityDetector) {
			s.logger.WithComponent(log.ComponentRateLimit).WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded, try again later"})
			s.structured.LogHTTPEnd(ctx, r, http.StatusTooManyRequests, time.Since(start), clientIP)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.structured.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start), clientIP)
	})
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter captures the status code for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func generateRequestID() string {
	return "req_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
