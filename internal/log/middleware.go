package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"subtrack/internal/core"
)

type contextKey struct{}

// IntoContext returns a copy of ctx carrying logger.
func IntoContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored in ctx, or one over slog.Default
// tagged "unknown".
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	return wrap(slog.Default(), "unknown")
}

// enrich derives the request logger from the one already in the context.
func enrich(derive func(*http.Request, *Logger) *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := derive(r, FromContext(r.Context()))
			next.ServeHTTP(w, r.WithContext(IntoContext(r.Context(), logger)))
		})
	}
}

// Middleware puts logger into every request context.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return enrich(func(*http.Request, *Logger) *Logger { return logger })
}

// ComponentMiddleware retags the request logger with component.
func ComponentMiddleware(component string) func(http.Handler) http.Handler {
	return enrich(func(_ *http.Request, l *Logger) *Logger { return l.WithComponent(component) })
}

// RequestIDMiddleware adds the request ID returned by extract to the request logger.
func RequestIDMiddleware(extract func(*http.Request) string) func(http.Handler) http.Handler {
	return enrich(func(r *http.Request, l *Logger) *Logger { return l.With(FieldRequestID, extract(r)) })
}

// StructuredLogger writes the recurring log records of the HTTP server
// with a fixed set of attributes.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogHTTPStart is a debug record; LogHTTPEnd carries the outcome.
func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r).
		WithClientIP(clientIP)
	sl.logger.LogAttrs(ctx, slog.LevelDebug, "HTTP request started", fields...)
}

// LogHTTPEnd logs at warn for 4xx and error for 5xx.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, status int, elapsed time.Duration, clientIP string) {
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}

	fields := NewFields().
		With(FieldMethod, r.Method).
		With(FieldPath, r.URL.Path).
		WithHTTPResponse(status, elapsed).
		WithClientIP(clientIP)
	sl.logger.LogAttrs(ctx, level, "HTTP request completed", fields...)
}

func (sl *StructuredLogger) LogSubscriptionChanged(ctx context.Context, op string, s core.Subscription) {
	fields := NewFields().
		WithOperation(op).
		WithSubscription(s)
	sl.logger.WithComponent(ComponentSubscription).
		LogAttrs(ctx, slog.LevelInfo, "Subscription "+op+" succeeded", fields...)
}

// LogError logs err under component with any extra fields.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, op string, fields LogFields) {
	fields = fields.WithOperation(op).WithError(err)
	sl.logger.WithComponent(component).LogAttrs(ctx, slog.LevelError, msg, fields...)
}
