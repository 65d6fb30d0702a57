package log

import (
	"log/slog"
	"net/http"
	"time"

	"subtrack/internal/core"
)

// Attribute names.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldOperation  = "operation"

	FieldSubscriptionID   = "subscription_id"
	FieldSubscriptionName = "subscription_name"
	FieldPrice            = "price"
	FieldPeriod           = "period"
	FieldStatus           = "status"
	FieldCategory         = "category"
	FieldEventType        = "event_type"
	FieldCount            = "count"
)

const (
	ComponentApp          = "app"
	ComponentHTTP         = "http"
	ComponentSubscription = "subscription"
	ComponentWorker       = "pause_worker"
	ComponentSecurity     = "security"
	ComponentRateLimit    = "rate_limit"
	ComponentBackend      = "backend"
	ComponentCLI          = "cli"
)

const (
	OpCreate         = "create"
	OpRead           = "read"
	OpUpdate         = "update"
	OpDelete         = "delete"
	OpList           = "list"
	OpPause          = "pause"
	OpResume         = "resume"
	OpSchedulePause  = "schedule_pause"
	OpScheduledPause = "scheduled_pause"
	OpExport         = "export"
	OpValidate       = "validate"
	OpParse          = "parse"
)

const ErrorTypeInternal = "internal_error"

// LogFields accumulates attributes in the order they were added.
type LogFields []slog.Attr

func NewFields() LogFields {
	return make(LogFields, 0, 8)
}

func (f LogFields) With(key string, value any) LogFields {
	return append(f, slog.Any(key, value))
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	return append(f, slog.String(FieldRequestID, requestID))
}

func (f LogFields) WithClientIP(ip string) LogFields {
	return append(f, slog.String(FieldClientIP, ip))
}

// WithError is a no-op for a nil error.
func (f LogFields) WithError(err error) LogFields {
	if err == nil {
		return f
	}
	return append(f, slog.String(FieldError, err.Error()))
}

func (f LogFields) WithOperation(op string) LogFields {
	return append(f, slog.String(FieldOperation, op))
}

// WithSubscription adds the identifying fields of a subscription.
func (f LogFields) WithSubscription(s core.Subscription) LogFields {
	return append(f,
		slog.String(FieldSubscriptionID, s.ID),
		slog.String(FieldSubscriptionName, s.Name),
		slog.Float64(FieldPrice, s.Price),
		slog.String(FieldPeriod, string(s.Period.OrMonthly())),
		slog.String(FieldStatus, string(s.Status)),
		slog.String(FieldCategory, s.CategoryOrDefault()),
	)
}

// WithHTTPRequest adds the request line and user agent. The query is
// only added when present.
func (f LogFields) WithHTTPRequest(r *http.Request) LogFields {
	f = append(f,
		slog.String(FieldMethod, r.Method),
		slog.String(FieldPath, r.URL.Path),
	)
	if r.URL.RawQuery != "" {
		f = append(f, slog.String(FieldQuery, r.URL.RawQuery))
	}
	return append(f, slog.String(FieldUserAgent, r.UserAgent()))
}

func (f LogFields) WithHTTPResponse(status int, elapsed time.Duration) LogFields {
	return append(f,
		slog.Int(FieldStatusCode, status),
		slog.Int64(FieldDuration, elapsed.Milliseconds()),
	)
}

// Args converts the fields to alternating key/value arguments for the
// slog convenience methods.
func (f LogFields) Args() []any {
	args := make([]any, len(f))
	for i, a := range f {
		args[i] = a
	}
	return args
}
