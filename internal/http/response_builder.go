package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"subtrack/internal/core"
	"subtrack/internal/log"
	"subtrack/internal/ports"
	"subtrack/internal/services"
)

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, core.ErrInvalidDateStr),
		errors.Is(err, core.ErrInvalidPrice):
		return http.StatusBadRequest
	case errors.Is(err, ports.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrAlreadyPaused),
		errors.Is(err, core.ErrNotPaused),
		errors.Is(err, core.ErrNotActive):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err to the client. Internal errors are logged and
// replaced by a generic message.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		fields := log.NewFields().
			With(log.FieldPath, r.URL.Path).
			With(log.FieldErrorType, log.ErrorTypeInternal)
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op, fields)
		writeJSON(w, status, errorBody{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}
