package http

import (
	"net/http"

	"subtrack/internal/log"
	"subtrack/internal/services"
)

// Every summary endpoint recomputes from a fresh snapshot at the server
// clock's current instant.

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	subs, settings, err := s.svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	totals := services.ComputeTotals(subs, s.now())
	writeJSON(w, http.StatusOK, toTotalsDTO(totals, services.CategoryBreakdown(totals), settings))
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	subs, settings, err := s.svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	totals := services.ComputeTotals(subs, s.now())
	writeJSON(w, http.StatusOK, toBudgetDTO(services.Budget(totals, settings)))
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	limit, err := ParseLimit(r.URL.Query(), s.upcomingLimit)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	subs, err := s.svc.List(r.Context())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	now := s.now()
	writeJSON(w, http.StatusOK, toUpcomingDTOs(services.Upcoming(subs, now, limit), now))
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	params, err := ParseMonthParams(r.URL.Query(), now)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	cal, err := s.svc.Calendar(r.Context(), params.Year, params.Month, now)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toCalendarDTO(cal))
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	limit, err := ParseLimit(r.URL.Query(), s.upcomingLimit)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	ov, err := s.svc.Dashboard(r.Context(), s.now(), limit)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toOverviewDTO(ov))
}
