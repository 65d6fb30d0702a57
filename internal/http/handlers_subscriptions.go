package http

import (
	"errors"
	"fmt"
	"net/http"

	"subtrack/internal/log"
	"subtrack/internal/services"
)

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.svc.List(r.Context())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriptionDTOs(subs))
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriptionDTO(sub))
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var in subscriptionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	sub, err := in.toCore()
	if err != nil {
		writeError(w, r, log.OpValidate, fmt.Errorf("%w: %w", services.ErrInvalidInput, err))
		return
	}

	created, err := s.svc.Create(r.Context(), sub)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	s.structured.LogSubscriptionChanged(r.Context(), log.OpCreate, created)
	writeJSON(w, http.StatusCreated, toSubscriptionDTO(created))
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var in subscriptionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	sub, err := in.toCore()
	if err != nil {
		writeError(w, r, log.OpValidate, fmt.Errorf("%w: %w", services.ErrInvalidInput, err))
		return
	}
	sub.ID = r.PathValue("id")

	updated, err := s.svc.Update(r.Context(), sub)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	s.structured.LogSubscriptionChanged(r.Context(), log.OpUpdate, updated)
	writeJSON(w, http.StatusOK, toSubscriptionDTO(updated))
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Subscription delete succeeded",
		log.FieldSubscriptionID, id,
		log.FieldOperation, log.OpDelete)
	writeJSON(w, http.StatusOK, messageBody{Message: "Subscription deleted successfully"})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	sub, err := s.svc.Pause(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, log.OpPause, err)
		return
	}
	s.structured.LogSubscriptionChanged(r.Context(), log.OpPause, sub)
	writeJSON(w, http.StatusOK, toSubscriptionDTO(sub))
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	sub, err := s.svc.Resume(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, log.OpResume, err)
		return
	}
	s.structured.LogSubscriptionChanged(r.Context(), log.OpResume, sub)
	writeJSON(w, http.StatusOK, toSubscriptionDTO(sub))
}

// handleSchedulePause raises the pause-at-renewal flag, or clears it with
// {"enabled": false}. An empty body raises it.
func (s *Server) handleSchedulePause(w http.ResponseWriter, r *http.Request) {
	body := struct {
		Enabled *bool `json:"enabled"`
	}{}
	if err := decodeJSON(w, r, &body); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, r, log.OpParse, err)
		return
	}
	enabled := body.Enabled == nil || *body.Enabled

	sub, err := s.svc.SchedulePause(r.Context(), r.PathValue("id"), enabled)
	if err != nil {
		writeError(w, r, log.OpSchedulePause, err)
		return
	}
	s.structured.LogSubscriptionChanged(r.Context(), log.OpSchedulePause, sub)
	writeJSON(w, http.StatusOK, toSubscriptionDTO(sub))
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.svc.Settings(r.Context())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(settings))
}

// handleSaveSettings merges the provided keys into the stored settings.
func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var in settingsInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}

	settings, err := s.svc.Settings(r.Context())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	if in.Budget != nil {
		settings.Budget = float64(*in.Budget)
	}
	if in.Currency != nil {
		settings.Currency = sanitizeInput(*in.Currency)
	}

	saved, err := s.svc.SaveSettings(r.Context(), settings)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(saved))
}
