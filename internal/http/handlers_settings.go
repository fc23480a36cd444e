package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"budget/internal/storage"
)

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetSettings(w, r)
	case http.MethodPut:
		s.handleUpdateSettings(w, r)
	default:
		w.Header().Set("Allow", "GET, PUT")
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	username, err := s.store.GetUsername(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to resolve user for settings", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	prefs, err := s.store.GetPreferences(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load preferences", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"username":    username,
		"preferences": prefs,
	})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var prefs storage.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prefs.Currency = sanitizeInput(prefs.Currency)
	prefs.Theme = sanitizeInput(prefs.Theme)
	if len(prefs.Currency) != 3 {
		respondError(w, http.StatusUnprocessableEntity, "currency must be a 3-letter code")
		return
	}
	if prefs.Theme != "light" && prefs.Theme != "dark" {
		respondError(w, http.StatusUnprocessableEntity, "theme must be light or dark")
		return
	}

	userID := userIDFrom(r)
	if err := s.store.SavePreferences(r.Context(), userID, prefs); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save preferences", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"preferences": prefs,
	})
}
