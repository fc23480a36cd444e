package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// handleInsight runs one analytics computation with a per-user cache in
// front. compute returns the result to marshal; the cached body is
// served as-is on a hit.
func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request, kind string, compute func() (any, error)) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	year, month := parseYearMonth(r)
	if month < 1 || month > 12 {
		respondError(w, http.StatusUnprocessableEntity, "invalid month")
		return
	}

	key := fmt.Sprintf("user:%d:%s:%04d-%02d", userIDFrom(r), kind, year, month)
	if body, ok := s.insightsCache.Get(key); ok {
		respondRawJSON(w, http.StatusOK, body)
		return
	}

	result, err := compute()
	if err != nil {
		slog.ErrorContext(r.Context(), "Insight computation failed",
			"kind", kind, "error", err, "user_id", userIDFrom(r))
		respondError(w, http.StatusInternalServerError, "failed to compute "+kind)
		return
	}

	body, err := json.Marshal(result)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to marshal insight", "kind", kind, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to compute "+kind)
		return
	}

	s.insightsCache.Set(key, body)
	respondRawJSON(w, http.StatusOK, body)
}

func (s *Server) handleReconciliation(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	s.handleInsight(w, r, "reconciliation", func() (any, error) {
		return s.analytics.Reconciliation(r.Context(), userIDFrom(r), month, year)
	})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	s.handleInsight(w, r, "forecast", func() (any, error) {
		return s.analytics.ForecastNextPeriod(r.Context(), userIDFrom(r))
	})
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	s.handleInsight(w, r, "anomalies", func() (any, error) {
		return s.analytics.DetectAnomalies(r.Context(), userIDFrom(r))
	})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	s.handleInsight(w, r, "recommendations", func() (any, error) {
		return s.analytics.RecommendSavings(r.Context(), userIDFrom(r), month, year)
	})
}
