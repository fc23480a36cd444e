package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"budget/internal/core"
)

type budgetPlanRequest struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Planned     string `json:"planned_amount"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
}

type budgetCopyRequest struct {
	FromMonth int `json:"from_month"`
	FromYear  int `json:"from_year"`
	ToMonth   int `json:"to_month"`
	ToYear    int `json:"to_year"`
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		s.handleUpsertBudget(w, r)
	case http.MethodGet:
		s.handleListBudget(w, r)
	default:
		w.Header().Set("Allow", "GET, PUT")
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// A zero planned amount is allowed: it records a "no spend" intent.
	var cents int64
	if req.Planned != "" && req.Planned != "0" && req.Planned != "0.00" {
		parsed, err := core.ParseDecimalToCents(req.Planned)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid planned amount")
			return
		}
		cents = parsed
	}

	plan := core.BudgetPlan{
		Category:    sanitizeInput(req.Category),
		Subcategory: sanitizeInput(req.Subcategory),
		Planned:     core.Money{Cents: cents},
		Month:       req.Month,
		Year:        req.Year,
	}
	if err := plan.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	userID := userIDFrom(r)
	if err := s.store.UpsertBudgetPlan(r.Context(), userID, plan); err != nil {
		slog.ErrorContext(r.Context(), "Failed to upsert budget plan", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "failed to save budget plan")
		return
	}

	s.invalidateInsights(userID)
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "plan": plan})
}

func (s *Server) handleListBudget(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	if month < 1 || month > 12 {
		respondError(w, http.StatusUnprocessableEntity, "invalid month")
		return
	}

	plans, err := s.store.ListBudgetPlans(r.Context(), userIDFrom(r), month, year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list budget plans", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list budget plans")
		return
	}
	if plans == nil {
		plans = []core.BudgetPlan{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"year":    year,
		"month":   month,
		"plans":   plans,
	})
}

func (s *Server) handleBudgetCopy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req budgetCopyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FromMonth < 1 || req.FromMonth > 12 || req.ToMonth < 1 || req.ToMonth > 12 {
		respondError(w, http.StatusUnprocessableEntity, "invalid month")
		return
	}

	userID := userIDFrom(r)
	copied, err := s.store.CopyBudgetPlans(r.Context(), userID, req.FromMonth, req.FromYear, req.ToMonth, req.ToYear)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to copy budget plans", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "failed to copy budget plans")
		return
	}

	s.invalidateInsights(userID)
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "copied": copied})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
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

	balance, err := s.store.MonthlyBalance(r.Context(), userIDFrom(r), month, year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute balance", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to compute balance")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"year":    year,
		"month":   month,
		"balance": balance,
	})
}
