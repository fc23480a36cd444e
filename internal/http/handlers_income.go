package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"budget/internal/core"
	"budget/internal/storage"
)

type incomeRequest struct {
	Date        string `json:"date"`
	Source      string `json:"source"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

func (s *Server) handleIncome(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateIncome(w, r)
	case http.MethodGet:
		s.handleListIncome(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	income := core.Income{
		Date:        date,
		Source:      sanitizeInput(req.Source),
		Amount:      core.Money{Cents: cents},
		Description: sanitizeInput(req.Description),
	}
	if err := income.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	userID := userIDFrom(r)
	id, err := s.store.AddIncome(r.Context(), userID, income)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to save income", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "failed to save income")
		return
	}
	income.ID = id

	s.invalidateInsights(userID)
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "income": income})
}

func (s *Server) handleListIncome(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	if month < 1 || month > 12 {
		respondError(w, http.StatusUnprocessableEntity, "invalid month")
		return
	}

	from, to := monthRange(month, year)
	income, err := s.store.ListIncome(r.Context(), userIDFrom(r), from, to)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list income", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list income")
		return
	}
	if income == nil {
		income = []core.Income{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"year":    year,
		"month":   month,
		"income":  income,
	})
}

func (s *Server) handleIncomeByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, err := pathID(r.URL.Path, "/api/income/")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid income id")
		return
	}

	userID := userIDFrom(r)
	if err := s.store.DeleteIncome(r.Context(), userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "income not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete income", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "failed to delete income")
		return
	}

	s.invalidateInsights(userID)
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
