package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"budget/internal/core"
	"budget/internal/storage"
)

type expenseRequest struct {
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Amount      string   `json:"amount"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Tags        []string `json:"tags"`
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateExpense(w, r)
	case http.MethodGet:
		s.handleListExpenses(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
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

	expense := core.Expense{
		Date:        date,
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: cents},
		Category:    sanitizeInput(req.Category),
		Subcategory: sanitizeInput(req.Subcategory),
		Tags:        req.Tags,
	}
	if err := expense.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	userID := userIDFrom(r)
	id, err := s.expenses.RecordExpense(r.Context(), userID, expense)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to save expense",
			"error", err,
			"user_id", userID,
			"amount_cents", expense.Amount.Cents)
		respondError(w, http.StatusInternalServerError, "failed to save expense")
		return
	}
	expense.ID = id

	s.invalidateInsights(userID)
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "expense": expense})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	if month < 1 || month > 12 {
		respondError(w, http.StatusUnprocessableEntity, "invalid month")
		return
	}

	expenses, err := s.expenses.ListExpensesForMonth(r.Context(), userIDFrom(r), month, year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list expenses", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"year":     year,
		"month":    month,
		"expenses": expenses,
	})
}

func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, err := pathID(r.URL.Path, "/api/expenses/")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	userID := userIDFrom(r)
	if err := s.expenses.DeleteExpense(r.Context(), userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "expense not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete expense", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}

	s.invalidateInsights(userID)
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// invalidateInsights drops a user's cached analytics after any write
// that changes their ledger.
func (s *Server) invalidateInsights(userID int64) {
	s.insightsCache.DeletePrefix(fmt.Sprintf("user:%d:", userID))
}
