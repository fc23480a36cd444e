package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"budget/internal/core"
	"budget/internal/export"
)

func (s *Server) handleTaxonomy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	categories := make([]map[string]any, 0)
	for _, cat := range core.Categories() {
		categories = append(categories, map[string]any{
			"name":          cat,
			"color":         core.CategoryColor(cat),
			"icon":          core.CategoryIcon(cat),
			"subcategories": core.Subcategories(cat),
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"categories":     categories,
		"income_sources": core.IncomeSources(),
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	year, month := parseYearMonth(r)
	expenses, err := s.expenses.ListExpensesForMonth(r.Context(), userIDFrom(r), month, year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to export expenses", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to export expenses")
		return
	}

	body, err := export.ExpensesCSV(expenses)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to render CSV", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to render export")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="expenses-%04d-%02d.csv"`, year, month))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleExportWorkbook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	year, month := parseYearMonth(r)
	userID := userIDFrom(r)

	expenses, err := s.expenses.ListExpensesForMonth(r.Context(), userID, month, year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load expenses for workbook", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to export workbook")
		return
	}
	from, to := monthRange(month, year)
	income, err := s.store.ListIncome(r.Context(), userID, from, to)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load income for workbook", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to export workbook")
		return
	}

	title := fmt.Sprintf("%s %d", time.Month(month), year)
	body, err := export.Workbook(expenses, income, title)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to render workbook", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to render export")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="budget-%04d-%02d.xlsx"`, year, month))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := userIDFrom(r)
	username, err := s.store.GetUsername(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to resolve user for backup", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to export backup")
		return
	}

	expenses, err := s.expenses.ListExpenses(r.Context(), userID, time.Time{}, time.Time{})
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load expenses for backup", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to export backup")
		return
	}
	income, err := s.store.ListIncome(r.Context(), userID, time.Time{}, time.Time{})
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load income for backup", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to export backup")
		return
	}

	plans, err := s.store.ListAllBudgetPlans(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load plans for backup", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to export backup")
		return
	}

	body, err := export.BackupJSON(username, expenses, income, plans, time.Now())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to render backup", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to render export")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="budget-backup.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
