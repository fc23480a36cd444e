package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"budget/internal/export"
)

// maxBackupBytes bounds the uploaded document size.
const maxBackupBytes = 16 << 20

// handleImportBackup restores a backup document. The restore is
// additive: records are appended to what the account already has, and
// plans upsert onto existing (category, subcategory, month, year) rows.
// Invalid records are skipped, not fatal.
func (s *Server) handleImportBackup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBackupBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	backup, err := export.ParseBackup(body)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid backup document")
		return
	}

	userID := userIDFrom(r)
	restored := map[string]int{"expenses": 0, "income": 0, "budget_plans": 0}
	skipped := 0

	for _, e := range backup.Expenses {
		e.ID = 0
		if err := e.Validate(); err != nil {
			slog.WarnContext(r.Context(), "Skipping invalid expense in backup",
				"error", err, "description", e.Description)
			skipped++
			continue
		}
		if _, err := s.expenses.RecordExpense(r.Context(), userID, e); err != nil {
			slog.ErrorContext(r.Context(), "Failed to restore expense", "error", err)
			skipped++
			continue
		}
		restored["expenses"]++
	}

	for _, in := range backup.Income {
		in.ID = 0
		if err := in.Validate(); err != nil {
			slog.WarnContext(r.Context(), "Skipping invalid income in backup",
				"error", err, "source", in.Source)
			skipped++
			continue
		}
		if _, err := s.store.AddIncome(r.Context(), userID, in); err != nil {
			slog.ErrorContext(r.Context(), "Failed to restore income", "error", err)
			skipped++
			continue
		}
		restored["income"]++
	}

	for _, p := range backup.BudgetPlans {
		if err := p.Validate(); err != nil {
			slog.WarnContext(r.Context(), "Skipping invalid budget plan in backup",
				"error", err, "category", p.Category, "subcategory", p.Subcategory)
			skipped++
			continue
		}
		if err := s.store.UpsertBudgetPlan(r.Context(), userID, p); err != nil {
			slog.ErrorContext(r.Context(), "Failed to restore budget plan", "error", err)
			skipped++
			continue
		}
		restored["budget_plans"]++
	}

	s.invalidateInsights(userID)
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Restored %d expenses, %d income entries, %d budget plans",
			restored["expenses"], restored["income"], restored["budget_plans"]),
		"details": restored,
		"skipped": skipped,
	})
}
