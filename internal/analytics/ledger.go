package analytics

import (
	"context"
	"time"

	"budget/internal/core"
)

// Ledger is the read-only view of the record store the analytics
// pipeline consumes. The pipeline never writes through it.
type Ledger interface {
	// ListExpenses returns a user's expenses ordered by date. Zero from/to
	// mean an unbounded range on that side.
	ListExpenses(ctx context.Context, userID int64, from, to time.Time) ([]core.Expense, error)

	// ListBudgetPlans returns the user's plan entries for one month.
	ListBudgetPlans(ctx context.Context, userID int64, month, year int) ([]core.BudgetPlan, error)

	// MonthlyBalance returns the income/expense position for one month.
	MonthlyBalance(ctx context.Context, userID int64, month, year int) (core.MonthlyBalance, error)
}
