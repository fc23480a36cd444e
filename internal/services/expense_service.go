package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budget/internal/core"
	"budget/internal/storage"
)

// MirrorPublisher publishes mirror requests for newly recorded
// expenses. The AMQP client satisfies it.
type MirrorPublisher interface {
	PublishMirrorSync(ctx context.Context, expenseID, attempt int64) error
}

// ExpenseStore is the slice of the repository the service writes through.
type ExpenseStore interface {
	AddExpense(ctx context.Context, userID int64, e core.Expense) (int64, error)
	DeleteExpense(ctx context.Context, userID, id int64) error
	ListExpenses(ctx context.Context, userID int64, from, to time.Time) ([]core.Expense, error)
	ListExpensesForMonth(ctx context.Context, userID int64, month, year int) ([]core.Expense, error)
}

// ExpenseService orchestrates expense writes across SQLite and AMQP.
// The database write is the source of truth; the mirror message is
// best effort and never fails the request.
type ExpenseService struct {
	store     ExpenseStore
	publisher MirrorPublisher
}

func NewExpenseService(store ExpenseStore, publisher MirrorPublisher) *ExpenseService {
	return &ExpenseService{
		store:     store,
		publisher: publisher,
	}
}

// RecordExpense saves an expense locally and publishes a mirror message.
func (s *ExpenseService) RecordExpense(ctx context.Context, userID int64, e core.Expense) (int64, error) {
	id, err := s.store.AddExpense(ctx, userID, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}

	if err := s.publishMirrorMessage(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish mirror message",
			"expense_id", id, "error", err)
		// The expense is saved locally; the worker's pending-queue scan
		// will pick it up later.
	}

	return id, nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense deleted", "expense_id", id, "user_id", userID)
	return nil
}

func (s *ExpenseService) ListExpenses(ctx context.Context, userID int64, from, to time.Time) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, userID, from, to)
}

func (s *ExpenseService) ListExpensesForMonth(ctx context.Context, userID int64, month, year int) ([]core.Expense, error) {
	return s.store.ListExpensesForMonth(ctx, userID, month, year)
}

func (s *ExpenseService) publishMirrorMessage(ctx context.Context, id int64) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping mirror message")
		return nil
	}
	return s.publisher.PublishMirrorSync(ctx, id, 0)
}

var _ ExpenseStore = (*storage.SQLiteRepository)(nil)
