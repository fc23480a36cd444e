package worker

import (
	"context"
	"fmt"
	"log/slog"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/sheets"
	"budget/internal/storage"
)

// Store is the slice of the repository the mirror worker needs.
type Store interface {
	GetExpenseByID(ctx context.Context, id int64) (core.Expense, int64, error)
	GetUsername(ctx context.Context, userID int64) (string, error)
	GetPendingSyncExpenses(ctx context.Context, limit int) ([]storage.PendingSyncExpense, error)
	MarkSynced(ctx context.Context, expenseID int64) error
	MarkSyncError(ctx context.Context, expenseID int64) error
}

// MirrorWorker copies recorded expenses from SQLite to the off-site
// sheets mirror.
type MirrorWorker struct {
	store     Store
	mirror    sheets.MirrorWriter
	batchSize int
}

func NewMirrorWorker(store Store, mirror sheets.MirrorWriter, batchSize int) *MirrorWorker {
	return &MirrorWorker{
		store:     store,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single mirror request from AMQP.
func (w *MirrorWorker) HandleSyncMessage(ctx context.Context, msg *amqp.MirrorSyncMessage) error {
	slog.InfoContext(ctx, "Processing mirror message",
		"expense_id", msg.ExpenseID,
		"attempt", msg.Attempt)

	expense, userID, err := w.store.GetExpenseByID(ctx, msg.ExpenseID)
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	username, err := w.store.GetUsername(ctx, userID)
	if err != nil {
		return fmt.Errorf("get username: %w", err)
	}

	if err := w.mirrorExpense(ctx, username, expense); err != nil {
		return fmt.Errorf("mirror expense: %w", err)
	}
	return nil
}

// ProcessPendingExpenses mirrors any rows still waiting in the queue.
// This is a backup mechanism in case AMQP messages are lost.
func (w *MirrorWorker) ProcessPendingExpenses(ctx context.Context) error {
	pending, err := w.store.GetPendingSyncExpenses(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending expenses: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending expenses", "count", len(pending))

	for _, p := range pending {
		expense, userID, err := w.store.GetExpenseByID(ctx, p.ExpenseID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get expense", "expense_id", p.ExpenseID, "error", err)
			if err := w.store.MarkSyncError(ctx, p.ExpenseID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "expense_id", p.ExpenseID, "error", err)
			}
			continue
		}
		username, err := w.store.GetUsername(ctx, userID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get username", "expense_id", p.ExpenseID, "error", err)
			continue
		}
		if err := w.mirrorExpense(ctx, username, expense); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror expense", "expense_id", p.ExpenseID, "error", err)
			continue
		}
	}
	return nil
}

// StartupSyncCheck drains the pending queue at worker startup. Useful
// to recover from missed AMQP messages or worker downtime.
func (w *MirrorWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.store.GetPendingSyncExpenses(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending expenses for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending expenses found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending expenses on startup, processing...",
		"count", len(pending))

	synced := 0
	failed := 0
	for _, p := range pending {
		expense, userID, err := w.store.GetExpenseByID(ctx, p.ExpenseID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get expense for startup sync",
				"expense_id", p.ExpenseID, "error", err)
			if err := w.store.MarkSyncError(ctx, p.ExpenseID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "expense_id", p.ExpenseID, "error", err)
			}
			failed++
			continue
		}
		username, err := w.store.GetUsername(ctx, userID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get username for startup sync",
				"expense_id", p.ExpenseID, "error", err)
			failed++
			continue
		}
		if err := w.mirrorExpense(ctx, username, expense); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror expense during startup",
				"expense_id", p.ExpenseID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return nil
}

func (w *MirrorWorker) mirrorExpense(ctx context.Context, username string, expense core.Expense) error {
	ref, err := w.mirror.Append(ctx, username, expense)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, expense.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "expense_id", expense.ID, "error", markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	// The append already happened, a bookkeeping failure must not requeue it.
	if err := w.store.MarkSynced(ctx, expense.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "expense_id", expense.ID, "error", err)
	}

	slog.InfoContext(ctx, "Expense mirrored",
		"expense_id", expense.ID,
		"sheets_ref", ref,
		"amount_cents", expense.Amount.Cents)
	return nil
}
