package worker

import (
	"context"
	"errors"
	"testing"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/storage"
)

type fakeStore struct {
	expenses map[int64]core.Expense
	owners   map[int64]int64
	pending  []storage.PendingSyncExpense
	synced   []int64
	errored  []int64
}

func (f *fakeStore) GetExpenseByID(_ context.Context, id int64) (core.Expense, int64, error) {
	e, ok := f.expenses[id]
	if !ok {
		return core.Expense{}, 0, storage.ErrNotFound
	}
	return e, f.owners[id], nil
}

func (f *fakeStore) GetUsername(_ context.Context, userID int64) (string, error) {
	if userID == 0 {
		return "", storage.ErrNotFound
	}
	return "alice", nil
}

func (f *fakeStore) GetPendingSyncExpenses(_ context.Context, limit int) ([]storage.PendingSyncExpense, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeStore) MarkSynced(_ context.Context, id int64) error {
	f.synced = append(f.synced, id)
	return nil
}

func (f *fakeStore) MarkSyncError(_ context.Context, id int64) error {
	f.errored = append(f.errored, id)
	return nil
}

type fakeMirror struct {
	appended []core.Expense
	fail     bool
}

func (f *fakeMirror) Append(_ context.Context, _ string, e core.Expense) (string, error) {
	if f.fail {
		return "", errors.New("sheets unavailable")
	}
	f.appended = append(f.appended, e)
	return "2025 Expenses!A2:G2", nil
}

func sampleExpense(id int64) core.Expense {
	return core.Expense{
		ID:          id,
		Date:        core.NewDate(2025, 2, 14),
		Description: "groceries",
		Amount:      core.Money{Cents: 12345},
		Category:    "Food",
		Subcategory: "Groceries",
	}
}

func TestHandleSyncMessage(t *testing.T) {
	store := &fakeStore{
		expenses: map[int64]core.Expense{7: sampleExpense(7)},
		owners:   map[int64]int64{7: 1},
	}
	mirror := &fakeMirror{}
	w := NewMirrorWorker(store, mirror, 10)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewMirrorSyncMessage(7, 0)); err != nil {
		t.Fatal(err)
	}
	if len(mirror.appended) != 1 || mirror.appended[0].ID != 7 {
		t.Fatalf("expected expense 7 mirrored, got %+v", mirror.appended)
	}
	if len(store.synced) != 1 || store.synced[0] != 7 {
		t.Fatalf("expected expense 7 marked synced, got %v", store.synced)
	}
}

func TestHandleSyncMessageMissingExpense(t *testing.T) {
	store := &fakeStore{expenses: map[int64]core.Expense{}, owners: map[int64]int64{}}
	w := NewMirrorWorker(store, &fakeMirror{}, 10)

	err := w.HandleSyncMessage(context.Background(), amqp.NewMirrorSyncMessage(99, 0))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHandleSyncMessageMirrorFailure(t *testing.T) {
	store := &fakeStore{
		expenses: map[int64]core.Expense{7: sampleExpense(7)},
		owners:   map[int64]int64{7: 1},
	}
	w := NewMirrorWorker(store, &fakeMirror{fail: true}, 10)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewMirrorSyncMessage(7, 0)); err == nil {
		t.Fatal("expected an error so the message gets requeued")
	}
	if len(store.errored) != 1 || store.errored[0] != 7 {
		t.Fatalf("expected a sync error recorded, got %v", store.errored)
	}
	if len(store.synced) != 0 {
		t.Fatalf("failed mirror must not be marked synced: %v", store.synced)
	}
}

func TestProcessPendingExpensesContinuesOnFailure(t *testing.T) {
	store := &fakeStore{
		expenses: map[int64]core.Expense{
			1: sampleExpense(1),
			3: sampleExpense(3),
		},
		owners: map[int64]int64{1: 1, 3: 1},
		pending: []storage.PendingSyncExpense{
			{ExpenseID: 1},
			{ExpenseID: 2}, // missing row
			{ExpenseID: 3},
		},
	}
	mirror := &fakeMirror{}
	w := NewMirrorWorker(store, mirror, 10)

	if err := w.ProcessPendingExpenses(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(mirror.appended) != 2 {
		t.Fatalf("expected 2 mirrored despite the bad row, got %d", len(mirror.appended))
	}
	if len(store.errored) != 1 || store.errored[0] != 2 {
		t.Fatalf("expected the missing row marked errored, got %v", store.errored)
	}
}

func TestStartupSyncCheckEmptyQueue(t *testing.T) {
	w := NewMirrorWorker(&fakeStore{}, &fakeMirror{}, 10)
	if err := w.StartupSyncCheck(context.Background()); err != nil {
		t.Fatal(err)
	}
}
