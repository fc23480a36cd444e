package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"budget/internal/core"
)

type fakeExpenseStore struct {
	nextID   int64
	saved    []core.Expense
	deleted  []int64
	saveErr  error
	delErr   error
	expenses []core.Expense
}

func (f *fakeExpenseStore) AddExpense(_ context.Context, _ int64, e core.Expense) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	f.nextID++
	f.saved = append(f.saved, e)
	return f.nextID, nil
}

func (f *fakeExpenseStore) DeleteExpense(_ context.Context, _, id int64) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeExpenseStore) ListExpenses(_ context.Context, _ int64, _, _ time.Time) ([]core.Expense, error) {
	return f.expenses, nil
}

func (f *fakeExpenseStore) ListExpensesForMonth(_ context.Context, _ int64, _, _ int) ([]core.Expense, error) {
	return f.expenses, nil
}

type fakePublisher struct {
	published []int64
	err       error
}

func (f *fakePublisher) PublishMirrorSync(_ context.Context, expenseID, _ int64) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, expenseID)
	return nil
}

func validExpense() core.Expense {
	return core.Expense{
		Date:        core.NewDate(2025, 2, 14),
		Description: "groceries",
		Amount:      core.Money{Cents: 12345},
		Category:    "Food",
		Subcategory: "Groceries",
	}
}

func TestRecordExpensePublishesMirrorMessage(t *testing.T) {
	store := &fakeExpenseStore{}
	pub := &fakePublisher{}
	s := NewExpenseService(store, pub)

	id, err := s.RecordExpense(context.Background(), 1, validExpense())
	if err != nil {
		t.Fatal(err)
	}
	if id != 1 {
		t.Fatalf("expected id 1, got %d", id)
	}
	if len(pub.published) != 1 || pub.published[0] != id {
		t.Fatalf("expected mirror message for %d, got %v", id, pub.published)
	}
}

func TestRecordExpenseSurvivesPublishFailure(t *testing.T) {
	store := &fakeExpenseStore{}
	pub := &fakePublisher{err: errors.New("broker down")}
	s := NewExpenseService(store, pub)

	id, err := s.RecordExpense(context.Background(), 1, validExpense())
	if err != nil {
		t.Fatalf("a broker outage must not fail the write: %v", err)
	}
	if id == 0 || len(store.saved) != 1 {
		t.Fatalf("expense not saved: id=%d saved=%d", id, len(store.saved))
	}
}

func TestRecordExpenseWithoutPublisher(t *testing.T) {
	store := &fakeExpenseStore{}
	s := NewExpenseService(store, nil)

	if _, err := s.RecordExpense(context.Background(), 1, validExpense()); err != nil {
		t.Fatalf("nil publisher must not fail the write: %v", err)
	}
}

func TestRecordExpenseStoreFailure(t *testing.T) {
	wantErr := errors.New("disk full")
	s := NewExpenseService(&fakeExpenseStore{saveErr: wantErr}, &fakePublisher{})

	if _, err := s.RecordExpense(context.Background(), 1, validExpense()); !errors.Is(err, wantErr) {
		t.Fatalf("expected store error surfaced, got %v", err)
	}
}

func TestDeleteExpense(t *testing.T) {
	store := &fakeExpenseStore{}
	s := NewExpenseService(store, &fakePublisher{})

	if err := s.DeleteExpense(context.Background(), 1, 42); err != nil {
		t.Fatal(err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != 42 {
		t.Fatalf("expected delete of 42, got %v", store.deleted)
	}
}
