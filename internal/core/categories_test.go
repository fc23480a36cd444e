package core

import (
	"errors"
	"sort"
	"testing"
)

func TestCategoriesSorted(t *testing.T) {
	cats := Categories()
	if len(cats) != 12 {
		t.Fatalf("expected 12 categories, got %d", len(cats))
	}
	if !sort.StringsAreSorted(cats) {
		t.Fatalf("expected sorted categories, got %v", cats)
	}
}

func TestSubcategories(t *testing.T) {
	if subs := Subcategories("Food"); len(subs) != 5 {
		t.Fatalf("expected 5 Food subcategories, got %v", subs)
	}
	if subs := Subcategories("Nope"); subs != nil {
		t.Fatalf("expected nil for unknown category, got %v", subs)
	}
}

func TestValidCategoryPair(t *testing.T) {
	if err := ValidCategoryPair("Housing", "Electricity"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := ValidCategoryPair("Nope", "Electricity"); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	if err := ValidCategoryPair("Housing", "Groceries"); !errors.Is(err, ErrUnknownSubcategory) {
		t.Fatalf("expected ErrUnknownSubcategory, got %v", err)
	}
	// "Medical & Consultations" exists under two parents; both must validate.
	if err := ValidCategoryPair("Children", "Medical & Consultations"); err != nil {
		t.Fatalf("expected ok for Children, got %v", err)
	}
	if err := ValidCategoryPair("Personal Care", "Medical & Consultations"); err != nil {
		t.Fatalf("expected ok for Personal Care, got %v", err)
	}
}

func TestIncomeSources(t *testing.T) {
	if len(IncomeSources()) != 7 {
		t.Fatalf("expected 7 income sources, got %v", IncomeSources())
	}
	if !ValidIncomeSource("Salary") {
		t.Fatal("Salary should be a valid source")
	}
	if ValidIncomeSource("salary") {
		t.Fatal("source matching is case-sensitive")
	}
}

func TestCategoryColorIconFallback(t *testing.T) {
	if CategoryColor("Food") == CategoryColor("Nope") {
		t.Fatal("known category should not use the fallback color")
	}
	if CategoryIcon("Nope") != "📌" {
		t.Fatalf("expected fallback icon, got %q", CategoryIcon("Nope"))
	}
}
