package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"budget/internal/core"
)

func sampleExpenses() []core.Expense {
	return []core.Expense{
		{
			Date:        core.NewDate(2025, 2, 1),
			Description: "weekly groceries",
			Amount:      core.Money{Cents: 12345},
			Category:    "Food",
			Subcategory: "Groceries",
			Tags:        []string{"weekly"},
		},
		{
			Date:        core.NewDate(2025, 2, 10),
			Description: "february electricity",
			Amount:      core.Money{Cents: 150000},
			Category:    "Housing",
			Subcategory: "Electricity",
		},
	}
}

func sampleIncome() []core.Income {
	return []core.Income{
		{
			Date:   core.NewDate(2025, 2, 1),
			Source: "Salary",
			Amount: core.Money{Cents: 500000},
		},
	}
}

func TestExpensesCSV(t *testing.T) {
	out, err := ExpensesCSV(sampleExpenses())
	if err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][0] != "date" || records[0][2] != "amount" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][0] != "2025-02-01" || records[1][2] != "123.45" {
		t.Fatalf("unexpected first row: %v", records[1])
	}
	if records[2][3] != "Housing" || records[2][4] != "Electricity" {
		t.Fatalf("unexpected second row: %v", records[2])
	}
}

func TestExpensesCSVEmpty(t *testing.T) {
	out, err := ExpensesCSV(nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(out)) != "date,description,amount,category,subcategory,tags" {
		t.Fatalf("expected only a header, got %q", out)
	}
}

func TestIncomeCSV(t *testing.T) {
	out, err := IncomeCSV(sampleIncome())
	if err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(records))
	}
	if records[1][1] != "Salary" || records[1][2] != "5000.00" {
		t.Fatalf("unexpected row: %v", records[1])
	}
}

func TestWorkbookSheets(t *testing.T) {
	out, err := Workbook(sampleExpenses(), sampleIncome(), "February 2025")
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	for _, sheet := range []string{"Expenses", "Income", "Summary"} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Fatalf("missing sheet %q (idx %d, err %v)", sheet, idx, err)
		}
	}

	title, err := f.GetCellValue("Expenses", "A1")
	if err != nil {
		t.Fatal(err)
	}
	if title != "February 2025" {
		t.Fatalf("unexpected title %q", title)
	}

	desc, err := f.GetCellValue("Expenses", "B3")
	if err != nil {
		t.Fatal(err)
	}
	if desc != "weekly groceries" {
		t.Fatalf("unexpected first expense row: %q", desc)
	}

	source, err := f.GetCellValue("Income", "B2")
	if err != nil {
		t.Fatal(err)
	}
	if source != "Salary" {
		t.Fatalf("unexpected income row: %q", source)
	}

	cat, err := f.GetCellValue("Summary", "A2")
	if err != nil {
		t.Fatal(err)
	}
	if cat != "Food" {
		t.Fatalf("expected categories sorted, got %q first", cat)
	}
}

func TestBackupJSON(t *testing.T) {
	now := time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC)
	out, err := BackupJSON("alice", sampleExpenses(), sampleIncome(), nil, now)
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]json.RawMessage
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"exported_at", "username", "expenses", "income", "budget_plans"} {
		if _, ok := got[key]; !ok {
			t.Fatalf("missing key %q in %s", key, out)
		}
	}
	if string(got["budget_plans"]) != "[]" {
		t.Fatalf("nil plans should encode as an empty array, got %s", got["budget_plans"])
	}
	if !strings.Contains(string(got["expenses"]), `"2025-02-01"`) {
		t.Fatalf("expected ISO dates in expenses: %s", got["expenses"])
	}
}

func TestParseBackupRoundTrip(t *testing.T) {
	now := time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC)
	plans := []core.BudgetPlan{
		{Category: "Food", Subcategory: "Groceries", Planned: core.Money{Cents: 40000}, Month: 2, Year: 2025},
	}
	out, err := BackupJSON("alice", sampleExpenses(), sampleIncome(), plans, now)
	if err != nil {
		t.Fatal(err)
	}

	got, err := ParseBackup(out)
	if err != nil {
		t.Fatal(err)
	}
	if got.Username != "alice" {
		t.Errorf("username = %q, want alice", got.Username)
	}
	if len(got.Expenses) != 2 || len(got.Income) != 1 || len(got.BudgetPlans) != 1 {
		t.Fatalf("round trip lost records: %d expenses, %d income, %d plans",
			len(got.Expenses), len(got.Income), len(got.BudgetPlans))
	}
	if got.Expenses[0].Amount.Cents != 12345 {
		t.Errorf("amount = %d cents, want 12345", got.Expenses[0].Amount.Cents)
	}
	if got.BudgetPlans[0].Month != 2 || got.BudgetPlans[0].Planned.Cents != 40000 {
		t.Errorf("unexpected plan after round trip: %+v", got.BudgetPlans[0])
	}

	if _, err := ParseBackup([]byte("{")); err == nil {
		t.Fatal("expected an error for truncated input")
	}
}
