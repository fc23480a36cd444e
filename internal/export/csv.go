package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"budget/internal/core"
)

// ExpensesCSV renders expenses as a CSV document with a header row.
// Amounts are decimal strings, dates ISO.
func ExpensesCSV(expenses []core.Expense) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"date", "description", "amount", "category", "subcategory", "tags"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range expenses {
		record := []string{
			e.Date.Format("2006-01-02"),
			e.Description,
			fmt.Sprintf("%.2f", e.Amount.Dollars()),
			e.Category,
			e.Subcategory,
			core.JoinTags(e.Tags),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// IncomeCSV renders income records as a CSV document.
func IncomeCSV(income []core.Income) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"date", "source", "amount", "description"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, in := range income {
		record := []string{
			in.Date.Format("2006-01-02"),
			in.Source,
			fmt.Sprintf("%.2f", in.Amount.Dollars()),
			in.Description,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
