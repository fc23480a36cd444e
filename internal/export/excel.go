package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"budget/internal/analytics"
	"budget/internal/core"
)

const (
	expensesSheet = "Expenses"
	incomeSheet   = "Income"
	summarySheet  = "Summary"
)

// Workbook renders expenses, income, and a per-category summary into an
// xlsx workbook with one sheet each.
func Workbook(expenses []core.Expense, income []core.Income, title string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", expensesSheet)
	if _, err := f.NewSheet(incomeSheet); err != nil {
		return nil, fmt.Errorf("create income sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#2C3E50"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "right"},
		NumFmt:    4, // #,##0.00
	})
	if err != nil {
		return nil, fmt.Errorf("create amount style: %w", err)
	}

	if err := writeExpensesSheet(f, expenses, title, headerStyle, amountStyle); err != nil {
		return nil, err
	}
	if err := writeIncomeSheet(f, income, headerStyle, amountStyle); err != nil {
		return nil, err
	}
	if err := writeSummarySheet(f, expenses, headerStyle, amountStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeExpensesSheet(f *excelize.File, expenses []core.Expense, title string, headerStyle, amountStyle int) error {
	if err := f.MergeCell(expensesSheet, "A1", "F1"); err != nil {
		return fmt.Errorf("merge title cell: %w", err)
	}
	f.SetCellValue(expensesSheet, "A1", title)
	f.SetCellStyle(expensesSheet, "A1", "F1", headerStyle)

	headers := []string{"Date", "Description", "Amount", "Category", "Subcategory", "Tags"}
	for i, h := range headers {
		cell := fmt.Sprintf("%c2", 'A'+i)
		f.SetCellValue(expensesSheet, cell, h)
	}
	f.SetCellStyle(expensesSheet, "A2", "F2", headerStyle)

	for i, e := range expenses {
		row := i + 3
		f.SetCellValue(expensesSheet, fmt.Sprintf("A%d", row), e.Date.Format("2006-01-02"))
		f.SetCellValue(expensesSheet, fmt.Sprintf("B%d", row), e.Description)
		f.SetCellValue(expensesSheet, fmt.Sprintf("C%d", row), e.Amount.Dollars())
		f.SetCellValue(expensesSheet, fmt.Sprintf("D%d", row), e.Category)
		f.SetCellValue(expensesSheet, fmt.Sprintf("E%d", row), e.Subcategory)
		f.SetCellValue(expensesSheet, fmt.Sprintf("F%d", row), core.JoinTags(e.Tags))
		f.SetCellStyle(expensesSheet, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), amountStyle)
	}

	f.SetColWidth(expensesSheet, "A", "A", 12)
	f.SetColWidth(expensesSheet, "B", "B", 32)
	f.SetColWidth(expensesSheet, "C", "C", 12)
	f.SetColWidth(expensesSheet, "D", "E", 22)
	f.SetColWidth(expensesSheet, "F", "F", 18)
	return nil
}

func writeIncomeSheet(f *excelize.File, income []core.Income, headerStyle, amountStyle int) error {
	headers := []string{"Date", "Source", "Amount", "Description"}
	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(incomeSheet, cell, h)
	}
	f.SetCellStyle(incomeSheet, "A1", "D1", headerStyle)

	for i, in := range income {
		row := i + 2
		f.SetCellValue(incomeSheet, fmt.Sprintf("A%d", row), in.Date.Format("2006-01-02"))
		f.SetCellValue(incomeSheet, fmt.Sprintf("B%d", row), in.Source)
		f.SetCellValue(incomeSheet, fmt.Sprintf("C%d", row), in.Amount.Dollars())
		f.SetCellValue(incomeSheet, fmt.Sprintf("D%d", row), in.Description)
		f.SetCellStyle(incomeSheet, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), amountStyle)
	}

	f.SetColWidth(incomeSheet, "A", "A", 12)
	f.SetColWidth(incomeSheet, "B", "B", 22)
	f.SetColWidth(incomeSheet, "C", "C", 12)
	f.SetColWidth(incomeSheet, "D", "D", 32)
	return nil
}

func writeSummarySheet(f *excelize.File, expenses []core.Expense, headerStyle, amountStyle int) error {
	headers := []string{"Category", "Subcategory", "Total", "Transactions"}
	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(summarySheet, cell, h)
	}
	f.SetCellStyle(summarySheet, "A1", "D1", headerStyle)

	var total int64
	summaries := analytics.Summaries(expenses)
	for i, s := range summaries {
		row := i + 2
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), s.Category)
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), s.Subcategory)
		f.SetCellValue(summarySheet, fmt.Sprintf("C%d", row), s.Total.Dollars())
		f.SetCellValue(summarySheet, fmt.Sprintf("D%d", row), s.Count)
		f.SetCellStyle(summarySheet, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), amountStyle)
		total += s.Total.Cents
	}

	totalRow := len(summaries) + 2
	f.SetCellValue(summarySheet, fmt.Sprintf("A%d", totalRow), "Total")
	f.SetCellValue(summarySheet, fmt.Sprintf("C%d", totalRow), core.Money{Cents: total}.Dollars())
	f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("D%d", totalRow), headerStyle)

	f.SetColWidth(summarySheet, "A", "B", 24)
	f.SetColWidth(summarySheet, "C", "D", 14)
	return nil
}
