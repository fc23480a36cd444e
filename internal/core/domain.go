package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Date is a calendar date. Time-of-day is always midnight UTC.
	Date struct {
		time.Time
	}

	// Money is a monetary amount in cents.
	Money struct {
		Cents int64
	}

	// Expense is a single recorded spending transaction. Category and
	// Subcategory must be a valid pair in the fixed taxonomy.
	Expense struct {
		ID          int64    `json:"id"`
		Date        Date     `json:"date"`
		Description string   `json:"description"`
		Amount      Money    `json:"amount"`
		Category    string   `json:"category"`
		Subcategory string   `json:"subcategory"`
		Tags        []string `json:"tags,omitempty"`
	}

	// Income is a single recorded income transaction. Source is a flat
	// label from the fixed income source list.
	Income struct {
		ID          int64  `json:"id"`
		Date        Date   `json:"date"`
		Source      string `json:"source"`
		Amount      Money  `json:"amount"`
		Description string `json:"description,omitempty"`
	}

	// BudgetPlan is the intended spend for one subcategory in one
	// month/year. Unique per (user, category, subcategory, month, year).
	BudgetPlan struct {
		Category    string `json:"category"`
		Subcategory string `json:"subcategory"`
		Planned     Money  `json:"planned_amount"`
		Month       int    `json:"month"` // 1-12
		Year        int    `json:"year"`
	}

	// MonthlyBalance summarizes one month's income/expense position.
	MonthlyBalance struct {
		Income      Money   `json:"income"`
		Expenses    Money   `json:"expenses"`
		Balance     Money   `json:"balance"`
		SavingsRate float64 `json:"savings_rate"` // percent of income kept, 0 when no income
	}
)

var (
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidMonth         = errors.New("invalid month")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidPlannedAmount = errors.New("invalid planned amount")
	ErrDescriptionTooLong   = errors.New("description too long (max 200 characters)")
	ErrUnknownCategory      = errors.New("unknown category")
	ErrUnknownSubcategory   = errors.New("unknown subcategory for category")
	ErrUnknownIncomeSource  = errors.New("unknown income source")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as an int in 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// InMonth reports whether the date falls in the given month and year.
func (d Date) InMonth(month, year int) bool {
	return d.Year() == year && d.Month() == month
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if len(e.Description) > 200 {
		return ErrDescriptionTooLong
	}
	return ValidCategoryPair(e.Category, e.Subcategory)
}

func (i Income) Validate() error {
	if err := i.Date.Validate(); err != nil {
		return err
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if len(i.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if !ValidIncomeSource(i.Source) {
		return ErrUnknownIncomeSource
	}
	return nil
}

func (p BudgetPlan) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidMonth
	}
	// Planned may be zero: a zero plan records an explicit "no spend" intent.
	if p.Planned.Cents < 0 {
		return ErrInvalidPlannedAmount
	}
	return ValidCategoryPair(p.Category, p.Subcategory)
}

// NewMonthlyBalance derives balance and savings rate from income and
// expense totals. The savings rate is zero when there is no income.
func NewMonthlyBalance(income, expenses Money) MonthlyBalance {
	b := MonthlyBalance{
		Income:   income,
		Expenses: expenses,
		Balance:  Money{Cents: income.Cents - expenses.Cents},
	}
	if income.Cents > 0 {
		b.SavingsRate = float64(income.Cents-expenses.Cents) / float64(income.Cents) * 100
	}
	return b
}

// ParseTags splits a comma-separated tag string into trimmed tags.
func ParseTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// JoinTags is the inverse of ParseTags, used by storage.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}
