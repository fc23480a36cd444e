package analytics

import (
	"sort"

	"budget/internal/core"
)

// ActualsBySubcategory sums expense cents per (category, subcategory)
// for one month. Records outside the month are ignored, as are records
// that do not validate against the taxonomy.
func ActualsBySubcategory(expenses []core.Expense, month, year int) map[GroupKey]int64 {
	totals := make(map[GroupKey]int64)
	for _, e := range expenses {
		if !e.Date.InMonth(month, year) {
			continue
		}
		if core.ValidCategoryPair(e.Category, e.Subcategory) != nil {
			continue
		}
		totals[GroupKey{Category: e.Category, Subcategory: e.Subcategory}] += e.Amount.Cents
	}
	return totals
}

// Summaries computes sum, count, and mean per (category, subcategory)
// group, sorted by category then subcategory. Groups with no records do
// not appear, so no mean is ever computed over zero records.
func Summaries(expenses []core.Expense) []GroupSummary {
	type agg struct {
		total int64
		count int
	}
	groups := make(map[GroupKey]*agg)
	for _, e := range expenses {
		if core.ValidCategoryPair(e.Category, e.Subcategory) != nil {
			continue
		}
		k := GroupKey{Category: e.Category, Subcategory: e.Subcategory}
		a, ok := groups[k]
		if !ok {
			a = &agg{}
			groups[k] = a
		}
		a.total += e.Amount.Cents
		a.count++
	}

	out := make([]GroupSummary, 0, len(groups))
	for k, a := range groups {
		out = append(out, GroupSummary{
			Category:    k.Category,
			Subcategory: k.Subcategory,
			Total:       core.Money{Cents: a.total},
			Count:       a.count,
			Mean:        core.Money{Cents: a.total / int64(a.count)},
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Subcategory < out[j].Subcategory
	})
	return out
}

// SeriesByCategory builds each category's monthly time series from raw
// expenses, months in chronological order, categories sorted by name.
func SeriesByCategory(expenses []core.Expense) []CategorySeries {
	type monthKey struct {
		year  int
		month int
	}
	perCategory := make(map[string]map[monthKey]int64)
	for _, e := range expenses {
		if core.ValidCategoryPair(e.Category, e.Subcategory) != nil {
			continue
		}
		months, ok := perCategory[e.Category]
		if !ok {
			months = make(map[monthKey]int64)
			perCategory[e.Category] = months
		}
		months[monthKey{year: e.Date.Year(), month: e.Date.Month()}] += e.Amount.Cents
	}

	out := make([]CategorySeries, 0, len(perCategory))
	for cat, months := range perCategory {
		series := CategorySeries{Category: cat, Months: make([]MonthTotal, 0, len(months))}
		for k, cents := range months {
			series.Months = append(series.Months, MonthTotal{
				Month: k.month,
				Year:  k.year,
				Total: core.Money{Cents: cents},
			})
		}
		sort.Slice(series.Months, func(i, j int) bool {
			a, b := series.Months[i], series.Months[j]
			if a.Year != b.Year {
				return a.Year < b.Year
			}
			return a.Month < b.Month
		})
		out = append(out, series)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// ExpensesByCategory groups valid expenses per category, preserving
// input order within each group.
func ExpensesByCategory(expenses []core.Expense) map[string][]core.Expense {
	groups := make(map[string][]core.Expense)
	for _, e := range expenses {
		if core.ValidCategoryPair(e.Category, e.Subcategory) != nil {
			continue
		}
		groups[e.Category] = append(groups[e.Category], e)
	}
	return groups
}
