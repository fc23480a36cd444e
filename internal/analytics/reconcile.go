package analytics

import (
	"math"
	"sort"

	"budget/internal/core"
)

// Reconcile joins a month's budget plan against actual spending and
// emits one ComparisonRow per (category, subcategory) that has either a
// plan or spend. Rows where both sides are zero are omitted. The call
// is deterministic: identical input yields identical output, rows
// sorted by category then subcategory.
func Reconcile(plans []core.BudgetPlan, expenses []core.Expense, month, year int) ReconciliationResult {
	planned := make(map[GroupKey]int64)
	for _, p := range plans {
		if p.Month != month || p.Year != year {
			continue
		}
		if core.ValidCategoryPair(p.Category, p.Subcategory) != nil {
			continue
		}
		planned[GroupKey{Category: p.Category, Subcategory: p.Subcategory}] = p.Planned.Cents
	}
	actuals := ActualsBySubcategory(expenses, month, year)

	keys := make(map[GroupKey]struct{}, len(planned)+len(actuals))
	for k := range planned {
		keys[k] = struct{}{}
	}
	for k := range actuals {
		keys[k] = struct{}{}
	}

	var result ReconciliationResult
	for k := range keys {
		plan := planned[k]
		actual := actuals[k]
		if plan == 0 && actual == 0 {
			continue
		}

		row := ComparisonRow{
			Category:    k.Category,
			Subcategory: k.Subcategory,
			Planned:     core.Money{Cents: plan},
			Actual:      core.Money{Cents: actual},
			Difference:  core.Money{Cents: actual - plan},
		}
		if plan > 0 {
			pct := roundTo1(float64(actual) / float64(plan) * 100)
			row.Percentage = &pct
			switch {
			case pct < 90:
				row.Status = StatusUnderBudget
			case pct <= 110:
				row.Status = StatusOnTrack
			default:
				row.Status = StatusOverBudget
			}
		} else {
			// Spend with no plan: percentage is undefined, reported as null.
			row.Status = StatusNoBudgetSet
		}
		result.Rows = append(result.Rows, row)
		result.TotalPlanned.Cents += plan
		result.TotalActual.Cents += actual
	}
	result.TotalDifference.Cents = result.TotalActual.Cents - result.TotalPlanned.Cents

	sort.Slice(result.Rows, func(i, j int) bool {
		a, b := result.Rows[i], result.Rows[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Subcategory < b.Subcategory
	})
	return result
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}
