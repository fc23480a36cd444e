package analytics

import (
	"fmt"
	"sort"

	"budget/internal/core"
)

// Recommend combines reconciliation, forecast, and anomaly signals with
// the month's balance into a ranked list of savings suggestions. Rules
// are evaluated in a fixed order; the final list is sorted by priority
// with ties keeping evaluation order, so output is stable.
func Recommend(rows []ComparisonRow, predictions map[string]Prediction, anomalies []Anomaly, balance core.MonthlyBalance, p Policy) RecommendationResult {
	var recs []Recommendation

	// Overspent budget lines, worst first within the rule.
	overspent := make([]ComparisonRow, 0)
	for _, row := range rows {
		if row.Status == StatusOverBudget {
			overspent = append(overspent, row)
		}
	}
	sort.Slice(overspent, func(i, j int) bool {
		return overspent[i].Difference.Cents > overspent[j].Difference.Cents
	})
	for _, row := range overspent {
		overage := core.Money{Cents: row.Difference.Cents}
		recs = append(recs, Recommendation{
			Type:     "Budget Overrun",
			Category: row.Category,
			Priority: PriorityHigh,
			Message: fmt.Sprintf("%s / %s is %s over its %s budget.",
				row.Category, row.Subcategory, overage.String(), row.Planned.String()),
			Suggestion: fmt.Sprintf("Reduce %s spending to bring it back toward the planned amount.",
				row.Subcategory),
			PotentialSavings: &overage,
		})
	}

	// Rising spending trends with enough confidence to act on.
	cats := make([]string, 0, len(predictions))
	for cat := range predictions {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		pred := predictions[cat]
		if pred.Trend != TrendIncreasing || pred.Confidence < p.ConfidenceFloor {
			continue
		}
		recs = append(recs, Recommendation{
			Type:     "Rising Spending",
			Category: cat,
			Priority: PriorityMedium,
			Message: fmt.Sprintf("%s spending is trending upward; next month is projected at %s (average %s).",
				cat, pred.Predicted.String(), pred.HistoricalAverage.String()),
			Suggestion: fmt.Sprintf("Review recent %s purchases and set a tighter plan before the trend settles in.", cat),
		})
	}

	// Unusual transactions worth a second look.
	for _, a := range anomalies {
		if a.Severity != SeverityHigh && a.Severity != SeverityMedium {
			continue
		}
		priority := PriorityLow
		if a.Severity == SeverityHigh {
			priority = PriorityMedium
		}
		recs = append(recs, Recommendation{
			Type:     "Unusual Transaction",
			Category: a.Category,
			Priority: priority,
			Message: fmt.Sprintf("A %s charge of %s on %s is well outside the usual %s range.",
				a.Subcategory, a.Amount.String(), a.Date.Format("2006-01-02"), a.ExpectedRange()),
			Suggestion: "Check whether this was a one-off, a billing mistake, or a new recurring cost.",
		})
	}

	// Overall savings health, independent of any category.
	if balance.SavingsRate < p.SavingsRateFloor {
		recs = append(recs, Recommendation{
			Type:     "Low Savings Rate",
			Category: "General",
			Priority: PriorityHigh,
			Message: fmt.Sprintf("Your savings rate is %.1f%%, below the recommended %.0f%%.",
				balance.SavingsRate, p.SavingsRateFloor),
			Suggestion: "Aim to set aside a fixed share of income at the start of the month before discretionary spending.",
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank(recs[i].Priority) < priorityRank(recs[j].Priority)
	})

	result := RecommendationResult{
		Success:            true,
		Recommendations:    recs,
		CurrentSavingsRate: balance.SavingsRate,
	}
	for _, r := range recs {
		if r.PotentialSavings != nil {
			result.TotalPotentialSavings.Cents += r.PotentialSavings.Cents
		}
	}
	if len(recs) == 0 {
		result.Message = "Nothing to flag: spending is within plan."
	}
	return result
}

func priorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}
