package analytics

import (
	"testing"

	"budget/internal/core"
)

func pct(v float64) *float64 { return &v }

func healthyBalance() core.MonthlyBalance {
	return core.NewMonthlyBalance(core.Money{Cents: 500000}, core.Money{Cents: 350000})
}

func TestRecommendOverspendRule(t *testing.T) {
	rows := []ComparisonRow{
		{
			Category:    "Food",
			Subcategory: "Dining Out & Catering",
			Planned:     core.Money{Cents: 20000},
			Actual:      core.Money{Cents: 35000},
			Difference:  core.Money{Cents: 15000},
			Percentage:  pct(175.0),
			Status:      StatusOverBudget,
		},
		{
			Category:    "Housing",
			Subcategory: "Electricity",
			Planned:     core.Money{Cents: 30000},
			Actual:      core.Money{Cents: 29000},
			Difference:  core.Money{Cents: -1000},
			Percentage:  pct(96.7),
			Status:      StatusOnTrack,
		},
	}

	got := Recommend(rows, nil, nil, healthyBalance(), DefaultPolicy())
	if len(got.Recommendations) != 1 {
		t.Fatalf("expected 1 recommendation, got %v", got.Recommendations)
	}
	rec := got.Recommendations[0]
	if rec.Type != "Budget Overrun" || rec.Priority != PriorityHigh {
		t.Fatalf("unexpected recommendation: %+v", rec)
	}
	if rec.PotentialSavings == nil || rec.PotentialSavings.Cents != 15000 {
		t.Fatalf("expected potential savings 15000, got %v", rec.PotentialSavings)
	}
	if got.TotalPotentialSavings.Cents != 15000 {
		t.Fatalf("expected total 15000, got %d", got.TotalPotentialSavings.Cents)
	}
}

func TestRecommendRisingTrendRule(t *testing.T) {
	preds := map[string]Prediction{
		"Food": {Category: "Food", Trend: TrendIncreasing, Confidence: 80,
			Predicted: core.Money{Cents: 40000}, HistoricalAverage: core.Money{Cents: 30000}},
		"Pets": {Category: "Pets", Trend: TrendIncreasing, Confidence: 20,
			Predicted: core.Money{Cents: 4000}, HistoricalAverage: core.Money{Cents: 3500}},
		"Taxes": {Category: "Taxes", Trend: TrendStable, Confidence: 95},
	}

	got := Recommend(nil, preds, nil, healthyBalance(), DefaultPolicy())
	if len(got.Recommendations) != 1 {
		t.Fatalf("expected only the confident rising trend, got %v", got.Recommendations)
	}
	rec := got.Recommendations[0]
	if rec.Category != "Food" || rec.Priority != PriorityMedium {
		t.Fatalf("unexpected recommendation: %+v", rec)
	}
	if rec.PotentialSavings != nil {
		t.Fatal("trend warnings carry no savings estimate")
	}
}

func TestRecommendAnomalyRule(t *testing.T) {
	anomalies := []Anomaly{
		{Category: "Food", Subcategory: "Groceries", Severity: SeverityHigh,
			Amount: core.Money{Cents: 60000}, Date: core.NewDate(2025, 2, 25)},
		{Category: "Pets", Subcategory: "Grooming", Severity: SeverityMedium,
			Amount: core.Money{Cents: 9000}, Date: core.NewDate(2025, 2, 10)},
		{Category: "Taxes", Subcategory: "Local Taxes", Severity: SeverityLow,
			Amount: core.Money{Cents: 5000}, Date: core.NewDate(2025, 2, 12)},
	}

	got := Recommend(nil, nil, anomalies, healthyBalance(), DefaultPolicy())
	if len(got.Recommendations) != 2 {
		t.Fatalf("expected High and Medium anomalies only, got %v", got.Recommendations)
	}
	if got.Recommendations[0].Category != "Food" {
		t.Fatalf("expected the High severity anomaly ranked first, got %+v", got.Recommendations[0])
	}
}

func TestRecommendLowSavingsRateRule(t *testing.T) {
	balance := core.MonthlyBalance{
		Income:      core.Money{Cents: 500000},
		Expenses:    core.Money{Cents: 475000},
		Balance:     core.Money{Cents: 25000},
		SavingsRate: 5,
	}

	got := Recommend(nil, nil, nil, balance, DefaultPolicy())
	if len(got.Recommendations) != 1 {
		t.Fatalf("expected the low-savings recommendation, got %v", got.Recommendations)
	}
	rec := got.Recommendations[0]
	if rec.Type != "Low Savings Rate" || rec.Priority != PriorityHigh {
		t.Fatalf("unexpected recommendation: %+v", rec)
	}
	if got.CurrentSavingsRate != 5 {
		t.Fatalf("expected echoed savings rate 5, got %v", got.CurrentSavingsRate)
	}
}

func TestRecommendPriorityOrderingAndTotals(t *testing.T) {
	rows := []ComparisonRow{
		{Category: "Food", Subcategory: "Groceries", Planned: core.Money{Cents: 40000},
			Actual: core.Money{Cents: 52000}, Difference: core.Money{Cents: 12000},
			Percentage: pct(130.0), Status: StatusOverBudget},
	}
	preds := map[string]Prediction{
		"Pets": {Category: "Pets", Trend: TrendIncreasing, Confidence: 90,
			Predicted: core.Money{Cents: 5000}, HistoricalAverage: core.Money{Cents: 4000}},
	}
	anomalies := []Anomaly{
		{Category: "Housing", Subcategory: "Gas", Severity: SeverityMedium,
			Amount: core.Money{Cents: 20000}, Date: core.NewDate(2025, 2, 3)},
	}
	lowSavings := core.MonthlyBalance{Income: core.Money{Cents: 100000}, SavingsRate: 2}

	got := Recommend(rows, preds, anomalies, lowSavings, DefaultPolicy())
	if len(got.Recommendations) != 4 {
		t.Fatalf("expected 4 recommendations, got %d", len(got.Recommendations))
	}

	wantOrder := []Priority{PriorityHigh, PriorityHigh, PriorityMedium, PriorityLow}
	for i, rec := range got.Recommendations {
		if rec.Priority != wantOrder[i] {
			t.Fatalf("position %d: expected %s, got %s (%+v)", i, wantOrder[i], rec.Priority, rec)
		}
	}
	// Ties keep rule-evaluation order: overspend before low-savings.
	if got.Recommendations[0].Type != "Budget Overrun" || got.Recommendations[1].Type != "Low Savings Rate" {
		t.Fatalf("unexpected tie order: %+v", got.Recommendations[:2])
	}

	if got.TotalPotentialSavings.Cents != 12000 {
		t.Fatalf("expected total potential savings 12000, got %d", got.TotalPotentialSavings.Cents)
	}
	for _, rec := range got.Recommendations {
		if rec.PotentialSavings != nil && rec.PotentialSavings.Cents < 0 {
			t.Fatalf("negative potential savings: %+v", rec)
		}
	}
}

func TestRecommendNothingToFlag(t *testing.T) {
	got := Recommend(nil, nil, nil, healthyBalance(), DefaultPolicy())
	if !got.Success {
		t.Fatal("an empty recommendation list is still a success")
	}
	if len(got.Recommendations) != 0 {
		t.Fatalf("expected no recommendations, got %v", got.Recommendations)
	}
	if got.Message == "" {
		t.Fatal("expected a nothing-to-flag message")
	}
}
