// Package analytics implements the budget analytics pipeline: aggregation
// of raw transactions, plan-vs-actual reconciliation, next-period
// forecasting, statistical anomaly detection, and savings recommendations.
//
// Every computation is a pure transform over an immutable snapshot of the
// ledger; nothing here retains state between invocations.
package analytics

import "budget/internal/core"

// Status classifies a reconciliation row.
type Status string

const (
	StatusUnderBudget Status = "Under Budget"
	StatusOnTrack     Status = "On Track"
	StatusOverBudget  Status = "Over Budget"
	StatusNoBudgetSet Status = "No Budget Set"
)

// Trend is the qualitative direction of a category's recent spending.
type Trend string

const (
	TrendIncreasing Trend = "Increasing"
	TrendDecreasing Trend = "Decreasing"
	TrendStable     Trend = "Stable"
)

// Severity grades how far outside the expected range an anomaly lies.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// Priority orders recommendations for presentation.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

type (
	// GroupKey identifies one (category, subcategory) spending group.
	GroupKey struct {
		Category    string
		Subcategory string
	}

	// GroupSummary holds per-group aggregates for one period.
	GroupSummary struct {
		Category    string     `json:"category"`
		Subcategory string     `json:"subcategory"`
		Total       core.Money `json:"total"`
		Count       int        `json:"count"`
		Mean        core.Money `json:"mean"`
	}

	// MonthTotal is one point of a category's monthly time series.
	MonthTotal struct {
		Month int        `json:"month"`
		Year  int        `json:"year"`
		Total core.Money `json:"total"`
	}

	// CategorySeries is a category's spending series in chronological order.
	CategorySeries struct {
		Category string       `json:"category"`
		Months   []MonthTotal `json:"months"`
	}

	// ComparisonRow is one line of the plan-vs-actual table.
	// Percentage is nil when no plan exists for the row.
	ComparisonRow struct {
		Category    string     `json:"category"`
		Subcategory string     `json:"subcategory"`
		Planned     core.Money `json:"planned_amount"`
		Actual      core.Money `json:"actual_amount"`
		Difference  core.Money `json:"difference"`
		Percentage  *float64   `json:"percentage"`
		Status      Status     `json:"status"`
	}

	// ReconciliationResult is the full comparison table plus headline totals.
	ReconciliationResult struct {
		Rows            []ComparisonRow `json:"rows"`
		TotalPlanned    core.Money      `json:"total_planned"`
		TotalActual     core.Money      `json:"total_actual"`
		TotalDifference core.Money      `json:"total_difference"`
	}

	// Prediction is the next-period estimate for one category.
	Prediction struct {
		Category          string     `json:"category"`
		Predicted         core.Money `json:"predicted_amount"`
		HistoricalAverage core.Money `json:"historical_average"`
		Trend             Trend      `json:"trend"`
		Confidence        float64    `json:"confidence"` // 0-100
	}

	// ForecastResult carries all category predictions, or an explanation
	// when no category has enough history.
	ForecastResult struct {
		Success        bool                  `json:"success"`
		Message        string                `json:"message,omitempty"`
		TotalPredicted core.Money            `json:"total_predicted"`
		AnalysisPeriod string                `json:"analysis_period,omitempty"`
		Predictions    map[string]Prediction `json:"predictions,omitempty"`
	}

	// Anomaly flags one transaction whose amount is an outlier for its
	// category.
	Anomaly struct {
		Category    string     `json:"category"`
		Subcategory string     `json:"subcategory"`
		Amount      core.Money `json:"amount"`
		Date        core.Date  `json:"date"`
		RangeLow    core.Money `json:"expected_low"`
		RangeHigh   core.Money `json:"expected_high"`
		Deviation   string     `json:"deviation"`
		Severity    Severity   `json:"severity"`
	}

	// AnomalyResult lists flagged transactions. Success is false only
	// when there is not enough history in any category.
	AnomalyResult struct {
		Success        bool      `json:"success"`
		Message        string    `json:"message"`
		AnomaliesFound int       `json:"anomalies_found"`
		Anomalies      []Anomaly `json:"anomalies,omitempty"`
	}

	// Recommendation is one actionable savings suggestion.
	// PotentialSavings is set only where a concrete amount is known.
	Recommendation struct {
		Type             string      `json:"type"`
		Category         string      `json:"category"`
		Priority         Priority    `json:"priority"`
		Message          string      `json:"message"`
		Suggestion       string      `json:"suggestion"`
		PotentialSavings *core.Money `json:"potential_savings,omitempty"`
	}

	// RecommendationResult is the ranked advice list with totals.
	RecommendationResult struct {
		Success               bool             `json:"success"`
		Message               string           `json:"message,omitempty"`
		Recommendations       []Recommendation `json:"recommendations"`
		TotalPotentialSavings core.Money       `json:"total_potential_savings"`
		CurrentSavingsRate    float64          `json:"current_savings_rate"`
	}
)

// ExpectedRange formats the anomaly's expected band for display.
func (a Anomaly) ExpectedRange() string {
	return a.RangeLow.String() + " - " + a.RangeHigh.String()
}
