package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service runs the analytics pipeline against a ledger snapshot. It is
// stateless: every call re-reads the ledger and recomputes from scratch,
// so concurrent calls for different users or periods are independent.
type Service struct {
	ledger Ledger
	policy Policy
	now    func() time.Time
}

func NewService(ledger Ledger, policy Policy) *Service {
	return &Service{
		ledger: ledger,
		policy: policy,
		now:    time.Now,
	}
}

// Reconciliation builds the plan-vs-actual table for one month.
func (s *Service) Reconciliation(ctx context.Context, userID int64, month, year int) (ReconciliationResult, error) {
	plans, err := s.ledger.ListBudgetPlans(ctx, userID, month, year)
	if err != nil {
		return ReconciliationResult{}, fmt.Errorf("list budget plans: %w", err)
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	expenses, err := s.ledger.ListExpenses(ctx, userID, from, to)
	if err != nil {
		return ReconciliationResult{}, fmt.Errorf("list expenses: %w", err)
	}

	result := Reconcile(plans, expenses, month, year)
	slog.DebugContext(ctx, "Reconciliation computed",
		"user_id", userID,
		"month", month,
		"year", year,
		"rows", len(result.Rows))
	return result, nil
}

// ForecastNextPeriod predicts next month's spending per category from
// the trailing window of history.
func (s *Service) ForecastNextPeriod(ctx context.Context, userID int64) (ForecastResult, error) {
	now := s.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -s.policy.ForecastWindow+1, 0)
	expenses, err := s.ledger.ListExpenses(ctx, userID, from, time.Time{})
	if err != nil {
		return ForecastResult{}, fmt.Errorf("list expenses: %w", err)
	}

	result := Forecast(SeriesByCategory(expenses), s.policy)
	slog.DebugContext(ctx, "Forecast computed",
		"user_id", userID,
		"success", result.Success,
		"categories", len(result.Predictions))
	return result, nil
}

// DetectAnomalies scans the user's full history for outlier transactions.
func (s *Service) DetectAnomalies(ctx context.Context, userID int64) (AnomalyResult, error) {
	expenses, err := s.ledger.ListExpenses(ctx, userID, time.Time{}, time.Time{})
	if err != nil {
		return AnomalyResult{}, fmt.Errorf("list expenses: %w", err)
	}

	result := DetectAnomalies(expenses, s.policy)
	slog.DebugContext(ctx, "Anomaly detection computed",
		"user_id", userID,
		"success", result.Success,
		"anomalies_found", result.AnomaliesFound)
	return result, nil
}

// RecommendSavings runs the full pipeline for one month and combines
// its signals into ranked advice. Insufficient history in one stage
// degrades to fewer signals, never to a failed call.
func (s *Service) RecommendSavings(ctx context.Context, userID int64, month, year int) (RecommendationResult, error) {
	reconciliation, err := s.Reconciliation(ctx, userID, month, year)
	if err != nil {
		return RecommendationResult{}, err
	}
	forecast, err := s.ForecastNextPeriod(ctx, userID)
	if err != nil {
		return RecommendationResult{}, err
	}
	anomalies, err := s.DetectAnomalies(ctx, userID)
	if err != nil {
		return RecommendationResult{}, err
	}
	balance, err := s.ledger.MonthlyBalance(ctx, userID, month, year)
	if err != nil {
		return RecommendationResult{}, fmt.Errorf("monthly balance: %w", err)
	}

	result := Recommend(reconciliation.Rows, forecast.Predictions, anomalies.Anomalies, balance, s.policy)
	slog.InfoContext(ctx, "Recommendations generated",
		"user_id", userID,
		"month", month,
		"year", year,
		"recommendations", len(result.Recommendations),
		"total_potential_savings_cents", result.TotalPotentialSavings.Cents)
	return result, nil
}
