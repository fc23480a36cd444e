package analytics

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"budget/internal/core"
)

// DetectAnomalies flags transactions whose amount deviates abnormally
// from their category's typical range. Each transaction is scored
// against a leave-one-out baseline (mean and standard deviation of the
// other transactions in the category), so one huge outlier cannot mask
// itself.
//
// Categories below MinAnomalyHistory transactions are skipped, as are
// zero-variance baselines. Success is false only when no category has
// enough history to establish a baseline.
func DetectAnomalies(expenses []core.Expense, p Policy) AnomalyResult {
	groups := ExpensesByCategory(expenses)

	categories := make([]string, 0, len(groups))
	for cat, txs := range groups {
		if len(txs) >= p.MinAnomalyHistory {
			categories = append(categories, cat)
		}
	}
	sort.Strings(categories)

	if len(categories) == 0 {
		return AnomalyResult{
			Success: false,
			Message: fmt.Sprintf(
				"Not enough transaction history for anomaly detection: at least %d transactions are needed in some category.",
				p.MinAnomalyHistory),
		}
	}

	perCategory := make([][]Anomaly, len(categories))
	var g errgroup.Group
	for i, cat := range categories {
		txs := groups[cat]
		g.Go(func() error {
			perCategory[i] = detectInCategory(cat, txs, p)
			return nil
		})
	}
	_ = g.Wait() // detectInCategory never errors

	result := AnomalyResult{Success: true}
	for _, anomalies := range perCategory {
		result.Anomalies = append(result.Anomalies, anomalies...)
	}
	result.AnomaliesFound = len(result.Anomalies)
	if result.AnomaliesFound == 0 {
		result.Message = "No unusual spending detected."
	} else {
		result.Message = fmt.Sprintf("Found %d unusual transaction(s).", result.AnomaliesFound)
	}
	return result
}

func detectInCategory(category string, txs []core.Expense, p Policy) []Anomaly {
	var sum int64
	for _, t := range txs {
		sum += t.Amount.Cents
	}

	var anomalies []Anomaly
	for i, t := range txs {
		// Baseline excludes the transaction under test.
		others := float64(len(txs) - 1)
		m := float64(sum-t.Amount.Cents) / others

		var sq float64
		for j, o := range txs {
			if j == i {
				continue
			}
			d := float64(o.Amount.Cents) - m
			sq += d * d
		}
		sd := math.Sqrt(sq / others)

		var z float64
		if sd == 0 {
			// All other amounts are identical. A matching amount has no
			// deviation (constant categories report nothing); any other
			// amount is extreme with no scale to grade it on.
			if float64(t.Amount.Cents) == m {
				continue
			}
			z = math.Inf(1)
			if float64(t.Amount.Cents) < m {
				z = math.Inf(-1)
			}
		} else {
			z = (float64(t.Amount.Cents) - m) / sd
		}
		if math.Abs(z) <= p.ZScoreThreshold {
			continue
		}

		low := m - p.ZScoreThreshold*sd
		if low < 0 {
			low = 0
		}
		high := m + p.ZScoreThreshold*sd

		a := Anomaly{
			Category:    category,
			Subcategory: t.Subcategory,
			Amount:      t.Amount,
			Date:        t.Date,
			RangeLow:    core.Money{Cents: int64(math.Round(low))},
			RangeHigh:   core.Money{Cents: int64(math.Round(high))},
			Severity:    severityFor(math.Abs(z), p),
		}
		if z > 0 {
			over := core.Money{Cents: t.Amount.Cents - a.RangeHigh.Cents}
			a.Deviation = over.String() + " above expected range"
		} else {
			under := core.Money{Cents: a.RangeLow.Cents - t.Amount.Cents}
			a.Deviation = under.String() + " below expected range"
		}
		anomalies = append(anomalies, a)
	}

	sort.Slice(anomalies, func(i, j int) bool {
		a, b := anomalies[i], anomalies[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.Before(b.Date.Time)
		}
		return a.Amount.Cents < b.Amount.Cents
	})
	return anomalies
}

func severityFor(absZ float64, p Policy) Severity {
	switch {
	case absZ > p.ZScoreHigh:
		return SeverityHigh
	case absZ > p.ZScoreMedium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
