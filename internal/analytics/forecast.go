package analytics

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"budget/internal/core"
)

// Forecast produces a next-period prediction per category from the
// monthly series. Categories with fewer than MinForecastMonths distinct
// months are excluded; the result reports success=false only when no
// category qualifies.
//
// Per-category computations are independent and run concurrently;
// results are merged back in the (sorted) input order so output is
// deterministic regardless of completion order.
func Forecast(series []CategorySeries, p Policy) ForecastResult {
	preds := make([]*Prediction, len(series))

	var g errgroup.Group
	for i, s := range series {
		g.Go(func() error {
			preds[i] = forecastCategory(s, p)
			return nil
		})
	}
	_ = g.Wait() // forecastCategory never errors

	result := ForecastResult{
		Predictions:    make(map[string]Prediction),
		AnalysisPeriod: fmt.Sprintf("last %d months", p.ForecastWindow),
	}
	for _, pred := range preds {
		if pred == nil {
			continue
		}
		result.Predictions[pred.Category] = *pred
		result.TotalPredicted.Cents += pred.Predicted.Cents
	}
	if len(result.Predictions) == 0 {
		return ForecastResult{
			Success: false,
			Message: fmt.Sprintf(
				"Not enough spending history for predictions: at least %d months of data are needed in some category.",
				p.MinForecastMonths),
		}
	}
	result.Success = true
	return result
}

// forecastCategory returns nil when the category lacks enough history.
func forecastCategory(s CategorySeries, p Policy) *Prediction {
	months := s.Months
	if len(months) > p.ForecastWindow {
		months = months[len(months)-p.ForecastWindow:]
	}
	n := len(months)
	if n < p.MinForecastMonths {
		return nil
	}

	totals := make([]float64, n)
	for i, m := range months {
		totals[i] = float64(m.Total.Cents)
	}
	avg := mean(totals)

	// Trend: compare the most recent half of the window against the
	// earlier half and look at the relative delta.
	half := n / 2
	earlier := mean(totals[:half])
	recent := mean(totals[n-half:])
	var delta float64
	if earlier > 0 {
		delta = (recent - earlier) / earlier
	}

	trend := TrendStable
	switch {
	case delta > p.TrendThreshold:
		trend = TrendIncreasing
	case delta < -p.TrendThreshold:
		trend = TrendDecreasing
	}

	// Project the average forward by the observed delta, clamped so a
	// single wild month cannot run the estimate away.
	adjustment := math.Max(-p.TrendClamp, math.Min(p.TrendClamp, delta))
	predicted := avg * (1 + adjustment)
	if predicted < 0 {
		predicted = 0
	}

	// Confidence grows with history (saturating at the full window) and
	// shrinks with the series' coefficient of variation.
	historyScore := float64(n) / float64(p.ForecastWindow)
	if historyScore > 1 {
		historyScore = 1
	}
	stabilityScore := 1.0
	if avg > 0 {
		cv := stddev(totals, avg) / avg
		stabilityScore = 1 / (1 + cv)
	}
	confidence := roundTo1(100 * historyScore * stabilityScore)
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	return &Prediction{
		Category:          s.Category,
		Predicted:         core.Money{Cents: int64(math.Round(predicted))},
		HistoricalAverage: core.Money{Cents: int64(math.Round(avg))},
		Trend:             trend,
		Confidence:        confidence,
	}
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// stddev is the population standard deviation around a known mean.
func stddev(vals []float64, m float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sq float64
	for _, v := range vals {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(vals)))
}
