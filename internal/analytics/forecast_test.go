package analytics

import (
	"testing"

	"budget/internal/core"
)

func series(category string, cents ...int64) CategorySeries {
	s := CategorySeries{Category: category}
	year, month := 2024, 7
	for _, c := range cents {
		s.Months = append(s.Months, MonthTotal{Month: month, Year: year, Total: core.Money{Cents: c}})
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return s
}

func TestForecastFlatSpendingIsStable(t *testing.T) {
	// Exactly the minimum history, $200/month flat.
	got := Forecast([]CategorySeries{series("Food", 20000, 20000, 20000)}, DefaultPolicy())

	if !got.Success {
		t.Fatalf("expected success, got message %q", got.Message)
	}
	pred, ok := got.Predictions["Food"]
	if !ok {
		t.Fatalf("expected a Food prediction, got %v", got.Predictions)
	}
	if pred.Trend != TrendStable {
		t.Fatalf("expected Stable trend, got %s", pred.Trend)
	}
	if pred.Predicted.Cents != 20000 {
		t.Fatalf("expected predicted 20000, got %d", pred.Predicted.Cents)
	}
	if pred.HistoricalAverage.Cents != 20000 {
		t.Fatalf("expected average 20000, got %d", pred.HistoricalAverage.Cents)
	}
	if pred.Confidence <= 0 || pred.Confidence > 100 {
		t.Fatalf("expected confidence in (0,100], got %v", pred.Confidence)
	}
}

func TestForecastInsufficientHistory(t *testing.T) {
	got := Forecast([]CategorySeries{series("Food", 20000, 20000)}, DefaultPolicy())
	if got.Success {
		t.Fatal("expected success=false with under 3 months of history")
	}
	if got.Message == "" {
		t.Fatal("expected an explanatory message")
	}
}

func TestForecastPartialEligibility(t *testing.T) {
	// One category qualifies, one does not: proceed with the subset.
	got := Forecast([]CategorySeries{
		series("Food", 20000, 20000, 20000, 20000),
		series("Pets", 5000),
	}, DefaultPolicy())

	if !got.Success {
		t.Fatalf("expected success, got %q", got.Message)
	}
	if len(got.Predictions) != 1 {
		t.Fatalf("expected only the eligible category, got %v", got.Predictions)
	}
	if _, ok := got.Predictions["Pets"]; ok {
		t.Fatal("Pets has too little history to be predicted")
	}
	if got.TotalPredicted.Cents != got.Predictions["Food"].Predicted.Cents {
		t.Fatal("total should equal the single prediction")
	}
}

func TestForecastTrendDirections(t *testing.T) {
	cases := []struct {
		name  string
		cents []int64
		want  Trend
	}{
		{"rising", []int64{10000, 10000, 20000, 20000}, TrendIncreasing},
		{"falling", []int64{20000, 20000, 10000, 10000}, TrendDecreasing},
		{"drift below threshold", []int64{10000, 10200, 10400, 10500}, TrendStable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Forecast([]CategorySeries{series("Food", tc.cents...)}, DefaultPolicy())
			if !got.Success {
				t.Fatalf("expected success, got %q", got.Message)
			}
			if trend := got.Predictions["Food"].Trend; trend != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, trend)
			}
		})
	}
}

func TestForecastAdjustmentIsClamped(t *testing.T) {
	// Halves differ by 4x; the projection must not follow the full delta.
	got := Forecast([]CategorySeries{series("Food", 10000, 10000, 40000, 40000)}, DefaultPolicy())
	pred := got.Predictions["Food"]
	// avg = 25000, clamp at +50% -> at most 37500.
	if pred.Predicted.Cents != 37500 {
		t.Fatalf("expected clamped prediction 37500, got %d", pred.Predicted.Cents)
	}
}

func TestForecastUsesTrailingWindow(t *testing.T) {
	// Nine months of history; only the last six should shape the result.
	cents := []int64{900000, 900000, 900000, 20000, 20000, 20000, 20000, 20000, 20000}
	got := Forecast([]CategorySeries{series("Food", cents...)}, DefaultPolicy())
	pred := got.Predictions["Food"]
	if pred.HistoricalAverage.Cents != 20000 {
		t.Fatalf("expected average over trailing window 20000, got %d", pred.HistoricalAverage.Cents)
	}
	if pred.Trend != TrendStable {
		t.Fatalf("expected Stable within the window, got %s", pred.Trend)
	}
}

func TestForecastConfidenceOrdering(t *testing.T) {
	// More months and steadier spending must not lower confidence.
	short := Forecast([]CategorySeries{series("Food", 20000, 20000, 20000)}, DefaultPolicy())
	long := Forecast([]CategorySeries{series("Food", 20000, 20000, 20000, 20000, 20000, 20000)}, DefaultPolicy())
	if long.Predictions["Food"].Confidence <= short.Predictions["Food"].Confidence {
		t.Fatalf("expected confidence to grow with history: %v vs %v",
			long.Predictions["Food"].Confidence, short.Predictions["Food"].Confidence)
	}

	steady := Forecast([]CategorySeries{series("Food", 20000, 20000, 20000, 20000)}, DefaultPolicy())
	noisy := Forecast([]CategorySeries{series("Food", 5000, 35000, 2000, 38000)}, DefaultPolicy())
	if noisy.Predictions["Food"].Confidence >= steady.Predictions["Food"].Confidence {
		t.Fatalf("expected noisy series to have lower confidence: %v vs %v",
			noisy.Predictions["Food"].Confidence, steady.Predictions["Food"].Confidence)
	}
}
