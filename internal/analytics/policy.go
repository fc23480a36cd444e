package analytics

// Policy collects the tunable thresholds of the analytics pipeline.
// The defaults are the shipped behavior; deployments may override them
// through configuration.
type Policy struct {
	// Forecasting
	ForecastWindow    int     // trailing months considered per category
	MinForecastMonths int     // distinct months required to predict a category
	TrendThreshold    float64 // relative half-over-half delta for a trend label
	TrendClamp        float64 // bound on the relative adjustment of the average

	// Anomaly detection
	MinAnomalyHistory int     // transactions required per category
	ZScoreThreshold   float64 // |z| above which a transaction is anomalous
	ZScoreMedium      float64 // |z| above which severity is at least Medium
	ZScoreHigh        float64 // |z| above which severity is High

	// Recommendations
	ConfidenceFloor  float64 // minimum forecast confidence for trend warnings
	SavingsRateFloor float64 // savings-rate percent below which to warn
}

// DefaultPolicy returns the standard thresholds.
func DefaultPolicy() Policy {
	return Policy{
		ForecastWindow:    6,
		MinForecastMonths: 3,
		TrendThreshold:    0.10,
		TrendClamp:        0.50,
		MinAnomalyHistory: 5,
		ZScoreThreshold:   2.0,
		ZScoreMedium:      2.5,
		ZScoreHigh:        3.0,
		ConfidenceFloor:   40,
		SavingsRateFloor:  10,
	}
}
