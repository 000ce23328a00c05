package services

import (
	"math"

	"indiflow-dashboard-api/models"

	"gonum.org/v1/gonum/stat"
)

type LevelAccuracy struct {
	Samples         int     `json:"samples"`
	MeanAbsErrorMin float64 `json:"mean_abs_error_min"`
}

// AccuracySummary compares predicted against actual travel times.
// Bias is actual minus predicted, so a positive bias means trips ran longer
// than predicted. The calibration line fits actual = intercept + slope*predicted.
type AccuracySummary struct {
	Samples              int                                   `json:"samples"`
	MeanAbsErrorMin      float64                               `json:"mean_abs_error_min"`
	MeanBiasMin          float64                               `json:"mean_bias_min"`
	Correlation          float64                               `json:"correlation"`
	CalibrationSlope     float64                               `json:"calibration_slope"`
	CalibrationIntercept float64                               `json:"calibration_intercept"`
	ByTraffic            map[models.TrafficLevel]LevelAccuracy `json:"by_traffic"`
}

func ComputeAccuracy(subs []models.TrainingSubmission) AccuracySummary {
	summary := AccuracySummary{
		Samples:   len(subs),
		ByTraffic: make(map[models.TrafficLevel]LevelAccuracy, len(models.TrafficLevels)),
	}
	if len(subs) == 0 {
		return summary
	}

	predicted := make([]float64, len(subs))
	actual := make([]float64, len(subs))
	absErr := make([]float64, len(subs))
	bias := make([]float64, len(subs))
	levelErr := map[models.TrafficLevel][]float64{}
	for i, s := range subs {
		predicted[i] = s.PredictedTimeMinutes
		actual[i] = s.ActualTimeMinutes
		bias[i] = s.ActualTimeMinutes - s.PredictedTimeMinutes
		absErr[i] = math.Abs(bias[i])
		levelErr[s.TrafficLevel] = append(levelErr[s.TrafficLevel], absErr[i])
	}

	summary.MeanAbsErrorMin = stat.Mean(absErr, nil)
	summary.MeanBiasMin = stat.Mean(bias, nil)
	for level, errs := range levelErr {
		summary.ByTraffic[level] = LevelAccuracy{Samples: len(errs), MeanAbsErrorMin: stat.Mean(errs, nil)}
	}

	summary.CalibrationSlope, summary.CalibrationIntercept = fitCalibration(predicted, actual)
	if len(subs) >= 2 && stat.Variance(predicted, nil) > 0 && stat.Variance(actual, nil) > 0 {
		summary.Correlation = stat.Correlation(predicted, actual, nil)
	}
	return summary
}

// fitCalibration regresses ys on xs. With fewer than two points or no
// spread in xs it returns a flat line through the mean of ys.
func fitCalibration(xs, ys []float64) (slope, intercept float64) {
	if len(xs) < 2 || stat.Variance(xs, nil) == 0 {
		return 0, stat.Mean(ys, nil)
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta, alpha
}
