package extractors

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/miradorstack/mirador-twin/internal/models"
	"github.com/miradorstack/mirador-twin/internal/utils"
)

// DefaultAnomalyThreshold is the z-score above which a sample is flagged.
const DefaultAnomalyThreshold = 2.5

// ErrNoSamples is returned when a trend is requested for an empty series.
var ErrNoSamples = errors.New("no readings")

// GasSample is one timestamped concentration of a single gas.
type GasSample struct {
	Timestamp time.Time
	Value     float64
}

// TrendExtractor summarises gas concentration histories.
type TrendExtractor struct{}

// NewTrendExtractor creates a gas trend analyser.
func NewTrendExtractor() *TrendExtractor {
	return &TrendExtractor{}
}

// Samples extracts gas from readings ordered by timestamp. Every reading must
// carry an RFC3339 timestamp.
func (e *TrendExtractor) Samples(gas models.Gas, readings []models.DGAReading) ([]GasSample, error) {
	series := make([]GasSample, 0, len(readings))
	for i, reading := range readings {
		ts, err := utils.ParseRFC3339(reading.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("reading %d: %w", i, err)
		}
		series = append(series, GasSample{Timestamp: ts, Value: reading.Value(gas)})
	}
	sort.SliceStable(series, func(i, j int) bool { return series[i].Timestamp.Before(series[j].Timestamp) })
	return series, nil
}

// Summarize computes distribution statistics of the series.
func (e *TrendExtractor) Summarize(name string, series []GasSample) models.StatisticsSummary {
	summary := models.StatisticsSummary{MetricName: name, SampleCount: len(series)}
	if len(series) == 0 {
		return summary
	}

	values := sampleValues(series)
	sort.Float64s(values)

	summary.Avg = stat.Mean(values, nil)
	summary.Min = values[0]
	summary.Max = values[len(values)-1]
	summary.Percentile95 = stat.Quantile(0.95, stat.Empirical, values, nil)
	if len(values) > 1 {
		summary.StdDev = stat.StdDev(values, nil)
	}
	return summary
}

// ProductionRate fits a least-squares line through the series and returns its
// slope in ppm/day. Series spanning no time have a rate of zero.
func (e *TrendExtractor) ProductionRate(series []GasSample) float64 {
	if len(series) < 2 {
		return 0
	}
	start := series[0].Timestamp
	xs := make([]float64, len(series))
	for i, sample := range series {
		xs[i] = utils.DurationDays(start, sample.Timestamp)
	}
	if xs[len(xs)-1] == 0 {
		return 0
	}
	_, slope := stat.LinearRegression(xs, sampleValues(series), nil, false)
	if math.IsNaN(slope) {
		return 0
	}
	return slope
}

// Detect finds samples whose z-score reaches threshold; a non-positive
// threshold uses DefaultAnomalyThreshold.
func (e *TrendExtractor) Detect(series []GasSample, threshold float64) []models.TrendAnomaly {
	if len(series) == 0 {
		return nil
	}
	if threshold <= 0 {
		threshold = DefaultAnomalyThreshold
	}

	mean, stdDev := stat.PopMeanStdDev(sampleValues(series), nil)
	if stdDev == 0 {
		stdDev = 0.01
	}

	anomalies := make([]models.TrendAnomaly, 0)
	for _, sample := range series {
		score := (sample.Value - mean) / stdDev
		if score >= threshold {
			anomalies = append(anomalies, models.TrendAnomaly{
				Timestamp: sample.Timestamp.UTC().Format(time.RFC3339),
				Value:     sample.Value,
				Score:     score,
				Threshold: threshold,
			})
		}
	}
	return anomalies
}

// Analyze runs the full trend analysis of req.
func (e *TrendExtractor) Analyze(req models.TrendRequest) (models.TrendResponse, error) {
	gas, err := models.ParseGas(req.Gas)
	if err != nil {
		return models.TrendResponse{}, err
	}
	if len(req.Readings) == 0 {
		return models.TrendResponse{}, ErrNoSamples
	}
	series, err := e.Samples(gas, req.Readings)
	if err != nil {
		return models.TrendResponse{}, err
	}

	return models.TrendResponse{
		Gas:        gas,
		Summary:    e.Summarize(string(gas), series),
		RatePerDay: e.ProductionRate(series),
		Anomalies:  e.Detect(series, req.Threshold),
	}, nil
}

func sampleValues(series []GasSample) []float64 {
	values := make([]float64, len(series))
	for i, sample := range series {
		values[i] = sample.Value
	}
	return values
}
