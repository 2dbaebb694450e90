// Package analytics computes deterministic statistics over the portfolio's
// canned metrics dataset: grouped aggregates, moving averages, z-scores,
// linear-regression trends, forecasts, and chart series.
package analytics

import (
	"encoding/json"
	"fmt"
	"time"
)

// GroupKey selects how metric points are partitioned before aggregation.
type GroupKey string

// Supported grouping keys. GroupAll collapses everything into one "all" bucket.
const (
	GroupAll      GroupKey = ""
	GroupCategory GroupKey = "category"
	GroupMetric   GroupKey = "metric"
)

// unknownGroup is the bucket for points missing the selected group field.
const unknownGroup = "unknown"

// MetricPoint is a single timestamped observation from the dataset.
type MetricPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Category  string    `json:"category,omitempty"`
	Metric    string    `json:"metric,omitempty"`
	Unit      string    `json:"unit,omitempty"`
}

// UnmarshalJSON accepts both full RFC 3339 timestamps and bare calendar dates,
// since hand-authored dataset files commonly use either.
func (p *MetricPoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Timestamp string  `json:"timestamp"`
		Value     float64 `json:"value"`
		Category  string  `json:"category"`
		Metric    string  `json:"metric"`
		Unit      string  `json:"unit"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	ts, err := parseTimestamp(raw.Timestamp)
	if err != nil {
		return err
	}

	p.Timestamp = ts
	p.Value = raw.Value
	p.Category = raw.Category
	p.Metric = raw.Metric
	p.Unit = raw.Unit
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: not ISO-8601", s)
}

// AggregateResult holds per-group summary statistics.
// An empty group yields all zeros (no division by zero, no nulls).
type AggregateResult struct {
	Sum   float64 `json:"sum"`
	Avg   float64 `json:"avg"`
	Max   float64 `json:"max"`
	Min   float64 `json:"min"`
	Count int     `json:"count"`
}

// Trend direction labels.
const (
	TrendGrowing   = "Growing"
	TrendDeclining = "Declining"
	TrendFlat      = "Flat"
)

// flatSlopeEpsilon is the |slope| below which a trend is reported as Flat.
const flatSlopeEpsilon = 1e-9

// TrendResult describes the direction and magnitude of a group's time series.
type TrendResult struct {
	Slope         float64 `json:"slope"`
	Intercept     float64 `json:"intercept"`
	Trend         string  `json:"trend"`
	PercentChange float64 `json:"percentChange"`
}

// MethodLinearRegression is the only forecasting method currently implemented.
const MethodLinearRegression = "linear_regression"

// ForecastPoint is a single projected future observation. The timestamp is
// truncated to calendar-day granularity.
type ForecastPoint struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// ForecastResult holds a group's projected future values. Next is always
// non-nil; it is empty when the group had no observations.
type ForecastResult struct {
	Next   []ForecastPoint `json:"next"`
	Method string          `json:"method"`
}

// SeriesPoint is a timestamp/value pair in a computed output series.
type SeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// ZScoreResult holds population statistics and per-point anomaly scores for
// one group. Scores follow the original load order of the dataset, not
// time-sorted order.
type ZScoreResult struct {
	Mean   float64       `json:"mean"`
	StdDev float64       `json:"std"`
	Scores []ScoredPoint `json:"scores"`
}

// ScoredPoint is one observation with its z-score.
type ScoredPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	ZScore    float64   `json:"zscore"`
}

// ChartSpec is the renderable chart payload for one selected metric.
type ChartSpec struct {
	Type string        `json:"type"`
	Data []SeriesPoint `json:"data"`
	Axis string        `json:"axis"`
}
