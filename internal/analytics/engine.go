package analytics

import (
	"math"
	"sort"
)

// fallbackStepDays is the forecast step when the series is too short to
// estimate the spacing between observations.
const fallbackStepDays = 30.0

// Engine computes statistics over an in-memory set of metric points.
// It retains its own copy of the input and performs no I/O; construct one per
// request from a freshly loaded dataset.
type Engine struct {
	points []MetricPoint
}

// NewEngine creates an Engine over a copy of the given points.
func NewEngine(points []MetricPoint) *Engine {
	cp := make([]MetricPoint, len(points))
	copy(cp, points)
	return &Engine{points: cp}
}

// GroupBy partitions the points by the given key. GroupAll yields a single
// "all" group containing everything (present even when the dataset is empty).
// Points missing the selected field fall into the "unknown" bucket.
func (e *Engine) GroupBy(key GroupKey) map[string][]MetricPoint {
	if key == GroupAll {
		all := make([]MetricPoint, len(e.points))
		copy(all, e.points)
		return map[string][]MetricPoint{"all": all}
	}

	groups := make(map[string][]MetricPoint)
	for _, p := range e.points {
		label := ""
		switch key {
		case GroupCategory:
			label = p.Category
		case GroupMetric:
			label = p.Metric
		}
		if label == "" {
			label = unknownGroup
		}
		groups[label] = append(groups[label], p)
	}
	return groups
}

// Aggregates returns sum/avg/max/min/count per group.
func (e *Engine) Aggregates(key GroupKey) map[string]AggregateResult {
	out := make(map[string]AggregateResult)
	for label, pts := range e.GroupBy(key) {
		out[label] = aggregate(pts)
	}
	return out
}

func aggregate(pts []MetricPoint) AggregateResult {
	if len(pts) == 0 {
		return AggregateResult{}
	}

	agg := AggregateResult{
		Max:   pts[0].Value,
		Min:   pts[0].Value,
		Count: len(pts),
	}
	for _, p := range pts {
		agg.Sum += p.Value
		agg.Max = math.Max(agg.Max, p.Value)
		agg.Min = math.Min(agg.Min, p.Value)
	}
	agg.Avg = agg.Sum / float64(agg.Count)
	return agg
}

// MovingAverage returns, per group, the trailing mean over the given period
// with points sorted ascending by timestamp. The window is clipped at the
// start of the series, so early points average over fewer values.
func (e *Engine) MovingAverage(period int, key GroupKey) map[string][]SeriesPoint {
	if period < 1 {
		period = 1
	}

	out := make(map[string][]SeriesPoint)
	for label, pts := range e.GroupBy(key) {
		sorted := sortByTime(pts)
		series := make([]SeriesPoint, 0, len(sorted))
		for i := range sorted {
			start := i - period + 1
			if start < 0 {
				start = 0
			}
			var sum float64
			for _, p := range sorted[start : i+1] {
				sum += p.Value
			}
			series = append(series, SeriesPoint{
				Timestamp: sorted[i].Timestamp,
				Value:     round2(sum / float64(i+1-start)),
			})
		}
		out[label] = series
	}
	return out
}

// ZScores returns population mean, population standard deviation (divide by
// N), and per-point z-scores for each group. Points are scored in their
// original load order; a zero standard deviation yields all-zero scores.
func (e *Engine) ZScores(key GroupKey) map[string]ZScoreResult {
	out := make(map[string]ZScoreResult)
	for label, pts := range e.GroupBy(key) {
		out[label] = zScores(pts)
	}
	return out
}

func zScores(pts []MetricPoint) ZScoreResult {
	n := len(pts)
	if n == 0 {
		return ZScoreResult{Scores: []ScoredPoint{}}
	}

	var sum float64
	for _, p := range pts {
		sum += p.Value
	}
	mean := sum / float64(n)

	var variance float64
	for _, p := range pts {
		d := p.Value - mean
		variance += d * d
	}
	variance /= float64(n)
	std := math.Sqrt(variance)

	scores := make([]ScoredPoint, 0, n)
	for _, p := range pts {
		z := 0.0
		if std != 0 {
			z = round2((p.Value - mean) / std)
		}
		scores = append(scores, ScoredPoint{
			Timestamp: p.Timestamp,
			Value:     p.Value,
			ZScore:    z,
		})
	}

	return ZScoreResult{
		Mean:   round2(mean),
		StdDev: round2(std),
		Scores: scores,
	}
}

// Trends fits a linear regression over each group's time-sorted points and
// derives a direction label and percent change.
func (e *Engine) Trends(key GroupKey) map[string]TrendResult {
	out := make(map[string]TrendResult)
	for label, pts := range e.GroupBy(key) {
		out[label] = trend(sortByTime(pts))
	}
	return out
}

func trend(sorted []MetricPoint) TrendResult {
	f := linearRegression(sorted)

	t := TrendResult{
		Slope:     f.Slope,
		Intercept: f.Intercept,
		Trend:     TrendFlat,
	}
	switch {
	case f.Slope > flatSlopeEpsilon:
		t.Trend = TrendGrowing
	case f.Slope < -flatSlopeEpsilon:
		t.Trend = TrendDeclining
	}

	if len(sorted) > 0 {
		first := sorted[0].Value
		last := sorted[len(sorted)-1].Value
		// Percent change is 0 when the series starts at 0 (no division by zero).
		if first != 0 {
			t.PercentChange = (last - first) / math.Abs(first) * 100
		}
	}
	return t
}

// Forecast projects future values per group using the fitted regression.
// The step between projected points is the average spacing of the observed
// series (30 days when fewer than two points exist). Projected values are
// rounded to two decimals; timestamps are truncated to calendar days.
func (e *Engine) Forecast(periods int, key GroupKey) map[string]ForecastResult {
	out := make(map[string]ForecastResult)
	for label, pts := range e.GroupBy(key) {
		out[label] = forecast(sortByTime(pts), periods)
	}
	return out
}

func forecast(sorted []MetricPoint, periods int) ForecastResult {
	result := ForecastResult{
		Next:   []ForecastPoint{},
		Method: MethodLinearRegression,
	}
	if len(sorted) == 0 {
		return result
	}

	f := linearRegression(sorted)
	xs := elapsedDays(sorted)
	lastX := xs[len(xs)-1]

	step := fallbackStepDays
	if len(sorted) >= 2 {
		step = lastX / float64(len(sorted)-1)
	}

	base := sorted[0].Timestamp
	for i := 1; i <= periods; i++ {
		x := lastX + step*float64(i)
		ts := addDays(base, x)
		result.Next = append(result.Next, ForecastPoint{
			Timestamp: ts.Format("2006-01-02"),
			Value:     round2(f.Slope*x + f.Intercept),
		})
	}
	return result
}

// ChartSpec filters the dataset to the selected metric, sorted ascending by
// timestamp. Callers must treat an empty Data slice as "no data for this
// metric" rather than rendering an empty chart.
func (e *Engine) ChartSpec(metric string) ChartSpec {
	var matched []MetricPoint
	for _, p := range e.points {
		if p.Metric == metric {
			matched = append(matched, p)
		}
	}
	sorted := sortByTime(matched)

	data := make([]SeriesPoint, 0, len(sorted))
	for _, p := range sorted {
		data = append(data, SeriesPoint{Timestamp: p.Timestamp, Value: p.Value})
	}

	return ChartSpec{
		Type: "line",
		Data: data,
		Axis: "date",
	}
}

// sortByTime returns a copy of pts sorted ascending by timestamp.
// The sort is stable so equal timestamps keep their load order.
func sortByTime(pts []MetricPoint) []MetricPoint {
	sorted := make([]MetricPoint, len(pts))
	copy(sorted, pts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}
