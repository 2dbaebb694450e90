package analytics

import (
	"math"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestGroupBy_All(t *testing.T) {
	t.Parallel()

	engine := NewEngine([]MetricPoint{
		{Timestamp: day(0), Value: 1, Metric: "views"},
		{Timestamp: day(1), Value: 2, Metric: "engagement"},
	})

	groups := engine.GroupBy(GroupAll)
	if len(groups) != 1 {
		t.Fatalf("group count = %d, want 1", len(groups))
	}
	if len(groups["all"]) != 2 {
		t.Errorf(`groups["all"] has %d points, want 2`, len(groups["all"]))
	}
}

func TestGroupBy_AllPresentWhenEmpty(t *testing.T) {
	t.Parallel()

	groups := NewEngine(nil).GroupBy(GroupAll)
	pts, ok := groups["all"]
	if !ok {
		t.Fatal(`expected "all" group for empty dataset`)
	}
	if len(pts) != 0 {
		t.Errorf(`groups["all"] has %d points, want 0`, len(pts))
	}
}

func TestGroupBy_MissingFieldFallsBackToUnknown(t *testing.T) {
	t.Parallel()

	engine := NewEngine([]MetricPoint{
		{Timestamp: day(0), Value: 1, Metric: "views", Category: "portfolio"},
		{Timestamp: day(1), Value: 2, Metric: "views"},
	})

	groups := engine.GroupBy(GroupCategory)
	if len(groups["portfolio"]) != 1 {
		t.Errorf("portfolio group has %d points, want 1", len(groups["portfolio"]))
	}
	if len(groups["unknown"]) != 1 {
		t.Errorf("unknown group has %d points, want 1", len(groups["unknown"]))
	}
}

func TestAggregates_Basic(t *testing.T) {
	t.Parallel()

	engine := NewEngine([]MetricPoint{
		{Timestamp: day(0), Value: 10, Metric: "views"},
		{Timestamp: day(1), Value: 20, Metric: "views"},
		{Timestamp: day(2), Value: 60, Metric: "views"},
	})

	agg := engine.Aggregates(GroupMetric)["views"]
	if agg.Sum != 90 {
		t.Errorf("Sum = %v, want 90", agg.Sum)
	}
	if agg.Avg != 30 {
		t.Errorf("Avg = %v, want 30", agg.Avg)
	}
	if agg.Max != 60 || agg.Min != 10 {
		t.Errorf("Max/Min = %v/%v, want 60/10", agg.Max, agg.Min)
	}
	if agg.Count != 3 {
		t.Errorf("Count = %v, want 3", agg.Count)
	}
	if agg.Min > agg.Avg || agg.Avg > agg.Max {
		t.Errorf("expected Min <= Avg <= Max, got %v <= %v <= %v", agg.Min, agg.Avg, agg.Max)
	}
}

func TestMovingAverage_ClipsEarlyWindow(t *testing.T) {
	t.Parallel()

	engine := NewEngine([]MetricPoint{
		{Timestamp: day(2), Value: 30, Metric: "views"},
		{Timestamp: day(0), Value: 10, Metric: "views"},
		{Timestamp: day(1), Value: 20, Metric: "views"},
	})

	series := engine.MovingAverage(3, GroupMetric)["views"]
	if len(series) != 3 {
		t.Fatalf("series length = %d, want 3", len(series))
	}

	// Points must come back time-sorted with a clipped trailing window.
	want := []float64{10, 15, 20}
	for i, w := range want {
		if series[i].Value != w {
			t.Errorf("series[%d].Value = %v, want %v", i, series[i].Value, w)
		}
	}
	if !series[0].Timestamp.Equal(day(0)) {
		t.Errorf("series[0].Timestamp = %v, want %v", series[0].Timestamp, day(0))
	}
}

func TestMovingAverage_PeriodBelowOne(t *testing.T) {
	t.Parallel()

	engine := NewEngine([]MetricPoint{
		{Timestamp: day(0), Value: 10, Metric: "views"},
		{Timestamp: day(1), Value: 20, Metric: "views"},
	})

	// period 0 behaves like period 1: each point averages only itself.
	series := engine.MovingAverage(0, GroupMetric)["views"]
	if series[0].Value != 10 || series[1].Value != 20 {
		t.Errorf("series values = %v/%v, want 10/20", series[0].Value, series[1].Value)
	}
}

func TestZScores_ConstantSeries(t *testing.T) {
	t.Parallel()

	engine := NewEngine([]MetricPoint{
		{Timestamp: day(0), Value: 5, Metric: "views"},
		{Timestamp: day(1), Value: 5, Metric: "views"},
		{Timestamp: day(2), Value: 5, Metric: "views"},
	})

	result := engine.ZScores(GroupMetric)["views"]
	if result.StdDev != 0 {
		t.Errorf("StdDev = %v, want 0", result.StdDev)
	}
	for i, s := range result.Scores {
		if s.ZScore != 0 {
			t.Errorf("Scores[%d].ZScore = %v, want 0", i, s.ZScore)
		}
	}
}

func TestZScores_PopulationStats(t *testing.T) {
	t.Parallel()

	engine := NewEngine([]MetricPoint{
		{Timestamp: day(0), Value: 2, Metric: "views"},
		{Timestamp: day(1), Value: 4, Metric: "views"},
		{Timestamp: day(2), Value: 6, Metric: "views"},
	})

	result := engine.ZScores(GroupMetric)["views"]
	if result.Mean != 4 {
		t.Errorf("Mean = %v, want 4", result.Mean)
	}
	// Population std dev: sqrt(8/3) = 1.632... -> 1.63
	if result.StdDev != 1.63 {
		t.Errorf("StdDev = %v, want 1.63", result.StdDev)
	}
	if got := result.Scores[0].ZScore; got != -1.22 {
		t.Errorf("Scores[0].ZScore = %v, want -1.22", got)
	}
}

func TestZScores_KeepsLoadOrder(t *testing.T) {
	t.Parallel()

	// Deliberately out of time order; scores must follow load order.
	engine := NewEngine([]MetricPoint{
		{Timestamp: day(5), Value: 50, Metric: "views"},
		{Timestamp: day(0), Value: 10, Metric: "views"},
	})

	result := engine.ZScores(GroupMetric)["views"]
	if !result.Scores[0].Timestamp.Equal(day(5)) {
		t.Errorf("Scores[0].Timestamp = %v, want %v", result.Scores[0].Timestamp, day(5))
	}
	if result.Scores[0].Value != 50 {
		t.Errorf("Scores[0].Value = %v, want 50", result.Scores[0].Value)
	}
}

func TestZScores_Empty(t *testing.T) {
	t.Parallel()

	result := zScores(nil)
	if result.Scores == nil {
		t.Fatal("Scores should be an empty slice, not nil")
	}
	if len(result.Scores) != 0 {
		t.Errorf("Scores length = %d, want 0", len(result.Scores))
	}
}

func TestTrends_TwoPointGrowth(t *testing.T) {
	t.Parallel()

	engine := NewEngine([]MetricPoint{
		{Timestamp: day(0), Value: 10, Metric: "views"},
		{Timestamp: day(30), Value: 20, Metric: "views"},
	})

	tr := engine.Trends(GroupMetric)["views"]
	if tr.Trend != TrendGrowing {
		t.Errorf("Trend = %q, want %q", tr.Trend, TrendGrowing)
	}
	if math.Abs(tr.PercentChange-100) > 0.0001 {
		t.Errorf("PercentChange = %v, want 100", tr.PercentChange)
	}
}

func TestTrends_FlatWithinEpsilon(t *testing.T) {
	t.Parallel()

	engine := NewEngine([]MetricPoint{
		{Timestamp: day(0), Value: 5, Metric: "views"},
		{Timestamp: day(10), Value: 5, Metric: "views"},
	})

	tr := engine.Trends(GroupMetric)["views"]
	if tr.Trend != TrendFlat {
		t.Errorf("Trend = %q, want %q", tr.Trend, TrendFlat)
	}
	if tr.PercentChange != 0 {
		t.Errorf("PercentChange = %v, want 0", tr.PercentChange)
	}
}

func TestTrends_ZeroFirstValue(t *testing.T) {
	t.Parallel()

	engine := NewEngine([]MetricPoint{
		{Timestamp: day(0), Value: 0, Metric: "views"},
		{Timestamp: day(10), Value: 8, Metric: "views"},
	})

	// A series starting at zero reports 0% change rather than dividing by zero.
	tr := engine.Trends(GroupMetric)["views"]
	if tr.PercentChange != 0 {
		t.Errorf("PercentChange = %v, want 0", tr.PercentChange)
	}
	if tr.Trend != TrendGrowing {
		t.Errorf("Trend = %q, want %q", tr.Trend, TrendGrowing)
	}
}

func TestTrends_NegativeFirstValue(t *testing.T) {
	t.Parallel()

	engine := NewEngine([]MetricPoint{
		{Timestamp: day(0), Value: -10, Metric: "views"},
		{Timestamp: day(10), Value: -5, Metric: "views"},
	})

	// Denominator uses the absolute first value: (-5 - -10) / 10 * 100 = 50.
	tr := engine.Trends(GroupMetric)["views"]
	if math.Abs(tr.PercentChange-50) > 0.0001 {
		t.Errorf("PercentChange = %v, want 50", tr.PercentChange)
	}
}

func TestForecast_EmptyGroup(t *testing.T) {
	t.Parallel()

	result := forecast(nil, 3)
	if result.Next == nil {
		t.Fatal("Next should be an empty slice, not nil")
	}
	if len(result.Next) != 0 {
		t.Errorf("Next length = %d, want 0", len(result.Next))
	}
	if result.Method != MethodLinearRegression {
		t.Errorf("Method = %q, want %q", result.Method, MethodLinearRegression)
	}
}

func TestForecast_ProjectsAtAverageSpacing(t *testing.T) {
	t.Parallel()

	// y = x over days 0, 10, 20 -> spacing 10 days
	engine := NewEngine([]MetricPoint{
		{Timestamp: day(0), Value: 0, Metric: "views"},
		{Timestamp: day(10), Value: 10, Metric: "views"},
		{Timestamp: day(20), Value: 20, Metric: "views"},
	})

	result := engine.Forecast(3, GroupMetric)["views"]
	if len(result.Next) != 3 {
		t.Fatalf("Next length = %d, want 3", len(result.Next))
	}

	wantValues := []float64{30, 40, 50}
	wantDates := []string{
		day(30).Format("2006-01-02"),
		day(40).Format("2006-01-02"),
		day(50).Format("2006-01-02"),
	}
	for i := range result.Next {
		if math.Abs(result.Next[i].Value-wantValues[i]) > 0.0001 {
			t.Errorf("Next[%d].Value = %v, want %v", i, result.Next[i].Value, wantValues[i])
		}
		if result.Next[i].Timestamp != wantDates[i] {
			t.Errorf("Next[%d].Timestamp = %q, want %q", i, result.Next[i].Timestamp, wantDates[i])
		}
	}
}

func TestForecast_SinglePointUsesFallbackStep(t *testing.T) {
	t.Parallel()

	engine := NewEngine([]MetricPoint{
		{Timestamp: day(0), Value: 42, Metric: "views"},
	})

	result := engine.Forecast(2, GroupMetric)["views"]
	if len(result.Next) != 2 {
		t.Fatalf("Next length = %d, want 2", len(result.Next))
	}
	// 30-day steps from the single observation, flat projection.
	if result.Next[0].Timestamp != day(30).Format("2006-01-02") {
		t.Errorf("Next[0].Timestamp = %q, want %q", result.Next[0].Timestamp, day(30).Format("2006-01-02"))
	}
	if result.Next[0].Value != 42 {
		t.Errorf("Next[0].Value = %v, want 42", result.Next[0].Value)
	}
}

func TestChartSpec_FiltersAndSorts(t *testing.T) {
	t.Parallel()

	engine := NewEngine([]MetricPoint{
		{Timestamp: day(5), Value: 2, Metric: "views"},
		{Timestamp: day(0), Value: 1, Metric: "views"},
		{Timestamp: day(3), Value: 9, Metric: "engagement"},
	})

	spec := engine.ChartSpec("views")
	if spec.Type != "line" || spec.Axis != "date" {
		t.Errorf("Type/Axis = %q/%q, want line/date", spec.Type, spec.Axis)
	}
	if len(spec.Data) != 2 {
		t.Fatalf("Data length = %d, want 2", len(spec.Data))
	}
	if spec.Data[0].Value != 1 || spec.Data[1].Value != 2 {
		t.Errorf("Data values = %v/%v, want 1/2", spec.Data[0].Value, spec.Data[1].Value)
	}
}

func TestChartSpec_UnknownMetric(t *testing.T) {
	t.Parallel()

	engine := NewEngine([]MetricPoint{
		{Timestamp: day(0), Value: 1, Metric: "views"},
	})

	spec := engine.ChartSpec("bounce_rate")
	if len(spec.Data) != 0 {
		t.Errorf("Data length = %d, want 0", len(spec.Data))
	}
}

func TestNewEngine_CopiesInput(t *testing.T) {
	t.Parallel()

	pts := []MetricPoint{{Timestamp: day(0), Value: 1, Metric: "views"}}
	engine := NewEngine(pts)
	pts[0].Value = 99

	agg := engine.Aggregates(GroupAll)["all"]
	if agg.Sum != 1 {
		t.Errorf("Sum = %v, want 1 (engine must not alias caller's slice)", agg.Sum)
	}
}
