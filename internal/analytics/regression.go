package analytics

import (
	"math"
	"time"
)

// fit is the result of an ordinary least-squares regression of value against
// elapsed days since the first point's timestamp.
type fit struct {
	Slope     float64
	Intercept float64
}

// linearRegression performs least-squares regression over the given points.
// The x axis is days elapsed since the first point. Degenerate inputs are
// well-defined: zero points fit (0, 0), a single point fits (0, value), and a
// zero-variance x sequence (all points at the same instant) fits
// (0, mean of values).
func linearRegression(points []MetricPoint) fit {
	n := len(points)
	switch n {
	case 0:
		return fit{}
	case 1:
		return fit{Intercept: points[0].Value}
	}

	xs := elapsedDays(points)

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += points[i].Value
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var ssXY, ssXX float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := points[i].Value - meanY
		ssXY += dx * dy
		ssXX += dx * dx
	}

	if ssXX == 0 {
		return fit{Intercept: meanY}
	}

	slope := ssXY / ssXX
	return fit{
		Slope:     slope,
		Intercept: meanY - slope*meanX,
	}
}

// elapsedDays converts point timestamps to fractional days relative to the
// first point.
func elapsedDays(points []MetricPoint) []float64 {
	if len(points) == 0 {
		return nil
	}
	days := make([]float64, len(points))
	base := points[0].Timestamp
	for i, p := range points {
		days[i] = p.Timestamp.Sub(base).Hours() / 24
	}
	return days
}

// addDays returns t shifted forward by a fractional number of days.
func addDays(t time.Time, days float64) time.Time {
	return t.Add(time.Duration(days * 24 * float64(time.Hour)))
}

// round2 rounds to two decimal places, the precision used in all output series.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
