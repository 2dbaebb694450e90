package summary

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/foliolabs/folio/internal/analytics"
)

// fallbackText synthesizes a deterministic summary from the trend statistics.
// The percent change comes from the first trend group in sorted-name order so
// repeated failures produce identical text.
func fallbackText(trends map[string]analytics.TrendResult) string {
	percent := 0.0
	if len(trends) > 0 {
		names := make([]string, 0, len(trends))
		for name := range trends {
			names = append(names, name)
		}
		sort.Strings(names)
		percent = trends[names[0]].PercentChange
	}

	return fmt.Sprintf(
		"The data shows a %s%% change over the observed period. (Summary generated deterministically; local AI unavailable)",
		formatPercent(percent),
	)
}

// formatPercent renders the percent change without trailing zeros (100, 12.5).
func formatPercent(p float64) string {
	rounded := math.Round(p*10) / 10
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
