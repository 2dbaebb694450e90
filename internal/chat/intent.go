package chat

import "strings"

// Chat intents.
const (
	IntentChart    = "chart"
	IntentAnalyze  = "analyze"
	IntentPredict  = "predict"
	IntentForecast = "forecast"
	IntentCommand  = "command"
	IntentChat     = "chat"
)

// Metric keys present in the portfolio dataset.
const (
	MetricViews          = "views"
	MetricEngagement     = "engagement"
	MetricCompletionTime = "completion_time"
)

// slashCommands are the recognized explicit commands; anything else behind a
// leading slash classifies as the generic "command" intent.
var slashCommands = map[string]bool{
	IntentChart:    true,
	IntentAnalyze:  true,
	IntentPredict:  true,
	IntentForecast: true,
}

// ClassifyIntent derives the coarse intent of a chat message.
//
// A leading slash selects an explicit command: the first whitespace-delimited
// token (lower-cased, slash stripped) wins when recognized, otherwise the
// intent is "command". Without a slash, case-insensitive keyword checks apply
// in priority order -- chart words beat prediction words beat analysis words;
// anything else is small talk.
func ClassifyIntent(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "/") {
		token := strings.ToLower(strings.TrimPrefix(strings.Fields(trimmed)[0], "/"))
		if slashCommands[token] {
			return token
		}
		return IntentCommand
	}

	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "chart", "graph", "plot"):
		return IntentChart
	case containsAny(lower, "predict", "forecast"):
		return IntentPredict
	case containsAny(lower, "trend", "growth", "analyze"):
		return IntentAnalyze
	default:
		return IntentChat
	}
}

// SelectMetric picks the dataset metric a query refers to. First matching
// rule wins; the default is views.
func SelectMetric(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "engage"):
		return MetricEngagement
	case containsAny(lower, "time", "complete", "project"):
		return MetricCompletionTime
	default:
		return MetricViews
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
