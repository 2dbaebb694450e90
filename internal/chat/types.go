// Package chat orchestrates the /api/chat pipeline: intent classification,
// dataset statistics, optional summarization, caching, and the conversation
// log.
package chat

import (
	"time"

	"github.com/foliolabs/folio/internal/analytics"
)

// Message is one turn in the incoming conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the POST /api/chat body. Either Messages or the single Message
// field must be supplied; a bare Message is normalized to a one-element list.
type Request struct {
	Messages []Message `json:"messages,omitempty"`
	Message  string    `json:"message,omitempty"`
}

// Meta carries per-response bookkeeping. Latency is wall-clock milliseconds
// from request receipt to response assembly. Cached responses get fresh Meta;
// the stored payload's own Meta is never reused.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Latency   int64     `json:"latency"`
	Cached    bool      `json:"cached,omitempty"`
}

// Response sources reported in Meta.
const (
	SourceAI            = "ai"
	SourceDeterministic = "deterministic"
	SourceCache         = "cache"
)

// Confidence scores depending on whether the model summary succeeded.
const (
	confidenceAI       = 0.9
	confidenceFallback = 0.65
)

// Response is the structured answer for one chat request.
type Response struct {
	Intent     string                   `json:"intent"`
	ChartSpec  analytics.ChartSpec      `json:"chartSpec"`
	Insights   []string                 `json:"insights"`
	Forecast   analytics.ForecastResult `json:"forecast"`
	Confidence float64                  `json:"confidence"`
	Meta       Meta                     `json:"meta"`
}

// Machine-readable error codes surfaced to API clients.
const (
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeParseFailure     = "PARSE_FAILURE"
	CodeInternalError    = "INTERNAL_ERROR"
)

// Error is a pipeline failure with its HTTP mapping. Code is empty for plain
// client input errors.
type Error struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Code    string `json:"code,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}
