package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/foliolabs/folio/internal/analytics"
	"github.com/foliolabs/folio/internal/convlog"
	"github.com/foliolabs/folio/internal/event"
	"github.com/foliolabs/folio/internal/summary"
	"go.uber.org/zap"
)

// DefaultForecastPeriods is how many future points a forecast projects when
// the configuration does not say otherwise.
const DefaultForecastPeriods = 3

// DatasetLoader provides the analytics dataset and its file modification time.
type DatasetLoader interface {
	Load() (*analytics.Dataset, error)
	ModTime() time.Time
}

// Summarizer turns computed statistics into a short natural-language summary.
type Summarizer interface {
	Summarize(ctx context.Context, intent string, trends map[string]analytics.TrendResult, forecast map[string]analytics.ForecastResult) summary.Result
}

// ConversationAppender records chat turns in the conversation log.
type ConversationAppender interface {
	Append(ctx context.Context, role, content string) (convlog.Record, error)
}

// Orchestrator runs the chat pipeline end to end: validate, classify, check
// the cache, compute statistics, summarize, assemble, then record side
// effects.
type Orchestrator struct {
	loader     DatasetLoader
	summarizer Summarizer
	cache      *Cache
	log        ConversationAppender
	bus        event.Publisher
	logger     *zap.Logger
	periods    int
}

// NewOrchestrator wires the chat pipeline. log and bus may be nil; the
// corresponding side effects are then skipped. periods <= 0 falls back to
// DefaultForecastPeriods.
func NewOrchestrator(
	loader DatasetLoader,
	summarizer Summarizer,
	cache *Cache,
	log ConversationAppender,
	bus event.Publisher,
	logger *zap.Logger,
	periods int,
) *Orchestrator {
	if periods <= 0 {
		periods = DefaultForecastPeriods
	}
	return &Orchestrator{
		loader:     loader,
		summarizer: summarizer,
		cache:      cache,
		log:        log,
		bus:        bus,
		logger:     logger,
		periods:    periods,
	}
}

// Handle processes one chat request. On failure it returns an *Error carrying
// the HTTP status, client-safe message, and machine-readable code; internal
// detail stays in the server log.
func (o *Orchestrator) Handle(ctx context.Context, req Request) (*Response, *Error) {
	start := time.Now()

	query, ok := latestUserMessage(req)
	if !ok {
		requestsTotal.WithLabelValues("invalid", "rejected").Inc()
		return nil, &Error{Status: http.StatusBadRequest, Message: "Missing or invalid messages"}
	}

	intent := ClassifyIntent(query)
	metric := SelectMetric(query)
	key := CacheKey(intent, query)

	if cached, hit := o.cache.Get(key, o.loader.ModTime()); hit {
		cacheHitsTotal.Inc()
		requestsTotal.WithLabelValues(intent, "cache_hit").Inc()

		cached.Meta = Meta{
			Timestamp: time.Now().UTC(),
			Source:    SourceCache,
			Latency:   time.Since(start).Milliseconds(),
			Cached:    true,
		}
		o.publishCompleted(ctx, query, metric, &cached)
		return &cached, nil
	}

	ds, err := o.loader.Load()
	if err != nil {
		if errors.Is(err, analytics.ErrDatasetMissing) {
			o.logger.Error("analytics dataset missing", zap.Error(err))
			requestsTotal.WithLabelValues(intent, "error").Inc()
			return nil, &Error{
				Status:  http.StatusInternalServerError,
				Message: "Analytics dataset missing",
				Code:    CodeInsufficientData,
			}
		}
		o.logger.Error("analytics dataset unreadable", zap.Error(err))
		requestsTotal.WithLabelValues(intent, "error").Inc()
		return nil, &Error{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process request",
			Code:    CodeParseFailure,
		}
	}

	computeStart := time.Now()
	engine := analytics.NewEngine(ds.Metrics)
	trends := engine.Trends(analytics.GroupMetric)
	forecasts := engine.Forecast(o.periods, analytics.GroupMetric)
	chart := engine.ChartSpec(metric)
	computeDuration.Observe(time.Since(computeStart).Seconds())

	if len(chart.Data) == 0 {
		requestsTotal.WithLabelValues(intent, "no_data").Inc()
		return nil, &Error{
			Status:  http.StatusUnprocessableEntity,
			Message: "No data for selected metric",
			Code:    CodeInsufficientData,
		}
	}

	summarizeStart := time.Now()
	sum := o.summarizeSafe(ctx, intent, metric, trends, forecasts)
	summarizeDuration.Observe(time.Since(summarizeStart).Seconds())

	forecast, ok := forecasts[metric]
	if !ok {
		forecast = analytics.ForecastResult{
			Next:   []analytics.ForecastPoint{},
			Method: analytics.MethodLinearRegression,
		}
	}

	source := SourceDeterministic
	confidence := confidenceFallback
	if sum.Success {
		source = SourceAI
		confidence = confidenceAI
	}

	resp := &Response{
		Intent:     intent,
		ChartSpec:  chart,
		Insights:   []string{sum.Text},
		Forecast:   forecast,
		Confidence: confidence,
		Meta: Meta{
			Timestamp: time.Now().UTC(),
			Source:    source,
			Latency:   time.Since(start).Milliseconds(),
		},
	}

	o.cache.Put(key, *resp)
	o.recordConversation(ctx, query, sum.Text)
	o.publishCompleted(ctx, query, metric, resp)

	requestsTotal.WithLabelValues(intent, "ok").Inc()
	return resp, nil
}

// summarizeSafe shields the pipeline from a panicking summarizer. A panic
// degrades to a second-level deterministic sentence instead of failing the
// whole request.
func (o *Orchestrator) summarizeSafe(ctx context.Context, intent, metric string, trends map[string]analytics.TrendResult, forecasts map[string]analytics.ForecastResult) (result summary.Result) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("summarizer panicked", zap.Any("panic", r))
			result = summary.Result{
				Success: false,
				Text:    fmt.Sprintf("Deterministic results available for %s.", metric),
			}
		}
	}()
	return o.summarizer.Summarize(ctx, intent, trends, forecasts)
}

// recordConversation appends the user and assistant turns. Log failures are
// warned about but never fail the request.
func (o *Orchestrator) recordConversation(ctx context.Context, query, answer string) {
	if o.log == nil {
		return
	}
	if _, err := o.log.Append(ctx, convlog.RoleUser, query); err != nil {
		o.logger.Warn("failed to record user turn", zap.Error(err))
	}
	if _, err := o.log.Append(ctx, convlog.RoleAssistant, answer); err != nil {
		o.logger.Warn("failed to record assistant turn", zap.Error(err))
	}
}

func (o *Orchestrator) publishCompleted(ctx context.Context, query, metric string, resp *Response) {
	if o.bus == nil {
		return
	}
	o.bus.PublishAsync(ctx, event.Event{
		Topic:     TopicChatCompleted,
		Source:    "chat",
		Timestamp: time.Now(),
		Payload: CompletedEvent{
			Intent:     resp.Intent,
			Query:      query,
			Metric:     metric,
			Source:     resp.Meta.Source,
			Cached:     resp.Meta.Cached,
			Confidence: resp.Confidence,
			Latency:    resp.Meta.Latency,
		},
	})
}

// latestUserMessage normalizes the request body and returns the newest user
// turn with non-blank content. The single Message field acts as shorthand for
// a one-element message list.
func latestUserMessage(req Request) (string, bool) {
	msgs := req.Messages
	if len(msgs) == 0 && strings.TrimSpace(req.Message) != "" {
		msgs = []Message{{Role: "user", Content: req.Message}}
	}
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == "user" && strings.TrimSpace(msgs[i].Content) != "" {
			return msgs[i].Content, true
		}
	}
	return "", false
}
