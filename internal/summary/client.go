// Package summary wraps the optional local text-generation service that turns
// computed statistics into a one-paragraph natural-language summary.
//
// The client is failure-oblivious by contract: Summarize never returns an
// error. Unreachable endpoint, non-2xx status, unusable response shape, or an
// elapsed timeout all degrade to a deterministic fallback summary so the chat
// pipeline never depends on the service being up.
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/foliolabs/folio/internal/analytics"
	"go.uber.org/zap"
)

// Result is the outcome of a summarization attempt. Text is always non-empty;
// Success reports whether it came from the model or the deterministic fallback.
type Result struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
}

// Client calls the local text-generation endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// generateRequest is the wire format the local service accepts.
type generateRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

// New creates a summarization client. It does not verify connectivity; the
// first Summarize call simply falls back if the service is unreachable.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("parse summarizer url %q: %w", cfg.URL, err)
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     logger,
	}, nil
}

// Summarize asks the local service for a natural-language summary of the
// computed statistics. The request is cancelled when the configured timeout
// elapses; a single attempt is made with no retries.
func (c *Client) Summarize(ctx context.Context, intent string, trends map[string]analytics.TrendResult, forecast map[string]analytics.ForecastResult) Result {
	text, err := c.generate(ctx, buildPrompt(intent, trends, forecast))
	if err != nil {
		c.logger.Debug("summarization unavailable, using deterministic fallback",
			zap.String("intent", intent),
			zap.Error(err),
		)
		return Result{Success: false, Text: fallbackText(trends)}
	}
	return Result{Success: true, Text: text}
}

// generate performs the single POST to the generation endpoint and extracts
// usable text from whatever response shape comes back.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:     c.cfg.Model,
		Prompt:    prompt,
		MaxTokens: c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("summarizer returned %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read summarizer response: %w", err)
	}

	text := extractText(raw)
	if text == "" {
		return "", fmt.Errorf("summarizer response contained no usable text")
	}
	return text, nil
}

// buildPrompt embeds the intent and JSON-serialized statistics into a single
// instruction for the model.
func buildPrompt(intent string, trends map[string]analytics.TrendResult, forecast map[string]analytics.ForecastResult) string {
	trendsJSON, _ := json.Marshal(trends)
	forecastJSON, _ := json.Marshal(forecast)

	var b strings.Builder
	b.WriteString("You are an analytics assistant for a freelance portfolio site. ")
	fmt.Fprintf(&b, "The visitor's intent is %q. ", intent)
	fmt.Fprintf(&b, "Trend statistics per metric: %s. ", trendsJSON)
	fmt.Fprintf(&b, "Forecast per metric: %s. ", forecastJSON)
	b.WriteString("Summarize the key findings in two or three plain sentences. Do not invent numbers.")
	return b.String()
}
