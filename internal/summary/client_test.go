package summary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/foliolabs/folio/internal/analytics"
	"go.uber.org/zap"
)

func testTrends() map[string]analytics.TrendResult {
	return map[string]analytics.TrendResult{
		"views": {Slope: 1.5, Trend: analytics.TrendGrowing, PercentChange: 42.5},
	}
}

func newTestClient(t *testing.T, url string, timeout time.Duration) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.URL = url
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	c, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestSummarize_Success(t *testing.T) {
	t.Parallel()

	var gotReq generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "Views grew steadily."})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	result := c.Summarize(context.Background(), "analyze", testTrends(), nil)

	if !result.Success {
		t.Error("Success = false, want true")
	}
	if result.Text != "Views grew steadily." {
		t.Errorf("Text = %q, want model output", result.Text)
	}
	if gotReq.Model == "" || gotReq.MaxTokens == 0 {
		t.Errorf("request missing model/max_tokens: %+v", gotReq)
	}
	if !strings.Contains(gotReq.Prompt, "analyze") {
		t.Errorf("prompt %q does not mention the intent", gotReq.Prompt)
	}
}

func TestSummarize_NonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	result := c.Summarize(context.Background(), "analyze", testTrends(), nil)

	if result.Success {
		t.Error("Success = true, want false")
	}
	want := "The data shows a 42.5% change over the observed period. (Summary generated deterministically; local AI unavailable)"
	if result.Text != want {
		t.Errorf("Text = %q, want %q", result.Text, want)
	}
}

func TestSummarize_UnusableResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	result := c.Summarize(context.Background(), "chat", testTrends(), nil)

	if result.Success {
		t.Error("Success = true, want false")
	}
	if !strings.Contains(result.Text, "generated deterministically") {
		t.Errorf("Text = %q, want deterministic fallback", result.Text)
	}
}

func TestSummarize_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "too late"})
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv.URL, 50*time.Millisecond)

	start := time.Now()
	result := c.Summarize(context.Background(), "predict", testTrends(), nil)
	elapsed := time.Since(start)

	if result.Success {
		t.Error("Success = true, want false")
	}
	if elapsed > time.Second {
		t.Errorf("Summarize took %v, should return shortly after the %v timeout", elapsed, 50*time.Millisecond)
	}
}

func TestSummarize_ServerDown(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // immediately unreachable

	c := newTestClient(t, srv.URL, 0)
	result := c.Summarize(context.Background(), "chart", testTrends(), nil)

	if result.Success {
		t.Error("Success = true, want false")
	}
	if result.Text == "" {
		t.Error("Text is empty, fallback must always produce text")
	}
}

func TestFallbackText_NoTrends(t *testing.T) {
	t.Parallel()

	got := fallbackText(nil)
	want := "The data shows a 0% change over the observed period. (Summary generated deterministically; local AI unavailable)"
	if got != want {
		t.Errorf("fallbackText(nil) = %q, want %q", got, want)
	}
}

func TestFallbackText_PicksFirstGroupAlphabetically(t *testing.T) {
	t.Parallel()

	trends := map[string]analytics.TrendResult{
		"views":      {PercentChange: 10},
		"engagement": {PercentChange: 25},
	}
	got := fallbackText(trends)
	if !strings.Contains(got, "25%") {
		t.Errorf("fallbackText = %q, want engagement's 25%% (first in sorted order)", got)
	}
}

func TestFormatPercent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   float64
		want string
	}{
		{100, "100"},
		{42.56, "42.6"},
		{12.5, "12.5"},
		{0, "0"},
		{-3.33, "-3.3"},
	}
	for _, c := range cases {
		if got := formatPercent(c.in); got != c.want {
			t.Errorf("formatPercent(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
