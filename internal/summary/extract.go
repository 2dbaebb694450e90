package summary

import (
	"encoding/json"
	"strings"
)

// The local generation service's response schema is not guaranteed: different
// backends surface generated text under different keys. Extraction is an
// ordered list of strategies tried in sequence; the first non-empty result
// wins. Keep this table explicit -- adding a shape means adding a row, not
// chaining another optional lookup somewhere.
var extractors = []struct {
	name string
	fn   func(map[string]any) string
}{
	{"text", func(m map[string]any) string { return stringField(m, "text") }},
	{"response", func(m map[string]any) string { return stringField(m, "response") }},
	{"result", func(m map[string]any) string { return stringField(m, "result") }},
	{"choices", func(m map[string]any) string { return nestedArrayText(m, "choices") }},
	{"completions", func(m map[string]any) string { return nestedArrayText(m, "completions") }},
	{"output", func(m map[string]any) string { return stringField(m, "output") }},
}

// extractText pulls generated text out of a raw response body, or returns ""
// when no strategy finds anything usable.
func extractText(raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}

	for _, e := range extractors {
		if text := strings.TrimSpace(e.fn(body)); text != "" {
			return text
		}
	}
	return ""
}

// stringField returns m[key] when it is a string, else "".
func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// nestedArrayText handles OpenAI-style completion arrays: the first element's
// "text" field, or its "message".{"content"} for chat-shaped responses.
func nestedArrayText(m map[string]any, key string) string {
	arr, ok := m[key].([]any)
	if !ok || len(arr) == 0 {
		return ""
	}
	first, ok := arr[0].(map[string]any)
	if !ok {
		return ""
	}

	if text := stringField(first, "text"); text != "" {
		return text
	}
	if msg, ok := first["message"].(map[string]any); ok {
		return stringField(msg, "content")
	}
	return ""
}
