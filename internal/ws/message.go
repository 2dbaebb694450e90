// Package ws streams chat activity to dashboard clients over WebSocket.
package ws

import "time"

// Message types sent to clients.
const (
	MessageChatActivity = "chat.activity"
)

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// ChatActivityData describes one answered chat request.
type ChatActivityData struct {
	Intent     string  `json:"intent"`
	Metric     string  `json:"metric"`
	Source     string  `json:"source"`
	Cached     bool    `json:"cached"`
	Confidence float64 `json:"confidence"`
	Latency    int64   `json:"latency"`
}
