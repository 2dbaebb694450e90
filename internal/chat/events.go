package chat

// TopicChatCompleted is published on the event bus after every successfully
// answered chat request, cache hits included.
const TopicChatCompleted = "chat.completed"

// CompletedEvent is the payload for TopicChatCompleted.
type CompletedEvent struct {
	Intent     string  `json:"intent"`
	Query      string  `json:"query"`
	Metric     string  `json:"metric"`
	Source     string  `json:"source"`
	Cached     bool    `json:"cached"`
	Confidence float64 `json:"confidence"`
	Latency    int64   `json:"latency"`
}
