package summary

import "time"

// Config holds the summarization service settings.
type Config struct {
	URL       string        `mapstructure:"url"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// DefaultConfig returns sensible defaults for a local Ollama-style endpoint.
func DefaultConfig() Config {
	return Config{
		URL:       "http://localhost:11434/api/generate",
		Model:     "llama3.2",
		MaxTokens: 200,
		Timeout:   3 * time.Second,
	}
}
