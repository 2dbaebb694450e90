package server

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file, environment, and defaults.
// If configPath is empty, folio.yaml is searched for in the working
// directory, ./configs, and /etc/folio. A missing config file is not an
// error; defaults apply.
func LoadConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.dev_mode", false)
	v.SetDefault("server.data_dir", "./data")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("database.path", "./data/folio.db")
	v.SetDefault("dataset.path", "./data/analytics.json")
	v.SetDefault("dashboard.dir", "./website/dist")

	// Chat pipeline defaults
	v.SetDefault("chat.cache_ttl", "10m")
	v.SetDefault("chat.forecast_periods", 3)

	// Summarization service defaults
	v.SetDefault("summary.url", "http://localhost:11434/api/generate")
	v.SetDefault("summary.model", "llama3.2")
	v.SetDefault("summary.max_tokens", 200)
	v.SetDefault("summary.timeout", "3s")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("folio")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/folio")
	}

	// Environment variable support: FOLIO_SERVER_PORT=9090
	v.SetEnvPrefix("FOLIO")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is fine -- use defaults
	}

	return v, nil
}
