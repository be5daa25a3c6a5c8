// Package config loads, defaults, and validates the service configuration
// from a YAML file, a .env file, and environment overrides.
package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// DefaultWaSenderURL is the public send-message endpoint.
const DefaultWaSenderURL = "https://wasenderapi.com/api/send-message"

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 3000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Database: DatabaseConfig{
			Path: "whisp.db",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.0-flash",
		},
		WaSender: WaSenderConfig{
			URL:            DefaultWaSenderURL,
			TimeoutSeconds: 20,
		},
		Calendar: CalendarConfig{
			Timezone: "Europe/Berlin",
		},
		Dispatch: DispatchConfig{
			MaxLines:        5,
			MaxCharsPerLine: 100,
		},
	}
}
