package config

// Config is the root configuration for the whisp service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Database DatabaseConfig `yaml:"database"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	WaSender WaSenderConfig `yaml:"wasender"`
	Calendar CalendarConfig `yaml:"calendar"`
	Dispatch DispatchConfig `yaml:"dispatch"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Port int `yaml:"port"`
	// WebhookAPIKey authenticates inbound webhook posts.
	WebhookAPIKey string `yaml:"webhookApiKey"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig locates the SQLite store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// GeminiConfig selects the model backend.
type GeminiConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

// WaSenderConfig points at the outbound messaging API.
type WaSenderConfig struct {
	URL            string `yaml:"url"`
	APIKey         string `yaml:"apiKey"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// CalendarConfig enables the Google Calendar tools when set.
type CalendarConfig struct {
	ID                  string `yaml:"id"`
	ServiceAccountEmail string `yaml:"serviceAccountEmail"`
	Timezone            string `yaml:"timezone"`
}

// DispatchConfig shapes how replies are chunked before sending.
type DispatchConfig struct {
	// SplitMessages turns on multi-chunk replies. Off, the whole reply
	// goes out as one message.
	SplitMessages   bool `yaml:"splitMessages"`
	MaxLines        int  `yaml:"maxLines"`
	MaxCharsPerLine int  `yaml:"maxCharsPerLine"`
}
