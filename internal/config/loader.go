package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so keys can be stored as ${ENV_VAR} in the YAML file.
func expandSensitiveFields(cfg *Config) {
	cfg.Server.WebhookAPIKey = expandEnvVars(cfg.Server.WebhookAPIKey)
	cfg.Gemini.APIKey = expandEnvVars(cfg.Gemini.APIKey)
	cfg.WaSender.APIKey = expandEnvVars(cfg.WaSender.APIKey)
}

// Load reads the config file, applies .env and environment overrides, and
// returns a merged Config. A missing file produces defaults plus overrides.
func Load(path string) (Config, error) {
	// Best effort; a missing .env file is the normal case in production.
	_ = godotenv.Load()

	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "whisp.db"
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.0-flash"
	}
	if cfg.WaSender.URL == "" {
		cfg.WaSender.URL = DefaultWaSenderURL
	}
	if cfg.WaSender.TimeoutSeconds == 0 {
		cfg.WaSender.TimeoutSeconds = 20
	}
	if cfg.Calendar.Timezone == "" {
		cfg.Calendar.Timezone = "Europe/Berlin"
	}
	if cfg.Dispatch.MaxLines == 0 {
		cfg.Dispatch.MaxLines = 5
	}
	if cfg.Dispatch.MaxCharsPerLine == 0 {
		cfg.Dispatch.MaxCharsPerLine = 100
	}
}

// applyEnvOverrides reads well-known environment variables and overrides
// config values. The names match the service's deployment environment.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("WHATSAPP_WEBHOOK_API_KEY"); v != "" {
		cfg.Server.WebhookAPIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := os.Getenv("WASENDER_API_URL"); v != "" {
		cfg.WaSender.URL = v
	}
	if v := os.Getenv("WASENDER_API_KEY"); v != "" {
		cfg.WaSender.APIKey = v
	}
	if v := os.Getenv("GOOGLE_CALENDAR_ID"); v != "" {
		cfg.Calendar.ID = v
	}
	if v := os.Getenv("GOOGLE_CALENDAR_SERVICE_ACCOUNT_EMAIL"); v != "" {
		cfg.Calendar.ServiceAccountEmail = v
	}
}
