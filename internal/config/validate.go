package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid. Missing
// credentials are reported here but do not stop startup; the affected
// components degrade instead (the assistant falls back to its apology,
// calendar tools stay unregistered).
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "server.port",
			Message: fmt.Sprintf("port must be 1-65535, got %d", cfg.Server.Port),
		})
	}
	if cfg.Server.WebhookAPIKey == "" {
		issues = append(issues, ValidationIssue{
			Path:    "server.webhookApiKey",
			Message: "webhook API key is required",
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	if cfg.Database.Path == "" {
		issues = append(issues, ValidationIssue{
			Path:    "database.path",
			Message: "database path is required",
		})
	}

	if cfg.Gemini.APIKey == "" {
		issues = append(issues, ValidationIssue{
			Path:    "gemini.apiKey",
			Message: "API key is missing; replies will degrade to the fallback message",
		})
	}

	if cfg.WaSender.URL == "" {
		issues = append(issues, ValidationIssue{
			Path:    "wasender.url",
			Message: "send endpoint URL is required",
		})
	}
	if cfg.WaSender.APIKey == "" {
		issues = append(issues, ValidationIssue{
			Path:    "wasender.apiKey",
			Message: "API key is required to dispatch replies",
		})
	}
	if cfg.WaSender.TimeoutSeconds < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "wasender.timeoutSeconds",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.WaSender.TimeoutSeconds),
		})
	}

	// Calendar is optional as a whole but inconsistent halves are a mistake.
	if cfg.Calendar.ID != "" && cfg.Calendar.ServiceAccountEmail == "" {
		issues = append(issues, ValidationIssue{
			Path:    "calendar.serviceAccountEmail",
			Message: "required when calendar.id is set",
		})
	}
	if cfg.Calendar.ServiceAccountEmail != "" && !strings.Contains(cfg.Calendar.ServiceAccountEmail, "@") {
		issues = append(issues, ValidationIssue{
			Path:    "calendar.serviceAccountEmail",
			Message: fmt.Sprintf("must be an email address, got %q", cfg.Calendar.ServiceAccountEmail),
		})
	}

	if cfg.Dispatch.MaxLines < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "dispatch.maxLines",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Dispatch.MaxLines),
		})
	}
	if cfg.Dispatch.MaxCharsPerLine < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "dispatch.maxCharsPerLine",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Dispatch.MaxCharsPerLine),
		})
	}

	return issues
}
