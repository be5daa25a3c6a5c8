package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nbruun/whisp/internal/assistant"
	"github.com/nbruun/whisp/internal/calendar"
	"github.com/nbruun/whisp/internal/config"
	"github.com/nbruun/whisp/internal/gateway"
	"github.com/nbruun/whisp/internal/history"
	"github.com/nbruun/whisp/internal/llm"
	"github.com/nbruun/whisp/internal/memory"
	"github.com/nbruun/whisp/internal/store"
	"github.com/nbruun/whisp/internal/tools"
	"github.com/nbruun/whisp/internal/version"
	"github.com/nbruun/whisp/internal/wasender"
	"github.com/nbruun/whisp/internal/webhook"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if logLevel == "" && cfg.Logging.Level != "" {
				log = log.WithLevel(cfg.Logging.Level)
			}

			// Credential issues degrade the affected component at runtime;
			// everything else is a hard configuration error.
			fatal := 0
			for _, issue := range config.Validate(&cfg) {
				if credentialIssue(issue.Path) {
					log.Warn().Str("path", issue.Path).Msg(issue.Message)
					continue
				}
				log.Error().Str("path", issue.Path).Msg(issue.Message)
				fatal++
			}
			if fatal > 0 {
				return fmt.Errorf("config validation failed with %d issue(s)", fatal)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := store.Open(cfg.Database.Path, log)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			hist := history.NewStore(store.NewMessageRepository(db), log)
			memories := memory.NewService(store.NewMemoryRepository(db))
			dates := calendar.NewDateParser(cfg.Calendar.Timezone)

			registry := tools.NewRegistry()
			registry.Register(tools.NewListMemoriesTool(memories, log))
			registry.Register(tools.NewCreateMemoryTool(memories, log))
			registry.Register(tools.NewUpdateMemoryTool(memories, log))
			registry.Register(tools.NewParseDateTool(dates))

			if cfg.Calendar.ID != "" {
				cal, err := calendar.NewService(ctx, cfg.Calendar.ID, dates, log)
				if err != nil {
					log.Warn().Err(err).Msg("calendar unavailable; event tool disabled")
				} else {
					registry.Register(tools.NewCreateCalendarEventTool(cal, log))
				}
			}

			client := llm.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.Model)
			responder := assistant.NewResponder(client, registry, cfg.Gemini.APIKey != "", log)

			sender := wasender.New(cfg.WaSender.URL, cfg.WaSender.APIKey, log,
				wasender.WithTimeout(time.Duration(cfg.WaSender.TimeoutSeconds)*time.Second))

			orchestrator := webhook.NewOrchestrator(responder, hist, sender, log)
			if cfg.Dispatch.SplitMessages {
				maxLines, maxChars := cfg.Dispatch.MaxLines, cfg.Dispatch.MaxCharsPerLine
				orchestrator.SetSplitPolicy(func(text string) []string {
					return history.Split(text, maxLines, maxChars)
				})
			}

			mcp := tools.NewMCPServer(registry, version.Version)
			srv := gateway.New(cfg.Server, orchestrator, log,
				gateway.WithSSE(tools.NewSSEServer(mcp)))

			log.Info().
				Int("port", cfg.Server.Port).
				Str("model", cfg.Gemini.Model).
				Int("tools", len(registry.All())).
				Msg("whisp starting")

			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override server port")

	return cmd
}

// credentialIssue reports whether a validation issue concerns a missing
// credential rather than a malformed value.
func credentialIssue(path string) bool {
	switch path {
	case "gemini.apiKey", "wasender.apiKey", "server.webhookApiKey":
		return true
	}
	return false
}
