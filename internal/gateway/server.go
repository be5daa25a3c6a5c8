// Package gateway is the HTTP surface of the service: the provider webhook
// endpoint, a health probe, and the MCP tool transport.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/nbruun/whisp/internal/config"
	"github.com/nbruun/whisp/internal/domain"
	"github.com/nbruun/whisp/internal/logging"
	"github.com/nbruun/whisp/internal/version"
	"github.com/nbruun/whisp/internal/webhook"
)

// Orchestrator handles one parsed webhook event.
type Orchestrator interface {
	Handle(ctx context.Context, event *domain.WebhookEvent) webhook.Ack
}

// Server is the whisp HTTP server.
type Server struct {
	cfg          config.ServerConfig
	orchestrator Orchestrator
	sse          *mcpserver.SSEServer
	log          *logging.Logger
	httpServer   *http.Server
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithSSE mounts the MCP tool transport at /sse and /message.
func WithSSE(sse *mcpserver.SSEServer) ServerOption {
	return func(s *Server) { s.sse = sse }
}

// New creates the HTTP server.
func New(cfg config.ServerConfig, o Orchestrator, log *logging.Logger, opts ...ServerOption) *Server {
	s := &Server{
		cfg:          cfg,
		orchestrator: o,
		log:          log.Sub("gateway"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the full route tree with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", s.handleWebhook)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.sse != nil {
		mux.Handle("/sse", s.sse.SSEHandler())
		mux.Handle("/message", s.sse.MessageHandler())
	}
	return withMiddleware(mux, s.log)
}

// Start begins listening. It blocks until the context is cancelled or an
// error occurs, and drains in-flight requests on shutdown.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
		BaseContext: func(l net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.log.Info().Str("addr", ln.Addr().String()).Msg("http server starting")

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleWebhook authenticates and acknowledges a provider event. The
// provider retries on non-2xx responses, so a processed event is always
// acknowledged with 201 regardless of the orchestrator's verdict.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		s.log.Warn().Str("remote", r.RemoteAddr).Msg("webhook request with invalid API key")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid API key"})
		return
	}

	var event domain.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		s.log.Warn().Err(err).Msg("malformed webhook payload")
		writeJSON(w, http.StatusCreated, webhook.Ack{Status: "error", Message: "Malformed payload"})
		return
	}

	ack := s.orchestrator.Handle(r.Context(), &event)
	writeJSON(w, http.StatusCreated, ack)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// authorized accepts the key as a bearer token or an X-Api-Key header.
func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.WebhookAPIKey == "" {
		return false
	}
	if r.Header.Get("Authorization") == "Bearer "+s.cfg.WebhookAPIKey {
		return true
	}
	return r.Header.Get("X-Api-Key") == s.cfg.WebhookAPIKey
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
