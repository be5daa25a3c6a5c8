// Package webhook turns inbound provider events into assistant replies. The
// orchestrator owns the full cycle for one event: filter, classify, consult
// the model, dispatch the reply, and persist the exchange.
package webhook

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/nbruun/whisp/internal/domain"
	"github.com/nbruun/whisp/internal/history"
	"github.com/nbruun/whisp/internal/logging"
)

// Ack is the orchestrator's verdict on one event. The HTTP layer always
// acknowledges with a success status code; Status here is diagnostic.
type Ack struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func successAck(msg string) Ack { return Ack{Status: "success", Message: msg} }
func errorAck(msg string) Ack   { return Ack{Status: "error", Message: msg} }

// Responder produces the assistant's reply for one message.
type Responder interface {
	Connect()
	GetResponse(ctx context.Context, userID, message string, hist []*domain.Message) string
}

// Sender dispatches one outbound message and reports delivery.
type Sender interface {
	Send(ctx context.Context, recipient, text string) bool
}

// HistoryStore loads and persists conversation turns.
type HistoryStore interface {
	Load(ctx context.Context, userID string) []*domain.Message
	SaveExchange(ctx context.Context, userID, userText, modelText string)
}

// SplitPolicy breaks one reply into ordered dispatch chunks.
type SplitPolicy func(text string) []string

// SingleChunk sends the whole reply as one message.
func SingleChunk(text string) []string { return []string{text} }

// LineSplit wraps history.Split with its default shape.
func LineSplit(text string) []string { return history.Split(text, 0, 0) }

const (
	minChunkDelay = 550 * time.Millisecond
	maxChunkDelay = 1500 * time.Millisecond
)

// Orchestrator drives the webhook-to-reply cycle.
type Orchestrator struct {
	responder Responder
	history   HistoryStore
	sender    Sender
	split     SplitPolicy
	log       *logging.Logger

	// sleep is swapped out by tests.
	sleep func(time.Duration)

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

func NewOrchestrator(r Responder, h HistoryStore, s Sender, log *logging.Logger) *Orchestrator {
	return &Orchestrator{
		responder: r,
		history:   h,
		sender:    s,
		split:     SingleChunk,
		log:       log.Sub("webhook"),
		sleep:     time.Sleep,
		users:     make(map[string]*sync.Mutex),
	}
}

// SetSplitPolicy replaces the dispatch chunking policy.
func (o *Orchestrator) SetSplitPolicy(p SplitPolicy) {
	if p != nil {
		o.split = p
	}
}

// userLock returns the mutex serializing cycles for one sanitized user.
func (o *Orchestrator) userLock(userID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	m, ok := o.users[userID]
	if !ok {
		m = &sync.Mutex{}
		o.users[userID] = m
	}
	return m
}

// Handle processes one inbound event end to end. It never panics outward;
// any internal failure collapses into an error-shaped acknowledgement.
func (o *Orchestrator) Handle(ctx context.Context, event *domain.WebhookEvent) (ack Ack) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error().Interface("panic", r).Msg("error processing webhook")
			ack = errorAck("Internal server error")
		}
	}()

	if event == nil || event.Event != domain.EventMessagesUpsert || event.Data == nil || event.Data.Messages == nil {
		if event != nil && event.Event != "" {
			o.log.Info().Str("event", event.Event).Msg("ignoring non-message event")
		}
		return successAck("Webhook processed")
	}

	msg := event.Data.Messages

	if msg.Key.FromMe {
		o.log.Info().Str("messageId", msg.Key.ID).Msg("ignoring self-sent message")
		return successAck("Self-sent message ignored")
	}

	if msg.StubType != "" {
		o.log.Info().
			Str("stubType", msg.StubType).
			Strs("stubParams", msg.StubParameters).
			Str("sender", msg.Key.RemoteJID).
			Msg("received system message")
		return successAck("System message processed")
	}

	sender := msg.Key.RemoteJID
	if sender == "" {
		o.log.Warn().Msg("webhook message without sender information")
		return errorAck("Incomplete sender data")
	}

	text := msg.Text()
	if text == "" {
		o.log.Info().Str("sender", sender).Msg("message without text content")
		return successAck("Webhook processed")
	}

	userID := domain.SanitizeUserID(sender)
	o.log.Info().Str("sender", sender).Str("userId", userID).Msg("processing text message")

	lock := o.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	hist := o.history.Load(ctx, userID)

	o.responder.Connect()
	reply := o.responder.GetResponse(ctx, userID, text, hist)
	if reply == "" {
		return successAck("Webhook processed")
	}

	o.dispatch(ctx, sender, reply)

	// The exchange is persisted even when dispatch failed, so the model
	// keeps its own side of the conversation on the next turn.
	o.history.SaveExchange(ctx, userID, text, reply)

	return successAck("Webhook processed")
}

// dispatch sends the reply chunk by chunk with a human-paced delay between
// chunks, aborting the remainder after the first failed send.
func (o *Orchestrator) dispatch(ctx context.Context, recipient, reply string) {
	chunks := o.split(reply)
	for i, chunk := range chunks {
		if chunk == "" {
			break
		}
		if !o.sender.Send(ctx, recipient, chunk) {
			o.log.Error().Str("recipient", recipient).Int("chunk", i).Msg("failed to send message chunk")
			break
		}
		if i < len(chunks)-1 {
			o.sleep(chunkDelay())
		}
	}
}

func chunkDelay() time.Duration {
	return minChunkDelay + time.Duration(rand.Int63n(int64(maxChunkDelay-minChunkDelay)))
}
