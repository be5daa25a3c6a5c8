// Package history persists and retrieves conversation turns per user.
//
// Reads and writes are best-effort: a failed read degrades to an empty
// history and a failed write is logged and dropped, so persistence problems
// never block the reply path. Both degradations are counted for operational
// visibility.
package history

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nbruun/whisp/internal/domain"
	"github.com/nbruun/whisp/internal/logging"
	"github.com/nbruun/whisp/internal/store"
)

// Store loads and appends conversation history keyed by sanitized user ID.
type Store struct {
	messages *store.MessageRepository
	log      *logging.Logger

	degradedReads atomic.Int64
	droppedWrites atomic.Int64
}

// NewStore creates a history store over the given message repository.
func NewStore(messages *store.MessageRepository, log *logging.Logger) *Store {
	return &Store{messages: messages, log: log.Sub("history")}
}

// Load returns the prior turns for a user in arrival order. A read failure
// degrades to an empty history: prior turns are context, not a requirement.
func (s *Store) Load(ctx context.Context, userID string) []*domain.Message {
	msgs, err := s.messages.FindByUserID(ctx, userID)
	if err != nil {
		s.degradedReads.Add(1)
		s.log.Error().Err(err).Str("userId", userID).Msg("loading history failed, degrading to empty")
		return nil
	}
	return msgs
}

// SaveExchange appends one user turn and one model turn as a single atomic
// batch. Both turns carry the same sanitized user ID. A write failure is
// logged and dropped; it must never surface to the webhook response.
func (s *Store) SaveExchange(ctx context.Context, userID, userText, modelText string) {
	now := time.Now()
	turns := []*domain.Message{
		{
			Sender:         domain.SenderUser,
			UserID:         userID,
			Body:           userText,
			StubType:       "text",
			StubParameters: []string{},
			ReceivedAt:     now,
		},
		{
			Sender:         domain.SenderModel,
			UserID:         userID,
			Body:           modelText,
			StubType:       "text",
			StubParameters: []string{},
			ReceivedAt:     now,
		},
	}

	err := s.messages.DB().RunInTransaction(ctx, func(ctx context.Context) error {
		return s.messages.SaveAll(ctx, turns)
	})
	if err != nil {
		s.droppedWrites.Add(1)
		s.log.Error().Err(err).Str("userId", userID).Msg("saving conversation history failed, dropping")
	}
}

// DegradedReads reports how many history reads have been degraded to empty.
func (s *Store) DegradedReads() int64 { return s.degradedReads.Load() }

// DroppedWrites reports how many history writes have been dropped.
func (s *Store) DroppedWrites() int64 { return s.droppedWrites.Load() }

// Split breaks a long reply into ordered chunks of at most maxLines lines
// with at most maxCharsPerLine characters per line. Words longer than a line
// become their own line. Currently the orchestrator sends replies as a single
// chunk; the policy stays configurable for when chunked delivery returns.
func Split(text string, maxLines, maxCharsPerLine int) []string {
	if maxLines <= 0 {
		maxLines = 5
	}
	if maxCharsPerLine <= 0 {
		maxCharsPerLine = 100
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		line := ""
		for _, word := range strings.Split(paragraph, " ") {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if len(candidate) > maxCharsPerLine {
				if line != "" {
					lines = append(lines, line)
				}
				line = word
			} else {
				line = candidate
			}
		}
		if line != "" {
			lines = append(lines, line)
		}
	}

	var chunks []string
	for i := 0; i < len(lines); i += maxLines {
		end := i + maxLines
		if end > len(lines) {
			end = len(lines)
		}
		chunks = append(chunks, strings.Join(lines[i:end], "\n"))
	}
	return chunks
}
