// Package domain holds the core data model shared across the assistant.
package domain

import "time"

// Sender role constants for conversation turns.
const (
	SenderUser  = "user"
	SenderModel = "model"
)

// Message is one immutable side of a conversation exchange. Turns are only
// ever appended, never mutated or deleted by the assistant.
type Message struct {
	ID             string    `json:"id"`
	Sender         string    `json:"sender"` // "user" | "model"
	UserID         string    `json:"userId"`
	Body           string    `json:"message"`
	StubType       string    `json:"messageStubType"`
	StubParameters []string  `json:"messageStubParameters"`
	ReceivedAt     time.Time `json:"receivedAt"`
}

// Memory is a persisted fact the assistant keeps about a user.
type Memory struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
