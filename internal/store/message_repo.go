package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nbruun/whisp/internal/domain"
)

// timeLayout is the stored timestamp format. Timestamps are normalized to
// UTC and zero-padded to nanoseconds so the stored strings sort
// lexicographically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var messageSchema = Schema[domain.Message]{
	Table:   "messages",
	IDCol:   "id",
	Columns: []string{"sender", "user_id", "message", "stub_type", "stub_parameters", "received_at"},
	Scan: func(row RowScanner) (*domain.Message, error) {
		var m domain.Message
		var params, receivedAt string
		if err := row.Scan(&m.ID, &m.Sender, &m.UserID, &m.Body, &m.StubType, &params, &receivedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(params), &m.StubParameters)
		m.ReceivedAt, _ = time.Parse(timeLayout, receivedAt)
		return &m, nil
	},
	Values: func(m *domain.Message) []any {
		params, _ := json.Marshal(m.StubParameters)
		if m.StubParameters == nil {
			params = []byte("[]")
		}
		return []any{m.Sender, m.UserID, m.Body, m.StubType, string(params), m.ReceivedAt.UTC().Format(timeLayout)}
	},
	ID:    func(m *domain.Message) string { return m.ID },
	SetID: func(m *domain.Message, id string) { m.ID = id },
}

// MessageRepository persists conversation turns.
type MessageRepository struct {
	*Repository[domain.Message]
}

// NewMessageRepository creates a message repository on the given database.
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{Repository: NewRepository(db, messageSchema)}
}

// FindByUserID returns all turns for a user in arrival order.
func (r *MessageRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.Message, error) {
	q := `SELECT id, sender, user_id, message, stub_type, stub_parameters, received_at
	      FROM messages WHERE user_id = ? ORDER BY received_at, rowid`
	return r.Query(ctx, q, userID)
}
