package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nbruun/whisp/internal/domain"
)

var memorySchema = Schema[domain.Memory]{
	Table:   "memories",
	IDCol:   "id",
	Columns: []string{"user_id", "title", "content", "tags", "created_at", "updated_at"},
	Scan: func(row RowScanner) (*domain.Memory, error) {
		var m domain.Memory
		var tags, createdAt, updatedAt string
		if err := row.Scan(&m.ID, &m.UserID, &m.Title, &m.Content, &tags, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(tags), &m.Tags)
		m.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		m.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
		return &m, nil
	},
	Values: func(m *domain.Memory) []any {
		tags, _ := json.Marshal(m.Tags)
		if m.Tags == nil {
			tags = []byte("[]")
		}
		return []any{m.UserID, m.Title, m.Content, string(tags),
			m.CreatedAt.UTC().Format(timeLayout), m.UpdatedAt.UTC().Format(timeLayout)}
	},
	ID:    func(m *domain.Memory) string { return m.ID },
	SetID: func(m *domain.Memory, id string) { m.ID = id },
}

// MemoryRepository persists user memories.
type MemoryRepository struct {
	*Repository[domain.Memory]
}

// NewMemoryRepository creates a memory repository on the given database.
func NewMemoryRepository(db *DB) *MemoryRepository {
	return &MemoryRepository{Repository: NewRepository(db, memorySchema)}
}

// FindByUserID returns all memories for a user, oldest first.
func (r *MemoryRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.Memory, error) {
	q := `SELECT id, user_id, title, content, tags, created_at, updated_at
	      FROM memories WHERE user_id = ? ORDER BY created_at, rowid`
	return r.Query(ctx, q, userID)
}

// FindLatestByUserID returns the most recently created memory for a user,
// or nil when the user has none.
func (r *MemoryRepository) FindLatestByUserID(ctx context.Context, userID string) (*domain.Memory, error) {
	q := `SELECT id, user_id, title, content, tags, created_at, updated_at
	      FROM memories WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`
	out, err := r.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
