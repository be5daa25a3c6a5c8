// Package memory manages the facts the assistant keeps about each user.
package memory

import (
	"context"
	"time"

	"github.com/nbruun/whisp/internal/domain"
	"github.com/nbruun/whisp/internal/store"
)

// Service exposes memory operations to the tool surface.
type Service struct {
	memories *store.MemoryRepository
}

// NewService creates a memory service over the given repository.
func NewService(memories *store.MemoryRepository) *Service {
	return &Service{memories: memories}
}

// Create stores a new memory for the user.
func (s *Service) Create(ctx context.Context, userID, title, content string, tags []string) (*domain.Memory, error) {
	if tags == nil {
		tags = []string{}
	}
	now := time.Now()
	return s.memories.Save(ctx, &domain.Memory{
		UserID:    userID,
		Title:     title,
		Content:   content,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// List returns all memories stored for the user, oldest first.
func (s *Service) List(ctx context.Context, userID string) ([]*domain.Memory, error) {
	return s.memories.FindByUserID(ctx, userID)
}

// Update replaces the content of the user's most recent memory. It returns
// nil when the user has no memories to update.
func (s *Service) Update(ctx context.Context, userID, newContent string) (*domain.Memory, error) {
	latest, err := s.memories.FindLatestByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, nil
	}
	return s.memories.Update(ctx, latest.ID, func(m *domain.Memory) {
		m.Content = newContent
		m.UpdatedAt = time.Now()
	})
}
