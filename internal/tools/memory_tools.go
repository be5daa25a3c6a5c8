package tools

import (
	"context"
	"strings"

	"github.com/nbruun/whisp/internal/logging"
	"github.com/nbruun/whisp/internal/memory"
)

// ListMemoriesTool returns the memories stored for a user.
type ListMemoriesTool struct {
	mem *memory.Service
	log *logging.Logger
}

// NewListMemoriesTool creates the list-memories tool.
func NewListMemoriesTool(mem *memory.Service, log *logging.Logger) *ListMemoriesTool {
	return &ListMemoriesTool{mem: mem, log: log.Sub("tools.list-memories")}
}

func (t *ListMemoriesTool) Name() string { return "list-memories" }

func (t *ListMemoriesTool) Description() string {
	return "Use this tool to get a list of memories for a given user. You will get the userId in system instruction."
}

func (t *ListMemoriesTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"userId": map[string]any{"type": "string"},
		},
		"required": []string{"userId"},
	}
}

func (t *ListMemoriesTool) Call(ctx context.Context, args map[string]any) string {
	userID, ok := stringArg(args, "userId")
	if !ok {
		return missingArg("userId")
	}

	memories, err := t.mem.List(ctx, userID)
	if err != nil {
		t.log.Error().Err(err).Str("userId", userID).Msg("listing memories failed")
		return "Failed to list memories. Please try again."
	}
	if len(memories) == 0 {
		return "No memories stored for this user yet."
	}

	blocks := make([]string, len(memories))
	for i, m := range memories {
		blocks[i] = m.Title + "\n" + m.Content
	}
	return strings.Join(blocks, "\n\n")
}

// CreateMemoryTool stores a new memory for a user.
type CreateMemoryTool struct {
	mem *memory.Service
	log *logging.Logger
}

// NewCreateMemoryTool creates the create-memory tool.
func NewCreateMemoryTool(mem *memory.Service, log *logging.Logger) *CreateMemoryTool {
	return &CreateMemoryTool{mem: mem, log: log.Sub("tools.create-memory")}
}

func (t *CreateMemoryTool) Name() string { return "create-memory" }

func (t *CreateMemoryTool) Description() string {
	return "Use this tool to create a new memory for a given user."
}

func (t *CreateMemoryTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"userId":  map[string]any{"type": "string"},
			"title":   map[string]any{"type": "string"},
			"content": map[string]any{"type": "string"},
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"userId", "title", "content"},
	}
}

func (t *CreateMemoryTool) Call(ctx context.Context, args map[string]any) string {
	userID, ok := stringArg(args, "userId")
	if !ok {
		return missingArg("userId")
	}
	title, ok := stringArg(args, "title")
	if !ok {
		return missingArg("title")
	}
	content, ok := stringArg(args, "content")
	if !ok {
		return missingArg("content")
	}

	if _, err := t.mem.Create(ctx, userID, title, content, stringSliceArg(args, "tags")); err != nil {
		t.log.Error().Err(err).Str("userId", userID).Msg("creating memory failed")
		return "Failed to create memory. Please try again."
	}
	return "Memory created successfully. Summarise to user what you did."
}

// UpdateMemoryTool replaces the content of a user's latest memory.
type UpdateMemoryTool struct {
	mem *memory.Service
	log *logging.Logger
}

// NewUpdateMemoryTool creates the update-memory tool.
func NewUpdateMemoryTool(mem *memory.Service, log *logging.Logger) *UpdateMemoryTool {
	return &UpdateMemoryTool{mem: mem, log: log.Sub("tools.update-memory")}
}

func (t *UpdateMemoryTool) Name() string { return "update-memory" }

func (t *UpdateMemoryTool) Description() string {
	return "Use this tool to update a memory for a given user. You will get the userId in system instruction."
}

func (t *UpdateMemoryTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"userId":     map[string]any{"type": "string"},
			"newContent": map[string]any{"type": "string"},
		},
		"required": []string{"userId", "newContent"},
	}
}

func (t *UpdateMemoryTool) Call(ctx context.Context, args map[string]any) string {
	userID, ok := stringArg(args, "userId")
	if !ok {
		return missingArg("userId")
	}
	newContent, ok := stringArg(args, "newContent")
	if !ok {
		return missingArg("newContent")
	}

	updated, err := t.mem.Update(ctx, userID, newContent)
	if err != nil {
		t.log.Error().Err(err).Str("userId", userID).Msg("updating memory failed")
		return "Failed to update memory. Please ask the user to try again."
	}
	if updated == nil {
		return "Failed to update memory. Please ask the user to try again."
	}
	return "Memory updated successfully. Summarise to user what you did."
}
