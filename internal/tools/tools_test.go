package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbruun/whisp/internal/calendar"
	"github.com/nbruun/whisp/internal/llm"
	"github.com/nbruun/whisp/internal/logging"
	"github.com/nbruun/whisp/internal/memory"
	"github.com/nbruun/whisp/internal/store"
)

func testMemoryTools(t *testing.T) (*Registry, *memory.Service) {
	t.Helper()
	db, err := store.Open(":memory:", logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mem := memory.NewService(store.NewMemoryRepository(db))
	log := logging.Nop()

	reg := NewRegistry()
	reg.Register(NewListMemoriesTool(mem, log))
	reg.Register(NewCreateMemoryTool(mem, log))
	reg.Register(NewUpdateMemoryTool(mem, log))
	return reg, mem
}

func TestRegistry_Declarations(t *testing.T) {
	reg, _ := testMemoryTools(t)

	decls := reg.Declarations()
	require.Len(t, decls, 3)
	assert.Equal(t, "list-memories", decls[0].Name)
	assert.Equal(t, "create-memory", decls[1].Name)
	assert.Equal(t, "update-memory", decls[2].Name)
	assert.NotEmpty(t, decls[0].Description)
	assert.Equal(t, "object", decls[0].Parameters["type"])
}

func TestRegistry_Dispatch_UnknownTool(t *testing.T) {
	reg, _ := testMemoryTools(t)

	out := reg.Dispatch(context.Background(), llm.FunctionCall{Name: "no-such-tool"})
	assert.Equal(t, "Unknown tool: no-such-tool", out)
}

func TestCreateAndListMemories(t *testing.T) {
	reg, _ := testMemoryTools(t)
	ctx := context.Background()

	out := reg.Dispatch(ctx, llm.FunctionCall{Name: "create-memory", Args: map[string]any{
		"userId":  "u1",
		"title":   "Coffee",
		"content": "likes espresso",
		"tags":    []any{"food", "habits"},
	}})
	assert.Equal(t, "Memory created successfully. Summarise to user what you did.", out)

	out = reg.Dispatch(ctx, llm.FunctionCall{Name: "list-memories", Args: map[string]any{"userId": "u1"}})
	assert.Equal(t, "Coffee\nlikes espresso", out)
}

func TestListMemories_Empty(t *testing.T) {
	reg, _ := testMemoryTools(t)

	out := reg.Dispatch(context.Background(), llm.FunctionCall{Name: "list-memories", Args: map[string]any{"userId": "nobody"}})
	assert.Equal(t, "No memories stored for this user yet.", out)
}

func TestCreateMemory_MissingArgs(t *testing.T) {
	reg, _ := testMemoryTools(t)
	ctx := context.Background()

	out := reg.Dispatch(ctx, llm.FunctionCall{Name: "create-memory", Args: map[string]any{"title": "t", "content": "c"}})
	assert.Equal(t, "Missing required argument: userId", out)

	out = reg.Dispatch(ctx, llm.FunctionCall{Name: "create-memory", Args: map[string]any{"userId": "u1", "content": "c"}})
	assert.Equal(t, "Missing required argument: title", out)
}

func TestUpdateMemory(t *testing.T) {
	reg, mem := testMemoryTools(t)
	ctx := context.Background()

	out := reg.Dispatch(ctx, llm.FunctionCall{Name: "update-memory", Args: map[string]any{
		"userId": "u1", "newContent": "x",
	}})
	assert.Equal(t, "Failed to update memory. Please ask the user to try again.", out)

	_, err := mem.Create(ctx, "u1", "t", "old", nil)
	require.NoError(t, err)

	out = reg.Dispatch(ctx, llm.FunctionCall{Name: "update-memory", Args: map[string]any{
		"userId": "u1", "newContent": "new",
	}})
	assert.Equal(t, "Memory updated successfully. Summarise to user what you did.", out)

	memories, err := mem.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, memories, 1)
	assert.Equal(t, "new", memories[0].Content)
}

func TestParseDateTool(t *testing.T) {
	tool := NewParseDateTool(calendar.NewDateParser("UTC"))
	ctx := context.Background()

	out := tool.Call(ctx, map[string]any{"dateString": "2026-09-01T10:00:00Z"})
	assert.Equal(t, "2026-09-01T10:00:00Z", out)

	out = tool.Call(ctx, map[string]any{"dateString": "florble"})
	assert.Equal(t, "Could not parse date string.", out)

	out = tool.Call(ctx, map[string]any{})
	assert.Equal(t, "Missing required argument: dateString", out)
}

func TestMCPServer_RegistersAllTools(t *testing.T) {
	reg, _ := testMemoryTools(t)
	s := NewMCPServer(reg, "test")
	assert.NotNil(t, s)
	assert.NotNil(t, NewSSEServer(s))
}
