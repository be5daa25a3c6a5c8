package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer exposes the registry over the Model Context Protocol, so the
// same tool surface the chat client dispatches to in-process can also be
// consumed by external MCP clients.
func NewMCPServer(registry *Registry, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"whisp tools",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	for _, t := range registry.All() {
		schema, _ := json.Marshal(t.Parameters())
		def := mcp.NewToolWithRawSchema(t.Name(), t.Description(), schema)
		s.AddTool(def, mcpHandler(t))
	}

	return s
}

// NewSSEServer wraps the MCP server for HTTP transport. The gateway mounts
// its /sse and /message endpoints.
func NewSSEServer(s *server.MCPServer) *server.SSEServer {
	return server.NewSSEServer(s)
}

func mcpHandler(t Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(t.Call(ctx, req.GetArguments())), nil
	}
}
