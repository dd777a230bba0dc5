package server

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"brandscan/internal/kit"
)

// MCPImplementation identifies this server to MCP clients.
var MCPImplementation = &mcp.Implementation{Name: "brandscan", Version: "1.0.0"}

// NewMCPServer builds an MCP server with the brandscan tools registered.
func (s *Server) NewMCPServer() *mcp.Server {
	srv := mcp.NewServer(MCPImplementation, nil)
	s.RegisterMCP(srv)
	return srv
}

// RegisterMCP registers the brandscan tools on an MCP server.
func (s *Server) RegisterMCP(srv *mcp.Server) {
	s.registerExtractTool(srv)
	s.registerHistoryTool(srv)
	s.registerGetTool(srv)
	s.registerDeleteTool(srv)
}

// ServeStdio runs the MCP server over stdin/stdout until ctx is done.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.NewMCPServer().Run(ctx, &mcp.StdioTransport{})
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	sch := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		sch["required"] = required
	}
	return sch
}

func (s *Server) registerExtractTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "brandscan_extract",
		Description: "Extract the design system (colors, typography, logo, tone) of a website.",
		InputSchema: inputSchema(map[string]any{
			"url":     map[string]any{"type": "string", "description": "Website URL to scan"},
			"refresh": map[string]any{"type": "boolean", "description": "Bypass the result cache"},
		}, []string{"url"}),
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r ExtractRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, s.extract, decode)
}

func (s *Server) registerHistoryTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "brandscan_history",
		Description: "List recent scans, newest first.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	decode := func(*mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{}, nil
	}

	kit.RegisterMCPTool(srv, tool, s.historyList, decode)
}

func (s *Server) registerGetTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "brandscan_get",
		Description: "Fetch one stored scan result by ID.",
		InputSchema: inputSchema(map[string]any{
			"id": map[string]any{"type": "string", "description": "Scan ID"},
		}, []string{"id"}),
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r DeleteRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, s.historyGet, decode)
}

func (s *Server) registerDeleteTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "brandscan_delete",
		Description: "Delete one stored scan result by ID.",
		InputSchema: inputSchema(map[string]any{
			"id": map[string]any{"type": "string", "description": "Scan ID"},
		}, []string{"id"}),
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r DeleteRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, s.historyDrop, decode)
}
