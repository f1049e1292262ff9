// Package mcp exposes the tool catalog over the Model Context Protocol.
// Agent clients speak newline-delimited JSON-RPC on stdio; every tools/call
// ends in the shared dispatcher, so an MCP client sees the same results as
// an HTTP caller.
package mcp

import (
	"context"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jpl-au/hubtools/internal/dispatch"
	"github.com/jpl-au/hubtools/internal/tool"
)

// Name is advertised to clients during initialization.
const Name = "hubtools"

// Transport is the request transport name recorded for MCP calls.
const Transport = "mcp"

// NewServer builds an MCP server advertising every tool in the dispatcher's
// registry, in registry order.
func NewServer(d *dispatch.Dispatcher, version string) *server.MCPServer {
	reg := d.Registry()

	s := server.NewMCPServer(
		Name,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		// mcp-go lists tools sorted by name; restore catalog order.
		server.WithToolFilter(func(_ context.Context, tools []mcp.Tool) []mcp.Tool {
			slices.SortStableFunc(tools, func(a, b mcp.Tool) int {
				return reg.Position(a.Name) - reg.Position(b.Name)
			})
			return tools
		}),
	)

	for _, desc := range reg.List() {
		s.AddTool(toMCPTool(desc), callHandler(d))
	}
	return s
}

// toMCPTool converts a descriptor into the mcp-go tool definition.
func toMCPTool(d tool.Descriptor) mcp.Tool {
	schema := d.InputSchema()
	props, _ := schema["properties"].(map[string]any)
	return mcp.Tool{
		Name:        d.Name,
		Description: d.Description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   d.RequiredFields(),
		},
	}
}

// callHandler routes a tools/call through the dispatcher. Failures are
// reported in the result, never as a Go error, so the client always gets a
// tool result rather than a JSON-RPC error.
func callHandler(d *dispatch.Dispatcher) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toCallToolResult(call(ctx, d, req.Params.Name, req.GetArguments())), nil
	}
}

func call(ctx context.Context, d *dispatch.Dispatcher, name string, args map[string]any) tool.Result {
	return d.Dispatch(ctx, tool.Request{
		Tool:      name,
		Arguments: tool.Args(args),
		Transport: Transport,
	})
}

func toCallToolResult(res tool.Result) *mcp.CallToolResult {
	content := make([]mcp.Content, len(res.Content))
	for i, b := range res.Content {
		content[i] = mcp.NewTextContent(b.Text)
	}
	return &mcp.CallToolResult{Content: content, IsError: res.IsError}
}
