// Package mcp connects baton tool registries to the Model Context Protocol.
//
// Tools from an MCP server are proxied through [RemoteRegistry], which can
// install them into a [tool.Registry] so agents call them like any local
// tool:
//
//	remote, err := mcp.NewRemoteRegistry(ctx, "./weather-server", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer remote.Close()
//
//	tools := tool.NewRegistry()
//	if err := remote.Install(tools, "weather_"); err != nil {
//	    log.Fatal(err)
//	}
//
// In the other direction, [NewServer] exposes a registry to MCP clients,
// and [WithAgents] adds every registered agent as a tool that runs it.
package mcp

import (
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	ai "github.com/spetersoncode/baton"
	"github.com/spetersoncode/baton/tool"
)

// ToMCPTool converts a Tool to an MCP Tool. Parameters become the raw input
// schema.
func ToMCPTool(t ai.Tool) mcp.Tool {
	return mcp.NewToolWithRawSchema(t.Name, t.Description, t.Parameters)
}

// FromMCPTool converts an MCP Tool to a Tool, preferring the raw schema
// over the structured one.
func FromMCPTool(t mcp.Tool) ai.Tool {
	schema := json.RawMessage(t.RawInputSchema)
	if len(schema) == 0 {
		if data, err := json.Marshal(t.InputSchema); err == nil {
			schema = data
		}
	}
	return ai.Tool{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  schema,
	}
}

// toCallRequest builds the request for calling name with raw JSON args.
// Arguments that are not JSON are sent as a plain string.
func toCallRequest(name string, args json.RawMessage) mcp.CallToolRequest {
	var v any
	if len(args) > 0 {
		if err := json.Unmarshal(args, &v); err != nil {
			v = string(args)
		}
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: v,
		},
	}
}

// resultText joins the text content of an MCP result. Non-text content and
// structured content are included as JSON.
func resultText(result *mcp.CallToolResult) string {
	var parts []string
	for _, c := range result.Content {
		switch content := c.(type) {
		case mcp.TextContent:
			parts = append(parts, content.Text)
		case *mcp.TextContent:
			parts = append(parts, content.Text)
		default:
			if data, err := json.Marshal(content); err == nil {
				parts = append(parts, string(data))
			}
		}
	}
	if result.StructuredContent != nil {
		if data, err := json.Marshal(result.StructuredContent); err == nil {
			parts = append(parts, string(data))
		}
	}
	return strings.Join(parts, "\n")
}

// FromCallToolResult converts an MCP result to a tool Outcome. A result
// flagged as an error, or a missing result, is a Failure.
func FromCallToolResult(result *mcp.CallToolResult) tool.Outcome {
	if result == nil {
		return tool.Failure(&tool.ReportedError{Message: "empty result"})
	}
	text := resultText(result)
	if result.IsError {
		if text == "" {
			text = "remote tool failed"
		}
		return tool.Failure(&tool.ReportedError{Message: text})
	}
	return tool.Success(text)
}

// ToCallToolResult converts an Outcome to an MCP result using r for the
// text form.
func ToCallToolResult(r *tool.Renderer, o tool.Outcome) *mcp.CallToolResult {
	text, _ := r.Render(o)
	if o.Failed() {
		return mcp.NewToolResultError(text)
	}
	return mcp.NewToolResultText(text)
}
