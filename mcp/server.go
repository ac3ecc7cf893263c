package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	ai "github.com/spetersoncode/baton"
	"github.com/spetersoncode/baton/agent"
	"github.com/spetersoncode/baton/tool"
)

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	name        string
	version     string
	renderer    *tool.Renderer
	runner      *agent.Runner
	agentPrefix string
}

// WithName sets the server name reported to MCP clients.
func WithName(name string) ServerOption {
	return func(c *serverConfig) {
		c.name = name
	}
}

// WithVersion sets the server version reported to MCP clients.
func WithVersion(version string) ServerOption {
	return func(c *serverConfig) {
		c.version = version
	}
}

// WithRenderer sets how tool outcomes are turned into result text.
func WithRenderer(r *tool.Renderer) ServerOption {
	return func(c *serverConfig) {
		c.renderer = r
	}
}

// WithAgents also exposes every agent known to r as a tool named
// prefix+agent name. Calling it runs the agent to completion.
func WithAgents(r *agent.Runner, prefix string) ServerOption {
	return func(c *serverConfig) {
		c.runner = r
		c.agentPrefix = prefix
	}
}

// NewServer creates an MCP server exposing the tools of registry.
//
//	tools := tool.NewRegistry().Add(tool.Builtin()...)
//	s, err := mcp.NewServer(tools, mcp.WithName("baton-tools"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	server.ServeStdio(s)
func NewServer(registry *tool.Registry, opts ...ServerOption) (*server.MCPServer, error) {
	cfg := &serverConfig{
		name:    "baton-mcp-server",
		version: "1.0.0",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.renderer == nil {
		cfg.renderer = tool.NewRenderer()
	}

	s := server.NewMCPServer(
		cfg.name,
		cfg.version,
		server.WithToolCapabilities(true),
	)

	for _, t := range registry.Tools() {
		s.AddTool(ToMCPTool(t), handlerFor(registry, t.Name, cfg.renderer))
	}

	if cfg.runner != nil {
		agents := tool.NewRegistry()
		for _, name := range cfg.runner.Agents().Names() {
			reg := agent.AsTool(cfg.agentPrefix+name, cfg.runner, name)
			if registry.Has(reg.Tool.Name) {
				return nil, fmt.Errorf("mcp: agent tool %s collides with a registered tool", reg.Tool.Name)
			}
			if err := agents.Register(reg.Tool, reg.Handler); err != nil {
				return nil, err
			}
		}
		for _, t := range agents.Tools() {
			s.AddTool(ToMCPTool(t), handlerFor(agents, t.Name, cfg.renderer))
		}
	}

	return s, nil
}

func handlerFor(registry *tool.Registry, name string, r *tool.Renderer) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := "{}"
		if req.Params.Arguments != nil {
			data, err := json.Marshal(req.Params.Arguments)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("marshal arguments: %v", err)), nil
			}
			args = string(data)
		}

		out := registry.Execute(ctx, ai.ToolCall{Name: name, Arguments: args})
		return ToCallToolResult(r, out), nil
	}
}

// ServeStdio serves registry over stdin/stdout until the input closes.
func ServeStdio(registry *tool.Registry, opts ...ServerOption) error {
	s, err := NewServer(registry, opts...)
	if err != nil {
		return err
	}
	return server.ServeStdio(s)
}
