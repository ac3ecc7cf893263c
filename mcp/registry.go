package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	ai "github.com/spetersoncode/baton"
	"github.com/spetersoncode/baton/tool"
)

const (
	clientName    = "baton-mcp-client"
	clientVersion = "1.0.0"
)

// RemoteRegistry proxies the tools of one MCP server.
//
// RemoteRegistry is safe for concurrent use. The tool list is cached
// locally and can be refreshed with [RemoteRegistry.Refresh].
type RemoteRegistry struct {
	client *client.Client
	mu     sync.RWMutex
	tools  map[string]ai.Tool
}

// NewRemoteRegistry starts command as an MCP server over stdio and
// connects to it.
func NewRemoteRegistry(ctx context.Context, command string, env []string, args ...string) (*RemoteRegistry, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("create MCP client: %w", err)
	}
	return NewRemoteRegistryFromClient(ctx, c)
}

// NewRemoteRegistrySSE connects to an MCP server over SSE.
func NewRemoteRegistrySSE(ctx context.Context, baseURL string) (*RemoteRegistry, error) {
	c, err := client.NewSSEMCPClient(baseURL)
	if err != nil {
		return nil, fmt.Errorf("create SSE MCP client: %w", err)
	}
	return NewRemoteRegistryFromClient(ctx, c)
}

// NewRemoteRegistryFromClient starts and initializes c, then fetches its
// tool list. The client is closed if any step fails.
func NewRemoteRegistryFromClient(ctx context.Context, c *client.Client) (*RemoteRegistry, error) {
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("start MCP client: %w", err)
	}

	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    clientName,
				Version: clientVersion,
			},
		},
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("initialize MCP session: %w", err)
	}

	r := &RemoteRegistry{client: c, tools: make(map[string]ai.Tool)}
	if err := r.Refresh(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("list tools: %w", err)
	}
	return r, nil
}

// Close closes the connection to the MCP server.
func (r *RemoteRegistry) Close() error {
	return r.client.Close()
}

// Refresh fetches the current tool list from the server.
func (r *RemoteRegistry) Refresh(ctx context.Context) error {
	result, err := r.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return err
	}

	tools := make(map[string]ai.Tool, len(result.Tools))
	for _, t := range result.Tools {
		tools[t.Name] = FromMCPTool(t)
	}

	r.mu.Lock()
	r.tools = tools
	r.mu.Unlock()
	return nil
}

// Names returns the remote tool names, sorted.
func (r *RemoteRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Tools returns the remote tool definitions, sorted by name.
func (r *RemoteRegistry) Tools() []ai.Tool {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()
	tools := make([]ai.Tool, 0, len(names))
	for _, name := range names {
		if t, ok := r.tools[name]; ok {
			tools = append(tools, t)
		}
	}
	return tools
}

// GetTool retrieves a tool definition by name.
func (r *RemoteRegistry) GetTool(name string) (ai.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Has reports whether the server offers the named tool.
func (r *RemoteRegistry) Has(name string) bool {
	_, ok := r.GetTool(name)
	return ok
}

// Len returns the number of remote tools.
func (r *RemoteRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute calls a tool on the server. Transport failures and results the
// server flags as errors are both Failures.
func (r *RemoteRegistry) Execute(ctx context.Context, name string, args json.RawMessage) tool.Outcome {
	result, err := r.client.CallTool(ctx, toCallRequest(name, args))
	if err != nil {
		return tool.Failure(&tool.ErrToolExecution{Name: name, Err: err})
	}
	return FromCallToolResult(result)
}

// Handler returns a tool.Handler that calls the named remote tool.
func (r *RemoteRegistry) Handler(name string) tool.Handler {
	return func(ctx context.Context, args json.RawMessage) (any, error) {
		out := r.Execute(ctx, name, args)
		if out.Failed() {
			return nil, out.Err
		}
		return out.Data, nil
	}
}

// Install registers every remote tool into dst, with prefix prepended to
// each name. It stops at the first registration error.
func (r *RemoteRegistry) Install(dst *tool.Registry, prefix string) error {
	for _, t := range r.Tools() {
		remoteName := t.Name
		t.Name = prefix + remoteName
		if err := dst.Register(t, r.Handler(remoteName)); err != nil {
			return fmt.Errorf("install %s: %w", remoteName, err)
		}
	}
	return nil
}
