package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/baton"
	"github.com/spetersoncode/baton/agent"
	"github.com/spetersoncode/baton/gateway"
	"github.com/spetersoncode/baton/tool"
)

type greetArgs struct {
	Name string `json:"name"`
}

type addArgs struct {
	A int `json:"a"`
	B int `json:"b"`
}

func testRegistry() *tool.Registry {
	return tool.NewRegistry().Add(
		tool.Func("greet", "Greet someone", func(_ context.Context, args greetArgs) (any, error) {
			return "Hello, " + args.Name + "!", nil
		}),
		tool.Func("add", "Add numbers", func(_ context.Context, args addArgs) (any, error) {
			return map[string]any{"sum": args.A + args.B}, nil
		}),
		tool.Func("fail", "Always fails", func(context.Context, struct{}) (any, error) {
			return nil, errors.New("broken")
		}),
	)
}

func connect(t *testing.T, s *server.MCPServer) *client.Client {
	t.Helper()
	c, err := client.NewInProcessClient(s)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	t.Cleanup(func() { c.Close() })

	_, err = c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo:      mcp.Implementation{Name: "test-client", Version: "1.0.0"},
		},
	})
	require.NoError(t, err)
	return c
}

func textOf(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, r.Content, 1)
	text, ok := r.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestToolConversion(t *testing.T) {
	schema := json.RawMessage(`{"type":"object","properties":{"name":{"type":"string"}}}`)
	mt := ToMCPTool(ai.Tool{Name: "greet", Description: "Greet someone", Parameters: schema})
	assert.Equal(t, "greet", mt.Name)
	assert.Equal(t, schema, mt.RawInputSchema)

	back := FromMCPTool(mt)
	assert.Equal(t, "Greet someone", back.Description)
	assert.JSONEq(t, string(schema), string(back.Parameters))

	structured := FromMCPTool(mcp.NewTool("search",
		mcp.WithDescription("Search the web"),
		mcp.WithString("query", mcp.Required()),
	))
	assert.Contains(t, string(structured.Parameters), `"query"`)
}

func TestToCallRequest(t *testing.T) {
	req := toCallRequest("add", json.RawMessage(`{"a":10,"b":5}`))
	assert.Equal(t, "add", req.Params.Name)
	args, ok := req.Params.Arguments.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(10), args["a"])

	assert.Nil(t, toCallRequest("noargs", nil).Params.Arguments)
	assert.Equal(t, "plain", toCallRequest("raw", json.RawMessage("plain")).Params.Arguments)
}

func TestFromCallToolResult(t *testing.T) {
	ok := FromCallToolResult(mcp.NewToolResultText("fine"))
	assert.False(t, ok.Failed())
	assert.Equal(t, "fine", ok.Data)

	failed := FromCallToolResult(mcp.NewToolResultError("something went wrong"))
	assert.True(t, failed.Failed())
	assert.Equal(t, "something went wrong", failed.Message())

	assert.True(t, FromCallToolResult(nil).Failed())
}

func TestServer(t *testing.T) {
	s, err := NewServer(testRegistry(), WithName("test-server"), WithVersion("1.0.0"))
	require.NoError(t, err)
	c := connect(t, s)
	ctx := context.Background()

	list, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Tools, 3)

	res, err := c.CallTool(ctx, mcp.CallToolRequest{Params: mcp.CallToolParams{
		Name:      "greet",
		Arguments: map[string]any{"name": "World"},
	}})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "Hello, World!", textOf(t, res))

	res, err = c.CallTool(ctx, mcp.CallToolRequest{Params: mcp.CallToolParams{
		Name:      "add",
		Arguments: map[string]any{"a": 2, "b": 3},
	}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"sum":5}`, textOf(t, res))

	res, err = c.CallTool(ctx, mcp.CallToolRequest{Params: mcp.CallToolParams{Name: "fail"}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "broken")
}

type echoGateway struct{}

func (echoGateway) Call(_ context.Context, req gateway.Request) (*gateway.Reply, error) {
	last := req.Messages[len(req.Messages)-1]
	return &gateway.Reply{Text: "echo: " + last.Content}, nil
}

func TestServer_WithAgents(t *testing.T) {
	runner, err := agent.NewRunner(echoGateway{}, nil, agent.NewRegistry().MustRegister(
		agent.Definition{Name: "echo", SystemPrompt: "Repeat the request."},
	))
	require.NoError(t, err)

	s, err := NewServer(testRegistry(), WithAgents(runner, "agent_"))
	require.NoError(t, err)
	c := connect(t, s)

	res, err := c.CallTool(context.Background(), mcp.CallToolRequest{Params: mcp.CallToolParams{
		Name:      "agent_echo",
		Arguments: map[string]any{"query": "hi"},
	}})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "echo: hi", textOf(t, res))

	clash := tool.NewRegistry().Add(tool.Func("echo", "x", func(context.Context, struct{}) (any, error) { return "", nil }))
	_, err = NewServer(clash, WithAgents(runner, ""))
	assert.Error(t, err)
}

func TestRemoteRegistry(t *testing.T) {
	s, err := NewServer(testRegistry())
	require.NoError(t, err)
	c, err := client.NewInProcessClient(s)
	require.NoError(t, err)

	ctx := context.Background()
	remote, err := NewRemoteRegistryFromClient(ctx, c)
	require.NoError(t, err)
	defer remote.Close()

	assert.Equal(t, 3, remote.Len())
	assert.Equal(t, []string{"add", "fail", "greet"}, remote.Names())
	assert.True(t, remote.Has("greet"))
	greet, ok := remote.GetTool("greet")
	require.True(t, ok)
	assert.Equal(t, "Greet someone", greet.Description)

	out := remote.Execute(ctx, "add", json.RawMessage(`{"a":10,"b":5}`))
	require.False(t, out.Failed())
	assert.JSONEq(t, `{"sum":15}`, out.Data.(string))

	assert.True(t, remote.Execute(ctx, "fail", nil).Failed())
	require.NoError(t, remote.Refresh(ctx))
	assert.Equal(t, 3, remote.Len())

	local := tool.NewRegistry()
	require.NoError(t, remote.Install(local, "remote_"))
	assert.Equal(t, []string{"remote_add", "remote_fail", "remote_greet"}, local.Names())

	got := local.Execute(ctx, ai.ToolCall{Name: "remote_greet", Arguments: `{"name":"baton"}`})
	require.False(t, got.Failed())
	assert.Equal(t, "Hello, baton!", got.Data)

	failed := local.Execute(ctx, ai.ToolCall{Name: "remote_fail", Arguments: `{}`})
	assert.True(t, failed.Failed())

	assert.Error(t, remote.Install(local, "remote_"))
}
