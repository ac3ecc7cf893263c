// Package baton orchestrates multi-step conversations between a language
// model and a set of callable tools, including handing an in-progress task
// from one configured agent to another.
//
// The root package holds the provider-neutral wire types shared by every
// layer: [Message] and [Role] as sent to a model, [Tool] schemas,
// [ToolCall] and [ToolResult], the [Response] returned by a [ChatProvider],
// and the categorized [Error] used to decide whether a failed call may be
// retried.
//
// The moving parts live in sub-packages:
//
//   - transcript: the closed message union and the append-only run log
//   - tool: the tool registry and its Success/Failure execute boundary
//   - gateway: model to provider routing and reply interpretation
//   - agent: agent definitions, the orchestration loop and handoffs
//   - event, tracing, agui: observability collectors
//   - store, batch: transcript persistence and bounded concurrent runs
//   - mcp: tools served by, or exposed as, MCP servers
//
// # Basic Usage
//
//	gw := gateway.New(gateway.Config{
//	    APIKeys: gateway.APIKeys{Anthropic: os.Getenv("ANTHROPIC_API_KEY")},
//	})
//
//	tools := tool.NewRegistry()
//	tool.MustRegisterFunc(tools, "calc", "Basic arithmetic", calc)
//
//	agents := agent.NewRegistry()
//	agents.MustRegister(agent.Definition{
//	    Name:          "assistant",
//	    SystemPrompt:  "You are a helpful assistant.",
//	    Model:         "claude-sonnet-4-5",
//	    ToolNames:     []string{"calc"},
//	    MaxIterations: 10,
//	})
//
//	runner, err := agent.NewRunner(gw, tools, agents)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := runner.Run(ctx, "assistant", agent.Input{
//	    Messages: []transcript.Message{transcript.User{Text: "What is 2+2?"}},
//	})
//	fmt.Println(res.Status, res.Output)
package baton
