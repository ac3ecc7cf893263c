package agent

import (
	"context"
	"encoding/json"
	"fmt"

	ai "github.com/spetersoncode/baton"
	"github.com/spetersoncode/baton/tool"
	"github.com/spetersoncode/baton/transcript"
)

// ToolArgs is the default argument type for agent tools.
type ToolArgs struct {
	Query string         `json:"query" desc:"The task for the agent"`
	Args  map[string]any `json:"args,omitempty" desc:"Structured arguments for the task"`
}

// ToolOption configures an agent tool.
type ToolOption func(*toolConfig)

type toolConfig struct {
	description string
	runOptions  []Option
}

// WithToolDescription sets a custom description for the agent tool.
func WithToolDescription(desc string) ToolOption {
	return func(c *toolConfig) {
		c.description = desc
	}
}

// WithToolRunOptions passes options to every nested run.
func WithToolRunOptions(opts ...Option) ToolOption {
	return func(c *toolConfig) {
		c.runOptions = append(c.runOptions, opts...)
	}
}

type nestingKey struct{}

func nesting(ctx context.Context) int {
	n, _ := ctx.Value(nestingKey{}).(int)
	return n
}

// AsTool wraps an agent as a tool, so one agent can consult another and
// continue with its answer instead of handing the task off. The nested run
// gets a fresh transcript holding the query. Nesting deeper than the
// runner's handoff depth fails the tool call.
//
//	tools.Add(agent.AsTool("research", runner, "researcher",
//	    agent.WithToolDescription("Ask the research agent a question"),
//	))
func AsTool(name string, r *Runner, agentName string, opts ...ToolOption) tool.Registration {
	cfg := &toolConfig{
		description: fmt.Sprintf("Ask the %s agent to perform a task and return its answer", agentName),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args ToolArgs
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, &tool.ErrInvalidArguments{Err: err}
			}
		}
		if args.Query == "" && len(args.Args) == 0 {
			return nil, fmt.Errorf("agent tool %s: query or args required", name)
		}

		depth := nesting(ctx) + 1
		limit := defaultOptions()
		for _, opt := range append(append([]Option{}, r.opts...), cfg.runOptions...) {
			opt(&limit)
		}
		if depth > limit.maxDepth {
			return nil, fmt.Errorf("agent tool %s: %w: nested %d deep", name, ErrHandoffDepthExceeded, depth)
		}
		ctx = context.WithValue(ctx, nestingKey{}, depth)

		var taskArgs json.RawMessage
		if len(args.Args) > 0 {
			taskArgs, _ = json.Marshal(args.Args)
		}
		var msgs []transcript.Message
		if args.Query != "" {
			msgs = append(msgs, transcript.User{Text: args.Query})
		}
		res, err := r.Run(ctx, agentName, Input{Messages: msgs, Args: taskArgs}, cfg.runOptions...)
		if err != nil {
			return nil, err
		}
		if !res.Succeeded() {
			return nil, fmt.Errorf("agent %s ended with %s: %s", res.Agent, res.Status, res.ErrorText)
		}
		return res.Output, nil
	}

	return tool.Registration{
		Tool: ai.Tool{
			Name:        name,
			Description: cfg.description,
			Parameters:  ai.SchemaFrom[ToolArgs]().Build(),
		},
		Handler: handler,
	}
}
