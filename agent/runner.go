package agent

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	ai "github.com/spetersoncode/baton"
	"github.com/spetersoncode/baton/event"
	"github.com/spetersoncode/baton/gateway"
	"github.com/spetersoncode/baton/tool"
	"github.com/spetersoncode/baton/transcript"
)

// Gateway sends one request to a model. *gateway.Gateway implements it.
type Gateway interface {
	Call(ctx context.Context, req gateway.Request) (*gateway.Reply, error)
}

// Input is what a run starts from.
type Input struct {
	// Messages seed the transcript, usually a single transcript.User.
	Messages []transcript.Message

	// Args are structured task arguments, shown to the model in the system
	// prompt and available to the template as .Args.
	Args json.RawMessage

	// Context is free text appended to the system prompt.
	Context string
}

// Runner drives agents through the think-act-observe loop.
type Runner struct {
	gateway Gateway
	tools   *tool.Registry
	agents  *Registry
	opts    []Option
}

// NewRunner creates a runner. A nil tool registry means no tools.
func NewRunner(gw Gateway, tools *tool.Registry, agents *Registry, opts ...Option) (*Runner, error) {
	if gw == nil {
		return nil, errors.New("agent: gateway is required")
	}
	if agents == nil {
		return nil, errors.New("agent: agent registry is required")
	}
	if tools == nil {
		tools = tool.NewRegistry()
	}
	return &Runner{gateway: gw, tools: tools, agents: agents, opts: opts}, nil
}

// Agents returns the agent registry.
func (r *Runner) Agents() *Registry { return r.agents }

// Tools returns the tool registry.
func (r *Runner) Tools() *tool.Registry { return r.tools }

// run is the state shared by every agent of one handoff chain.
type run struct {
	id    string
	opts  options
	usage ai.Usage
	chain []string
}

func (s *run) emit(ctx context.Context, e event.Event) {
	s.opts.collector.Collect(ctx, e)
}

// frame is one agent's turn within a run.
type frame struct {
	def     Definition
	log     *transcript.Log
	args    json.RawMessage
	context string
	depth   int
	parent  string
}

// Run executes agentName on in. It always returns a result. The error is
// non-nil only when the agent, or an agent it can hand off to, is
// misconfigured; every runtime failure is reported through the result.
func (r *Runner) Run(ctx context.Context, agentName string, in Input, opts ...Option) (*RunResult, error) {
	o := defaultOptions()
	for _, opt := range r.opts {
		opt(&o)
	}
	for _, opt := range opts {
		opt(&o)
	}
	id := o.runID
	if id == "" {
		id = uuid.NewString()
	}

	st := &run{id: id, opts: o, chain: []string{agentName}}
	log := transcript.NewLog(in.Messages...)

	if err := r.agents.ValidateReachable(agentName, r.tools); err != nil {
		o.logger.Error("run refused", "run_id", id, "agent", agentName, "error", err)
		return &RunResult{
			RunID:             id,
			Agent:             agentName,
			Status:            StatusError,
			ErrorText:         err.Error(),
			Err:               err,
			Messages:          log,
			TerminationReason: ReasonError,
			Args:              in.Args,
			HandoffChain:      st.chain,
		}, err
	}

	def, _ := r.agents.Get(agentName)
	if def.MaxIterations <= 0 {
		def.MaxIterations = DefaultMaxIterations
	}
	return r.loop(ctx, st, frame{def: def, log: log, args: in.Args, context: in.Context}), nil
}

func (r *Runner) loop(ctx context.Context, st *run, f frame) *RunResult {
	def := f.def
	logger := st.opts.logger.With("run_id", st.id, "agent", def.Name)
	res := &RunResult{RunID: st.id, Agent: def.Name, Messages: f.log, Args: f.args}

	runEv := event.Event{
		ID:        event.NewID(),
		ParentID:  f.parent,
		RunID:     st.id,
		Agent:     def.Name,
		Name:      def.Name,
		Type:      event.RunStart,
		StartTime: time.Now(),
		Input:     runInput(f),
		Metadata:  map[string]any{"depth": f.depth},
	}
	st.emit(ctx, runEv)
	logger.Info("run started", "depth", f.depth, "max_iterations", def.MaxIterations, "messages", f.log.Len())

	if _, err := argsObject(f.args); err != nil {
		logger.Debug("run arguments not available to the prompt template", "error", err)
	}

	tools := r.offeredTools(def)
	tmpl := r.agents.template(def.Name)

	for i := 0; i < def.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return r.finish(ctx, st, res, runEv, StatusCancelled, ReasonCancelled, err)
		}
		res.Iterations = i + 1
		il := logger.With("iteration", i)

		prompt, err := systemPrompt(tmpl, def, i, f.args, f.context)
		if err != nil {
			cfg := &ConfigurationError{Agent: def.Name, Field: "system_prompt", Reason: err.Error()}
			return r.finish(ctx, st, res, runEv, StatusError, ReasonError, cfg)
		}

		action, err := r.generate(ctx, st, runEv.ID, def, i, prompt, f.log, tools, il)
		if err != nil {
			f.log.Append(failureResult("gateway-error-", err))
			return r.finish(ctx, st, res, runEv, StatusError, ReasonError, err)
		}

		switch action.Kind {
		case gateway.ActionFinal:
			f.log.Append(transcript.Final{Answer: action.Answer, Reasoning: action.Reasoning})
			res.Output = action.Answer
			return r.finish(ctx, st, res, runEv, StatusFinalAnswer, "", nil)

		case gateway.ActionToolCall:
			if rule, ok := def.ruleForTool(action.ToolName); ok {
				return r.handoff(ctx, st, f, res, runEv, rule, &action)
			}
			if !r.offers(def, action.ToolName) {
				err := &UnknownToolError{Agent: def.Name, Tool: action.ToolName}
				f.log.Append(callOf(action), transcript.ToolResult{
					ToolCallID: action.ToolCallID,
					ToolName:   action.ToolName,
					ResultText: err.Error(),
					IsError:    true,
					ErrorText:  err.Error(),
				})
				return r.finish(ctx, st, res, runEv, StatusError, ReasonError, err)
			}
			r.execute(ctx, st, runEv.ID, def, i, f.log, action, il)

		default:
			err := &UnparsableActionError{Agent: def.Name, Iteration: i}
			f.log.Append(failureResult("unparsable-", err))
			return r.finish(ctx, st, res, runEv, StatusError, ReasonError, err)
		}
	}

	if rule, ok := def.ruleForBudget(); ok {
		logger.Info("iteration budget exhausted", "handoff_to", rule.Target)
		return r.handoff(ctx, st, f, res, runEv, rule, nil)
	}
	return r.finish(ctx, st, res, runEv, StatusMaxIterations, ReasonMaxIterations, ErrIterationBudgetExceeded)
}

// generate makes one model call and interprets the reply.
func (r *Runner) generate(ctx context.Context, st *run, parent string, def Definition, iteration int,
	prompt string, log *transcript.Log, tools []ai.Tool, logger *slog.Logger) (gateway.Action, error) {
	ev := event.Event{
		ID:        event.NewID(),
		ParentID:  parent,
		RunID:     st.id,
		Agent:     def.Name,
		Iteration: iteration,
		Name:      def.Model,
		Type:      event.GenerationStart,
		StartTime: time.Now(),
		Input:     prompt,
		Metadata:  map[string]any{"messages": log.Len(), "tools": len(tools)},
	}
	st.emit(ctx, ev)

	// Cancellation is only observed between iterations.
	reply, err := r.gateway.Call(context.WithoutCancel(ctx), gateway.Request{
		Model:        def.Model,
		SystemPrompt: prompt,
		Messages:     log.ToProviderFormat(),
		Tools:        tools,
		Temperature:  def.Temperature,
	})

	ev.Type = event.GenerationEnd
	ev.EndTime = time.Now()
	if err != nil {
		var gerr *gateway.Error
		if !errors.As(err, &gerr) {
			err = &gateway.Error{Model: def.Model, Err: err}
		}
		ev.Error = err
		ev.Metadata = nil
		st.emit(ctx, ev)
		logger.Warn("model call failed", "error", err)
		return gateway.Action{}, err
	}

	st.usage = st.usage.Add(reply.Usage)
	if len(reply.Dropped) > 0 {
		logger.Warn("model requested several tool calls, running the first", "dropped", len(reply.Dropped))
	}

	action := gateway.Interpret(reply)
	if reply.Model != "" {
		ev.Name = reply.Model
	}
	ev.Output = action
	ev.Metadata = map[string]any{
		"provider":      string(reply.Provider),
		"action":        action.Kind.String(),
		"input_tokens":  reply.Usage.InputTokens,
		"output_tokens": reply.Usage.OutputTokens,
	}
	st.emit(ctx, ev)
	logger.Debug("model replied", "action", action.Kind.String(), "tool", action.ToolName)
	return action, nil
}

// execute runs a tool call and records the call and its result.
func (r *Runner) execute(ctx context.Context, st *run, parent string, def Definition, iteration int,
	log *transcript.Log, a gateway.Action, logger *slog.Logger) {
	log.Append(callOf(a))

	start := time.Now()
	ev := event.Event{
		ID:        event.NewID(),
		ParentID:  parent,
		RunID:     st.id,
		Agent:     def.Name,
		Iteration: iteration,
		Name:      a.ToolName,
		Type:      event.ToolStart,
		StartTime: start,
		Input:     a.ToolArgs,
		Metadata:  map[string]any{"tool_call_id": a.ToolCallID},
	}
	st.emit(ctx, ev)

	out := r.tools.Execute(context.WithoutCancel(ctx), ai.ToolCall{ID: a.ToolCallID, Name: a.ToolName, Arguments: string(a.ToolArgs)})
	text, data := st.opts.renderer.Render(out)
	log.Append(transcript.ToolResult{
		ToolCallID: a.ToolCallID,
		ToolName:   a.ToolName,
		ResultText: text,
		ResultData: data,
		IsError:    out.Failed(),
		ErrorText:  out.Message(),
	})

	ev.Type = event.ToolEnd
	ev.EndTime = time.Now()
	ev.Output = text
	ev.Error = out.Err
	ev.Metadata = map[string]any{"tool_call_id": a.ToolCallID, "failed": out.Failed()}
	st.emit(ctx, ev)

	if out.Failed() {
		logger.Warn("tool failed", "tool", a.ToolName, "error", out.Err, "duration", ev.Duration())
		return
	}
	logger.Debug("tool succeeded", "tool", a.ToolName, "duration", ev.Duration())
}

// offeredTools returns the agent's tools plus one tool per explicit handoff.
func (r *Runner) offeredTools(def Definition) []ai.Tool {
	var tools []ai.Tool
	if len(def.ToolNames) > 0 {
		tools = r.tools.Tools(def.ToolNames...)
	}
	for _, rule := range def.HandoffRules {
		if rule.Trigger != TriggerToolCall {
			continue
		}
		tools = append(tools, r.handoffTool(rule))
	}
	return tools
}

// offers reports whether name is one of the agent's executable tools.
func (r *Runner) offers(def Definition, name string) bool {
	return slices.Contains(def.ToolNames, name) && r.tools.Has(name)
}

func (r *Runner) finish(ctx context.Context, st *run, res *RunResult, runEv event.Event,
	status Status, reason TerminationReason, err error) *RunResult {
	res.Status = status
	res.TerminationReason = reason
	res.Err = err
	if err != nil {
		res.ErrorText = err.Error()
	}
	res.Usage = st.usage
	res.HandoffChain = slices.Clone(st.chain)

	r.endRun(ctx, st, runEv, status, res.Output, res.Iterations, err)

	logger := st.opts.logger.With("run_id", st.id, "agent", res.Agent)
	switch status {
	case StatusFinalAnswer:
		logger.Info("run finished", "status", status, "iterations", res.Iterations, "tokens", st.usage.Total())
	case StatusCancelled:
		logger.Warn("run cancelled", "iterations", res.Iterations, "error", err)
	default:
		logger.Warn("run ended", "status", status, "iterations", res.Iterations, "error", err)
	}
	return res
}

func (r *Runner) endRun(ctx context.Context, st *run, runEv event.Event, status Status, output string, iterations int, err error) {
	runEv.Type = event.RunEnd
	runEv.EndTime = time.Now()
	runEv.Output = output
	runEv.Error = err
	runEv.Metadata = map[string]any{"status": string(status), "iterations": iterations}
	st.emit(ctx, runEv)
}

func callOf(a gateway.Action) transcript.ToolCall {
	return transcript.ToolCall{
		ToolName:   a.ToolName,
		ToolArgs:   a.ToolArgs,
		ToolCallID: a.ToolCallID,
		Reasoning:  a.Reasoning,
	}
}

// failureResult records a failure that has no tool call of its own.
func failureResult(prefix string, err error) transcript.ToolResult {
	return transcript.ToolResult{
		ToolCallID: prefix + uuid.NewString(),
		ResultText: err.Error(),
		IsError:    true,
		ErrorText:  err.Error(),
	}
}

func runInput(f frame) any {
	in := map[string]any{"messages": f.log.Len()}
	if hasArgs(f.args) {
		in["args"] = f.args
	}
	if f.context != "" {
		in["context"] = f.context
	}
	return in
}
