package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	ai "github.com/spetersoncode/baton"
	"github.com/spetersoncode/baton/event"
	"github.com/spetersoncode/baton/gateway"
	"github.com/spetersoncode/baton/transcript"
)

var handoffSchema = json.RawMessage(`{"type":"object","properties":{"task":{"type":"string","description":"What the receiving agent should do, with any details it needs."}}}`)

// handoffTool is the tool the model calls to trigger rule.
func (r *Runner) handoffTool(rule HandoffRule) ai.Tool {
	desc := rule.Description
	if desc == "" {
		desc = "Transfer the task to the " + rule.Target + " agent."
		if target, ok := r.agents.Get(rule.Target); ok && target.Description != "" {
			desc += " " + target.Description
		}
	}
	return ai.Tool{
		Name:        HandoffToolName(rule.Target),
		Description: desc,
		Parameters:  handoffSchema,
	}
}

// handoff transfers the run to rule.Target. call is the model's handoff
// tool call, or nil when the iteration budget triggered the rule.
func (r *Runner) handoff(ctx context.Context, st *run, f frame, res *RunResult, runEv event.Event,
	rule HandoffRule, call *gateway.Action) *RunResult {
	def := f.def
	logger := st.opts.logger.With("run_id", st.id, "agent", def.Name)

	fail := func(err error) *RunResult {
		if call != nil {
			f.log.Append(callOf(*call), transcript.ToolResult{
				ToolCallID: call.ToolCallID,
				ToolName:   call.ToolName,
				ResultText: err.Error(),
				IsError:    true,
				ErrorText:  err.Error(),
			})
		}
		return r.finish(ctx, st, res, runEv, StatusError, ReasonError, err)
	}

	if f.depth >= st.opts.maxDepth {
		chain := strings.Join(append(slices.Clone(st.chain), rule.Target), " -> ")
		return fail(fmt.Errorf("%w: %s", ErrHandoffDepthExceeded, chain))
	}
	target, ok := r.agents.Get(rule.Target)
	if !ok {
		return fail(&ConfigurationError{Agent: def.Name, Field: "handoffs", Reason: fmt.Sprintf("unknown target %q", rule.Target)})
	}

	// The transferred log never contains the handoff call itself.
	var transferred *transcript.Log
	if rule.IncludeToolResults == nil {
		transferred = f.log.Clone()
	} else {
		transferred = f.log.FilterForHandoff(rule.IncludeToolResults)
	}

	args := f.args
	if call != nil {
		args = call.ToolArgs
		f.log.Append(callOf(*call), transcript.ToolResult{
			ToolCallID: call.ToolCallID,
			ToolName:   call.ToolName,
			ResultText: "Transferred to " + target.Name,
		})
	}

	target = target.inherit(def)
	if target.MaxIterations <= 0 {
		target.MaxIterations = DefaultMaxIterations
	}

	meta := map[string]any{
		"trigger":     string(rule.Trigger),
		"transferred": transferred.Len(),
		"depth":       f.depth + 1,
	}
	if call != nil {
		meta["tool_call_id"] = call.ToolCallID
	}
	now := time.Now()
	st.emit(ctx, event.Event{
		ID:        event.NewID(),
		ParentID:  runEv.ID,
		RunID:     st.id,
		Agent:     def.Name,
		Iteration: res.Iterations,
		Name:      target.Name,
		Type:      event.Handoff,
		StartTime: now,
		EndTime:   now,
		Input:     args,
		Metadata:  meta,
	})
	logger.Info("handing off", "to", target.Name, "trigger", rule.Trigger, "transferred", transferred.Len(), "depth", f.depth+1)
	st.chain = append(st.chain, target.Name)

	prefix := transferred.Len()
	sub := r.loop(ctx, st, frame{
		def:     target,
		log:     transferred,
		args:    args,
		context: f.context,
		depth:   f.depth + 1,
		parent:  runEv.ID,
	})

	r.endRun(ctx, st, runEv, StatusHandedOff, "", res.Iterations, nil)

	out := *sub
	if target.IncludeIntermediateStepsOnReturn {
		out.Messages = transcript.Concat(f.log, sub.Messages.Since(prefix))
	}
	if out.TerminationReason == "" {
		out.TerminationReason = ReasonHandedOff
	}
	out.Usage = st.usage
	out.HandoffChain = slices.Clone(st.chain)
	return &out
}
