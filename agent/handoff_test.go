package agent

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	ai "github.com/spetersoncode/baton"
	"github.com/spetersoncode/baton/event"
	"github.com/spetersoncode/baton/gateway"
	"github.com/spetersoncode/baton/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandoff_ExplicitToolCall(t *testing.T) {
	gw := &fakeGateway{replies: []*gateway.Reply{
		call("h1", "handoff_to_b", `{"task":"summarize"}`),
		final("summary"),
	}}
	r := newTestRunner(t, gw,
		Definition{Name: "a", SystemPrompt: "A.", HandoffRules: []HandoffRule{{Target: "b", Trigger: TriggerToolCall}}},
		Definition{Name: "b", SystemPrompt: "You are {{.Agent}}: {{.Args.task}}."},
	)

	res, err := r.Run(context.Background(), "a", userInput("please summarize"))
	require.NoError(t, err)

	assert.Equal(t, StatusFinalAnswer, res.Status)
	assert.Equal(t, ReasonHandedOff, res.TerminationReason)
	assert.Equal(t, "summary", res.Output)
	assert.Equal(t, "b", res.Agent)
	assert.Equal(t, []string{"a", "b"}, res.HandoffChain)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, ai.Usage{InputTokens: 20, OutputTokens: 10}, res.Usage)
	assert.JSONEq(t, `{"task":"summarize"}`, string(res.Args))

	// B sees the transferred history without the handoff call and starts
	// at iteration 0 with the handoff arguments.
	require.Len(t, gw.requests, 2)
	assert.Len(t, gw.requests[1].Messages, 1)
	prompt := gw.requests[1].SystemPrompt
	assert.True(t, strings.HasPrefix(prompt, "You are b: summarize."))
	assert.Contains(t, prompt, "Iteration 1 of 10.")
	assert.Contains(t, prompt, `Task arguments: {"task":"summarize"}`)

	assert.Equal(t, []transcript.Kind{transcript.KindUser, transcript.KindFinal}, kinds(res.Messages))
}

func TestHandoff_IncludeIntermediateSteps(t *testing.T) {
	gw := &fakeGateway{replies: []*gateway.Reply{
		call("h1", "handoff_to_b", `{}`),
		final("done"),
	}}
	r := newTestRunner(t, gw,
		Definition{Name: "a", SystemPrompt: "A.", HandoffRules: []HandoffRule{{Target: "b", Trigger: TriggerToolCall}}},
		Definition{Name: "b", SystemPrompt: "B.", IncludeIntermediateStepsOnReturn: true},
	)

	res, err := r.Run(context.Background(), "a", userInput("go"))
	require.NoError(t, err)

	assert.Equal(t, []transcript.Kind{
		transcript.KindUser, transcript.KindToolCall, transcript.KindToolResult, transcript.KindFinal,
	}, kinds(res.Messages))
	require.NoError(t, res.Messages.CheckPairing())

	result := res.Messages.At(2).(transcript.ToolResult)
	assert.Equal(t, "h1", result.ToolCallID)
	assert.Equal(t, "Transferred to b", result.ResultText)
	assert.False(t, result.IsError)
}

func TestHandoff_FiltersToolResults(t *testing.T) {
	gw := &fakeGateway{replies: []*gateway.Reply{
		call("c1", "lookup", `{}`),
		call("c2", "noop", `{}`),
		call("h1", "handoff_to_b", `{}`),
		final("done"),
	}}
	r := newTestRunner(t, gw,
		Definition{
			Name:         "a",
			SystemPrompt: "A.",
			ToolNames:    []string{"lookup", "noop"},
			HandoffRules: []HandoffRule{{Target: "b", Trigger: TriggerToolCall, IncludeToolResults: []string{"lookup"}}},
		},
		Definition{Name: "b", SystemPrompt: "B."},
	)

	res, err := r.Run(context.Background(), "a", userInput("go"))
	require.NoError(t, err)

	msgs := res.Messages.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "lookup", msgs[1].(transcript.ToolCall).ToolName)
	assert.Equal(t, "c1", msgs[2].(transcript.ToolResult).ToolCallID)
	assert.NoError(t, res.Messages.CheckPairing())

	// B inherits A's tools because it declares none.
	names := make([]string, 0)
	for _, tl := range gw.requests[3].Tools {
		names = append(names, tl.Name)
	}
	assert.Equal(t, []string{"lookup", "noop"}, names)
}

func TestHandoff_EmptyFilterDropsAllPairs(t *testing.T) {
	gw := &fakeGateway{replies: []*gateway.Reply{
		call("c1", "lookup", `{}`),
		call("h1", "handoff_to_b", `{}`),
		final("done"),
	}}
	r := newTestRunner(t, gw,
		Definition{
			Name:         "a",
			SystemPrompt: "A.",
			ToolNames:    []string{"lookup"},
			HandoffRules: []HandoffRule{{Target: "b", Trigger: TriggerToolCall, IncludeToolResults: []string{}}},
		},
		Definition{Name: "b", SystemPrompt: "B.", ToolNames: []string{}},
	)

	res, err := r.Run(context.Background(), "a", userInput("go"))
	require.NoError(t, err)
	assert.Equal(t, []transcript.Kind{transcript.KindUser, transcript.KindFinal}, kinds(res.Messages))
	assert.Empty(t, gw.requests[2].Tools)
}

func TestHandoff_OnBudgetExhaustion(t *testing.T) {
	gw := &fakeGateway{replies: []*gateway.Reply{
		call("c1", "noop", `{}`),
		call("c2", "noop", `{}`),
		final("escalated"),
	}}
	r := newTestRunner(t, gw,
		Definition{
			Name:          "junior",
			SystemPrompt:  "Junior.",
			ToolNames:     []string{"noop"},
			MaxIterations: 2,
			HandoffRules:  []HandoffRule{{Target: "senior", Trigger: TriggerMaxIterations}},
		},
		Definition{Name: "senior", SystemPrompt: "Senior."},
	)

	res, err := r.Run(context.Background(), "junior", Input{
		Messages: []transcript.Message{transcript.User{Text: "go"}},
		Args:     json.RawMessage(`{"ticket":7}`),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusFinalAnswer, res.Status)
	assert.Equal(t, ReasonHandedOff, res.TerminationReason)
	assert.Equal(t, "senior", res.Agent)
	assert.Equal(t, 1, res.Iterations)
	assert.JSONEq(t, `{"ticket":7}`, string(res.Args))
	// MaxIterations is inherited.
	assert.Contains(t, gw.requests[2].SystemPrompt, "Iteration 1 of 2.")
	// The transferred log carries the junior's tool exchanges.
	assert.Equal(t, 6, res.Messages.Len())
}

func TestHandoff_TargetOutcomeWins(t *testing.T) {
	gw := &fakeGateway{respond: func(i int, _ gateway.Request) (*gateway.Reply, error) {
		if i == 0 {
			return call("h1", "handoff_to_b", `{}`), nil
		}
		return call("", "noop", `{}`), nil
	}}
	r := newTestRunner(t, gw,
		Definition{Name: "a", SystemPrompt: "A.", HandoffRules: []HandoffRule{{Target: "b", Trigger: TriggerToolCall}}},
		Definition{Name: "b", SystemPrompt: "B.", ToolNames: []string{"noop"}, MaxIterations: 2},
	)

	res, err := r.Run(context.Background(), "a", userInput("go"))
	require.NoError(t, err)
	assert.Equal(t, StatusMaxIterations, res.Status)
	assert.Equal(t, ReasonMaxIterations, res.TerminationReason)
	assert.Equal(t, 2, res.Iterations)
}

func TestHandoff_DepthGuard(t *testing.T) {
	gw := &fakeGateway{respond: func(_ int, req gateway.Request) (*gateway.Reply, error) {
		if strings.HasPrefix(req.SystemPrompt, "Ping.") {
			return call("", "handoff_to_pong", `{}`), nil
		}
		return call("", "handoff_to_ping", `{}`), nil
	}}
	r, err := NewRunner(gw, testTools(), NewRegistry().MustRegister(
		Definition{Name: "ping", SystemPrompt: "Ping.", HandoffRules: []HandoffRule{{Target: "pong", Trigger: TriggerToolCall}}},
		Definition{Name: "pong", SystemPrompt: "Pong.", HandoffRules: []HandoffRule{{Target: "ping", Trigger: TriggerToolCall}}},
	), WithMaxHandoffDepth(2))
	require.NoError(t, err)

	res, err := r.Run(context.Background(), "ping", userInput("go"))
	require.NoError(t, err)

	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, ReasonError, res.TerminationReason)
	assert.ErrorIs(t, res.Err, ErrHandoffDepthExceeded)
	assert.Equal(t, []string{"ping", "pong", "ping"}, res.HandoffChain)
	assert.Equal(t, "ping", res.Agent)
	assert.Equal(t, 3, gw.calls())
	assert.NoError(t, res.Messages.CheckPairing())
}

func TestHandoff_Events(t *testing.T) {
	var mu sync.Mutex
	var events []event.Event
	collector := event.CollectorFunc(func(_ context.Context, e event.Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})

	gw := &fakeGateway{replies: []*gateway.Reply{call("h1", "handoff_to_b", `{}`), final("done")}}
	r := newTestRunner(t, gw,
		Definition{Name: "a", SystemPrompt: "A.", HandoffRules: []HandoffRule{{Target: "b", Trigger: TriggerToolCall}}},
		Definition{Name: "b", SystemPrompt: "B."},
	)

	_, err := r.Run(context.Background(), "a", userInput("go"), WithCollector(collector))
	require.NoError(t, err)

	var types []event.Type
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []event.Type{
		event.RunStart,
		event.GenerationStart, event.GenerationEnd,
		event.Handoff,
		event.RunStart,
		event.GenerationStart, event.GenerationEnd,
		event.RunEnd,
		event.RunEnd,
	}, types)

	runA, handoff, runB := events[0], events[3], events[4]
	assert.Equal(t, "b", handoff.Name)
	assert.Equal(t, runA.ID, handoff.ParentID)
	assert.Equal(t, runA.ID, runB.ParentID)
	assert.Equal(t, "b", events[7].Agent)
	assert.Equal(t, "final_answer", events[7].Metadata["status"])
	assert.Equal(t, runA.ID, events[8].ID)
	assert.Equal(t, "handed_off", events[8].Metadata["status"])
}
