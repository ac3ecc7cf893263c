package agui

import (
	"errors"
	"testing"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/baton/transcript"
)

func strPtr(s string) *string { return &s }

func TestToTranscript(t *testing.T) {
	msgs := []events.Message{
		{ID: "1", Role: RoleSystem, Content: strPtr("ignored")},
		{ID: "2", Role: RoleUser, Content: strPtr("2+2?")},
		{ID: "3", Role: RoleAssistant, ToolCalls: []events.ToolCall{{
			ID:       "c1",
			Type:     "function",
			Function: events.Function{Name: "calc", Arguments: `{"op":"add","a":2,"b":2}`},
		}}},
		{ID: "4", Role: RoleTool, ToolCallID: strPtr("c1"), Content: strPtr(`{"result":4}`)},
		{ID: "5", Role: RoleAssistant, Content: strPtr("4")},
	}

	got := ToTranscript(msgs)
	if len(got) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(got))
	}
	if u, ok := got[0].(transcript.User); !ok || u.Text != "2+2?" {
		t.Errorf("unexpected first message %#v", got[0])
	}
	if tc, ok := got[1].(transcript.ToolCall); !ok || tc.ToolName != "calc" || tc.ToolCallID != "c1" {
		t.Errorf("unexpected tool call %#v", got[1])
	}
	tr, ok := got[2].(transcript.ToolResult)
	if !ok || tr.ToolName != "calc" || tr.ResultText != `{"result":4}` {
		t.Errorf("unexpected tool result %#v", got[2])
	}
	if f, ok := got[3].(transcript.Final); !ok || f.Answer != "4" {
		t.Errorf("unexpected final %#v", got[3])
	}
	if err := transcript.NewLog(got...).CheckPairing(); err != nil {
		t.Errorf("expected paired transcript, got %v", err)
	}
}

func TestToTranscript_InvalidArguments(t *testing.T) {
	got := ToTranscript([]events.Message{{
		Role:      RoleAssistant,
		ToolCalls: []events.ToolCall{{ID: "c1", Function: events.Function{Name: "calc", Arguments: "not json"}}},
	}})
	if tc := got[0].(transcript.ToolCall); string(tc.ToolArgs) != "{}" {
		t.Errorf("expected {} arguments, got %s", tc.ToolArgs)
	}
}

func TestFromTranscript(t *testing.T) {
	msgs := []transcript.Message{
		transcript.User{Text: "hi"},
		transcript.ToolCall{ToolName: "calc", ToolArgs: []byte(`{}`), ToolCallID: "c1"},
		transcript.ToolResult{ToolCallID: "c1", ResultText: "4"},
		transcript.Final{Answer: "done"},
	}
	got := FromTranscript(msgs)
	if len(got) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(got))
	}
	if got[1].Role != RoleAssistant || got[1].ToolCalls[0].Function.Name != "calc" {
		t.Errorf("unexpected tool call message %#v", got[1])
	}
	if got[2].Role != RoleTool || *got[2].ToolCallID != "c1" {
		t.Errorf("unexpected tool message %#v", got[2])
	}

	back := ToTranscript(got)
	if len(back) != 4 {
		t.Errorf("expected 4 messages after conversion back, got %d", len(back))
	}
}

func TestRunAgentInput_Prepare(t *testing.T) {
	t.Run("messages, state and context", func(t *testing.T) {
		in := RunAgentInput{
			ThreadID: "t1",
			RunID:    "r1",
			Messages: []events.Message{{Role: RoleUser, Content: strPtr("hello")}},
			Context: []ContextItem{
				{Description: "locale", Value: "en-GB"},
				{Description: "empty"},
				{Value: "plain"},
			},
			State:          map[string]any{"city": "Oslo"},
			ForwardedProps: map[string]any{"agent": "weather"},
		}
		p, err := in.Prepare()
		if err != nil {
			t.Fatal(err)
		}
		if p.Agent != "weather" {
			t.Errorf("expected agent 'weather', got %q", p.Agent)
		}
		if string(p.Args) != `{"city":"Oslo"}` {
			t.Errorf("unexpected args %s", p.Args)
		}
		if p.Context != "locale: en-GB\nplain" {
			t.Errorf("unexpected context %q", p.Context)
		}
		run := p.Input()
		if len(run.Messages) != 1 || run.Context != p.Context {
			t.Errorf("unexpected input %#v", run)
		}
	})

	t.Run("state without messages", func(t *testing.T) {
		in := RunAgentInput{State: map[string]any{"n": 1}}
		if _, err := in.Prepare(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		in := RunAgentInput{}
		if _, err := in.Prepare(); !errors.Is(err, ErrNoMessages) {
			t.Errorf("expected ErrNoMessages, got %v", err)
		}
	})
}
