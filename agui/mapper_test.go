package agui

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/baton/event"
	"github.com/spetersoncode/baton/gateway"
)

func types(evs []events.Event) []events.EventType {
	out := make([]events.EventType, len(evs))
	for i, ev := range evs {
		out[i] = ev.Type()
	}
	return out
}

func assertTypes(t *testing.T, got []events.Event, want ...events.EventType) {
	t.Helper()
	gotTypes := types(got)
	if len(gotTypes) != len(want) {
		t.Fatalf("expected %v, got %v", want, gotTypes)
	}
	for i := range want {
		if gotTypes[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, gotTypes)
		}
	}
}

func TestNewMapper(t *testing.T) {
	t.Run("with provided IDs", func(t *testing.T) {
		m := NewMapper("thread-123", "run-456")
		if m.ThreadID() != "thread-123" {
			t.Errorf("expected thread ID 'thread-123', got %q", m.ThreadID())
		}
		if m.RunID() != "run-456" {
			t.Errorf("expected run ID 'run-456', got %q", m.RunID())
		}
	})

	t.Run("generates IDs when empty", func(t *testing.T) {
		m := NewMapper("", "")
		if m.ThreadID() == "" {
			t.Error("expected generated thread ID, got empty")
		}
		if m.RunID() == "" {
			t.Error("expected generated run ID, got empty")
		}
	})
}

func TestMapper_RunLifecycle(t *testing.T) {
	m := NewMapper("thread-1", "run-1")

	assertTypes(t, m.MapEvent(event.Event{Type: event.RunStart, Agent: "a"}),
		events.EventTypeRunStarted, events.EventTypeStepStarted)
	if m.RunDepth() != 1 {
		t.Errorf("expected depth 1, got %d", m.RunDepth())
	}

	assertTypes(t, m.MapEvent(event.Event{Type: event.RunEnd, Agent: "a"}),
		events.EventTypeStepFinished, events.EventTypeRunFinished)
	if m.RunDepth() != 0 {
		t.Errorf("expected depth 0, got %d", m.RunDepth())
	}
}

func TestMapper_RunError(t *testing.T) {
	m := NewMapper("thread-1", "run-1")
	m.MapEvent(event.Event{Type: event.RunStart, Agent: "a"})

	got := m.MapEvent(event.Event{Type: event.RunEnd, Agent: "a", Error: errors.New("boom")})
	assertTypes(t, got, events.EventTypeStepFinished, events.EventTypeRunError)
}

func TestMapper_Handoff(t *testing.T) {
	t.Run("target outcome decides the run", func(t *testing.T) {
		m := NewMapper("thread-1", "run-1")
		m.MapEvent(event.Event{Type: event.RunStart, Agent: "a"})

		assertTypes(t, m.MapEvent(event.Event{
			Type:     event.Handoff,
			Name:     "b",
			Metadata: map[string]any{"tool_call_id": "h1"},
		}), events.EventTypeToolCallResult)

		assertTypes(t, m.MapEvent(event.Event{Type: event.RunStart, Agent: "b"}), events.EventTypeStepStarted)
		if m.RunDepth() != 2 {
			t.Errorf("expected depth 2, got %d", m.RunDepth())
		}
		assertTypes(t, m.MapEvent(event.Event{Type: event.RunEnd, Agent: "b", Error: errors.New("failed")}),
			events.EventTypeStepFinished)
		assertTypes(t, m.MapEvent(event.Event{Type: event.RunEnd, Agent: "a"}),
			events.EventTypeStepFinished, events.EventTypeRunError)
	})

	t.Run("budget handoff has no tool call", func(t *testing.T) {
		m := NewMapper("thread-1", "run-1")
		if got := m.MapEvent(event.Event{Type: event.Handoff, Name: "b"}); got != nil {
			t.Errorf("expected no events, got %v", types(got))
		}
	})
}

func TestMapper_Generation(t *testing.T) {
	m := NewMapper("thread-1", "run-1")

	t.Run("final answer", func(t *testing.T) {
		got := m.MapEvent(event.Event{
			Type:   event.GenerationEnd,
			Output: gateway.Action{Kind: gateway.ActionFinal, Answer: "4"},
		})
		assertTypes(t, got,
			events.EventTypeTextMessageStart, events.EventTypeTextMessageContent, events.EventTypeTextMessageEnd)
	})

	t.Run("tool call", func(t *testing.T) {
		got := m.MapEvent(event.Event{
			Type: event.GenerationEnd,
			Output: gateway.Action{
				Kind:       gateway.ActionToolCall,
				ToolName:   "calc",
				ToolArgs:   json.RawMessage(`{"a":1}`),
				ToolCallID: "c1",
			},
		})
		assertTypes(t, got,
			events.EventTypeToolCallStart, events.EventTypeToolCallArgs, events.EventTypeToolCallEnd)
	})

	t.Run("failed generation", func(t *testing.T) {
		got := m.MapEvent(event.Event{Type: event.GenerationEnd, Error: errors.New("down")})
		if got != nil {
			t.Errorf("expected no events, got %v", types(got))
		}
	})

	t.Run("generation start", func(t *testing.T) {
		if got := m.MapEvent(event.Event{Type: event.GenerationStart}); got != nil {
			t.Errorf("expected no events, got %v", types(got))
		}
	})
}

func TestMapper_ToolResult(t *testing.T) {
	m := NewMapper("thread-1", "run-1")

	got := m.MapEvent(event.Event{
		Type:     event.ToolEnd,
		Output:   `{"result":4}`,
		Metadata: map[string]any{"tool_call_id": "c1"},
	})
	assertTypes(t, got, events.EventTypeToolCallResult)

	if got := m.MapEvent(event.Event{Type: event.ToolEnd}); got != nil {
		t.Errorf("expected no events without a call ID, got %v", types(got))
	}
	if got := m.MapEvent(event.Event{Type: event.ToolStart}); got != nil {
		t.Errorf("expected no events for tool start, got %v", types(got))
	}
}

func TestStream(t *testing.T) {
	s := NewStream(NewMapper("thread-1", "run-1"), 8)
	ctx := context.Background()

	s.Collect(ctx, event.Event{Type: event.RunStart, Agent: "a"})
	s.Collect(ctx, event.Event{Type: event.RunEnd, Agent: "a"})
	s.Close()
	s.Close()
	s.Collect(ctx, event.Event{Type: event.RunStart, Agent: "late"})

	var got []events.Event
	for ev := range s.Events() {
		got = append(got, ev)
	}
	assertTypes(t, got,
		events.EventTypeRunStarted, events.EventTypeStepStarted,
		events.EventTypeStepFinished, events.EventTypeRunFinished)
}

func TestStream_StopsOnCancel(t *testing.T) {
	s := NewStream(NewMapper("thread-1", "run-1"), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// No reader: the send must give up instead of blocking.
	s.Collect(ctx, event.Event{Type: event.RunStart, Agent: "a"})
	s.Close()
}
