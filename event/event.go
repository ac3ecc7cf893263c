// Package event carries observability events out of agent runs.
//
// The runner reports a start and an end event around every model call and
// tool call, plus run and handoff events. Start and end events of the same
// operation share an ID; an end event has EndTime set. Collectors decide what
// to do with them: log them, forward them on a channel, turn them into
// tracing spans or stream them to a UI.
package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of event.
type Type string

// Run lifecycle events
const (
	// RunStart fires when an agent run begins, including handoff targets.
	RunStart Type = "run_start"

	// RunEnd fires when an agent run reaches a terminal state.
	RunEnd Type = "run_end"
)

// Model call events
const (
	// GenerationStart fires before a gateway call.
	GenerationStart Type = "generation_start"

	// GenerationEnd fires after a gateway call, successful or not.
	GenerationEnd Type = "generation_end"
)

// Tool call events
const (
	// ToolStart fires before a tool executes.
	ToolStart Type = "tool_start"

	// ToolEnd fires with the tool outcome.
	ToolEnd Type = "tool_end"
)

// Handoff fires when a run delegates to another agent.
const Handoff Type = "handoff"

// Event is one observable occurrence during a run.
type Event struct {
	// ID pairs start and end events of one operation.
	ID string

	// ParentID is the ID of the enclosing run event, if any.
	ParentID string

	RunID     string
	Agent     string
	Iteration int

	// Name is the model for generations, the tool name for tool events and
	// the target agent for handoffs.
	Name string
	Type Type

	StartTime time.Time
	EndTime   time.Time

	Input  any
	Output any
	Error  error

	Metadata map[string]any
}

// Ended reports whether the event closes an operation.
func (e Event) Ended() bool { return !e.EndTime.IsZero() }

// Duration returns EndTime - StartTime, or 0 for start events.
func (e Event) Duration() time.Duration {
	if !e.Ended() {
		return 0
	}
	return e.EndTime.Sub(e.StartTime)
}

// NewID returns a fresh event ID.
func NewID() string { return uuid.NewString() }

// Collector receives events. Implementations must not block the run for
// long and must be safe for concurrent use when runs execute in parallel.
type Collector interface {
	Collect(ctx context.Context, e Event)
}

// CollectorFunc adapts a function to a Collector.
type CollectorFunc func(ctx context.Context, e Event)

// Collect calls f(ctx, e).
func (f CollectorFunc) Collect(ctx context.Context, e Event) { f(ctx, e) }

// Nop discards every event.
type Nop struct{}

// Collect does nothing.
func (Nop) Collect(context.Context, Event) {}

// OrNop returns c, or Nop when c is nil.
func OrNop(c Collector) Collector {
	if c == nil {
		return Nop{}
	}
	return c
}
