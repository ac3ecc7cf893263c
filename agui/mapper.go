package agui

import (
	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/baton/event"
	"github.com/spetersoncode/baton/gateway"
)

// Mapper converts baton events to AG-UI events for one run, including the
// runs of every agent it hands off to.
//
// Create a new Mapper for each run using NewMapper.
type Mapper struct {
	threadID string
	runID    string
	depth    int
	err      error
}

// NewMapper creates a new Mapper for a single run.
// The threadID and runID are used in lifecycle events (RUN_STARTED, RUN_FINISHED).
func NewMapper(threadID, runID string) *Mapper {
	if threadID == "" {
		threadID = events.GenerateThreadID()
	}
	if runID == "" {
		runID = events.GenerateRunID()
	}
	return &Mapper{
		threadID: threadID,
		runID:    runID,
	}
}

// ThreadID returns the thread ID for this mapper.
func (m *Mapper) ThreadID() string {
	return m.threadID
}

// RunID returns the run ID for this mapper.
func (m *Mapper) RunID() string {
	return m.runID
}

// RunDepth returns how many agent runs are open.
func (m *Mapper) RunDepth() int {
	return m.depth
}

// RunStarted returns a RUN_STARTED event.
func (m *Mapper) RunStarted() events.Event {
	return events.NewRunStartedEvent(m.threadID, m.runID)
}

// RunFinished returns a RUN_FINISHED event.
func (m *Mapper) RunFinished() events.Event {
	return events.NewRunFinishedEvent(m.threadID, m.runID)
}

// RunError returns a RUN_ERROR event.
func (m *Mapper) RunError(err error) events.Event {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return events.NewRunErrorEvent(msg)
}

// MapEvent converts one baton event into zero or more AG-UI events.
func (m *Mapper) MapEvent(e event.Event) []events.Event {
	switch e.Type {
	case event.RunStart:
		m.depth++
		var out []events.Event
		if m.depth == 1 {
			m.err = nil
			out = append(out, m.RunStarted())
		}
		return append(out, events.NewStepStartedEvent(e.Agent))

	case event.RunEnd:
		if m.depth > 0 {
			m.depth--
		}
		if e.Error != nil {
			m.err = e.Error
		}
		out := []events.Event{events.NewStepFinishedEvent(e.Agent)}
		if m.depth > 0 {
			return out
		}
		if m.err != nil {
			return append(out, m.RunError(m.err))
		}
		return append(out, m.RunFinished())

	case event.GenerationEnd:
		if e.Error != nil {
			return nil
		}
		a, ok := e.Output.(gateway.Action)
		if !ok {
			return nil
		}
		return mapAction(a)

	case event.ToolEnd:
		id, _ := e.Metadata["tool_call_id"].(string)
		if id == "" {
			return nil
		}
		text, _ := e.Output.(string)
		return []events.Event{events.NewToolCallResultEvent(events.GenerateMessageID(), id, text)}

	case event.Handoff:
		id, _ := e.Metadata["tool_call_id"].(string)
		if id == "" {
			return nil
		}
		return []events.Event{events.NewToolCallResultEvent(events.GenerateMessageID(), id, "Transferred to "+e.Name)}

	default:
		return nil
	}
}

func mapAction(a gateway.Action) []events.Event {
	switch a.Kind {
	case gateway.ActionFinal:
		id := events.GenerateMessageID()
		return []events.Event{
			events.NewTextMessageStartEvent(id, events.WithRole(RoleAssistant)),
			events.NewTextMessageContentEvent(id, a.Answer),
			events.NewTextMessageEndEvent(id),
		}
	case gateway.ActionToolCall:
		args := string(a.ToolArgs)
		if args == "" {
			args = "{}"
		}
		return []events.Event{
			events.NewToolCallStartEvent(a.ToolCallID, a.ToolName),
			events.NewToolCallArgsEvent(a.ToolCallID, args),
			events.NewToolCallEndEvent(a.ToolCallID),
		}
	default:
		return nil
	}
}
