package agui

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/baton/agent"
	"github.com/spetersoncode/baton/transcript"
)

// ContextItem is one piece of context supplied by the frontend.
type ContextItem struct {
	Description string `json:"description"`
	Value       string `json:"value"`
}

// RunAgentInput represents the AG-UI protocol request for running an agent.
// It follows the AG-UI protocol and is transport-agnostic.
type RunAgentInput struct {
	ThreadID       string           `json:"thread_id"`
	RunID          string           `json:"run_id"`
	Messages       []events.Message `json:"messages"`
	Tools          []any            `json:"tools,omitempty"` // Frontend tools are not executed
	Context        []ContextItem    `json:"context,omitempty"`
	State          any              `json:"state,omitempty"`
	ForwardedProps map[string]any   `json:"forwarded_props,omitempty"`
}

// PreparedInput is a validated request ready for the runner.
type PreparedInput struct {
	ThreadID string
	RunID    string

	// Agent is forwarded_props.agent, or empty for the server default.
	Agent    string
	Messages []transcript.Message

	// Args is the frontend state, passed to the agent as task arguments.
	Args    json.RawMessage
	Context string
}

// ErrNoMessages is returned when the input has neither messages nor state.
var ErrNoMessages = errors.New("no messages provided")

// Prepare validates the input and converts it to runner input.
func (r *RunAgentInput) Prepare() (*PreparedInput, error) {
	p := &PreparedInput{
		ThreadID: r.ThreadID,
		RunID:    r.RunID,
		Messages: ToTranscript(r.Messages),
		Context:  joinContext(r.Context),
	}
	if name, ok := r.ForwardedProps["agent"].(string); ok {
		p.Agent = name
	}
	if r.State != nil {
		raw, err := json.Marshal(r.State)
		if err != nil {
			return nil, fmt.Errorf("encode state: %w", err)
		}
		p.Args = raw
	}
	if len(p.Messages) == 0 && len(p.Args) == 0 {
		return nil, ErrNoMessages
	}
	return p, nil
}

// Input returns the agent.Input for the prepared request.
func (p *PreparedInput) Input() agent.Input {
	return agent.Input{Messages: p.Messages, Args: p.Args, Context: p.Context}
}

func joinContext(items []ContextItem) string {
	var b strings.Builder
	for _, it := range items {
		if it.Value == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		if it.Description != "" {
			b.WriteString(it.Description)
			b.WriteString(": ")
		}
		b.WriteString(it.Value)
	}
	return b.String()
}
